package notifier

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"OroswapBot/internal/recorder"
	"OroswapBot/internal/wallet"
)

// FormatRoundSummary formats one finished round for Telegram.
func FormatRoundSummary(round *recorder.RoundEvent, snap recorder.Snapshot) string {
	var b strings.Builder

	icon := "✅"
	if round.Failed > 0 {
		icon = "⚠️"
	}
	b.WriteString(fmt.Sprintf("%s <b>Round #%d complete</b> | %s\n\n", icon, round.Number, round.Finished.Format("2006-01-02 15:04")))
	b.WriteString(fmt.Sprintf("Wallets: %d | Failed: %d\n", round.Wallets, round.Failed))
	b.WriteString(fmt.Sprintf("Duration: %s\n\n", round.Finished.Sub(round.Started).Round(time.Second)))
	b.WriteString(FormatWallets(snap))
	return b.String()
}

// FormatWallets lists per-wallet counters.
func FormatWallets(snap recorder.Snapshot) string {
	if len(snap.Wallets) == 0 {
		return "No wallet activity yet.\n"
	}
	var b strings.Builder
	b.WriteString("👛 <b>Wallets</b>\n")
	for _, w := range snap.Wallets {
		b.WriteString(fmt.Sprintf("\n<code>%s</code>\n", wallet.ShortAddress(w.Wallet)))
		b.WriteString(fmt.Sprintf("  Swaps: %s ok / %s failed\n", humanize.Comma(int64(w.Swaps.OK)), humanize.Comma(int64(w.Swaps.Failed))))
		b.WriteString(fmt.Sprintf("  Liquidity: +%d / -%d\n", w.Adds.OK, w.Withdraws.OK))
		if w.Points != nil {
			b.WriteString(fmt.Sprintf("  Points: %s (swaps %s, pools %s)\n",
				humanize.CommafWithDigits(w.Points.Points, 2),
				humanize.Comma(w.Points.SwapsCount),
				humanize.Comma(w.Points.JoinPoolCount)))
		}
		if w.LastError != "" {
			b.WriteString(fmt.Sprintf("  Last error: %s\n", escape(w.LastError)))
		}
	}
	return b.String()
}

// FormatStatus formats the run overview returned by /status.
func FormatStatus(snap recorder.Snapshot, now time.Time) string {
	var b strings.Builder
	b.WriteString("🤖 <b>Oroswap bot status</b>\n\n")
	b.WriteString(fmt.Sprintf("Run: <code>%s</code>\n", snap.RunID))
	b.WriteString(fmt.Sprintf("Up since: %s\n", humanize.RelTime(snap.Started, now, "ago", "from now")))
	b.WriteString(fmt.Sprintf("Rounds: %s\n", humanize.Comma(int64(snap.Rounds))))

	var swaps, failed int
	for _, w := range snap.Wallets {
		swaps += w.Swaps.OK
		failed += w.Swaps.Failed + w.Adds.Failed + w.Withdraws.Failed
	}
	b.WriteString(fmt.Sprintf("Swaps: %s | Failed actions: %s\n", humanize.Comma(int64(swaps)), humanize.Comma(int64(failed))))
	if snap.LastRound != nil {
		b.WriteString(fmt.Sprintf("Last round: #%d, %s\n", snap.LastRound.Number,
			humanize.RelTime(snap.LastRound.Finished, now, "ago", "from now")))
	}
	return b.String()
}

// FormatHelp lists the supported commands.
func FormatHelp() string {
	return "Available commands:\n• /status\n• /wallets"
}

var htmlEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escape(s string) string { return htmlEscaper.Replace(s) }
