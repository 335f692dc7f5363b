package console

import (
	"bytes"
	"log"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func plain(buf *bytes.Buffer, color bool) *Logger {
	l := New(buf, color)
	l.out.SetFlags(0)
	return l
}

func TestGlyphs(t *testing.T) {
	var buf bytes.Buffer
	l := plain(&buf, false)

	l.Info("Swap successful!")
	l.Warn("No liquidity (LP Tokens) to withdraw.")
	l.Error("Swap failed: %s", "out of gas")
	l.Step("Attempting to swap %.5f %s...", 0.0012, "ZIG")
	l.Loop("STARTING LOOP #%d", 3)
	l.Link("Tx: https://zigscan.org/tx/%s", "ABC")

	want := []string{
		"[✓] Swap successful!",
		"[⚠] No liquidity (LP Tokens) to withdraw.",
		"[✗] Swap failed: out of gas",
		"[➤] Attempting to swap 0.00120 ZIG...",
		"===== STARTING LOOP #3 =====",
		"    Tx: https://zigscan.org/tx/ABC",
	}
	assert.Equal(t, want, strings.Split(strings.TrimRight(buf.String(), "\n"), "\n"))
}

func TestWithTag(t *testing.T) {
	var buf bytes.Buffer
	l := plain(&buf, false).With("zig1l3e9...hft3")
	l.Info("Bot started")
	assert.Equal(t, "[✓] [zig1l3e9...hft3] Bot started\n", buf.String())
}

func TestColor(t *testing.T) {
	var buf bytes.Buffer
	l := plain(&buf, true)
	l.Error("boom")
	assert.Equal(t, red+"[✗] boom"+reset+"\n", buf.String())
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	l := plain(&buf, false)
	l.Banner("Oroswap Auto Bot")

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	assert.Len(t, lines, 3)
	for _, s := range lines {
		assert.Equal(t, 47, len([]rune(s)))
	}
	assert.Contains(t, lines[1], "Oroswap Auto Bot")
}

func TestDiscard(t *testing.T) {
	l := Discard()
	l.Info("nothing")
	assert.Equal(t, log.LstdFlags, l.out.Flags())
}
