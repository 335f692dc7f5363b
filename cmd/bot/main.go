package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"OroswapBot/internal/calculator"
	"OroswapBot/internal/chain"
	"OroswapBot/internal/config"
	"OroswapBot/internal/console"
	"OroswapBot/internal/cycle"
	"OroswapBot/internal/executor"
	"OroswapBot/internal/model"
	"OroswapBot/internal/notifier"
	"OroswapBot/internal/observability"
	"OroswapBot/internal/points"
	"OroswapBot/internal/recorder"
	"OroswapBot/internal/scheduler"
	"OroswapBot/internal/wallet"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] OroswapBot starting...")

	// .env is optional; .env.local wins over it
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env: %v", err)
	}
	if err := godotenv.Overload(".env.local"); err != nil && !os.IsNotExist(err) {
		log.Printf("[WARN] load .env.local: %v", err)
	}

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	out := console.Stdout(cfg.Log.Color)
	out.Banner("Oroswap Auto Bot")

	// Wallets
	mode, secrets, err := cfg.WalletSecrets(os.Environ())
	if err != nil {
		out.Error("%v", err)
		log.Fatalf("[FATAL] wallet secrets: %v", err)
	}
	opts := wallet.Options{Prefix: cfg.Chain.AddressPrefix, HDPath: cfg.Chain.HDPath}
	ids := make([]*wallet.Identity, 0, len(secrets))
	for _, s := range secrets {
		id, err := wallet.Parse(s.Value, opts)
		if err != nil {
			log.Fatalf("[FATAL] parse %s: %v", s.Name, err)
		}
		ids = append(ids, id)
	}
	log.Printf("[INFO] wallet mode: %s, %d wallet(s)", mode, len(ids))

	// Shared HTTP client, optionally proxied
	httpClient, err := points.NewHTTPClient(cfg.Proxy, 30*time.Second)
	if err != nil {
		log.Fatalf("[FATAL] init http client: %v", err)
	}

	// Recorders
	metrics := observability.NewMetrics()
	history := recorder.NewMemoryRecorder(recorder.DefaultEventLimit)
	rec := recorder.Multi{history, metrics}
	defer rec.Close()
	log.Printf("[INFO] run id: %s", history.RunID())

	// Chain client
	gasPrice, err := chain.ParseGasPrice(cfg.Chain.GasPrice)
	if err != nil {
		log.Fatalf("[FATAL] gas price: %v", err)
	}
	chainOpts := []chain.Option{
		chain.WithHTTPClient(httpClient),
		chain.WithGasPrice(gasPrice),
		chain.WithGasAdjustment(cfg.Chain.GasAdjustment),
		chain.WithConfirmation(cfg.Chain.PollInterval, cfg.Chain.BroadcastTimeout),
		chain.WithObserver(metrics.ObserveChainCall),
	}
	if cfg.Chain.ChainID != "" {
		chainOpts = append(chainOpts, chain.WithChainID(cfg.Chain.ChainID))
	}
	client := chain.NewClient(cfg.Chain.RPC, chainOpts...)
	dial := func(ctx context.Context, id *wallet.Identity) (executor.Chain, error) {
		signer, err := client.Signer(ctx, id)
		if err != nil {
			return nil, err
		}
		return signer, nil
	}

	// Points
	fetcher := points.NewOroswapFetcher(cfg.Points.BaseURL, cfg.Points.Origin, httpClient)
	log.Printf("[INFO] points source: %s", fetcher.Name())

	// Cycle runner
	primary, secondary := cfg.Assets.Primary, cfg.Assets.Secondary
	lp := model.Asset{Denom: cfg.LPToken, Symbol: "LP", Decimals: cfg.DefaultDecimals}
	settings := cycle.Settings{
		SwapEnabled:     cfg.Swap.Enabled,
		SwapCount:       cfg.Swap.CountPerLoop,
		SwapPrimary:     cfg.Swap.AmountPrimary,
		SwapSecondary:   cfg.Swap.AmountSecondary,
		PoolsEnabled:    cfg.Pools.Enabled,
		WithdrawEnabled: cfg.Pools.WithdrawEnabled,
		PoolPrimary:     cfg.Pools.AmountPrimary,
		PoolSecondary:   cfg.Pools.AmountSecondary,
		BetweenTx:       cfg.BetweenTx(),
		BetweenLoops:    cfg.BetweenLoops(),
		Executor: executor.Config{
			Contract:          cfg.Contract,
			LPToken:           cfg.LPToken,
			Primary:           primary,
			Secondary:         secondary,
			SwapSlippage:      cfg.Swap.Slippage,
			InvertBeliefPrice: cfg.Swap.InvertBelief,
			SlippageTolerance: cfg.Pools.SlippageTolerance,
			ExplorerTxURL:     cfg.Chain.ExplorerTxURL,
		},
		Units: calculator.NewUnits(cfg.DefaultDecimals, primary, secondary, lp),
	}
	runner := cycle.New(settings, dial, fetcher, cycle.WithLogger(out), cycle.WithRecorder(rec))

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("[INFO] shutdown signal received, stopping...")
		cancel()
	}()

	// Optional Telegram notifier
	var n scheduler.Notifier
	var tn *notifier.TelegramNotifier
	if cfg.TelegramEnabled() {
		tn = notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, httpClient)
		n = tn
	}
	sched := scheduler.NewScheduler(ctx, runner, ids, n, rec, history)

	if tn != nil {
		go tn.StartPolling(ctx, sched.HandleCommand)
		log.Println("[INFO] Telegram polling started")
	}
	if cfg.Metrics.ListenAddr != "" {
		go func() {
			if err := metrics.Serve(ctx, cfg.Metrics.ListenAddr); err != nil {
				log.Printf("[ERROR] metrics server: %v", err)
			}
		}()
	}

	switch {
	case mode == config.ModeSingle:
		err = runner.RunSingle(ctx, ids[0])
	case cfg.Schedule.Cron != "":
		if err = sched.Register(cfg.Schedule.Cron); err == nil {
			sched.Start()
			log.Printf("[INFO] rounds scheduled with cron %q. Press Ctrl+C to stop.", cfg.Schedule.Cron)
			<-ctx.Done()
			sched.Stop()
		}
	default:
		err = sched.Run(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		out.Error("FATAL ERROR: %v", err)
		log.Fatalf("[FATAL] %v", err)
	}
	log.Println("[INFO] OroswapBot stopped")
}
