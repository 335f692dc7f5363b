package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"OroswapBot/internal/chain"
	"OroswapBot/internal/model"
)

// Wallet modes.
const (
	ModeSingle = "single"
	ModeMulti  = "multi"
	ModeAuto   = "auto"
)

// Config holds all application configuration.
type Config struct {
	Chain struct {
		RPC              string        `yaml:"rpc"`
		ChainID          string        `yaml:"chain_id"`
		AddressPrefix    string        `yaml:"address_prefix"`
		HDPath           string        `yaml:"hd_path"`
		GasPrice         string        `yaml:"gas_price"`
		GasAdjustment    float64       `yaml:"gas_adjustment"`
		ExplorerTxURL    string        `yaml:"explorer_tx_url"`
		PollInterval     time.Duration `yaml:"poll_interval"`
		BroadcastTimeout time.Duration `yaml:"broadcast_timeout"`
	} `yaml:"chain"`
	Contract string `yaml:"contract"`
	LPToken  string `yaml:"lp_token"`
	Assets   struct {
		Primary   model.Asset `yaml:"primary"`
		Secondary model.Asset `yaml:"secondary"`
	} `yaml:"assets"`
	DefaultDecimals int `yaml:"default_decimals"`
	Swap            struct {
		Enabled         bool        `yaml:"enabled"`
		CountPerLoop    int         `yaml:"count_per_loop"`
		Slippage        float64     `yaml:"slippage"`
		InvertBelief    bool        `yaml:"invert_belief_price"`
		AmountPrimary   model.Range `yaml:"amount_primary"`
		AmountSecondary model.Range `yaml:"amount_secondary"`
	} `yaml:"swap"`
	Pools struct {
		Enabled           bool    `yaml:"enabled"`
		WithdrawEnabled   bool    `yaml:"withdraw_enabled"`
		AmountPrimary     float64 `yaml:"amount_primary"`
		AmountSecondary   float64 `yaml:"amount_secondary"`
		SlippageTolerance string  `yaml:"slippage_tolerance"`
	} `yaml:"pools"`
	Delay struct {
		BetweenTransactions int `yaml:"between_transactions"`
		BetweenLoops        int `yaml:"between_loops"`
	} `yaml:"delay_in_seconds"`
	Points struct {
		BaseURL string `yaml:"base_url"`
		Origin  string `yaml:"origin"`
	} `yaml:"points"`
	Wallets struct {
		Mode      string `yaml:"mode"`
		EnvPrefix string `yaml:"env_prefix"`
	} `yaml:"wallets"`
	Schedule struct {
		Cron string `yaml:"cron"`
	} `yaml:"schedule"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Metrics struct {
		ListenAddr string `yaml:"listen_addr"`
	} `yaml:"metrics"`
	Log struct {
		Color string `yaml:"color"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Default returns the configuration used when a key is absent from the file and the environment.
func Default() *Config {
	cfg := &Config{}
	cfg.Chain.RPC = "https://public-zigchain-testnet-rpc.numia.xyz/"
	cfg.Chain.AddressPrefix = "zig"
	cfg.Chain.HDPath = "m/44'/118'/0'/0/0"
	cfg.Chain.GasPrice = chain.DefaultGasPrice
	cfg.Chain.GasAdjustment = chain.DefaultGasAdjustment
	cfg.Chain.ExplorerTxURL = "https://zigscan.org/tx/"
	cfg.Chain.PollInterval = chain.DefaultPollInterval
	cfg.Chain.BroadcastTimeout = chain.DefaultBroadcastTimeout

	cfg.Contract = "zig1vhr7hx0yeww0uwe2zlp6mst5g6aup85engzntlyv52rkmxsykvdskfv0tu"
	cfg.LPToken = "coin.zig1vhr7hx0yeww0uwe2zlp6mst5g6aup85engzntlyv52rkmxsykvdskfv0tu.oroswaplptoken"
	cfg.Assets.Primary = model.Asset{Denom: "uzig", Symbol: "ZIG", Decimals: 6}
	cfg.Assets.Secondary = model.Asset{Denom: "coin.zig10rfjm85jmzfhravjwpq3hcdz8ngxg7lxd0drkr.uoro", Symbol: "ORO", Decimals: 6}
	cfg.DefaultDecimals = 6

	cfg.Swap.Enabled = true
	cfg.Swap.CountPerLoop = 1
	cfg.Swap.Slippage = 3
	cfg.Swap.AmountPrimary = model.Range{Min: 0.001, Max: 0.003}
	cfg.Swap.AmountSecondary = model.Range{Min: 0.002, Max: 0.005}

	cfg.Pools.Enabled = true
	cfg.Pools.AmountPrimary = 0.001
	cfg.Pools.AmountSecondary = 0.002
	cfg.Pools.SlippageTolerance = "0.5"

	cfg.Delay.BetweenTransactions = 5
	cfg.Delay.BetweenLoops = 10

	cfg.Points.BaseURL = "https://testnet-api.oroswap.org"
	cfg.Points.Origin = "https://testnet.oroswap.org"

	cfg.Wallets.Mode = ModeAuto
	cfg.Wallets.EnvPrefix = "PRIVATE_KEY"
	cfg.Log.Color = "auto"
	return cfg
}

// Load reads config from a YAML file on top of the defaults, then applies environment variable overrides.
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	strs := map[string]*string{
		"RPC_URL":            &c.Chain.RPC,
		"CHAIN_ID":           &c.Chain.ChainID,
		"CONTRACT_ADDRESS":   &c.Contract,
		"LP_TOKEN_DENOM":     &c.LPToken,
		"CRON_SCHEDULE":      &c.Schedule.Cron,
		"WALLET_MODE":        &c.Wallets.Mode,
		"HTTPS_PROXY":        &c.Proxy,
		"TELEGRAM_BOT_TOKEN": &c.Telegram.BotToken,
		"TELEGRAM_CHAT_ID":   &c.Telegram.ChatID,
		"METRICS_ADDR":       &c.Metrics.ListenAddr,
		"LOG_COLOR":          &c.Log.Color,
	}
	for key, dst := range strs {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}

	ints := map[string]*int{
		"SWAP_COUNT":          &c.Swap.CountPerLoop,
		"DELAY_BETWEEN_TX":    &c.Delay.BetweenTransactions,
		"DELAY_BETWEEN_LOOPS": &c.Delay.BetweenLoops,
	}
	for key, dst := range ints {
		v := strings.TrimSpace(getenv(key))
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: invalid integer %q", key, v)
		}
		*dst = n
	}
	return nil
}

// Validate checks that all fields are usable.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Chain.RPC)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("chain.rpc must be an http(s) URL, got %q", c.Chain.RPC)
	}
	if c.Chain.AddressPrefix == "" {
		return fmt.Errorf("chain.address_prefix is required")
	}
	if _, err := chain.ParseGasPrice(c.Chain.GasPrice); err != nil {
		return fmt.Errorf("chain.gas_price: %w", err)
	}
	if c.Chain.GasAdjustment <= 0 {
		return fmt.Errorf("chain.gas_adjustment must be positive")
	}
	if c.Chain.PollInterval <= 0 || c.Chain.BroadcastTimeout < c.Chain.PollInterval {
		return fmt.Errorf("chain.poll_interval must be positive and not exceed chain.broadcast_timeout")
	}
	if c.Contract == "" {
		return fmt.Errorf("contract is required")
	}
	if c.LPToken == "" {
		return fmt.Errorf("lp_token is required")
	}
	for name, a := range map[string]model.Asset{"assets.primary": c.Assets.Primary, "assets.secondary": c.Assets.Secondary} {
		if a.Denom == "" {
			return fmt.Errorf("%s.denom is required", name)
		}
		if a.Decimals < 0 || a.Decimals > 18 {
			return fmt.Errorf("%s.decimals must be between 0 and 18", name)
		}
	}
	if c.Assets.Primary.Denom == c.Assets.Secondary.Denom {
		return fmt.Errorf("assets.primary and assets.secondary must differ")
	}
	if c.DefaultDecimals < 0 || c.DefaultDecimals > 18 {
		return fmt.Errorf("default_decimals must be between 0 and 18")
	}

	if c.Swap.CountPerLoop < 0 {
		return fmt.Errorf("swap.count_per_loop must not be negative")
	}
	if c.Swap.Slippage < 0 || c.Swap.Slippage >= 100 {
		return fmt.Errorf("swap.slippage must be a percentage in [0, 100)")
	}
	for name, r := range map[string]model.Range{"swap.amount_primary": c.Swap.AmountPrimary, "swap.amount_secondary": c.Swap.AmountSecondary} {
		if r.Min < 0 || r.Max < r.Min {
			return fmt.Errorf("%s needs 0 <= min <= max", name)
		}
	}
	if c.Pools.AmountPrimary < 0 || c.Pools.AmountSecondary < 0 {
		return fmt.Errorf("pools amounts must not be negative")
	}
	if d, err := decimal.NewFromString(c.Pools.SlippageTolerance); err != nil || d.IsNegative() {
		return fmt.Errorf("pools.slippage_tolerance must be a non-negative decimal, got %q", c.Pools.SlippageTolerance)
	}
	if c.Delay.BetweenTransactions < 0 || c.Delay.BetweenLoops < 0 {
		return fmt.Errorf("delay_in_seconds values must not be negative")
	}

	switch c.Wallets.Mode {
	case ModeSingle, ModeMulti, ModeAuto:
	default:
		return fmt.Errorf("wallets.mode must be single, multi or auto, got %q", c.Wallets.Mode)
	}
	if c.Wallets.EnvPrefix == "" {
		return fmt.Errorf("wallets.env_prefix is required")
	}
	if c.Schedule.Cron != "" {
		if _, err := cronParser.Parse(c.Schedule.Cron); err != nil {
			return fmt.Errorf("schedule.cron: %w", err)
		}
	}
	if (c.Telegram.BotToken == "") != (c.Telegram.ChatID == "") {
		return fmt.Errorf("telegram.bot_token and telegram.chat_id must be set together")
	}
	switch strings.ToLower(c.Log.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("log.color must be auto, always or never, got %q", c.Log.Color)
	}
	return nil
}

// cronParser matches cron.WithSeconds used by the scheduler.
var cronParser = cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// BetweenTx returns the delay after every transaction attempt.
func (c *Config) BetweenTx() time.Duration {
	return time.Duration(c.Delay.BetweenTransactions) * time.Second
}

// BetweenLoops returns the rest after every wallet cycle.
func (c *Config) BetweenLoops() time.Duration {
	return time.Duration(c.Delay.BetweenLoops) * time.Second
}

// TelegramEnabled reports whether round summaries go to Telegram.
func (c *Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != ""
}
