package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://public-zigchain-testnet-rpc.numia.xyz/", cfg.Chain.RPC)
	assert.Equal(t, "uzig", cfg.Assets.Primary.Denom)
	assert.Equal(t, "ORO", cfg.Assets.Secondary.Symbol)
	assert.True(t, cfg.Swap.Enabled)
	assert.Equal(t, 1, cfg.Swap.CountPerLoop)
	assert.True(t, cfg.Pools.Enabled)
	assert.False(t, cfg.Pools.WithdrawEnabled)
	assert.Equal(t, 5*time.Second, cfg.BetweenTx())
	assert.Equal(t, 10*time.Second, cfg.BetweenLoops())
	assert.Equal(t, 3*time.Second, cfg.Chain.PollInterval)
	assert.Equal(t, ModeAuto, cfg.Wallets.Mode)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
chain:
  poll_interval: 1s
  broadcast_timeout: 20s
swap:
  enabled: false
  count_per_loop: 4
  invert_belief_price: true
  amount_primary:
    max: 0.01
pools:
  withdraw_enabled: true
delay_in_seconds:
  between_loops: 300
schedule:
  cron: "0 */10 * * * *"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.False(t, cfg.Swap.Enabled)
	assert.Equal(t, 4, cfg.Swap.CountPerLoop)
	assert.True(t, cfg.Swap.InvertBelief)
	assert.Equal(t, 0.001, cfg.Swap.AmountPrimary.Min, "unset nested keys keep defaults")
	assert.Equal(t, 0.01, cfg.Swap.AmountPrimary.Max)
	assert.True(t, cfg.Pools.WithdrawEnabled)
	assert.Equal(t, 300*time.Second, cfg.BetweenLoops())
	assert.Equal(t, time.Second, cfg.Chain.PollInterval)
	assert.Equal(t, 20*time.Second, cfg.Chain.BroadcastTimeout)
	assert.Equal(t, "0 */10 * * * *", cfg.Schedule.Cron)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("swap: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("RPC_URL", "https://rpc.example.org")
	t.Setenv("SWAP_COUNT", "7")
	t.Setenv("DELAY_BETWEEN_TX", "2")
	t.Setenv("WALLET_MODE", "multi")
	t.Setenv("TELEGRAM_BOT_TOKEN", "tok")
	t.Setenv("TELEGRAM_CHAT_ID", "42")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "https://rpc.example.org", cfg.Chain.RPC)
	assert.Equal(t, 7, cfg.Swap.CountPerLoop)
	assert.Equal(t, 2*time.Second, cfg.BetweenTx())
	assert.Equal(t, ModeMulti, cfg.Wallets.Mode)
	assert.True(t, cfg.TelegramEnabled())
}

func TestEnvOverrideBadInteger(t *testing.T) {
	t.Setenv("SWAP_COUNT", "many")
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SWAP_COUNT")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad rpc", func(c *Config) { c.Chain.RPC = "ftp://node" }, "chain.rpc"},
		{"bad gas price", func(c *Config) { c.Chain.GasPrice = "cheap" }, "chain.gas_price"},
		{"poll exceeds timeout", func(c *Config) { c.Chain.PollInterval = time.Minute; c.Chain.BroadcastTimeout = time.Second }, "chain.poll_interval"},
		{"no contract", func(c *Config) { c.Contract = "" }, "contract is required"},
		{"same denoms", func(c *Config) { c.Assets.Secondary.Denom = c.Assets.Primary.Denom }, "must differ"},
		{"negative count", func(c *Config) { c.Swap.CountPerLoop = -1 }, "count_per_loop"},
		{"inverted range", func(c *Config) { c.Swap.AmountSecondary.Min = 1 }, "swap.amount_secondary"},
		{"slippage", func(c *Config) { c.Swap.Slippage = 100 }, "swap.slippage"},
		{"tolerance", func(c *Config) { c.Pools.SlippageTolerance = "half" }, "slippage_tolerance"},
		{"mode", func(c *Config) { c.Wallets.Mode = "all" }, "wallets.mode"},
		{"cron", func(c *Config) { c.Schedule.Cron = "*/5 * * * *" }, "schedule.cron"},
		{"telegram half set", func(c *Config) { c.Telegram.BotToken = "x" }, "telegram"},
		{"color", func(c *Config) { c.Log.Color = "rainbow" }, "log.color"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestWalletSecrets(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"PRIVATE_KEY_10=key10",
		"PRIVATE_KEY_2=key2",
		"PRIVATE_KEY_1=  key1  ",
		"PRIVATE_KEY_3=",
		"PRIVATE_KEY_X=ignored",
		"PRIVATE_KEY=single",
	}

	cfg := Default()
	mode, secrets, err := cfg.WalletSecrets(environ)
	require.NoError(t, err)
	assert.Equal(t, ModeMulti, mode)
	require.Len(t, secrets, 3)
	assert.Equal(t, []string{"key1", "key2", "key10"}, []string{secrets[0].Value, secrets[1].Value, secrets[2].Value})
	assert.Equal(t, "PRIVATE_KEY_10", secrets[2].Name)

	cfg.Wallets.Mode = ModeSingle
	mode, secrets, err = cfg.WalletSecrets(environ)
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, mode)
	assert.Equal(t, []Secret{{Name: "PRIVATE_KEY", Value: "single"}}, secrets)
}

func TestWalletSecretsAutoFallsBackToSingle(t *testing.T) {
	cfg := Default()
	mode, secrets, err := cfg.WalletSecrets([]string{"PRIVATE_KEY=abc", "PRIVATE_KEY_1="})
	require.NoError(t, err)
	assert.Equal(t, ModeSingle, mode)
	assert.Len(t, secrets, 1)
}

func TestWalletSecretsMissing(t *testing.T) {
	cfg := Default()
	_, _, err := cfg.WalletSecrets(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PRIVATE_KEY not found")

	cfg.Wallets.Mode = ModeMulti
	mode, secrets, err := cfg.WalletSecrets(nil)
	require.NoError(t, err)
	assert.Equal(t, ModeMulti, mode)
	assert.Empty(t, secrets)
}

func TestWalletSecretsCustomPrefix(t *testing.T) {
	cfg := Default()
	cfg.Wallets.EnvPrefix = "MNEMONIC"
	_, secrets, err := cfg.WalletSecrets([]string{"MNEMONIC_1=a", "PRIVATE_KEY_1=b"})
	require.NoError(t, err)
	assert.Equal(t, []Secret{{Name: "MNEMONIC_1", Value: "a"}}, secrets)
}

func TestWalletSecretsSameIndexOrderedByName(t *testing.T) {
	cfg := Default()
	for _, environ := range [][]string{
		{"PRIVATE_KEY_1=b", "PRIVATE_KEY_01=a", "PRIVATE_KEY_2=c"},
		{"PRIVATE_KEY_2=c", "PRIVATE_KEY_01=a", "PRIVATE_KEY_1=b"},
	} {
		_, secrets, err := cfg.WalletSecrets(environ)
		require.NoError(t, err)
		assert.Equal(t, []Secret{
			{Name: "PRIVATE_KEY_01", Value: "a"},
			{Name: "PRIVATE_KEY_1", Value: "b"},
			{Name: "PRIVATE_KEY_2", Value: "c"},
		}, secrets)
	}
}
