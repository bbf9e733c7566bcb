// internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// ExecutorMode selects the transaction submission strategy.
type ExecutorMode string

const (
	ExecutorDefault ExecutorMode = "default"
	ExecutorWarp    ExecutorMode = "warp"
	ExecutorBundle  ExecutorMode = "bundle"
)

// Config holds all process settings. Loaded once at startup, immutable afterwards.
type Config struct {
	RPCEndpointsRaw string `mapstructure:"rpc_endpoints"`
	WSEndpointsRaw  string `mapstructure:"ws_endpoints"`
	CommitmentRaw   string `mapstructure:"commitment"`

	RPCEndpoints []string           `mapstructure:"-"`
	WSEndpoints  []string           `mapstructure:"-"`
	Commitment   rpc.CommitmentType `mapstructure:"-"`

	// Base58 private key or a path to a JSON 64-byte key file.
	WalletSecret string `mapstructure:"wallet_secret"`

	QuoteMintRaw   string           `mapstructure:"quote_mint"`
	QuoteAmountRaw string           `mapstructure:"quote_amount"`
	QuoteMint      solana.PublicKey `mapstructure:"-"`
	QuoteAmount    decimal.Decimal  `mapstructure:"-"`

	MinPoolSizeRaw string          `mapstructure:"min_pool_size"`
	MaxPoolSizeRaw string          `mapstructure:"max_pool_size"`
	MinPoolSize    decimal.Decimal `mapstructure:"-"`
	MaxPoolSize    decimal.Decimal `mapstructure:"-"`

	CheckRenounced   bool `mapstructure:"check_renounced"`
	CheckFreezable   bool `mapstructure:"check_freezable"`
	CheckBurned      bool `mapstructure:"check_burned"`
	CheckFromPumpFun bool `mapstructure:"check_from_pumpfun"`

	UseSnipeList  bool   `mapstructure:"use_snipe_list"`
	UseAvoidList  bool   `mapstructure:"use_avoid_list"`
	SnipeListPath string `mapstructure:"snipe_list_path"`
	AvoidListPath string `mapstructure:"avoid_list_path"`

	AutoSell        bool `mapstructure:"auto_sell"`
	AutoBuyDelayMS  int  `mapstructure:"auto_buy_delay"`
	AutoSellDelayMS int  `mapstructure:"auto_sell_delay"`
	MaxBuyRetries   int  `mapstructure:"max_buy_retries"`
	MaxSellRetries  int  `mapstructure:"max_sell_retries"`

	AutoBuyDelay  time.Duration `mapstructure:"-"`
	AutoSellDelay time.Duration `mapstructure:"-"`

	// Compute budget, applied by the default executor only.
	UnitLimit uint32 `mapstructure:"unit_limit"`
	UnitPrice uint64 `mapstructure:"unit_price"`

	TakeProfit   float64 `mapstructure:"take_profit"`
	StopLoss     float64 `mapstructure:"stop_loss"`
	BuySlippage  float64 `mapstructure:"buy_slippage"`
	SellSlippage float64 `mapstructure:"sell_slippage"`

	PriceCheckIntervalMS  int `mapstructure:"price_check_interval"`
	PriceCheckDurationMS  int `mapstructure:"price_check_duration"`
	FilterCheckIntervalMS int `mapstructure:"filter_check_interval"`
	FilterCheckDurationMS int `mapstructure:"filter_check_duration"`
	ConsecutiveMatchCount int `mapstructure:"consecutive_match_count"`

	PriceCheckInterval  time.Duration `mapstructure:"-"`
	PriceCheckDuration  time.Duration `mapstructure:"-"`
	FilterCheckInterval time.Duration `mapstructure:"-"`
	FilterCheckDuration time.Duration `mapstructure:"-"`

	OneTokenAtATime bool `mapstructure:"one_token_at_a_time"`

	ExecutorModeRaw string       `mapstructure:"executor_mode"`
	ExecutorMode    ExecutorMode `mapstructure:"-"`

	WarpEndpoint string          `mapstructure:"warp_endpoint"`
	WarpFeeRaw   string          `mapstructure:"warp_fee"`
	WarpFee      decimal.Decimal `mapstructure:"-"`

	BundleEndpoint string `mapstructure:"bundle_endpoint"`
	BundleTip      uint64 `mapstructure:"bundle_tip"`

	CacheNewMarkets bool `mapstructure:"cache_new_markets"`
	Devnet          bool `mapstructure:"devnet"`

	DebugLogging bool   `mapstructure:"debug_logging"`
	LogFile      string `mapstructure:"log_file"`
}

// Load reads configuration from SNIPER_* environment variables and, when path is
// non-empty, a JSON config file. Environment wins over the file.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SNIPER")
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config error: %w", err)
		}
	}

	var cfg Config
	// Environment values arrive as strings; decode them weakly.
	weakDecode := func(dc *mapstructure.DecoderConfig) { dc.WeaklyTypedInput = true }
	if err := v.Unmarshal(&cfg, weakDecode); err != nil {
		return nil, fmt.Errorf("unmarshal error: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("rpc_endpoints", "")
	v.SetDefault("ws_endpoints", "")
	v.SetDefault("commitment", "confirmed")
	v.SetDefault("wallet_secret", "")
	v.SetDefault("quote_mint", solana.WrappedSol.String())
	v.SetDefault("quote_amount", "0.01")
	v.SetDefault("min_pool_size", "0")
	v.SetDefault("max_pool_size", "0")
	v.SetDefault("check_renounced", false)
	v.SetDefault("check_freezable", false)
	v.SetDefault("check_burned", false)
	v.SetDefault("check_from_pumpfun", false)
	v.SetDefault("use_snipe_list", false)
	v.SetDefault("use_avoid_list", false)
	v.SetDefault("snipe_list_path", "configs/snipe-list.txt")
	v.SetDefault("avoid_list_path", "configs/avoid-list.txt")
	v.SetDefault("auto_sell", true)
	v.SetDefault("auto_buy_delay", 0)
	v.SetDefault("auto_sell_delay", 0)
	v.SetDefault("max_buy_retries", 10)
	v.SetDefault("max_sell_retries", 10)
	v.SetDefault("unit_limit", 101337)
	v.SetDefault("unit_price", 421197)
	v.SetDefault("take_profit", 40)
	v.SetDefault("stop_loss", 20)
	v.SetDefault("buy_slippage", 10)
	v.SetDefault("sell_slippage", 10)
	v.SetDefault("price_check_interval", 2000)
	v.SetDefault("price_check_duration", 600000)
	v.SetDefault("filter_check_interval", 2000)
	v.SetDefault("filter_check_duration", 60000)
	v.SetDefault("consecutive_match_count", 3)
	v.SetDefault("one_token_at_a_time", true)
	v.SetDefault("executor_mode", "default")
	v.SetDefault("warp_endpoint", "https://tx.warp.id/transaction/send")
	v.SetDefault("warp_fee", "0.0006")
	v.SetDefault("bundle_endpoint", "https://mainnet.block-engine.jito.wtf/api/v1/bundles")
	v.SetDefault("bundle_tip", 100000)
	v.SetDefault("cache_new_markets", false)
	v.SetDefault("devnet", false)
	v.SetDefault("debug_logging", false)
	v.SetDefault("log_file", "logs/sniper.log")
}

// resolve converts raw string fields into their typed counterparts.
func (c *Config) resolve() error {
	c.RPCEndpoints = splitEndpoints(c.RPCEndpointsRaw)
	c.WSEndpoints = splitEndpoints(c.WSEndpointsRaw)

	switch strings.ToLower(c.CommitmentRaw) {
	case "processed":
		c.Commitment = rpc.CommitmentProcessed
	case "confirmed":
		c.Commitment = rpc.CommitmentConfirmed
	case "finalized":
		c.Commitment = rpc.CommitmentFinalized
	default:
		return fmt.Errorf("invalid commitment %q: want processed, confirmed or finalized", c.CommitmentRaw)
	}

	quoteMint, err := solana.PublicKeyFromBase58(c.QuoteMintRaw)
	if err != nil {
		return fmt.Errorf("invalid quote_mint %q: %w", c.QuoteMintRaw, err)
	}
	c.QuoteMint = quoteMint

	if c.QuoteAmount, err = decimal.NewFromString(c.QuoteAmountRaw); err != nil {
		return fmt.Errorf("invalid quote_amount %q: %w", c.QuoteAmountRaw, err)
	}
	if c.MinPoolSize, err = decimal.NewFromString(c.MinPoolSizeRaw); err != nil {
		return fmt.Errorf("invalid min_pool_size %q: %w", c.MinPoolSizeRaw, err)
	}
	if c.MaxPoolSize, err = decimal.NewFromString(c.MaxPoolSizeRaw); err != nil {
		return fmt.Errorf("invalid max_pool_size %q: %w", c.MaxPoolSizeRaw, err)
	}
	if c.WarpFee, err = decimal.NewFromString(c.WarpFeeRaw); err != nil {
		return fmt.Errorf("invalid warp_fee %q: %w", c.WarpFeeRaw, err)
	}

	switch ExecutorMode(strings.ToLower(c.ExecutorModeRaw)) {
	case ExecutorDefault, ExecutorWarp, ExecutorBundle:
		c.ExecutorMode = ExecutorMode(strings.ToLower(c.ExecutorModeRaw))
	default:
		return fmt.Errorf("invalid executor_mode %q: want default, warp or bundle", c.ExecutorModeRaw)
	}

	c.AutoBuyDelay = time.Duration(c.AutoBuyDelayMS) * time.Millisecond
	c.AutoSellDelay = time.Duration(c.AutoSellDelayMS) * time.Millisecond
	c.PriceCheckInterval = time.Duration(c.PriceCheckIntervalMS) * time.Millisecond
	c.PriceCheckDuration = time.Duration(c.PriceCheckDurationMS) * time.Millisecond
	c.FilterCheckInterval = time.Duration(c.FilterCheckIntervalMS) * time.Millisecond
	c.FilterCheckDuration = time.Duration(c.FilterCheckDurationMS) * time.Millisecond

	return nil
}

func (c *Config) validate() error {
	if len(c.RPCEndpoints) == 0 {
		return fmt.Errorf("rpc_endpoints must contain at least one endpoint")
	}
	if len(c.RPCEndpoints) != len(c.WSEndpoints) {
		return fmt.Errorf("endpoint count mismatch: %d rpc vs %d ws", len(c.RPCEndpoints), len(c.WSEndpoints))
	}
	if c.WalletSecret == "" {
		return fmt.Errorf("wallet_secret is required")
	}
	if !c.QuoteAmount.IsPositive() {
		return fmt.Errorf("quote_amount must be positive, got %s", c.QuoteAmount)
	}
	if c.MaxBuyRetries < 0 || c.MaxSellRetries < 0 {
		return fmt.Errorf("retry counts must not be negative")
	}
	if c.MinPoolSize.IsNegative() || c.MaxPoolSize.IsNegative() {
		return fmt.Errorf("pool size bounds must not be negative")
	}
	return nil
}

// splitEndpoints parses a pipe-delimited endpoint list, dropping empty entries.
func splitEndpoints(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, "|") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
