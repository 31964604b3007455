package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	str2duration "github.com/xhit/go-str2duration/v2"
	"gopkg.in/yaml.v3"

	"CryptoPulse/internal/model"
)

const dateLayout = "2006-01-02"

// Config holds all application configuration.
type Config struct {
	Run struct {
		Ticker       string `yaml:"ticker"`
		Start        string `yaml:"start"`
		End          string `yaml:"end"`
		Lookback     string `yaml:"lookback"`
		Interval     string `yaml:"interval"`
		SignalFilter string `yaml:"signal_filter"`
		Rule         string `yaml:"rule"`
		Thresholds   string `yaml:"thresholds"`
		// RSILow and RSIHigh override the preset when present, zero included.
		RSILow  *float64 `yaml:"rsi_low"`
		RSIHigh *float64 `yaml:"rsi_high"`
		Pairing string   `yaml:"pairing"`
	} `yaml:"run"`
	Indicators model.IndicatorConfig `yaml:"indicators"`
	DataSource struct {
		Provider      string `yaml:"provider"`
		CSVPath       string `yaml:"csv_path"`
		BinanceKey    string `yaml:"binance_api_key"`
		BinanceSecret string `yaml:"binance_secret_key"`
	} `yaml:"data_source"`
	Cache struct {
		SQLitePath string `yaml:"sqlite_path"`
		MaxAge     string `yaml:"max_age"`
	} `yaml:"cache"`
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Watch struct {
		Cron        string   `yaml:"cron"`
		Tickers     []string `yaml:"tickers"`
		StateFile   string   `yaml:"state_file"`
		MetricsAddr string   `yaml:"metrics_addr"`
	} `yaml:"watch"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		File   string `yaml:"file"`
	} `yaml:"log"`
	Tracing struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"tracing"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment variable overrides.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		cfg.DataSource.BinanceKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		cfg.DataSource.BinanceSecret = v
	}
	if v := os.Getenv("PULSE_PROVIDER"); v != "" {
		cfg.DataSource.Provider = v
	}
	if v := os.Getenv("PULSE_TICKER"); v != "" {
		cfg.Run.Ticker = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("CRON_WATCH"); v != "" {
		cfg.Watch.Cron = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Cache.SQLitePath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_TRACING_ENABLED"); v != "" {
		cfg.Tracing.Enabled = v == "true"
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Run.Ticker == "" {
		c.Run.Ticker = "BTC-USD"
	}
	if c.Run.Lookback == "" {
		c.Run.Lookback = "365d"
	}
	if c.Run.Interval == "" {
		c.Run.Interval = string(model.IntervalDaily)
	}
	if c.Run.SignalFilter == "" {
		c.Run.SignalFilter = string(model.FilterAll)
	}
	if c.Run.Rule == "" {
		c.Run.Rule = string(model.RuleThresholdCrossover)
	}
	if c.Run.Thresholds == "" {
		c.Run.Thresholds = "strict"
	}
	if c.Run.Pairing == "" {
		c.Run.Pairing = string(model.PairFIFO)
	}
	c.Indicators = c.Indicators.WithDefaults()
	if c.DataSource.Provider == "" {
		c.DataSource.Provider = "yahoo"
	}
	if c.Cache.MaxAge == "" {
		c.Cache.MaxAge = "15m"
	}
	if c.Watch.Cron == "" {
		c.Watch.Cron = "0 */15 * * * *"
	}
	if len(c.Watch.Tickers) == 0 {
		c.Watch.Tickers = []string{c.Run.Ticker}
	}
	if c.Watch.StateFile == "" {
		c.Watch.StateFile = "data/alert_state.json"
	}
	if c.Watch.MetricsAddr == "" {
		c.Watch.MetricsAddr = ":9108"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks the run section. Telegram settings are checked by ValidateWatch.
func (c *Config) Validate() error {
	if _, err := model.LookupInstrument(c.Run.Ticker); err != nil {
		return err
	}
	for _, t := range c.Watch.Tickers {
		if _, err := model.LookupInstrument(t); err != nil {
			return fmt.Errorf("watch.tickers: %w", err)
		}
	}
	if _, err := c.RunConfig(time.Now()); err != nil {
		return err
	}
	if _, err := c.CacheMaxAge(); err != nil {
		return err
	}
	return nil
}

// ValidateWatch checks the fields watch mode needs on top of Validate.
func (c *Config) ValidateWatch() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("%w: telegram.bot_token is required", model.ErrInvalidConfig)
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("%w: telegram.chat_id is required", model.ErrInvalidConfig)
	}
	return nil
}

// CacheMaxAge parses cache.max_age.
func (c *Config) CacheMaxAge() (time.Duration, error) {
	d, err := str2duration.ParseDuration(c.Cache.MaxAge)
	if err != nil {
		return 0, fmt.Errorf("%w: cache.max_age: %v", model.ErrInvalidConfig, err)
	}
	return d, nil
}

// RunConfig resolves the run section into an explicit model.RunConfig.
// Without an explicit start the range is [end - lookback, end]; end defaults to now.
func (c *Config) RunConfig(now time.Time) (model.RunConfig, error) {
	rc := model.RunConfig{Ticker: c.Run.Ticker, Indicators: c.Indicators.WithDefaults()}
	var err error

	if rc.Interval, err = model.ParseInterval(c.Run.Interval); err != nil {
		return rc, err
	}
	if rc.SignalFilter, err = model.ParseSignalFilter(c.Run.SignalFilter); err != nil {
		return rc, err
	}
	if rc.Rule, err = model.ParseRuleChoice(c.Run.Rule); err != nil {
		return rc, err
	}
	if rc.Pairing, err = model.ParsePairingPolicy(c.Run.Pairing); err != nil {
		return rc, err
	}
	if rc.Thresholds, err = c.thresholds(); err != nil {
		return rc, err
	}

	rc.End = now.UTC()
	if c.Run.End != "" {
		if rc.End, err = parseDate(c.Run.End); err != nil {
			return rc, fmt.Errorf("%w: run.end: %v", model.ErrInvalidConfig, err)
		}
	}
	if c.Run.Start != "" {
		if rc.Start, err = parseDate(c.Run.Start); err != nil {
			return rc, fmt.Errorf("%w: run.start: %v", model.ErrInvalidConfig, err)
		}
	} else {
		lookback, err := str2duration.ParseDuration(c.Run.Lookback)
		if err != nil {
			return rc, fmt.Errorf("%w: run.lookback: %v", model.ErrInvalidConfig, err)
		}
		rc.Start = rc.End.Add(-lookback)
	}
	if !rc.Start.Before(rc.End) {
		return rc, fmt.Errorf("%w: run.start must be before run.end", model.ErrInvalidConfig)
	}
	return rc, nil
}

func (c *Config) thresholds() (model.Thresholds, error) {
	th, err := model.ThresholdPreset(c.Run.Thresholds)
	if err != nil {
		return th, err
	}
	if c.Run.RSILow != nil {
		th.RSILow = *c.Run.RSILow
	}
	if c.Run.RSIHigh != nil {
		th.RSIHigh = *c.Run.RSIHigh
	}
	return th, th.Validate()
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), nil
	}
	return time.Parse(dateLayout, s)
}
