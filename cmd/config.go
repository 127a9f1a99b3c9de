package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/etnz/tracker"
	"github.com/etnz/tracker/date"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the settings of a valuation.
type Config struct {
	Transactions string       `mapstructure:"transactions" yaml:"transactions"`
	Benchmark    string       `mapstructure:"benchmark" yaml:"benchmark"`
	Start        string       `mapstructure:"start" yaml:"start"`
	End          string       `mapstructure:"end" yaml:"end"`
	Calendar     string       `mapstructure:"calendar" yaml:"calendar"`
	Holidays     []string     `mapstructure:"holidays" yaml:"holidays"`
	Oversell     string       `mapstructure:"oversell" yaml:"oversell"`
	Prices       PricesConfig `mapstructure:"prices" yaml:"prices"`
	Output       OutputConfig `mapstructure:"output" yaml:"output"`
}

// PricesConfig selects where closes come from.
type PricesConfig struct {
	Source   string `mapstructure:"source" yaml:"source"`
	CSV      string `mapstructure:"csv" yaml:"csv"`
	Cache    string `mapstructure:"cache" yaml:"cache"`
	HTTP     string `mapstructure:"http" yaml:"http"`
	Adjusted bool   `mapstructure:"adjusted" yaml:"adjusted"`
}

// OutputConfig lists the files written by a run. Empty paths are skipped.
type OutputConfig struct {
	CSV     string `mapstructure:"csv" yaml:"csv"`
	Series  string `mapstructure:"series" yaml:"series"`
	Prices  string `mapstructure:"prices" yaml:"prices"`
	Charts  string `mapstructure:"charts" yaml:"charts"`
	HTML    string `mapstructure:"html" yaml:"html"`
	Archive string `mapstructure:"archive" yaml:"archive"`
}

// DefaultConfig is the configuration used for missing keys.
func DefaultConfig() *Config {
	return &Config{
		Transactions: "transactions.csv",
		Benchmark:    "SPY",
		Calendar:     "market",
		Oversell:     tracker.OversellFail.String(),
		Prices: PricesConfig{
			Source:   "yahoo",
			Cache:    "ptrack.db",
			Adjusted: true,
		},
		Output: OutputConfig{
			CSV:    "valuations.csv",
			Series: "grouped_metrics.csv",
		},
	}
}

// keys lists every configuration key with its default, for viper to know them all.
func (c *Config) keys() map[string]any {
	return map[string]any{
		"transactions":    c.Transactions,
		"benchmark":       c.Benchmark,
		"start":           c.Start,
		"end":             c.End,
		"calendar":        c.Calendar,
		"holidays":        c.Holidays,
		"oversell":        c.Oversell,
		"prices.source":   c.Prices.Source,
		"prices.csv":      c.Prices.CSV,
		"prices.cache":    c.Prices.Cache,
		"prices.http":     c.Prices.HTTP,
		"prices.adjusted": c.Prices.Adjusted,
		"output.csv":      c.Output.CSV,
		"output.series":   c.Output.Series,
		"output.prices":   c.Output.Prices,
		"output.charts":   c.Output.Charts,
		"output.html":     c.Output.HTML,
		"output.archive":  c.Output.Archive,
	}
}

// LoadConfig reads the configuration file at path, or ptrack.yaml in the
// current directory when path is empty. A missing default file is not an error.
//
// Every key can be overridden by a PTRACK_ environment variable, e.g.
// PTRACK_PRICES_SOURCE for prices.source. A .env file is loaded first.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	for key, value := range DefaultConfig().keys() {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix("PTRACK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("ptrack")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := new(Config)
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}

// Window returns the analysis window. A missing end is today.
func (c *Config) Window() (date.Range, error) {
	if c.Start == "" {
		return date.Range{}, errors.New("missing start date")
	}
	from, err := date.Parse(c.Start)
	if err != nil {
		return date.Range{}, fmt.Errorf("invalid start date: %w", err)
	}
	to := date.Today()
	if c.End != "" {
		if to, err = date.Parse(c.End); err != nil {
			return date.Range{}, fmt.Errorf("invalid end date: %w", err)
		}
	}
	if to.Before(from) {
		return date.Range{}, fmt.Errorf("end %s before start %s", to, from)
	}
	return date.Range{From: from, To: to}, nil
}

// holidays parses the configured holidays.
func (c *Config) holidays() ([]date.Date, error) {
	days := make([]date.Date, 0, len(c.Holidays))
	for _, h := range c.Holidays {
		d, err := date.Parse(h)
		if err != nil {
			return nil, fmt.Errorf("invalid holiday: %w", err)
		}
		days = append(days, d)
	}
	return days, nil
}
