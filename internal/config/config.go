package config

import (
	"net/url"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/appscout/internal/extract"
)

// Config holds the full application configuration.
type Config struct {
	Source  SourceConfig  `yaml:"source" mapstructure:"source"`
	Listing ListingConfig `yaml:"listing" mapstructure:"listing"`
	Fetch   FetchConfig   `yaml:"fetch" mapstructure:"fetch"`
	Layout  LayoutConfig  `yaml:"layout" mapstructure:"layout"`
	Batch   BatchConfig   `yaml:"batch" mapstructure:"batch"`
	Server  ServerConfig  `yaml:"server" mapstructure:"server"`
	Log     LogConfig     `yaml:"log" mapstructure:"log"`
}

// SourceConfig names the origin detail links are resolved against.
type SourceConfig struct {
	BaseURL string `yaml:"base_url" mapstructure:"base_url"`
}

// ListingConfig configures the headless browser that renders search results.
type ListingConfig struct {
	SearchURL     string `yaml:"search_url" mapstructure:"search_url"`
	ScrollPauseMS int    `yaml:"scroll_pause_ms" mapstructure:"scroll_pause_ms"`
	MaxScrolls    int    `yaml:"max_scrolls" mapstructure:"max_scrolls"`
	TimeoutSecs   int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	Headless      bool   `yaml:"headless" mapstructure:"headless"`
}

// ScrollPause returns the pause between scrolls.
func (c ListingConfig) ScrollPause() time.Duration {
	return time.Duration(c.ScrollPauseMS) * time.Millisecond
}

// Timeout returns the overall render timeout.
func (c ListingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// FetchConfig configures detail page requests.
type FetchConfig struct {
	TimeoutSecs int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	UserAgent   string `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyKB   int    `yaml:"max_body_kb" mapstructure:"max_body_kb"`
}

// Timeout returns the per-request timeout.
func (c FetchConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSecs) * time.Second
}

// LayoutConfig holds the class names that locate listing blocks and
// detail-page field groups.
type LayoutConfig struct {
	BlockClass        string `yaml:"block_class" mapstructure:"block_class"`
	AuthorClass       string `yaml:"author_class" mapstructure:"author_class"`
	DescriptionClass  string `yaml:"description_class" mapstructure:"description_class"`
	RatingClass       string `yaml:"rating_class" mapstructure:"rating_class"`
	UpdatedClass      string `yaml:"updated_class" mapstructure:"updated_class"`
	RatingCountSuffix string `yaml:"rating_count_suffix" mapstructure:"rating_count_suffix"`
}

// Detail converts the detail-page locators to an extract.Layout.
func (c LayoutConfig) Detail() extract.Layout {
	return extract.Layout{
		AuthorClass:       c.AuthorClass,
		DescriptionClass:  c.DescriptionClass,
		RatingClass:       c.RatingClass,
		UpdatedClass:      c.UpdatedClass,
		RatingCountSuffix: c.RatingCountSuffix,
	}
}

// BatchConfig configures the extraction worker pool.
type BatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("APPSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	layout := extract.DefaultLayout()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("batch.workers", 8)
	v.SetDefault("source.base_url", "https://play.google.com")
	v.SetDefault("listing.search_url", "https://play.google.com/store/search")
	v.SetDefault("listing.scroll_pause_ms", 1000)
	v.SetDefault("listing.max_scrolls", 200)
	v.SetDefault("listing.timeout_secs", 180)
	v.SetDefault("listing.headless", true)
	v.SetDefault("fetch.timeout_secs", 20)
	v.SetDefault("fetch.user_agent", "")
	v.SetDefault("fetch.max_body_kb", 2048)
	v.SetDefault("layout.block_class", "Q9MA7b")
	v.SetDefault("layout.author_class", layout.AuthorClass)
	v.SetDefault("layout.description_class", layout.DescriptionClass)
	v.SetDefault("layout.rating_class", layout.RatingClass)
	v.SetDefault("layout.updated_class", layout.UpdatedClass)
	v.SetDefault("layout.rating_count_suffix", layout.RatingCountSuffix)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings every command depends on.
func (c *Config) Validate() error {
	if c.Batch.Workers <= 0 {
		return eris.Errorf("config: batch.workers must be positive, got %d", c.Batch.Workers)
	}
	if c.Fetch.TimeoutSecs <= 0 {
		return eris.Errorf("config: fetch.timeout_secs must be positive, got %d", c.Fetch.TimeoutSecs)
	}
	if c.Fetch.MaxBodyKB <= 0 {
		return eris.Errorf("config: fetch.max_body_kb must be positive, got %d", c.Fetch.MaxBodyKB)
	}
	for name, raw := range map[string]string{
		"source.base_url":    c.Source.BaseURL,
		"listing.search_url": c.Listing.SearchURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return eris.Errorf("config: %s must be an absolute URL, got %q", name, raw)
		}
	}
	if c.Layout.BlockClass == "" {
		return eris.New("config: layout.block_class is required")
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config: log.format must be json or console, got %q", c.Log.Format)
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
