package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Roster     RosterConfig     `yaml:"roster" mapstructure:"roster"`
	Geo        GeoConfig        `yaml:"geo" mapstructure:"geo"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Batch      BatchConfig      `yaml:"batch" mapstructure:"batch"`
	Salesforce SalesforceConfig `yaml:"salesforce" mapstructure:"salesforce"`
	Notion     NotionConfig     `yaml:"notion" mapstructure:"notion"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port        int      `yaml:"port" mapstructure:"port"`
	CORSOrigins []string `yaml:"cors_origins" mapstructure:"cors_origins"`
}

// RosterConfig selects the reference data source. Empty or "default" uses
// the embedded roster; otherwise a local path or an http(s)/ftp URL.
type RosterConfig struct {
	Source        string  `yaml:"source" mapstructure:"source"`
	TimeoutSecs   int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries    int     `yaml:"max_retries" mapstructure:"max_retries"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// GeoConfig holds IP geolocation client settings.
type GeoConfig struct {
	BaseURL          string  `yaml:"base_url" mapstructure:"base_url"`
	RatePerSecond    float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TimeoutSecs      int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	MaxRetries       int     `yaml:"max_retries" mapstructure:"max_retries"`
	InitialBackoffMs int     `yaml:"initial_backoff_ms" mapstructure:"initial_backoff_ms"`
	MaxBackoffMs     int     `yaml:"max_backoff_ms" mapstructure:"max_backoff_ms"`
}

// StoreConfig configures the history store. Empty DSN means a private
// in-memory database.
type StoreConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// BatchConfig configures batch processing.
type BatchConfig struct {
	MaxConcurrentVisitors int `yaml:"max_concurrent_visitors" mapstructure:"max_concurrent_visitors"`
}

// SalesforceConfig holds Salesforce JWT auth settings.
type SalesforceConfig struct {
	ClientID      string  `yaml:"client_id" mapstructure:"client_id"`
	Username      string  `yaml:"username" mapstructure:"username"`
	KeyPath       string  `yaml:"key_path" mapstructure:"key_path"`
	LoginURL      string  `yaml:"login_url" mapstructure:"login_url"`
	LeadSource    string  `yaml:"lead_source" mapstructure:"lead_source"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// NotionConfig holds Notion API credentials and the lead database ID.
type NotionConfig struct {
	Token         string  `yaml:"token" mapstructure:"token"`
	LeadDB        string  `yaml:"lead_db" mapstructure:"lead_db"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("LEADS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("roster.source", "default")
	v.SetDefault("roster.timeout_secs", 30)
	v.SetDefault("roster.max_retries", 3)
	v.SetDefault("roster.rate_per_second", 5)
	v.SetDefault("geo.base_url", "http://ip-api.com/json")
	v.SetDefault("geo.rate_per_second", 0.75)
	v.SetDefault("geo.timeout_secs", 10)
	v.SetDefault("geo.max_retries", 3)
	v.SetDefault("geo.initial_backoff_ms", 500)
	v.SetDefault("geo.max_backoff_ms", 10000)
	v.SetDefault("store.dsn", "")
	v.SetDefault("batch.max_concurrent_visitors", 4)
	v.SetDefault("salesforce.login_url", "https://login.salesforce.com")
	v.SetDefault("salesforce.lead_source", "Website Visitor")
	v.SetDefault("salesforce.rate_per_second", 5)
	v.SetDefault("notion.rate_per_second", 3)

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

// Validate checks the settings a command needs. Mode is one of "resolve",
// "lookup", "batch", "serve", "salesforce" or "notion".
func (c *Config) Validate(mode string) error {
	var errs []string

	if c.Batch.MaxConcurrentVisitors < 1 || c.Batch.MaxConcurrentVisitors > 50 {
		errs = append(errs, "batch.max_concurrent_visitors must be between 1 and 50")
	}

	switch mode {
	case "resolve":
	case "lookup", "batch":
		errs = append(errs, c.validateGeo()...)
	case "serve":
		errs = append(errs, c.validateGeo()...)
		if c.Server.Port <= 0 {
			errs = append(errs, "server.port must be > 0")
		}
	case "salesforce":
		if c.Salesforce.ClientID == "" {
			errs = append(errs, "salesforce.client_id is required")
		}
		if c.Salesforce.Username == "" {
			errs = append(errs, "salesforce.username is required")
		}
		if c.Salesforce.KeyPath == "" {
			errs = append(errs, "salesforce.key_path is required")
		}
		if c.Salesforce.RatePerSecond <= 0 {
			errs = append(errs, "salesforce.rate_per_second must be > 0")
		}
	case "notion":
		if c.Notion.Token == "" {
			errs = append(errs, "notion.token is required")
		}
		if c.Notion.LeadDB == "" {
			errs = append(errs, "notion.lead_db is required")
		}
		if c.Notion.RatePerSecond <= 0 {
			errs = append(errs, "notion.rate_per_second must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(errs) > 0 {
		return eris.Errorf("config: %s", strings.Join(errs, "; "))
	}
	return nil
}

func (c *Config) validateGeo() []string {
	var errs []string
	if c.Geo.BaseURL == "" {
		errs = append(errs, "geo.base_url is required")
	}
	if c.Geo.RatePerSecond <= 0 {
		errs = append(errs, "geo.rate_per_second must be > 0")
	}
	if c.Geo.MaxRetries < 0 {
		errs = append(errs, "geo.max_retries must be >= 0")
	}
	return errs
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
