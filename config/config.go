package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

type Config struct {
	// Short-link creation service the client talks to
	Service ServiceConfig `mapstructure:"service"`

	// Distribution channels
	Share     ShareConfig     `mapstructure:"share"`
	QR        QRConfig        `mapstructure:"qr"`
	Clipboard ClipboardConfig `mapstructure:"clipboard"`

	// Logging
	Log LogConfig `mapstructure:"log"`

	// Prometheus
	Prometheus PrometheusConfig `mapstructure:"prometheus"`

	// Reference service
	Server ServerConfig `mapstructure:"server"`

	// PostgreSQL
	Postgres PostgresConfig `mapstructure:"postgres"`

	// Redis
	Redis RedisConfig `mapstructure:"redis"`

	// NATS
	NATS NATSConfig `mapstructure:"nats"`
}

type ServiceConfig struct {
	BaseURL string `mapstructure:"base_url"`
	Path    string `mapstructure:"path"`
	// Timeout bounds one shorten call; zero waits for the service indefinitely.
	Timeout time.Duration `mapstructure:"timeout"`
}

type ShareConfig struct {
	Title   string `mapstructure:"title"`
	Text    string `mapstructure:"text"`
	Subject string `mapstructure:"subject"`
	Enabled bool   `mapstructure:"enabled"`
}

type QRConfig struct {
	OutputDir     string `mapstructure:"output_dir"`
	ViewportWidth int    `mapstructure:"viewport_width"`
}

type ClipboardConfig struct {
	CopiedReset time.Duration `mapstructure:"copied_reset"`
}

type LogConfig struct {
	Level       string `mapstructure:"level"`
	Encoding    string `mapstructure:"encoding"`
	Development bool   `mapstructure:"development"`
}

type PrometheusConfig struct {
	Enabled bool `mapstructure:"enabled"`
	Port    int  `mapstructure:"port"`
}

type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	PublicBaseURL string        `mapstructure:"public_base_url"`
	CodeLength    int           `mapstructure:"code_length"`
	CacheTTL      time.Duration `mapstructure:"cache_ttl"`
	RateLimit     int           `mapstructure:"rate_limit"`
	RateWindow    time.Duration `mapstructure:"rate_window"`
	// CORSOrigins limits browser callers; empty allows any origin.
	CORSOrigins   []string      `mapstructure:"cors_origins"`
}

type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Port            int    `mapstructure:"port"`
	SSLMode         string `mapstructure:"sslmode"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MaxConnLifetime string `mapstructure:"max_conn_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type NATSConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
}

// Defaults returns a configuration that works against a local reference service.
func Defaults() Config {
	return Config{
		Service: ServiceConfig{
			BaseURL: "http://localhost:8080",
			Path:    "/api/shorten",
		},
		Share: ShareConfig{
			Title:   "Shortened URL",
			Text:    "Check out this shortened link!",
			Subject: "snipr.share",
		},
		QR: QRConfig{
			ViewportWidth: 1024,
		},
		Clipboard: ClipboardConfig{
			CopiedReset: 2 * time.Second,
		},
		Log: LogConfig{
			Level:       "info",
			Encoding:    "console",
			Development: true,
		},
		Prometheus: PrometheusConfig{
			Port: 9090,
		},
		Server: ServerConfig{
			Addr:          ":8080",
			PublicBaseURL: "http://localhost:8080",
			CodeLength:    7,
			CacheTTL:      time.Hour,
			RateLimit:     100,
			RateWindow:    time.Minute,
		},
		Postgres: PostgresConfig{
			Host:     "localhost",
			Port:     5432,
			User:     "snipr",
			Database: "snipr",
			SSLMode:  "disable",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: 6379,
		},
		NATS: NATSConfig{
			Host: "localhost",
			Port: 4222,
		},
	}
}

// Load reads defaults, config.yaml, .env, the environment and, when fs is
// non-nil, command-line flags, in increasing order of precedence.
func Load(fs *pflag.FlagSet) (*Config, error) {
	// Load local .env for development (ignored when missing).
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	v := viper.New()
	setDefaults(v, Defaults())

	// Search for config/config.yaml (plus root for overrides).
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	// Allow environment variables to override YAML entries.
	v.SetEnvPrefix("SNIPR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	bindEnvVars(v)

	if fs != nil {
		if err := bindFlags(v, fs); err != nil {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// Flag names understood by Load. Flags that are not registered on the set are skipped.
var flagKeys = map[string]string{
	"service-url":    "service.base_url",
	"timeout":        "service.timeout",
	"qr-dir":         "qr.output_dir",
	"viewport":       "qr.viewport_width",
	"share-nats":     "share.enabled",
	"log-level":      "log.level",
	"metrics":        "prometheus.enabled",
	"metrics-port":   "prometheus.port",
	"addr":           "server.addr",
	"public-url":     "server.public_base_url",
	"copied-timeout": "clipboard.copied_reset",
}

func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("service.base_url", d.Service.BaseURL)
	v.SetDefault("service.path", d.Service.Path)
	v.SetDefault("service.timeout", d.Service.Timeout)

	v.SetDefault("share.title", d.Share.Title)
	v.SetDefault("share.text", d.Share.Text)
	v.SetDefault("share.subject", d.Share.Subject)
	v.SetDefault("share.enabled", d.Share.Enabled)

	v.SetDefault("qr.output_dir", d.QR.OutputDir)
	v.SetDefault("qr.viewport_width", d.QR.ViewportWidth)
	v.SetDefault("clipboard.copied_reset", d.Clipboard.CopiedReset)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.encoding", d.Log.Encoding)
	v.SetDefault("log.development", d.Log.Development)

	v.SetDefault("prometheus.enabled", d.Prometheus.Enabled)
	v.SetDefault("prometheus.port", d.Prometheus.Port)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.public_base_url", d.Server.PublicBaseURL)
	v.SetDefault("server.code_length", d.Server.CodeLength)
	v.SetDefault("server.cache_ttl", d.Server.CacheTTL)
	v.SetDefault("server.rate_limit", d.Server.RateLimit)
	v.SetDefault("server.rate_window", d.Server.RateWindow)
	v.SetDefault("server.cors_origins", d.Server.CORSOrigins)

	v.SetDefault("postgres.host", d.Postgres.Host)
	v.SetDefault("postgres.port", d.Postgres.Port)
	v.SetDefault("postgres.user", d.Postgres.User)
	v.SetDefault("postgres.password", d.Postgres.Password)
	v.SetDefault("postgres.database", d.Postgres.Database)
	v.SetDefault("postgres.sslmode", d.Postgres.SSLMode)

	v.SetDefault("redis.host", d.Redis.Host)
	v.SetDefault("redis.port", d.Redis.Port)
	v.SetDefault("redis.password", d.Redis.Password)
	v.SetDefault("redis.db", d.Redis.DB)

	v.SetDefault("nats.host", d.NATS.Host)
	v.SetDefault("nats.port", d.NATS.Port)
	v.SetDefault("nats.user", d.NATS.User)
	v.SetDefault("nats.password", d.NATS.Password)
}

func bindEnvVars(v *viper.Viper) {
	// Client
	v.BindEnv("service.base_url", "SNIPR_API_URL")
	v.BindEnv("qr.output_dir", "SNIPR_DOWNLOAD_DIR")
	v.BindEnv("log.level", "LOG_LEVEL")

	// PostgreSQL
	v.BindEnv("postgres.host", "PG_HOST")
	v.BindEnv("postgres.user", "PG_USER")
	v.BindEnv("postgres.password", "PG_PASSWORD")
	v.BindEnv("postgres.database", "PG_DB")
	v.BindEnv("postgres.port", "PG_PORT")
	v.BindEnv("postgres.sslmode", "PG_SSLMODE")

	// Redis
	v.BindEnv("redis.host", "REDIS_HOST")
	v.BindEnv("redis.port", "REDIS_PORT")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("redis.db", "REDIS_DB")

	// NATS
	v.BindEnv("nats.host", "NATS_HOST")
	v.BindEnv("nats.port", "NATS_PORT")
	v.BindEnv("nats.user", "NATS_USER")
	v.BindEnv("nats.password", "NATS_PASSWORD")

	// Prometheus
	v.BindEnv("prometheus.port", "PROM_PORT")
}
