package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/MrEthical07/campusride"
)

// EnvPrefix prefixes every variable read by LoadConfig.
const EnvPrefix = "CAMPUSRIDE_"

// Config is the process configuration: the HTTP server, its backends and
// the engine settings.
type Config struct {
	HTTP      HTTPConfig  `envPrefix:"HTTP_"`
	Log       LogConfig   `envPrefix:"LOG_"`
	Store     StoreConfig `envPrefix:"STORE_"`
	Redis     RedisConfig `envPrefix:"REDIS_"`
	SMTP      SMTPConfig  `envPrefix:"SMTP_"`
	Catalogue string      `env:"CATALOGUE_PATH"`
	Engine    campusride.Config
}

// HTTPConfig controls the listener.
type HTTPConfig struct {
	Addr              string        `env:"ADDR"                envDefault:":8080"`
	ReadHeaderTimeout time.Duration `env:"READ_HEADER_TIMEOUT" envDefault:"5s"`
	ReadTimeout       time.Duration `env:"READ_TIMEOUT"        envDefault:"15s"`
	WriteTimeout      time.Duration `env:"WRITE_TIMEOUT"       envDefault:"30s"`
	IdleTimeout       time.Duration `env:"IDLE_TIMEOUT"        envDefault:"60s"`
	ShutdownTimeout   time.Duration `env:"SHUTDOWN_TIMEOUT"    envDefault:"10s"`
	MaxBodyBytes      int64         `env:"MAX_BODY_BYTES"      envDefault:"16384"`
	TrustProxy        bool          `env:"TRUST_PROXY"`
	MetricsEndpoint   bool          `env:"METRICS_ENDPOINT"    envDefault:"true"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string `env:"LEVEL"  envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"json"`
	Audit  bool   `env:"AUDIT"  envDefault:"true"`
}

// StoreConfig selects the credential store backend.
type StoreConfig struct {
	Driver string `env:"DRIVER" envDefault:"json"`
	Path   string `env:"PATH"   envDefault:"data/users.json"`
}

// RedisConfig enables shared ephemeral state when Addr is set.
type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB"`
}

// SMTPConfig enables real mail delivery when Host is set. Otherwise codes
// are written to the log.
type SMTPConfig struct {
	Host               string        `env:"HOST"`
	Port               int           `env:"PORT"                 envDefault:"587"`
	Username           string        `env:"USERNAME"`
	Password           string        `env:"PASSWORD"`
	From               string        `env:"FROM"`
	Timeout            time.Duration `env:"TIMEOUT"              envDefault:"15s"`
	InsecureSkipVerify bool          `env:"INSECURE_SKIP_VERIFY"`
}

const (
	StoreJSON   = "json"
	StoreSQLite = "sqlite"
	StoreMemory = "memory"
)

// LoadConfig reads the process configuration from the environment. Engine
// settings share the same prefix, e.g. CAMPUSRIDE_SESSION_SECRET.
func LoadConfig() (Config, error) {
	return LoadConfigWith(env.Options{Prefix: EnvPrefix})
}

// LoadConfigWith is LoadConfig with explicit parser options, used by tests
// to supply an environment map.
func LoadConfigWith(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}

	engineCfg := campusride.DefaultConfig()
	if err := env.ParseWithOptions(&engineCfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse engine env: %w", err)
	}
	cfg.Engine = engineCfg

	cfg.Store.Driver = strings.ToLower(strings.TrimSpace(cfg.Store.Driver))
	return cfg, nil
}

// Validate checks process-level settings; engine settings are validated
// by the engine builder.
func (c Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("HTTP Addr must be set")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return errors.New("HTTP ShutdownTimeout must be > 0")
	}
	switch c.Store.Driver {
	case StoreJSON, StoreSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("Store Path must be set for driver %q", c.Store.Driver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.Store.Driver)
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return errors.New("SMTP From must be set when SMTP Host is set")
	}
	return nil
}
