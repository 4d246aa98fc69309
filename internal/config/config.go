// Package config reads process configuration from the environment.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"

	"github.com/zachrip/valpal/internal/lockfile"
)

var (
	ErrEmptyAddr     = errors.New("VALPAL_ADDR must not be empty")
	ErrInvalidDelay  = errors.New("delays must be positive")
	ErrInvalidRetry  = errors.New("VALPAL_PROBE_RETRIES must not be negative")
	ErrEmptyLockfile = errors.New("VALPAL_LOCKFILE must not be empty")
)

type Config struct {
	Addr           string        `env:"VALPAL_ADDR"             envDefault:"127.0.0.1:3000"`
	Lockfile       string        `env:"VALPAL_LOCKFILE"`
	ConfigDir      string        `env:"VALPAL_CONFIG_DIR"       envDefault:"."`
	DatabaseURL    string        `env:"VALPAL_DATABASE_URL"`
	CatalogURL     string        `env:"VALPAL_CATALOG_URL"      envDefault:"https://valorant-api.com"`
	ReconnectDelay time.Duration `env:"VALPAL_RECONNECT_DELAY"  envDefault:"5s"`
	ProbeRetries   int           `env:"VALPAL_PROBE_RETRIES"    envDefault:"5"`
	ProbeDelay     time.Duration `env:"VALPAL_PROBE_DELAY"      envDefault:"2.5s"`
	AutoShuffle    bool          `env:"VALPAL_AUTO_SHUFFLE"     envDefault:"true"`
	AgentDetection bool          `env:"VALPAL_AGENT_DETECTION"  envDefault:"true"`
	LogLevel       string        `env:"VALPAL_LOG_LEVEL"        envDefault:"info"`
	Dev            bool          `env:"VALPAL_DEV"              envDefault:"false"`
	UpdateCheck    bool          `env:"VALPAL_UPDATE_CHECK"     envDefault:"true"`
	VersionURL     string        `env:"VALPAL_VERSION_URL"      envDefault:"https://api.github.com/repos/zachrip/valpal/releases/latest"`
}

// Load reads an optional .env file, then the environment.
func Load(dotenv ...string) (Config, error) {
	// A missing .env is normal.
	_ = godotenv.Load(dotenv...)
	return Parse()
}

func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Lockfile == "" {
		cfg.Lockfile = lockfile.DefaultPath()
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, ErrEmptyAddr)
	}
	if c.Lockfile == "" {
		errs = append(errs, ErrEmptyLockfile)
	}
	if c.ProbeRetries < 0 {
		errs = append(errs, ErrInvalidRetry)
	}
	if c.ReconnectDelay <= 0 || c.ProbeDelay <= 0 {
		errs = append(errs, ErrInvalidDelay)
	}
	return errors.Join(errs...)
}

// Retries maps ProbeRetries onto session.Config.Retries, where zero means
// "use the default".
func (c Config) Retries() int {
	if c.ProbeRetries == 0 {
		return -1
	}
	return c.ProbeRetries
}
