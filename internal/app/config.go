package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (MEALDESK_ prefix), flags, or YAML config files.
type Config struct {
	DatabaseURL    string `usage:"PostgreSQL connection URL (MEALDESK_DATABASE_URL or DATABASE_URL)" flag:"database-url"`
	PasswordPepper string `usage:"HMAC pepper for password hashing (MEALDESK_PASSWORD_PEPPER)" flag:"password-pepper"`
	Watchdog       WatchdogConfig
}

// WatchdogConfig controls the background store-connectivity checks.
type WatchdogConfig struct {
	Interval time.Duration `default:"30s" usage:"Store connectivity check interval" flag:"watchdog-interval"`
	Timeout  time.Duration `default:"5s"  usage:"Store connectivity check timeout" flag:"watchdog-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "MEALDESK",
		Files:     []string{"config.yaml", "/etc/mealdesk/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.DatabaseURL == "" {
		return nil, errors.New("database URL is required: set MEALDESK_DATABASE_URL or DATABASE_URL")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables that use
// standard names like DATABASE_URL to the MEALDESK_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.DatabaseURL == "" {
		if v := os.Getenv("DATABASE_URL"); v != "" {
			c.DatabaseURL = v
		}
	}
}
