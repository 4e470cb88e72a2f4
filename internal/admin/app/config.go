package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is read from the environment. Access and refresh tokens carry
// separate secret/algorithm pairs: leaking one never compromises the other
// token family.
type Config struct {
	Issuer string `env:"AUTH_ISSUER" envDefault:"userdesk"`

	AccessSecret    string        `env:"AUTH_ACCESS_SECRET,required"`
	AccessAlgorithm string        `env:"AUTH_ACCESS_ALGORITHM" envDefault:"HS256"`
	AccessTTL       time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"15m"`

	RefreshSecret    string        `env:"AUTH_REFRESH_SECRET,required"`
	RefreshAlgorithm string        `env:"AUTH_REFRESH_ALGORITHM" envDefault:"HS256"`
	RefreshTTL       time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"168h"`

	// Initial admin seeded create-if-absent at startup.
	FirstAdminUsername string `env:"AUTH_FIRST_ADMIN_USERNAME" envDefault:"admin"`
	FirstAdminPassword string `env:"AUTH_FIRST_ADMIN_PASSWORD,required"`

	DatabaseFile string `env:"AUTH_DATABASE_FILE" envDefault:"userdesk.db"`

	Env       string `env:"ENV" envDefault:"dev"`
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`
	Port      int    `env:"PORT" envDefault:"8080"`

	ShutdownGracePeriod time.Duration `env:"SHUTDOWN_GRACE_PERIOD" envDefault:"10s"`
}

// LoadConfig parses the environment and applies the cross-field checks env
// tags cannot express.
func LoadConfig() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	if cfg.AccessSecret == cfg.RefreshSecret {
		return Config{}, errors.New("AUTH_ACCESS_SECRET and AUTH_REFRESH_SECRET must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return Config{}, errors.New("token TTLs must be positive")
	}

	return cfg, nil
}
