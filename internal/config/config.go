package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

type Config struct {
	Port            string        `mapstructure:"PORT" validate:"required,numeric"`
	Env             string        `mapstructure:"ENV" validate:"oneof=development test production"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	ReferenceDriver string        `mapstructure:"REFERENCE_DRIVER" validate:"oneof=sqlite postgres"`
	ERSDDatabase    string        `mapstructure:"ERSD_DATABASE" validate:"required"`
	RCKMSDatabase   string        `mapstructure:"RCKMS_DATABASE" validate:"required"`
	DBMaxConns      int32         `mapstructure:"DB_MAX_CONNS" validate:"gte=1"`
	DBMinConns      int32         `mapstructure:"DB_MIN_CONNS" validate:"gte=0"`
	CORSOrigins     []string      `mapstructure:"CORS_ORIGINS"`
	BodyLimit       string        `mapstructure:"BODY_LIMIT"`
	ShutdownTimeout time.Duration `mapstructure:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `mapstructure:"REQUEST_TIMEOUT"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "production")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("REFERENCE_DRIVER", "sqlite")
	v.SetDefault("ERSD_DATABASE", "seed-scripts/ersd.db")
	v.SetDefault("RCKMS_DATABASE", "seed-scripts/rckms.db")
	v.SetDefault("DB_MAX_CONNS", 10)
	v.SetDefault("DB_MIN_CONNS", 1)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("BODY_LIMIT", "20M")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("REQUEST_TIMEOUT", "30s")

	for _, key := range []string{
		"PORT", "ENV", "LOG_LEVEL", "REFERENCE_DRIVER", "ERSD_DATABASE", "RCKMS_DATABASE",
		"DB_MAX_CONNS", "DB_MIN_CONNS", "CORS_ORIGINS", "BODY_LIMIT", "SHUTDOWN_TIMEOUT", "REQUEST_TIMEOUT",
	} {
		v.BindEnv(key)
	}

	// .env is optional
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	cfg.CORSOrigins = splitList(v.GetString("CORS_ORIGINS"))
	cfg.ReferenceDriver = strings.ToLower(strings.TrimSpace(cfg.ReferenceDriver))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// Validate checks field constraints and cross-field rules.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS (%d) must not exceed DB_MAX_CONNS (%d)", c.DBMinConns, c.DBMaxConns)
	}
	if c.ReferenceDriver == "postgres" {
		for name, loc := range map[string]string{"ERSD_DATABASE": c.ERSDDatabase, "RCKMS_DATABASE": c.RCKMSDatabase} {
			if !strings.HasPrefix(loc, "postgres://") && !strings.HasPrefix(loc, "postgresql://") {
				return fmt.Errorf("%s must be a postgres:// URL when REFERENCE_DRIVER is postgres", name)
			}
		}
	}
	return nil
}

// Level returns the configured zerolog level, defaulting to info.
func (c *Config) Level() zerolog.Level {
	lvl, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil || c.LogLevel == "" {
		return zerolog.InfoLevel
	}
	return lvl
}
