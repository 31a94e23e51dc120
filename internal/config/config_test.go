package config

import (
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("REFERENCE_DRIVER")
	os.Unsetenv("ERSD_DATABASE")
	os.Unsetenv("PORT")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("expected default port 8080, got %s", cfg.Port)
	}
	if cfg.ReferenceDriver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %s", cfg.ReferenceDriver)
	}
	if cfg.ERSDDatabase != "seed-scripts/ersd.db" {
		t.Errorf("expected default eRSD path, got %s", cfg.ERSDDatabase)
	}
	if cfg.RCKMSDatabase != "seed-scripts/rckms.db" {
		t.Errorf("expected default RCKMS path, got %s", cfg.RCKMSDatabase)
	}
	if cfg.DBMaxConns != 10 {
		t.Errorf("expected default max conns 10, got %d", cfg.DBMaxConns)
	}
	if cfg.ShutdownTimeout != 10*time.Second || cfg.RequestTimeout != 30*time.Second {
		t.Errorf("unexpected timeouts %v / %v", cfg.ShutdownTimeout, cfg.RequestTimeout)
	}
	if cfg.BodyLimit != "20M" {
		t.Errorf("expected default body limit 20M, got %s", cfg.BodyLimit)
	}
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ERSD_DATABASE", "/data/ersd.db")
	t.Setenv("CORS_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("expected port 9090, got %s", cfg.Port)
	}
	if cfg.ERSDDatabase != "/data/ersd.db" {
		t.Errorf("expected /data/ersd.db, got %s", cfg.ERSDDatabase)
	}
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "http://b.example" {
		t.Errorf("expected two trimmed origins, got %v", cfg.CORSOrigins)
	}
}

func TestLoad_RejectsUnknownDriver(t *testing.T) {
	t.Setenv("REFERENCE_DRIVER", "mysql")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestValidate_PostgresRequiresURLs(t *testing.T) {
	c := validConfig()
	c.ReferenceDriver = "postgres"
	if err := c.Validate(); err == nil {
		t.Fatal("expected error for file paths with postgres driver")
	}

	c.ERSDDatabase = "postgres://tcr@localhost:5432/ersd"
	c.RCKMSDatabase = "postgres://tcr@localhost:5432/rckms"
	if err := c.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_MinConnsAboveMax(t *testing.T) {
	c := validConfig()
	c.DBMinConns = 20
	if err := c.Validate(); err == nil {
		t.Fatal("expected error when min conns exceed max conns")
	}
}

func TestConfig_IsDev(t *testing.T) {
	c := &Config{Env: "development"}
	if !c.IsDev() {
		t.Error("expected IsDev() to return true for development")
	}

	c.Env = "production"
	if c.IsDev() {
		t.Error("expected IsDev() to return false for production")
	}
}

func TestConfig_Level(t *testing.T) {
	c := &Config{LogLevel: "debug"}
	if c.Level() != zerolog.DebugLevel {
		t.Errorf("expected debug level, got %v", c.Level())
	}
	c.LogLevel = "bogus"
	if c.Level() != zerolog.InfoLevel {
		t.Errorf("expected info fallback, got %v", c.Level())
	}
}

func validConfig() *Config {
	return &Config{
		Port:            "8080",
		Env:             "test",
		ReferenceDriver: "sqlite",
		ERSDDatabase:    "ersd.db",
		RCKMSDatabase:   "rckms.db",
		DBMaxConns:      10,
		DBMinConns:      1,
	}
}
