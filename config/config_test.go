package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/meenmo/rateedge/config"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	c := config.Default()
	if c.Server.Port != 5000 {
		t.Fatalf("default port = %d, want 5000", c.Server.Port)
	}
	if c.Server.Mode != "release" {
		t.Fatalf("default mode = %q, want release", c.Server.Mode)
	}
	if c.Database.Driver != "memory" {
		t.Fatalf("default driver = %q, want memory", c.Database.Driver)
	}
	if c.Redis.TTLSeconds != 300 {
		t.Fatalf("default redis ttl = %d, want 300", c.Redis.TTLSeconds)
	}
	if c.Alerts.File != "database/alerts.json" {
		t.Fatalf("default alerts file = %q", c.Alerts.File)
	}
	if c.Log.Level != "info" || c.Log.Format != "json" || c.Log.MaxAgeDays != 28 {
		t.Fatalf("default log config = %+v", c.Log)
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("default config invalid: %v", err)
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	raw := `
server:
  port: 8088
  mode: debug
database:
  driver: postgres
  dsn: postgres://pricer:pw@localhost/rates?sslmode=disable
redis:
  addr: localhost:6379
  ttl_seconds: 60
log:
  level: debug
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 8088 || c.Server.Mode != "debug" {
		t.Fatalf("server = %+v", c.Server)
	}
	if c.Database.Driver != "postgres" || !strings.Contains(c.Database.DSN, "pricer") {
		t.Fatalf("database = %+v", c.Database)
	}
	if c.Redis.Addr != "localhost:6379" || c.Redis.TTLSeconds != 60 {
		t.Fatalf("redis = %+v", c.Redis)
	}
	// Unset sections still pick up defaults.
	if c.Alerts.File != "database/alerts.json" {
		t.Fatalf("alerts file = %q", c.Alerts.File)
	}
	if c.Log.Level != "debug" || c.Log.Format != "json" {
		t.Fatalf("log = %+v", c.Log)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9100")
	t.Setenv("DATABASE_URL", "postgres://localhost/rates")
	t.Setenv("REDIS_ADDR", "cache:6379")
	t.Setenv("LOG_LEVEL", "warn")

	c, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Server.Port != 9100 {
		t.Fatalf("port = %d, want 9100", c.Server.Port)
	}
	if c.Database.Driver != "postgres" || c.Database.DSN != "postgres://localhost/rates" {
		t.Fatalf("database = %+v", c.Database)
	}
	if c.Redis.Addr != "cache:6379" {
		t.Fatalf("redis addr = %q", c.Redis.Addr)
	}
	if c.Log.Level != "warn" {
		t.Fatalf("log level = %q", c.Log.Level)
	}
}

func TestValidateRejects(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"bad port", func(c *config.Config) { c.Server.Port = 700000 }, "server.port"},
		{"bad mode", func(c *config.Config) { c.Server.Mode = "prod" }, "server.mode"},
		{"bad driver", func(c *config.Config) { c.Database.Driver = "sqlite" }, "database.driver"},
		{"postgres without dsn", func(c *config.Config) { c.Database.Driver = "postgres" }, "database.dsn"},
		{"negative ttl", func(c *config.Config) { c.Redis.TTLSeconds = -1 }, "redis.ttl_seconds"},
		{"bad log format", func(c *config.Config) { c.Log.Format = "xml" }, "log.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			c := config.Default()
			tc.mutate(c)
			err := c.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}
