package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("XDG_DATA_HOME", "/tmp/xdg-data")
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != DriverFile {
		t.Errorf("Storage.Driver = %q, want %q", cfg.Storage.Driver, DriverFile)
	}
	if want := filepath.Join("/tmp/xdg-data", AppName, "store.json"); cfg.Storage.Path != want {
		t.Errorf("Storage.Path = %q, want %q", cfg.Storage.Path, want)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.ReadTimeout != 15*time.Second {
		t.Errorf("Server.ReadTimeout = %v, want 15s", cfg.Server.ReadTimeout)
	}
	if cfg.Storage.Redis.GetAddr() != "localhost:6379" {
		t.Errorf("Redis addr = %q", cfg.Storage.Redis.GetAddr())
	}
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dayplanner.yaml")
	content := strings.Join([]string{
		"storage:",
		"  driver: redis",
		"  redis:",
		"    host: cache.local",
		"profile:",
		"  name: Jaya Raut",
		"",
	}, "\n")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("DAYPLANNER_PORT", "9191")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.Driver != DriverRedis {
		t.Errorf("Storage.Driver = %q, want redis", cfg.Storage.Driver)
	}
	if cfg.Storage.Redis.Host != "cache.local" {
		t.Errorf("Redis.Host = %q", cfg.Storage.Redis.Host)
	}
	if cfg.Profile.Name != "Jaya Raut" {
		t.Errorf("Profile.Name = %q", cfg.Profile.Name)
	}
	if cfg.Server.Port != 9191 {
		t.Errorf("Server.Port = %d, want 9191 from env", cfg.Server.Port)
	}
}

func TestLogFormatFollowsEnvironment(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		format      string
		want        string
	}{
		{name: "development default", want: "console"},
		{name: "production", environment: "production", want: "json"},
		{name: "explicit format wins", environment: "production", format: "console", want: "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("XDG_CONFIG_HOME", t.TempDir())
			t.Setenv("DAYPLANNER_ENVIRONMENT", tt.environment)
			t.Setenv("LOG_FORMAT", tt.format)

			cfg, err := Load("")
			if err != nil {
				t.Fatalf("Load() error: %v", err)
			}
			if cfg.Logger.Format != tt.want {
				t.Errorf("Logger.Format = %q, want %q", cfg.Logger.Format, tt.want)
			}
		})
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing explicit config file")
	}
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Server:   ServerConfig{Port: 8080},
			Storage:  StorageConfig{Driver: DriverMemory},
			Logger:   LoggerConfig{Output: "stderr"},
			Security: SecurityConfig{RateLimitRequests: 10, RateLimitWindow: time.Minute},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "sqlite" }, wantErr: true},
		{name: "file without path", mutate: func(c *Config) { c.Storage.Driver = DriverFile }, wantErr: true},
		{name: "redis without host", mutate: func(c *Config) { c.Storage.Driver = DriverRedis }, wantErr: true},
		{name: "bad port", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: true},
		{name: "file log without name", mutate: func(c *Config) { c.Logger.Output = "file" }, wantErr: true},
		{name: "zero rate limit", mutate: func(c *Config) { c.Security.RateLimitRequests = 0 }, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
