package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "shellgate.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

const validConfig = `
server:
  listen_addr: "0.0.0.0:9090"
origin:
  url: "http://app:3000"
shell:
  canonical_host: "app.example.com"
  document_url: "http://app:3000/index.html"
redis:
  addr: "redis:6379"
  db: 2
preload:
  max_concurrent: 4
log:
  level: "debug"
`

func TestLoad(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:9090" {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Origin.URL != "http://app:3000" {
		t.Errorf("Origin.URL = %q", cfg.Origin.URL)
	}
	if cfg.Shell.CanonicalHost != "app.example.com" {
		t.Errorf("CanonicalHost = %q", cfg.Shell.CanonicalHost)
	}
	if cfg.Redis.DB != 2 {
		t.Errorf("Redis.DB = %d", cfg.Redis.DB)
	}
	if cfg.Preload.MaxConcurrent != 4 {
		t.Errorf("Preload.MaxConcurrent = %d", cfg.Preload.MaxConcurrent)
	}
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
origin:
  url: "http://app:3000"
shell:
  document_url: "http://app:3000/index.html"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q, want default %q", cfg.Server.ListenAddr, DefaultListenAddr)
	}
	if cfg.Server.ShutdownTimeout != 30*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Redis.Addr != DefaultRedisAddr {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Connectivity.FailureThreshold != 3 {
		t.Errorf("FailureThreshold = %d, want 3", cfg.Connectivity.FailureThreshold)
	}
	if cfg.Preload.MaxConcurrent != 8 {
		t.Errorf("Preload.MaxConcurrent = %d, want 8", cfg.Preload.MaxConcurrent)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/shellgate.yaml"); err == nil {
		t.Error("Load should fail for a missing file")
	}
}

func TestLoad_InvalidYAML(t *testing.T) {
	path := writeConfigFile(t, "server: [not: valid")
	if _, err := Load(path); err == nil {
		t.Error("Load should fail for malformed YAML")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	path := writeConfigFile(t, validConfig)

	t.Setenv("SHELLGATE_SERVER_LISTEN_ADDR", "0.0.0.0:7070")
	t.Setenv("SHELLGATE_REDIS_DB", "5")
	t.Setenv("SHELLGATE_LOG_PRETTY", "true")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.ListenAddr != "0.0.0.0:7070" {
		t.Errorf("ListenAddr = %q, env override should win", cfg.Server.ListenAddr)
	}
	if cfg.Redis.DB != 5 {
		t.Errorf("Redis.DB = %d, env override should win", cfg.Redis.DB)
	}
	if !cfg.Log.Pretty {
		t.Error("Log.Pretty env override should win")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "missing origin url",
			mutate:  func(c *Config) { c.Origin.URL = "" },
			wantErr: "origin.url",
		},
		{
			name:    "relative origin url",
			mutate:  func(c *Config) { c.Origin.URL = "/app" },
			wantErr: "origin.url",
		},
		{
			name:    "missing document url",
			mutate:  func(c *Config) { c.Shell.DocumentURL = "" },
			wantErr: "shell.document_url",
		},
		{
			name:    "negative failure threshold",
			mutate:  func(c *Config) { c.Connectivity.FailureThreshold = -1 },
			wantErr: "failure_threshold",
		},
		{
			name:    "negative preload budget",
			mutate:  func(c *Config) { c.Preload.MaxConcurrent = -1 },
			wantErr: "max_concurrent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Origin.URL = "http://app:3000"
			cfg.Shell.DocumentURL = "http://app:3000/index.html"
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate failed: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Server.ListenAddr != DefaultListenAddr {
		t.Errorf("ListenAddr = %q", cfg.Server.ListenAddr)
	}
	if cfg.Log.Level != DefaultLogLevel {
		t.Errorf("Log.Level = %q", cfg.Log.Level)
	}
}
