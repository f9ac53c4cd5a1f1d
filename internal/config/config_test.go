package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/signet/internal/config"
)

func requiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SIGNET_DB_NAME", "signet")
	t.Setenv("SIGNET_DB_USER", "signet")
	t.Setenv("SIGNET_PROVIDER_BASE_URL", "https://sign.example.com/api/")
}

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestFinalizeDefaults(t *testing.T) {
	requiredEnv(t)

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.LogLevel != "info" || cfg.LogFormat != "text" {
		t.Errorf("log = %s/%s, want info/text", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout = %v", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr = %s", cfg.Server.Addr())
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path = %s", cfg.API.BasePath)
	}
	if cfg.API.MaxBodySizeBytes() != 1<<20 {
		t.Errorf("max body = %d, want %d", cfg.API.MaxBodySizeBytes(), 1<<20)
	}
	if cfg.Provider.BaseURL != "https://sign.example.com/api" {
		t.Errorf("provider base url = %s", cfg.Provider.BaseURL)
	}
	if cfg.Provider.AuthScheme != "Bearer" || cfg.Provider.TimeoutDuration() != 30*time.Second {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Provider.RefreshConcurrency != 4 {
		t.Errorf("refresh concurrency = %d", cfg.Provider.RefreshConcurrency)
	}
	if cfg.Metrics.Path != "/metrics" {
		t.Errorf("metrics path = %s", cfg.Metrics.Path)
	}
}

func TestFinalizeEnvOverrides(t *testing.T) {
	requiredEnv(t)
	t.Setenv("SIGNET_LOG_LEVEL", "debug")
	t.Setenv("SIGNET_LOG_FORMAT", "json")
	t.Setenv("SIGNET_SERVER_PORT", "9090")
	t.Setenv("SIGNET_API_MAX_BODY_SIZE", "256KB")
	t.Setenv("SIGNET_PROVIDER_API_TOKEN", "fallback")
	t.Setenv("SIGNET_PROVIDER_AUTH_SCHEME", "Token")
	t.Setenv("SIGNET_PROVIDER_REFRESH_CONCURRENCY", "8")

	cfg := &config.Config{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}

	if cfg.LogLevel != "debug" || cfg.LogFormat != "json" {
		t.Errorf("log = %s/%s", cfg.LogLevel, cfg.LogFormat)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("port = %d", cfg.Server.Port)
	}
	if cfg.API.MaxBodySizeBytes() != 256<<10 {
		t.Errorf("max body = %d", cfg.API.MaxBodySizeBytes())
	}
	if cfg.Provider.DefaultToken != "fallback" || cfg.Provider.AuthScheme != "Token" {
		t.Errorf("provider = %+v", cfg.Provider)
	}
	if cfg.Provider.RefreshConcurrency != 8 {
		t.Errorf("refresh concurrency = %d", cfg.Provider.RefreshConcurrency)
	}
}

func TestFinalizeInvalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"log level", map[string]string{"SIGNET_LOG_LEVEL": "trace"}, "log_level"},
		{"log format", map[string]string{"SIGNET_LOG_FORMAT": "xml"}, "log_format"},
		{"shutdown timeout", map[string]string{"SIGNET_SHUTDOWN_TIMEOUT": "soon"}, "shutdown_timeout"},
		{"port", map[string]string{"SIGNET_SERVER_PORT": "70000"}, "server"},
		{"body size", map[string]string{"SIGNET_API_MAX_BODY_SIZE": "lots"}, "max_body_size"},
		{"base path", map[string]string{"SIGNET_API_BASE_PATH": "api"}, "base_path"},
		{"provider url", map[string]string{"SIGNET_PROVIDER_BASE_URL": "ftp://sign.example.com"}, "provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			requiredEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			err := (&config.Config{}).Finalize()
			if err == nil {
				t.Fatal("Finalize() error = nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want mention of %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFileOverlayAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir, config.BaseConfigFile, `
log_level = "warn"

[server]
port = 8181

[database]
name = "signet"
user = "signet"

[provider]
base_url = "https://sign.example.com"
org_id = "org-1"
`)
	writeFile(t, dir, "config.test.toml", `
[provider]
org_id = "org-overlay"
`)

	t.Setenv("SIGNET_ENV", "test")
	t.Setenv("SIGNET_SERVER_PORT", "8282")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Env() != "test" {
		t.Errorf("Env() = %s", cfg.Env())
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("log level = %s, want warn", cfg.LogLevel)
	}
	if cfg.Provider.OrgID != "org-overlay" {
		t.Errorf("org id = %s, want overlay value", cfg.Provider.OrgID)
	}
	if cfg.Server.Port != 8282 {
		t.Errorf("port = %d, want env value", cfg.Server.Port)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	writeFile(t, dir, config.DotEnvFile, strings.Join([]string{
		"SIGNET_DB_NAME=signet",
		"SIGNET_DB_USER=signet",
		"SIGNET_PROVIDER_BASE_URL=https://dotenv.example.com",
		"SIGNET_PROVIDER_ORG_ID=from-dotenv",
	}, "\n"))

	// Registering with t.Setenv restores the originals after godotenv sets them.
	t.Setenv("SIGNET_DB_NAME", "")
	t.Setenv("SIGNET_DB_USER", "")
	t.Setenv("SIGNET_PROVIDER_BASE_URL", "")
	t.Setenv("SIGNET_PROVIDER_ORG_ID", "from-process")
	os.Unsetenv("SIGNET_DB_NAME")
	os.Unsetenv("SIGNET_DB_USER")
	os.Unsetenv("SIGNET_PROVIDER_BASE_URL")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Provider.BaseURL != "https://dotenv.example.com" {
		t.Errorf("base url = %s, want .env value", cfg.Provider.BaseURL)
	}
	if cfg.Provider.OrgID != "from-process" {
		t.Errorf("org id = %s, process environment should win", cfg.Provider.OrgID)
	}
}

func TestLoadWithoutFiles(t *testing.T) {
	t.Chdir(t.TempDir())
	requiredEnv(t)

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Version == "" {
		t.Error("version default not applied")
	}
}

func TestLoadDatabase(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("SIGNET_DB_NAME", "signet")
	t.Setenv("SIGNET_DB_USER", "migrator")
	t.Setenv("SIGNET_DB_HOST", "db.internal")

	db, err := config.LoadDatabase()
	if err != nil {
		t.Fatalf("LoadDatabase() error: %v", err)
	}
	if db.Host != "db.internal" || db.User != "migrator" || db.Port != 5432 {
		t.Errorf("database = %+v", db)
	}
}
