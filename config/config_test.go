package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoad_FromYAML(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", `
name: budget-client
environment: production
api:
  base_url: https://api.example.com
  timeout: 10s
logging:
  level: warn
cache:
  stale_after: 45s
token_file: /tmp/tokens.json
`)

	cfg, err := Load(WithConfigFile(cfgFile), WithEnvFile(filepath.Join(dir, "no-env")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Name != "budget-client" {
		t.Errorf("Name = %q, want budget-client", cfg.Name)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q, want production", cfg.Environment)
	}
	if cfg.Debug {
		t.Error("Debug should be off in production")
	}
	if cfg.API.BaseURL != "https://api.example.com" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("API.Timeout = %v, want 10s", cfg.API.Timeout)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("Logging.Level = %q, want warn", cfg.Logging.Level)
	}
	if cfg.Cache.StaleAfter != 45*time.Second {
		t.Errorf("Cache.StaleAfter = %v, want 45s", cfg.Cache.StaleAfter)
	}
	if cfg.TokenFile != "/tmp/tokens.json" {
		t.Errorf("TokenFile = %q", cfg.TokenFile)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", `
environment: staging
api:
  base_url: https://file.example.com
`)

	t.Setenv("API_BASE_URL", "https://env.example.com")

	cfg, err := Load(WithConfigFile(cfgFile), WithEnvFile(filepath.Join(dir, "no-env")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.API.BaseURL != "https://env.example.com" {
		t.Errorf("API.BaseURL = %q, want env value", cfg.API.BaseURL)
	}
}

func TestLoad_DotEnvFile(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", `
environment: staging
api:
  base_url: https://file.example.com
`)
	envFile := writeFile(t, dir, ".env", "LOGGING_LEVEL=error\n")

	cfg, err := Load(WithConfigFile(cfgFile), WithEnvFile(envFile))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Logging.Level != "error" {
		t.Errorf("Logging.Level = %q, want error", cfg.Logging.Level)
	}
}

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", `
api:
  base_url: https://api.example.com
`)

	cfg, err := Load(WithConfigFile(cfgFile), WithEnvFile(filepath.Join(dir, "no-env")))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "clientkit" {
		t.Errorf("Name = %q, want clientkit", cfg.Name)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if !cfg.Debug {
		t.Error("Debug should be on in development")
	}
	if cfg.API.Timeout <= 0 {
		t.Error("API.Timeout should default to a positive value")
	}
	if cfg.TokenFile == "" {
		t.Error("TokenFile should default to a path under the home directory")
	}
}

func TestLoad_InvalidEnvironment(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", `
environment: testing
api:
  base_url: https://api.example.com
`)

	if _, err := Load(WithConfigFile(cfgFile), WithEnvFile(filepath.Join(dir, "no-env"))); err == nil {
		t.Fatal("Load() expected error for invalid environment")
	}
}

func TestLoad_MissingBaseURL(t *testing.T) {
	dir := t.TempDir()
	cfgFile := writeFile(t, dir, "config.yml", "environment: staging\n")

	if _, err := Load(WithConfigFile(cfgFile), WithEnvFile(filepath.Join(dir, "no-env"))); err == nil {
		t.Fatal("Load() expected error for missing api.base_url")
	}
}

func TestEnvKeyVariants(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"LOGGING_LEVEL", "logging.level"},
		{"API_BASE_URL", "api.base_url"},
		{"TOKEN_FILE", "token.file"},
		{"DEBUG", "debug"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			variants := envKeyVariants(tt.key)
			found := false
			for _, v := range variants {
				if v == tt.want {
					found = true
					break
				}
			}
			if !found {
				t.Errorf("envKeyVariants(%s) = %v, missing %s", tt.key, variants, tt.want)
			}
		})
	}
}
