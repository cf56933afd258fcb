// Configuration loader and defaults tests.
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- defaults ---

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 9091, cfg.Server.MetricsPort)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, int64(10<<20), cfg.Server.MaxUploadBytes)

	assert.Equal(t, 10*time.Minute, cfg.Store.TTL)
	assert.Equal(t, time.Minute, cfg.Store.SweepInterval)

	assert.Equal(t, "https://api.pdf.co/v1", cfg.Processor.BaseURL)
	assert.Equal(t, 60*time.Second, cfg.Processor.Timeout)

	assert.Equal(t, "https://api.stripe.com", cfg.Payment.BaseURL)
	assert.Equal(t, "eur", cfg.Payment.Currency)
	assert.Equal(t, int64(199), cfg.Payment.AmountCents)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)

	assert.False(t, cfg.Telemetry.Enabled)
	assert.Equal(t, "diacritfix", cfg.Telemetry.ServiceName)
}

func TestDefaultConfig_Valid(t *testing.T) {
	assert.NoError(t, DefaultConfig().Validate())
}

// --- Loader ---

func TestLoader_LoadDefaults(t *testing.T) {
	// No config file: defaults come back untouched.
	cfg, err := NewLoader().Load()
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 8080, cfg.Server.HTTPPort)
	assert.Equal(t, 10*time.Minute, cfg.Store.TTL)
}

func TestLoader_LoadFromYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
server:
  http_port: 8888
  read_timeout: 60s
  rate_limit_rps: 25
  max_upload_bytes: 1048576

store:
  ttl: 5m
  sweep_interval: 30s

processor:
  api_key: "pdfco-key"
  timeout: 90s

payment:
  secret_key: "sk_test_abc"
  webhook_secret: "whsec_abc"
  site_url: "https://repair.example"
  amount_cents: 299

log:
  level: "debug"
  format: "console"
`
	err := os.WriteFile(configPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := NewLoader().
		WithConfigPath(configPath).
		Load()
	require.NoError(t, err)

	assert.Equal(t, 8888, cfg.Server.HTTPPort)
	assert.Equal(t, 60*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, float64(25), cfg.Server.RateLimitRPS)
	assert.Equal(t, int64(1048576), cfg.Server.MaxUploadBytes)

	assert.Equal(t, 5*time.Minute, cfg.Store.TTL)
	assert.Equal(t, 30*time.Second, cfg.Store.SweepInterval)

	assert.Equal(t, "pdfco-key", cfg.Processor.APIKey)
	assert.Equal(t, 90*time.Second, cfg.Processor.Timeout)

	assert.Equal(t, "sk_test_abc", cfg.Payment.SecretKey)
	assert.Equal(t, "whsec_abc", cfg.Payment.WebhookSecret)
	assert.Equal(t, "https://repair.example", cfg.Payment.SiteURL)
	assert.Equal(t, int64(299), cfg.Payment.AmountCents)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)

	// Untouched sections keep their defaults.
	assert.Equal(t, "https://api.stripe.com", cfg.Payment.BaseURL)
}

func TestLoader_LoadFromEnv(t *testing.T) {
	t.Setenv("DIACRITFIX_SERVER_HTTP_PORT", "9999")
	t.Setenv("DIACRITFIX_STORE_TTL", "3m")
	t.Setenv("DIACRITFIX_PAYMENT_SECRET_KEY", "sk_env")
	t.Setenv("DIACRITFIX_PAYMENT_AMOUNT_CENTS", "499")
	t.Setenv("DIACRITFIX_LOG_LEVEL", "warn")
	t.Setenv("DIACRITFIX_SERVER_CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("DIACRITFIX_TELEMETRY_ENABLED", "true")
	t.Setenv("DIACRITFIX_TELEMETRY_SAMPLE_RATE", "0.5")

	cfg, err := NewLoader().Load()
	require.NoError(t, err)

	assert.Equal(t, 9999, cfg.Server.HTTPPort)
	assert.Equal(t, 3*time.Minute, cfg.Store.TTL)
	assert.Equal(t, "sk_env", cfg.Payment.SecretKey)
	assert.Equal(t, int64(499), cfg.Payment.AmountCents)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.CORSAllowedOrigins)
	assert.True(t, cfg.Telemetry.Enabled)
	assert.Equal(t, 0.5, cfg.Telemetry.SampleRate)
}

func TestLoader_EnvOverridesFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server:\n  http_port: 8888\n"), 0644))

	t.Setenv("DIACRITFIX_SERVER_HTTP_PORT", "7777")

	cfg, err := NewLoader().WithConfigPath(configPath).Load()
	require.NoError(t, err)
	assert.Equal(t, 7777, cfg.Server.HTTPPort)
}

func TestLoader_MissingFileFallsBack(t *testing.T) {
	cfg, err := NewLoader().WithConfigPath("/nonexistent/config.yaml").Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.Server.HTTPPort)
}

func TestLoader_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte("server: [not a map"), 0644))

	_, err := NewLoader().WithConfigPath(configPath).Load()
	require.Error(t, err)
}

func TestLoader_Validator(t *testing.T) {
	_, err := NewLoader().
		WithValidator(func(cfg *Config) error { return cfg.Validate() }).
		Load()
	require.NoError(t, err)

	t.Setenv("DIACRITFIX_SERVER_HTTP_PORT", "-1")
	_, err = NewLoader().
		WithValidator(func(cfg *Config) error { return cfg.Validate() }).
		Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid HTTP port")
}

// --- Validate ---

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"zero ttl", func(c *Config) { c.Store.TTL = 0 }, "ttl must be positive"},
		{"zero sweep", func(c *Config) { c.Store.SweepInterval = 0 }, "sweep_interval must be positive"},
		{"zero amount", func(c *Config) { c.Payment.AmountCents = 0 }, "amount_cents must be positive"},
		{"negative rps", func(c *Config) { c.Server.RateLimitRPS = -1 }, "rate_limit_rps"},
		{"bad port", func(c *Config) { c.Server.HTTPPort = 70000 }, "invalid HTTP port"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
