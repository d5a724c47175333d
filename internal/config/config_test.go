// AngelaMos | 2026
// config_test.go

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults(t *testing.T) *Config {
	t.Helper()
	k := koanf.New(".")
	require.NoError(t, loadDefaults(k))

	c := &Config{}
	require.NoError(t, k.Unmarshal("", c))
	return c
}

func TestDefaultsAreValid(t *testing.T) {
	c := defaults(t)

	require.NoError(t, validate(c))
	assert.Equal(t, BackendMemory, c.Store.Backend)
	assert.True(t, c.Store.Seed)
	assert.InDelta(t, 20, c.Pricing.CompletionFee, 0.001)
	assert.InDelta(t, 0.1, c.Pricing.CommissionRate, 0.001)
	assert.InDelta(t, 0.15, c.Pricing.PremiumDiscount, 0.001)
	assert.InDelta(t, 500, c.Pricing.CreditLimit(), 0.001)
	assert.False(t, c.Coupons.EnforceLimits)
	assert.Equal(t, 20*time.Second, c.Advisor.Timeout)
	assert.Equal(t, "0.0.0.0:8080", c.Server.Address())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Store.Backend = "mongo" }},
		{"redis without url", func(c *Config) { c.Store.Backend = BackendRedis }},
		{"postgres without url", func(c *Config) { c.Store.Backend = BackendPostgres }},
		{"commission above one", func(c *Config) { c.Pricing.CommissionRate = 1.5 }},
		{"negative discount", func(c *Config) { c.Pricing.PremiumDiscount = -0.1 }},
		{"negative fee", func(c *Config) { c.Pricing.CompletionFee = -1 }},
		{"wildcard with credentials", func(c *Config) { c.CORS.AllowedOrigins = []string{"*"} }},
		{"insecure otel in production", func(c *Config) {
			c.App.Environment = "production"
			c.Otel.Enabled = true
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := defaults(t)
			tt.mutate(c)
			assert.Error(t, validate(c))
		})
	}

	c := defaults(t)
	c.Store.Backend = BackendRedis
	c.Redis.URL = "redis://localhost:6379/0"
	assert.NoError(t, validate(c))
}

func TestCreditLimitFallback(t *testing.T) {
	assert.InDelta(t, 500, PricingConfig{}.CreditLimit(), 0.001)
	assert.InDelta(t, 750, PricingConfig{DefaultCreditLimit: 750}.CreditLimit(), 0.001)
}

func TestLoadLayersFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
app:
  environment: test
pricing:
  completion_fee: 25
coupons:
  enforce_limits: true
`), 0o600))

	t.Setenv("COMMISSION_RATE", "0.2")
	t.Setenv("GEMINI_API_KEY", "from-env")

	c, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", c.App.Environment)
	assert.InDelta(t, 25, c.Pricing.CompletionFee, 0.001)
	assert.InDelta(t, 0.2, c.Pricing.CommissionRate, 0.001)
	assert.True(t, c.Coupons.EnforceLimits)
	assert.Equal(t, "from-env", c.Advisor.APIKey)
	assert.Same(t, c, Get())
}
