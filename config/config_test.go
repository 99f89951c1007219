package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "Memory")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.StoreDriver)
	assert.Equal(t, "8080", cfg.AppPort)
	assert.Equal(t, 0.05, cfg.ProvisionRate)
	assert.Equal(t, "eur", cfg.DefaultCurrency)
	assert.Equal(t, 10*time.Minute, cfg.ReconcileAfter)
	assert.Equal(t, 8, cfg.NotificationMaxAttempts)
	assert.False(t, cfg.StripeConfigured())
	assert.False(t, cfg.IsProduction())
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("STRIPE_SECRET_KEY", "sk_test_123")
	t.Setenv("DEFAULT_CURRENCY", "EUR")
	t.Setenv("RECONCILE_AFTER", "30m")
	t.Setenv("AUTO_EXCHANGE_CONTACTS", "true")
	t.Setenv("ENV", "production")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.StripeConfigured())
	assert.Equal(t, "eur", cfg.DefaultCurrency)
	assert.Equal(t, 30*time.Minute, cfg.ReconcileAfter)
	assert.True(t, cfg.AutoExchangeContacts)
	assert.True(t, cfg.IsProduction())
}

func TestValidate(t *testing.T) {
	valid := Config{StoreDriver: StoreMongo, DatabaseURL: "mongodb://localhost", ProvisionRate: 0.05, DefaultCurrency: "eur"}
	require.NoError(t, valid.Validate())

	cases := map[string]func(c *Config){
		"unknown driver":       func(c *Config) { c.StoreDriver = "sqlite" },
		"mongo without url":    func(c *Config) { c.DatabaseURL = "" },
		"firestore no project": func(c *Config) { c.StoreDriver = StoreFirestore },
		"rate too high":        func(c *Config) { c.ProvisionRate = 1.5 },
		"rate zero":            func(c *Config) { c.ProvisionRate = 0 },
		"no currency":          func(c *Config) { c.DefaultCurrency = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			c := valid
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}
