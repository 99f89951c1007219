package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted by STORE_DRIVER.
const (
	StoreMongo     = "mongo"
	StoreFirestore = "firestore"
	StoreMemory    = "memory"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	AdminToken        string `mapstructure:"ADMIN_TOKEN"`

	// Document store.
	StoreDriver  string `mapstructure:"STORE_DRIVER"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DatabaseName string `mapstructure:"DATABASE_NAME"`

	// Firebase (Firestore + Cloud Messaging).
	FirebaseProjectID       string `mapstructure:"FIREBASE_PROJECT_ID"`
	FirebaseCredentialsFile string `mapstructure:"FIREBASE_CREDENTIALS_FILE"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Stripe Connect.
	StripeSecretKey     string  `mapstructure:"STRIPE_SECRET_KEY"`
	StripeWebhookSecret string  `mapstructure:"STRIPE_WEBHOOK_SECRET"`
	ProvisionRate       float64 `mapstructure:"PROVISION_RATE"`
	DefaultCurrency     string  `mapstructure:"DEFAULT_CURRENCY"`

	// Outgoing mail.
	SendGridAPIKey  string `mapstructure:"SENDGRID_API_KEY"`
	MailFromAddress string `mapstructure:"MAIL_FROM_ADDRESS"`
	MailFromName    string `mapstructure:"MAIL_FROM_NAME"`

	// Workflow.
	AutoExchangeContacts    bool          `mapstructure:"AUTO_EXCHANGE_CONTACTS"`
	ReconcileAfter          time.Duration `mapstructure:"RECONCILE_AFTER"`
	NotificationMaxAttempts int           `mapstructure:"NOTIFICATION_MAX_ATTEMPTS"`
	WorkerConcurrency       int           `mapstructure:"WORKER_CONCURRENCY"`
}

// LoadConfig reads config.yaml (from "." or "./config"), a local .env file
// and the process environment, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, skipping")
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Println("No config file found, using environment variables only")
	}

	// AutomaticEnv only resolves keys viper already knows about, so every key
	// needs a default or an explicit binding before Unmarshal.
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.DefaultCurrency = strings.ToLower(cfg.DefaultCurrency)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 200)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("ADMIN_TOKEN", "")

	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("DATABASE_URL", "mongodb://localhost:27017/?replicaSet=rs0")
	v.SetDefault("DATABASE_NAME", "taskilo")

	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")

	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_CACHE_DB", 0)
	v.SetDefault("REDIS_QUEUE_DB", 1)

	v.SetDefault("STRIPE_SECRET_KEY", "")
	v.SetDefault("STRIPE_WEBHOOK_SECRET", "")
	v.SetDefault("PROVISION_RATE", 0.05)
	v.SetDefault("DEFAULT_CURRENCY", "eur")

	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("MAIL_FROM_ADDRESS", "noreply@taskilo.de")
	v.SetDefault("MAIL_FROM_NAME", "Taskilo")

	v.SetDefault("AUTO_EXCHANGE_CONTACTS", false)
	v.SetDefault("RECONCILE_AFTER", 10*time.Minute)
	v.SetDefault("NOTIFICATION_MAX_ATTEMPTS", 8)
	v.SetDefault("WORKER_CONCURRENCY", 10)
}

// Validate rejects configurations the service cannot start with. Missing
// Stripe credentials are not fatal: the payment endpoints answer 500 instead.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreMongo:
		if c.DatabaseURL == "" {
			return fmt.Errorf("config: DATABASE_URL is required for store driver %q", c.StoreDriver)
		}
	case StoreFirestore:
		if c.FirebaseProjectID == "" {
			return fmt.Errorf("config: FIREBASE_PROJECT_ID is required for store driver %q", c.StoreDriver)
		}
	case StoreMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.ProvisionRate <= 0 || c.ProvisionRate >= 1 {
		return fmt.Errorf("config: PROVISION_RATE must be between 0 and 1, got %v", c.ProvisionRate)
	}
	if c.DefaultCurrency == "" {
		return fmt.Errorf("config: DEFAULT_CURRENCY must not be empty")
	}
	return nil
}

// IsProduction reports whether the service runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// StripeConfigured reports whether a Stripe secret key is present.
func (c *Config) StripeConfigured() bool {
	return c.StripeSecretKey != ""
}
