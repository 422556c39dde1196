package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Environment string
	API         APIConfig
	Storage     StorageConfig
	Gateway     GatewayConfig
	Poll        PollConfig
	LogLevel    string
}

type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type StorageConfig struct {
	CartPath   string
	CouponPath string
	TokenPath  string
	// PostgresDSN switches cart persistence from the file adapter to the
	// Postgres adapter when set.
	PostgresDSN string
}

type GatewayConfig struct {
	// ListenAddr is the loopback address the checkout callback listener
	// binds while a payment is in flight.
	ListenAddr  string
	CheckoutURL string
}

type PollConfig struct {
	MaxAttempts int
	Delay       time.Duration
}

func Load() (*Config, error) {
	viper.SetConfigType("env")
	viper.SetConfigName(".env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")

	// Set defaults
	viper.SetDefault("ENVIRONMENT", "development")
	viper.SetDefault("API_TIMEOUT", "30s")
	viper.SetDefault("CART_PATH", defaultStatePath("cart.json"))
	viper.SetDefault("COUPON_PATH", defaultStatePath("coupon.json"))
	viper.SetDefault("TOKEN_PATH", defaultStatePath("token"))
	viper.SetDefault("GATEWAY_LISTEN_ADDR", "127.0.0.1:7845")
	viper.SetDefault("GATEWAY_CHECKOUT_URL", "https://api.razorpay.com/v1/checkout/embedded")
	viper.SetDefault("POLL_MAX_ATTEMPTS", "12")
	viper.SetDefault("POLL_DELAY", "5s")
	viper.SetDefault("LOG_LEVEL", "info")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read .env file (optional)
	if err := viper.ReadInConfig(); err != nil {
		// It's okay if .env doesn't exist, we'll use env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	apiTimeout, err := time.ParseDuration(getEnvOrViper("API_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_TIMEOUT: %w", err)
	}
	pollDelay, err := time.ParseDuration(getEnvOrViper("POLL_DELAY", "5s"))
	if err != nil {
		return nil, fmt.Errorf("invalid POLL_DELAY: %w", err)
	}

	cfg := &Config{
		Environment: getEnvOrViper("ENVIRONMENT", "development"),
		API: APIConfig{
			BaseURL: getEnvOrViper("API_BASE_URL", ""),
			Timeout: apiTimeout,
		},
		Storage: StorageConfig{
			CartPath:    getEnvOrViper("CART_PATH", defaultStatePath("cart.json")),
			CouponPath:  getEnvOrViper("COUPON_PATH", defaultStatePath("coupon.json")),
			TokenPath:   getEnvOrViper("TOKEN_PATH", defaultStatePath("token")),
			PostgresDSN: getEnvOrViper("CART_POSTGRES_DSN", ""),
		},
		Gateway: GatewayConfig{
			ListenAddr:  getEnvOrViper("GATEWAY_LISTEN_ADDR", "127.0.0.1:7845"),
			CheckoutURL: getEnvOrViper("GATEWAY_CHECKOUT_URL", "https://api.razorpay.com/v1/checkout/embedded"),
		},
		Poll: PollConfig{
			MaxAttempts: viper.GetInt("POLL_MAX_ATTEMPTS"),
			Delay:       pollDelay,
		},
		LogLevel: getEnvOrViper("LOG_LEVEL", "info"),
	}

	if cfg.Poll.MaxAttempts <= 0 {
		cfg.Poll.MaxAttempts = 12
	}

	// Validate required fields
	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("API_BASE_URL is required")
	}

	return cfg, nil
}

func getEnvOrViper(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	if viper.IsSet(key) {
		return viper.GetString(key)
	}
	return defaultValue
}

func defaultStatePath(name string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return name
	}
	return home + "/.storefront/" + name
}
