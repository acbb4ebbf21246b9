package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"github.com/shopspring/decimal"
	"github.com/spf13/cast"
)

// Config holds all configuration for the application
// Following 12-factor app principles, all config is loaded from environment variables
type Config struct {
	Server   ServerConfig
	Auth     AuthConfig
	Quantity QuantityConfig
	Cart     CartConfig
	Catalog  CatalogConfig
	Coupon   CouponConfig
	Log      LogConfig
	Metrics  MetricsConfig
}

type ServerConfig struct {
	Port               string
	Host               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	CORSAllowedOrigins []string
}

type AuthConfig struct {
	APIKeys []string // Valid API keys for order submission
}

// QuantityConfig bounds every quantity selector on the menu
type QuantityConfig struct {
	Default int
	Min     int
	Max     int
	// CartMax bounds line items in the cart; defaults to Max
	CartMax int
}

type CartConfig struct {
	DeliveryFee decimal.Decimal
}

type CatalogConfig struct {
	File string // empty means the embedded menu
}

type CouponConfig struct {
	Files         []string
	URLs          []string
	ExpectedCodes uint
}

// Enabled reports whether any code list is configured
func (c CouponConfig) Enabled() bool {
	return len(c.Files) > 0 || len(c.URLs) > 0
}

type LogConfig struct {
	Level  string
	Format string
}

type MetricsConfig struct {
	Namespace string
}

// Load reads configuration from an optional .env file and the environment
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	quantityMax := getInt(k, "QUANTITY_MAX", 10)
	cfg := &Config{
		Server: ServerConfig{
			Port:               getString(k, "PORT", "8080"),
			Host:               getString(k, "HOST", "0.0.0.0"),
			ReadTimeout:        getDuration(k, "READ_TIMEOUT", 15*time.Second),
			WriteTimeout:       getDuration(k, "WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout:    getDuration(k, "SHUTDOWN_TIMEOUT", 30*time.Second),
			CORSAllowedOrigins: getSlice(k, "CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Auth: AuthConfig{
			APIKeys: getSlice(k, "API_KEYS", []string{"apitest"}),
		},
		Quantity: QuantityConfig{
			Default: getInt(k, "QUANTITY_DEFAULT", 1),
			Min:     getInt(k, "QUANTITY_MIN", 1),
			Max:     quantityMax,
			CartMax: getInt(k, "CART_QUANTITY_MAX", quantityMax),
		},
		Cart: CartConfig{
			DeliveryFee: getDecimal(k, "DELIVERY_FEE", decimal.NewFromInt(20)),
		},
		Catalog: CatalogConfig{
			File: strings.TrimSpace(k.String("CATALOG_FILE")),
		},
		Coupon: CouponConfig{
			Files:         getSlice(k, "COUPON_FILES", nil),
			URLs:          getSlice(k, "COUPON_URLS", nil),
			ExpectedCodes: uint(getInt(k, "COUPON_EXPECTED_CODES", 1_000_000)),
		},
		Log: LogConfig{
			Level:  strings.ToLower(getString(k, "LOG_LEVEL", "info")),
			Format: strings.ToLower(getString(k, "LOG_FORMAT", "json")),
		},
		Metrics: MetricsConfig{
			Namespace: getString(k, "METRICS_NAMESPACE", "configurator"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("at least one API key must be configured")
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.Log.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Log.Level)
	}

	validFormats := map[string]bool{"json": true, "console": true, "text": true}
	if !validFormats[c.Log.Format] {
		return fmt.Errorf("invalid log format: %s (must be json, console, or text)", c.Log.Format)
	}

	q := c.Quantity
	if q.Min < 0 || q.Min > q.Max || q.Default < q.Min || q.Default > q.Max {
		return fmt.Errorf("invalid quantity range: need 0 <= QUANTITY_MIN <= QUANTITY_DEFAULT <= QUANTITY_MAX, got %d/%d/%d", q.Min, q.Default, q.Max)
	}
	// a line item starts at the menu amount, so the cart must hold any of them
	if q.CartMax < q.Max {
		return fmt.Errorf("CART_QUANTITY_MAX (%d) is below QUANTITY_MAX (%d)", q.CartMax, q.Max)
	}

	if c.Cart.DeliveryFee.IsNegative() {
		return fmt.Errorf("DELIVERY_FEE must not be negative")
	}

	if c.Coupon.Enabled() && len(c.Coupon.Files)+len(c.Coupon.URLs) < 2 {
		return fmt.Errorf("at least two coupon lists are needed for a code to validate")
	}

	return nil
}

// Addr returns the address the HTTP server should bind to
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, strings.TrimPrefix(c.Server.Port, ":"))
}

// LoadForTests overrides environment variables for the duration of Load
func LoadForTests(vars map[string]string) (*Config, error) {
	original := make(map[string]string, len(vars))
	for key, value := range vars {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, value); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

// Helper functions for reading values

func getString(k *koanf.Koanf, key, defaultValue string) string {
	if value := strings.TrimSpace(k.String(key)); value != "" {
		return value
	}
	return defaultValue
}

func getInt(k *koanf.Koanf, key string, defaultValue int) int {
	value := strings.TrimSpace(k.String(key))
	if value == "" {
		return defaultValue
	}
	n, err := cast.ToIntE(value)
	if err != nil {
		return defaultValue
	}
	return n
}

// getDuration accepts Go durations ("15s") or plain seconds ("15")
func getDuration(k *koanf.Koanf, key string, defaultValue time.Duration) time.Duration {
	value := strings.TrimSpace(k.String(key))
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := cast.ToIntE(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

func getDecimal(k *koanf.Koanf, key string, defaultValue decimal.Decimal) decimal.Decimal {
	value := strings.TrimSpace(k.String(key))
	if value == "" {
		return defaultValue
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return defaultValue
	}
	return d
}

func getSlice(k *koanf.Koanf, key string, defaultValue []string) []string {
	value := k.String(key)
	if strings.TrimSpace(value) == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
