// Package config handles loading and validation of storefront configuration.
// Supports both development (env vars) and production (Secret Manager) modes.
package config

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// Default placeholder customer identity used for order submission when no
// customer fields are configured. The storefront has no authentication, so
// every order carries this identity.
const (
	DefaultCustomerName    = "Guest Shopper"
	DefaultCustomerEmail   = "guest@example.com"
	DefaultCustomerAddress = "123 Placeholder Lane"
)

// defaultBackendURL is used when SHOP_BACKEND_URL is unset.
const defaultBackendURL = "http://localhost:3000"

// Config holds all service configuration.
// Environment determines whether shop settings load from env vars
// (development) or Secret Manager (production).
type Config struct {
	// Server settings
	Port        string
	Environment string // "development" or "production"
	LogLevel    string // "debug", "info", "warn", "error"

	// GCP settings (required in production)
	GCPProject string
	ShopID     string

	// Shop-specific configuration (loaded from secrets in production)
	Shop ShopConfig
}

// ShopConfig contains shop-specific settings.
// In production, this is loaded from Secret Manager as JSON.
// In development, loaded from individual env vars or CONFIG_FILE.
type ShopConfig struct {
	// BackendURL is the base URL of the commerce backend that serves
	// GET /api/products and POST /api/orders.
	BackendURL string `json:"backend_url"`
	ShopName   string `json:"shop_name,omitempty"`

	// Customer is the placeholder identity attached to every order.
	Customer Customer `json:"customer,omitempty"`

	// OrderNotes is sent verbatim in the notes field of every order.
	OrderNotes string `json:"order_notes,omitempty"`

	// BrowserTLS enables the Chrome-fingerprint TLS transport for backend
	// requests. Needed when the backend sits behind a CDN that rate-limits
	// by JA3 fingerprint.
	BrowserTLS bool `json:"browser_tls,omitempty"`
}

// Customer is the fixed customer identity used at checkout.
type Customer struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

// Load reads configuration from file, environment, or Secret Manager.
// Priority: CONFIG_FILE (if set) → ENV vars / Secret Manager.
// Validates all required fields and returns an error if any are missing.
func Load(ctx context.Context) (*Config, error) {
	// If CONFIG_FILE is set, load everything from the JSON file
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromFile(configPath)
	}

	cfg := &Config{
		Port:        envOrDefault("PORT", "8080"),
		Environment: envOrDefault("ENVIRONMENT", "development"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		GCPProject:  os.Getenv("GCP_PROJECT"),
		ShopID:      os.Getenv("SHOP_ID"),
	}

	// Load shop config based on environment
	var err error
	if cfg.Environment == "production" {
		if cfg.GCPProject == "" {
			return nil, fmt.Errorf("GCP_PROJECT required in production environment")
		}
		if cfg.ShopID == "" {
			return nil, fmt.Errorf("SHOP_ID required in production environment")
		}
		err = cfg.loadFromSecretManager(ctx)
	} else {
		err = cfg.loadFromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("loading shop config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile reads all configuration from a JSON file.
// Used for local development to avoid multiple ENV vars.
func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var fileConfig struct {
		Port        string     `json:"port"`
		Environment string     `json:"environment"`
		LogLevel    string     `json:"log_level"`
		ShopID      string     `json:"shop_id"`
		Shop        ShopConfig `json:"shop"`
	}

	if err := json.Unmarshal(data, &fileConfig); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg := &Config{
		Port:        withDefault(fileConfig.Port, "8080"),
		Environment: withDefault(fileConfig.Environment, "development"),
		LogLevel:    withDefault(fileConfig.LogLevel, "info"),
		ShopID:      fileConfig.ShopID,
		Shop:        fileConfig.Shop,
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// withDefault returns val if non-empty, otherwise defaultVal.
func withDefault(val, defaultVal string) string {
	if val != "" {
		return val
	}
	return defaultVal
}

// loadFromSecretManager fetches shop config from GCP Secret Manager.
// Secret name format: projects/{project}/secrets/{shop_id}/versions/latest
func (c *Config) loadFromSecretManager(ctx context.Context) error {
	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("creating secret manager client: %w", err)
	}
	defer client.Close()

	secretName := fmt.Sprintf("projects/%s/secrets/%s/versions/latest",
		c.GCPProject, c.ShopID)

	result, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("accessing secret %s: %w", secretName, err)
	}

	if err := json.Unmarshal(result.Payload.Data, &c.Shop); err != nil {
		return fmt.Errorf("parsing secret JSON: %w", err)
	}

	return nil
}

// loadFromEnv reads shop config from individual environment variables.
// Used in development mode for local testing.
func (c *Config) loadFromEnv() error {
	c.Shop = ShopConfig{
		BackendURL: os.Getenv("SHOP_BACKEND_URL"),
		ShopName:   os.Getenv("SHOP_NAME"),
		OrderNotes: os.Getenv("ORDER_NOTES"),
		BrowserTLS: os.Getenv("BROWSER_TLS") != "",
		Customer: Customer{
			Name:    os.Getenv("CUSTOMER_NAME"),
			Email:   os.Getenv("CUSTOMER_EMAIL"),
			Address: os.Getenv("CUSTOMER_ADDRESS"),
		},
	}
	return nil
}

// applyDefaults fills unset fields with their documented defaults.
// The backend URL falls back to a local address so a bare `storefront`
// invocation works against a backend on the same machine.
func (c *Config) applyDefaults() {
	if c.Shop.BackendURL == "" {
		c.Shop.BackendURL = defaultBackendURL
	}
	if c.Shop.ShopName == "" {
		c.Shop.ShopName = "Storefront"
	}
	if c.Shop.Customer.Name == "" {
		c.Shop.Customer.Name = DefaultCustomerName
	}
	if c.Shop.Customer.Email == "" {
		c.Shop.Customer.Email = DefaultCustomerEmail
	}
	if c.Shop.Customer.Address == "" {
		c.Shop.Customer.Address = DefaultCustomerAddress
	}
	c.Shop.BackendURL = strings.TrimSuffix(c.Shop.BackendURL, "/")
}

// validate checks that all required configuration fields are well-formed.
func (c *Config) validate() error {
	u, err := url.Parse(c.Shop.BackendURL)
	if err != nil {
		return fmt.Errorf("invalid backend_url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid backend_url: scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid backend_url: missing host")
	}
	return nil
}

// envOrDefault returns the environment variable value or the default if not set.
func envOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
