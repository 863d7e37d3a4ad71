package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultAPIVersion is the Admin API version used when SHOPIFY_API_VERSION
// is not pinned.
const DefaultAPIVersion = "2025-07"

// Config contains runtime configuration values. It is built once at startup
// and injected into handlers so tests can run with fake credentials without
// touching the process environment.
type Config struct {
	Environment string
	Port        string

	// Shopify app credentials and the externally reachable base URL. AppURL
	// is stored without trailing slashes; the callback redirect URI derived
	// from it must match the app's allowed redirection URL byte for byte.
	APIKey     string
	APISecret  string
	Scopes     []string
	AppURL     string
	APIVersion string

	// MaxTimestampSkew bounds the age of the signed timestamp parameter on
	// OAuth callbacks. Zero disables the check.
	MaxTimestampSkew time.Duration

	// DebugEndpoints enables the check/dryrun/debug diagnostic modes on the
	// OAuth endpoint. They leak signing material, so this defaults to off
	// and must never be enabled in production deployments.
	DebugEndpoints bool

	MongoURI      string
	MongoDatabase string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables. Missing Shopify
// credentials are not fatal here; the OAuth endpoint reports them per
// request so operators see exactly which settings are absent.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment:      strings.TrimSpace(os.Getenv("ENVIRONMENT")),
		Port:             envOr("PORT", "8080"),
		APIKey:           strings.TrimSpace(os.Getenv("SHOPIFY_API_KEY")),
		APISecret:        cleanSecret(os.Getenv("SHOPIFY_API_SECRET")),
		Scopes:           splitScopes(os.Getenv("SHOPIFY_SCOPES")),
		AppURL:           strings.TrimRight(strings.TrimSpace(os.Getenv("APP_URL")), "/"),
		APIVersion:       envOr("SHOPIFY_API_VERSION", DefaultAPIVersion),
		MaxTimestampSkew: 600 * time.Second,
		MongoURI:         strings.TrimSpace(os.Getenv("MONGODB_URI")),
		MongoDatabase:    envOr("MONGODB_DATABASE", "shopify_integration"),
		RedisAddr:        strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
	}

	if raw := strings.TrimSpace(os.Getenv("SHOPIFY_MAX_TIMESTAMP_SKEW")); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("invalid SHOPIFY_MAX_TIMESTAMP_SKEW %q", raw)
		}
		cfg.MaxTimestampSkew = time.Duration(secs) * time.Second
	}
	if raw := strings.TrimSpace(os.Getenv("REDIS_DB")); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid REDIS_DB %q", raw)
		}
		cfg.RedisDB = db
	}
	cfg.DebugEndpoints = os.Getenv("DEBUG_ENDPOINTS") == "1"

	return cfg, nil
}

// RedirectURI is the fixed OAuth callback URI registered with Shopify.
func (c *Config) RedirectURI() string {
	return c.AppURL + "/api/shopify/oauth"
}

// WebhookAddress is where Shopify should deliver webhook notifications.
func (c *Config) WebhookAddress() string {
	return c.AppURL + "/api/shopify/webhooks"
}

// Production reports whether the service runs with production hardening
// (Secure cookies, diagnostics unreachable).
func (c *Config) Production() bool {
	return c.Environment == "production"
}

// MissingShopifySettings returns presence booleans for the settings the
// OAuth flow requires. Values are never echoed, only whether they are set.
func (c *Config) MissingShopifySettings() map[string]bool {
	return map[string]bool{
		"SHOPIFY_API_KEY":    c.APIKey != "",
		"SHOPIFY_API_SECRET": c.APISecret != "",
		"SHOPIFY_SCOPES":     len(c.Scopes) > 0,
		"APP_URL":            c.AppURL != "",
	}
}

// ShopifyConfigured reports whether all OAuth-required settings are present.
func (c *Config) ShopifyConfigured() bool {
	for _, present := range c.MissingShopifySettings() {
		if !present {
			return false
		}
	}
	return true
}

// cleanSecret strips stray CR/LF and surrounding whitespace. Secrets pasted
// into dashboard env editors routinely pick up a trailing newline, which
// silently breaks every HMAC comparison.
func cleanSecret(s string) string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return strings.TrimSpace(s)
}

func splitScopes(raw string) []string {
	var scopes []string
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			scopes = append(scopes, s)
		}
	}
	return scopes
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
