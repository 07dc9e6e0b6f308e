package config

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/decisionlab/dagraph/internal/errors"
)

// ValidationResult holds validation results
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// AddError adds an error to the validation result
func (vr *ValidationResult) AddError(format string, args ...interface{}) {
	vr.Valid = false
	vr.Errors = append(vr.Errors, fmt.Sprintf(format, args...))
}

// AddWarning adds a warning to the validation result
func (vr *ValidationResult) AddWarning(format string, args ...interface{}) {
	vr.Warnings = append(vr.Warnings, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any errors
func (vr *ValidationResult) HasErrors() bool {
	return !vr.Valid || len(vr.Errors) > 0
}

// Error returns a formatted error message
func (vr *ValidationResult) Error() string {
	if !vr.HasErrors() {
		return ""
	}

	var sb strings.Builder
	sb.WriteString("Configuration validation failed:\n")
	for _, err := range vr.Errors {
		sb.WriteString(fmt.Sprintf("  ❌ %s\n", err))
	}

	if len(vr.Warnings) > 0 {
		sb.WriteString("\nWarnings:\n")
		for _, warn := range vr.Warnings {
			sb.WriteString(fmt.Sprintf("  ⚠️  %s\n", warn))
		}
	}

	return sb.String()
}

// Err returns the result as a config error, or nil when valid.
func (vr *ValidationResult) Err() error {
	if !vr.HasErrors() {
		return nil
	}
	return errors.ConfigError(vr.Error())
}

// Validate checks the settings the selected backend needs.
func (c *Config) Validate() *ValidationResult {
	result := &ValidationResult{Valid: true}

	env, err := ParseEnvironment(c.Environment)
	if err != nil {
		result.AddError("%v", err)
		return result
	}

	if env.UsesCosmos() {
		c.validateCosmos(result)
	} else {
		c.validateGremlin(result)
	}
	c.validateCache(result)
	c.validateLogging(result)

	return result
}

func (c *Config) validateGremlin(result *ValidationResult) {
	if c.Gremlin.URL == "" {
		result.AddError("GREMLIN_URL is required but not set")
		return
	}
	u, err := url.Parse(c.Gremlin.URL)
	if err != nil {
		result.AddError("GREMLIN_URL is invalid: %v", err)
		return
	}
	if u.Scheme != "ws" && u.Scheme != "wss" {
		result.AddError("GREMLIN_URL must use ws:// or wss://, got %q", u.Scheme)
	}
	if c.Gremlin.TraversalSource == "" {
		result.AddWarning("gremlin.traversal_source is not set, will use 'g'")
	}
}

func (c *Config) validateCosmos(result *ValidationResult) {
	if c.Cosmos.Endpoint == "" {
		result.AddError("COSMOS_ENDPOINT is required but not set")
	} else if u, err := url.Parse(c.Cosmos.Endpoint); err != nil {
		result.AddError("COSMOS_ENDPOINT is invalid: %v", err)
	} else if u.Scheme != "wss" {
		result.AddError("COSMOS_ENDPOINT must use wss://, got %q", u.Scheme)
	}

	if c.Cosmos.Database == "" {
		result.AddError("COSMOS_DATABASE is required but not set")
	}

	// Resolved later through the credential chain.
	if c.Cosmos.Key == "" {
		result.AddWarning("%s is not set, will look in the keychain and credentials file", CosmosKeyEnv)
	}

	if c.Cosmos.RequestsPerSecond < 0 {
		result.AddError("COSMOS_REQUESTS_PER_SECOND must not be negative, got %.2f", c.Cosmos.RequestsPerSecond)
	}
}

func (c *Config) validateCache(result *ValidationResult) {
	if !c.Cache.Enabled {
		return
	}
	if c.Cache.RedisAddr == "" {
		result.AddError("REDIS_ADDR is required when the cache is enabled")
	}
	if c.Cache.TTL <= 0 {
		result.AddWarning("cache.ttl is invalid or not set, will use default (5m)")
	}
}

func (c *Config) validateLogging(result *ValidationResult) {
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic":
	default:
		result.AddWarning("LOG_LEVEL %q is not recognised, will use info", c.Logging.Level)
	}
}
