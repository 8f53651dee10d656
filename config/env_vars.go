package config

import (
	"os"
	"strconv"
	"time"
)

const (
	baseURLEnvVar      = "ORDERCLOUD_BASE_URL"
	apiVersionEnvVar   = "ORDERCLOUD_API_VERSION"
	clientIDEnvVar     = "ORDERCLOUD_CLIENT_ID"
	timeoutEnvVar      = "ORDERCLOUD_TIMEOUT"
	cookiePrefixEnvVar = "ORDERCLOUD_COOKIE_PREFIX"
	maxRetriesEnvVar   = "ORDERCLOUD_MAX_RETRIES"
)

// FromEnv builds a Config from ORDERCLOUD_* environment variables. Options
// are applied after the environment and take precedence.
func FromEnv(options ...Option) (Config, error) {
	envOptions := []Option{
		WithBaseURL(GetEnv(baseURLEnvVar, DefaultBaseURL)),
		WithAPIVersion(GetEnv(apiVersionEnvVar, DefaultAPIVersion)),
		WithClientID(GetEnv(clientIDEnvVar, "")),
	}

	// Timeout accepts a Go duration ("30s") or whole milliseconds ("30000")
	if raw := GetEnv(timeoutEnvVar, ""); raw != "" {
		if d, err := time.ParseDuration(raw); err == nil {
			envOptions = append(envOptions, WithTimeout(d))
		} else if ms, err := strconv.Atoi(raw); err == nil {
			envOptions = append(envOptions, WithTimeout(time.Duration(ms)*time.Millisecond))
		}
	}

	if prefix := GetEnv(cookiePrefixEnvVar, ""); prefix != "" {
		envOptions = append(envOptions, func(c *Config) {
			c.cookie.Prefix = prefix
		})
	}

	if raw := GetEnv(maxRetriesEnvVar, ""); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			envOptions = append(envOptions, func(c *Config) {
				c.retry.MaxRetries = n
			})
		}
	}

	return New(append(envOptions, options...)...)
}

func GetEnv(envVar, defaultValue string) string {
	value := os.Getenv(envVar)
	if value == "" {
		return defaultValue
	}
	return value
}
