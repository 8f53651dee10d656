package config_test

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/stretchr/testify/require"
)

func TestNew_Defaults(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)
	require.Equal(t, config.DefaultBaseURL, c.GetBaseURL())
	require.Equal(t, "v1", c.GetAPIVersion())
	require.Equal(t, "", c.GetClientID())
	require.Equal(t, 60*time.Second, c.GetTimeout())
	require.Equal(t, "/", c.GetCookieOptions().Path)
	require.Equal(t, 0, c.GetRetry().MaxRetries)
	require.Contains(t, c.GetRetry().RetryStatuses, http.StatusServiceUnavailable)
}

func TestNew_Options(t *testing.T) {
	c, err := config.New(
		config.WithBaseURL("http://localhost:9000"),
		config.WithAPIVersion("v2"),
		config.WithClientID("client-1"),
		config.WithTimeout(5*time.Second),
		config.WithCookieOptions(config.CookieOptions{Prefix: "shop_", Path: "/app"}),
		config.WithRetry(config.RetryOptions{MaxRetries: 2, RetryDelay: time.Millisecond}),
	)
	require.NoError(t, err)
	require.Equal(t, "http://localhost:9000", c.GetBaseURL())
	require.Equal(t, "v2", c.GetAPIVersion())
	require.Equal(t, "client-1", c.GetClientID())
	require.Equal(t, 5*time.Second, c.GetTimeout())
	require.Equal(t, "shop_", c.GetCookieOptions().Prefix)
	require.Equal(t, 2, c.GetRetry().MaxRetries)
}

func TestNew_Invalid(t *testing.T) {
	t.Run("blank base url", func(t *testing.T) {
		_, err := config.New(config.WithBaseURL(""))
		require.Error(t, err)
		require.True(t, errors.Is(err, config.ErrInvalidConfig))
		require.Contains(t, err.Error(), "baseURL")
	})

	t.Run("not a url", func(t *testing.T) {
		_, err := config.New(config.WithBaseURL("not a url"))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})

	t.Run("negative timeout", func(t *testing.T) {
		_, err := config.New(config.WithTimeout(-time.Second))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
		require.Contains(t, err.Error(), "timeout")
	})

	t.Run("negative retries", func(t *testing.T) {
		_, err := config.New(config.WithRetry(config.RetryOptions{MaxRetries: -1}))
		require.ErrorIs(t, err, config.ErrInvalidConfig)
	})
}

func TestGetRetry_ReturnsCopy(t *testing.T) {
	c, err := config.New()
	require.NoError(t, err)

	r := c.GetRetry()
	r.RetryStatuses[0] = 999
	require.NotEqual(t, 999, c.GetRetry().RetryStatuses[0])
}

func TestFromEnv(t *testing.T) {
	t.Setenv("ORDERCLOUD_BASE_URL", "http://sandbox.local")
	t.Setenv("ORDERCLOUD_CLIENT_ID", "env-client")
	t.Setenv("ORDERCLOUD_TIMEOUT", "1500")
	t.Setenv("ORDERCLOUD_COOKIE_PREFIX", "oc_")
	t.Setenv("ORDERCLOUD_MAX_RETRIES", "3")

	c, err := config.FromEnv()
	require.NoError(t, err)
	require.Equal(t, "http://sandbox.local", c.GetBaseURL())
	require.Equal(t, "env-client", c.GetClientID())
	require.Equal(t, 1500*time.Millisecond, c.GetTimeout())
	require.Equal(t, "oc_", c.GetCookieOptions().Prefix)
	require.Equal(t, 3, c.GetRetry().MaxRetries)

	t.Run("options override env", func(t *testing.T) {
		c, err := config.FromEnv(config.WithClientID("explicit"))
		require.NoError(t, err)
		require.Equal(t, "explicit", c.GetClientID())
	})

	t.Run("duration syntax", func(t *testing.T) {
		t.Setenv("ORDERCLOUD_TIMEOUT", "30s")
		c, err := config.FromEnv()
		require.NoError(t, err)
		require.Equal(t, 30*time.Second, c.GetTimeout())
	})
}
