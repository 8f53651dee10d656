package token_test

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http/cookiejar"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/jrsteele09/go-ordercloud/token/cookierepo"
	"github.com/jrsteele09/go-ordercloud/token/memrepo"
	"github.com/jrsteele09/go-ordercloud/token/redisrepo"
	"github.com/jrsteele09/go-ordercloud/token/tokentest"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func repos(t *testing.T) map[string]token.Repo {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	cookies, err := cookierepo.New(jar, config.DefaultBaseURL, config.CookieOptions{Prefix: "test_"})
	require.NoError(t, err)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return map[string]token.Repo{
		"memory": memrepo.New(),
		"cookie": cookies,
		"redis":  redisrepo.New(rdb, redisrepo.WithPrefix("sdk:")),
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	raw := tokentest.NewCreator("client-1").ExpiringIn(time.Hour)

	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			store := token.NewStore(repo, token.NewKeyGenerator("client-1", token.EnvironmentServer), token.NewValidator())

			for _, kind := range token.Kinds {
				got, err := store.Get(ctx, kind)
				require.NoError(t, err)
				require.Empty(t, got, kind.String())

				require.NoError(t, store.Set(ctx, kind, raw))
				got, err = store.Get(ctx, kind)
				require.NoError(t, err)
				require.Equal(t, raw, got, kind.String())
			}

			require.NoError(t, store.Remove(ctx, token.AccessToken))
			got, err := store.Get(ctx, token.AccessToken)
			require.NoError(t, err)
			require.Empty(t, got)

			got, err = store.Get(ctx, token.RefreshToken)
			require.NoError(t, err)
			require.Equal(t, raw, got)

			require.NoError(t, store.Clear(ctx))
			for _, kind := range token.Kinds {
				got, err := store.Get(ctx, kind)
				require.NoError(t, err)
				require.Empty(t, got, kind.String())
			}
		})
	}
}

func TestStore_SetOverwrites(t *testing.T) {
	ctx := context.Background()
	store := token.NewStore(memrepo.New(), token.NewKeyGenerator("client-1", token.EnvironmentServer), token.NewValidator())
	creator := tokentest.NewCreator("client-1")

	first := creator.ExpiringIn(time.Minute)
	second := creator.ExpiringIn(2 * time.Minute)
	require.NoError(t, store.Set(ctx, token.AccessToken, first))
	require.NoError(t, store.Set(ctx, token.AccessToken, second))

	got, err := store.Get(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, second, got)
}

func TestStore_SetMalformed(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New()
	store := token.NewStore(repo, token.NewKeyGenerator("client-1", token.EnvironmentServer), token.NewValidator())

	valid := tokentest.NewCreator("client-1").ExpiringIn(time.Minute)
	require.NoError(t, store.Set(ctx, token.AccessToken, valid))

	for _, kind := range []token.Kind{token.AccessToken, token.ImpersonationToken} {
		t.Run(kind.String(), func(t *testing.T) {
			err := store.Set(ctx, kind, "not-a-token")
			require.Error(t, err)
			require.True(t, errors.Is(err, token.ErrMalformedToken))

			var malformed *token.MalformedTokenError
			require.ErrorAs(t, err, &malformed)
			require.Equal(t, kind, malformed.Kind)

			nullClaims := "eyJhbGciOiJIUzI1NiJ9." + base64.RawURLEncoding.EncodeToString([]byte("null")) + ".sig"
			require.ErrorIs(t, store.Set(ctx, kind, nullClaims), token.ErrMalformedToken)
		})
	}

	got, err := store.Get(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Equal(t, valid, got)

	t.Run("opaque slots are not decoded", func(t *testing.T) {
		for _, kind := range []token.Kind{token.RefreshToken, token.IdentityToken, token.IdpAccessToken} {
			require.NoError(t, store.Set(ctx, kind, "opaque-value"))
			got, err := store.Get(ctx, kind)
			require.NoError(t, err)
			require.Equal(t, "opaque-value", got)
		}
	})
}

func TestStore_SharedMediumIsolatesClients(t *testing.T) {
	ctx := context.Background()
	repo := memrepo.New()
	validator := token.NewValidator()
	a := token.NewStore(repo, token.NewKeyGenerator("client-1", token.EnvironmentServer), validator)
	b := token.NewStore(repo, token.NewKeyGenerator("my-client-id", token.EnvironmentServer), validator)

	raw := tokentest.NewCreator("client-1").ExpiringIn(time.Minute)
	require.NoError(t, a.Set(ctx, token.AccessToken, raw))

	got, err := b.Get(ctx, token.AccessToken)
	require.NoError(t, err)
	require.Empty(t, got)
}
