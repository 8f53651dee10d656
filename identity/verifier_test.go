package identity_test

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-jose/go-jose/v4"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/jrsteele09/go-ordercloud/identity"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/token/tokentest"
	"github.com/stretchr/testify/require"
)

const testKid = "x6sA-GfTGEWUp5OWFbhmmg"

type keyFixture struct {
	private *rsa.PrivateKey
	public  *models.PublicKey
	fetches int
}

func newKeyFixture(t *testing.T) *keyFixture {
	t.Helper()
	private, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	data, err := jose.JSONWebKey{Key: &private.PublicKey, KeyID: testKid, Algorithm: "RS256", Use: "sig"}.MarshalJSON()
	require.NoError(t, err)
	var public models.PublicKey
	require.NoError(t, json.Unmarshal(data, &public))

	return &keyFixture{private: private, public: &public}
}

func (f *keyFixture) source() identity.KeySource {
	return identity.KeySourceFunc(func(_ context.Context, kid string) (*models.PublicKey, error) {
		f.fetches++
		if kid != testKid {
			return nil, errors.New("unknown kid")
		}
		return f.public, nil
	})
}

func (f *keyFixture) sign(t *testing.T, kid string, claims jwtlib.MapClaims) string {
	t.Helper()
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	if kid != "" {
		tok.Header["kid"] = kid
	}
	signed, err := tok.SignedString(f.private)
	require.NoError(t, err)
	return signed
}

func TestVerifier_Verify(t *testing.T) {
	ctx := context.Background()
	now := time.Unix(1_700_000_000, 0)
	claims := func(exp time.Time) jwtlib.MapClaims {
		return jwtlib.MapClaims{"sub": "jane", "cid": "client-1", "iss": "https://auth.example.test", "exp": exp.Unix()}
	}

	t.Run("valid signature", func(t *testing.T) {
		f := newKeyFixture(t)
		v := identity.NewVerifier(f.source(), identity.WithNowFunc(func() time.Time { return now }))

		idToken, err := v.Verify(ctx, f.sign(t, testKid, claims(now.Add(time.Hour))))
		require.NoError(t, err)
		require.Equal(t, "jane", idToken.Subject)

		var extra struct {
			ClientID string `json:"cid"`
		}
		require.NoError(t, idToken.Claims(&extra))
		require.Equal(t, "client-1", extra.ClientID)

		_, err = v.Verify(ctx, f.sign(t, testKid, claims(now.Add(time.Hour))))
		require.NoError(t, err)
		require.Equal(t, 1, f.fetches)
	})

	t.Run("expired", func(t *testing.T) {
		f := newKeyFixture(t)
		v := identity.NewVerifier(f.source(), identity.WithNowFunc(func() time.Time { return now }))
		_, err := v.Verify(ctx, f.sign(t, testKid, claims(now.Add(-time.Hour))))
		require.Error(t, err)
	})

	t.Run("signed by another key", func(t *testing.T) {
		f := newKeyFixture(t)
		other := newKeyFixture(t)
		v := identity.NewVerifier(f.source(), identity.WithNowFunc(func() time.Time { return now }))
		_, err := v.Verify(ctx, other.sign(t, testKid, claims(now.Add(time.Hour))))
		require.Error(t, err)
	})

	t.Run("missing kid", func(t *testing.T) {
		f := newKeyFixture(t)
		v := identity.NewVerifier(f.source())
		_, err := v.Verify(ctx, f.sign(t, "", claims(now.Add(time.Hour))))
		require.ErrorIs(t, err, identity.ErrMissingKeyID)
	})

	t.Run("unknown kid", func(t *testing.T) {
		f := newKeyFixture(t)
		v := identity.NewVerifier(f.source())
		_, err := v.Verify(ctx, f.sign(t, "other", claims(now.Add(time.Hour))))
		require.Error(t, err)
	})

	t.Run("hmac test tokens are rejected", func(t *testing.T) {
		f := newKeyFixture(t)
		v := identity.NewVerifier(f.source())
		_, err := v.Verify(ctx, tokentest.NewCreator("client-1").ExpiringIn(time.Hour))
		require.ErrorIs(t, err, identity.ErrMissingKeyID)
	})

	t.Run("a pending key fetch does not block cached keys", func(t *testing.T) {
		f := newKeyFixture(t)
		release := make(chan struct{})
		var slowFetches atomic.Int32
		source := identity.KeySourceFunc(func(_ context.Context, kid string) (*models.PublicKey, error) {
			if kid == "slow" {
				slowFetches.Add(1)
				<-release
				return nil, errors.New("unknown kid")
			}
			return f.public, nil
		})
		v := identity.NewVerifier(source, identity.WithNowFunc(func() time.Time { return now }))

		cachedToken := f.sign(t, testKid, claims(now.Add(time.Hour)))
		slowToken := f.sign(t, "slow", claims(now.Add(time.Hour)))
		_, err := v.Verify(ctx, cachedToken)
		require.NoError(t, err)

		slowErr := make(chan error, 1)
		go func() {
			_, err := v.Verify(ctx, slowToken)
			slowErr <- err
		}()
		require.Eventually(t, func() bool { return slowFetches.Load() == 1 }, 5*time.Second, 10*time.Millisecond)

		done := make(chan error, 1)
		go func() {
			_, err := v.Verify(ctx, cachedToken)
			done <- err
		}()
		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("verify with a cached key waited on another key's fetch")
		}

		close(release)
		require.Error(t, <-slowErr)
	})
}
