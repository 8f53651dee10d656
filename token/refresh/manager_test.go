package refresh_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/token"
	"github.com/jrsteele09/go-ordercloud/token/memrepo"
	"github.com/jrsteele09/go-ordercloud/token/refresh"
	"github.com/jrsteele09/go-ordercloud/token/tokentest"
	"github.com/stretchr/testify/require"
)

type fakeGranter struct {
	calls    atomic.Int32
	gotToken string
	gotID    string
	resp     *oauth2.AccessToken
	err      error
	block    chan struct{}
	mu       sync.Mutex
}

func (g *fakeGranter) RefreshToken(_ context.Context, refreshToken, clientID string) (*oauth2.AccessToken, error) {
	g.calls.Add(1)
	g.mu.Lock()
	g.gotToken, g.gotID = refreshToken, clientID
	g.mu.Unlock()
	if g.block != nil {
		<-g.block
	}
	return g.resp, g.err
}

func newStore(t *testing.T) *token.Store {
	t.Helper()
	return token.NewStore(memrepo.New(), token.NewKeyGenerator("client-1", token.EnvironmentServer), token.NewValidator())
}

func TestManager_TryRefresh(t *testing.T) {
	ctx := context.Background()
	creator := tokentest.NewCreator("cid-from-token")
	expired := creator.ExpiringIn(-time.Hour)
	fresh := creator.ExpiringIn(time.Hour)

	t.Run("success stores and returns the new token", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{resp: &oauth2.AccessToken{AccessToken: fresh}}
		m := refresh.NewManager(store, granter, token.NewValidator(), "configured-id")

		require.Equal(t, fresh, m.TryRefresh(ctx, expired))
		require.EqualValues(t, 1, granter.calls.Load())
		require.Equal(t, "refresh-1", granter.gotToken)
		require.Equal(t, "configured-id", granter.gotID)

		stored, err := store.Get(ctx, token.AccessToken)
		require.NoError(t, err)
		require.Equal(t, fresh, stored)
	})

	t.Run("no refresh token returns the expired token", func(t *testing.T) {
		granter := &fakeGranter{}
		m := refresh.NewManager(newStore(t), granter, token.NewValidator(), "configured-id")

		require.Equal(t, expired, m.TryRefresh(ctx, expired))
		require.Zero(t, granter.calls.Load())
	})

	t.Run("client id falls back to the cid claim", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{resp: &oauth2.AccessToken{AccessToken: fresh}}
		m := refresh.NewManager(store, granter, token.NewValidator(), "")

		require.Equal(t, fresh, m.TryRefresh(ctx, expired))
		require.Equal(t, "cid-from-token", granter.gotID)
	})

	t.Run("no client id anywhere returns empty", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{}
		m := refresh.NewManager(store, granter, token.NewValidator(), "")

		require.Empty(t, m.TryRefresh(ctx, ""))
		require.Empty(t, m.TryRefresh(ctx, "garbage"))
		require.Zero(t, granter.calls.Load())
	})

	t.Run("grant failure is swallowed", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{err: errors.New("boom")}
		m := refresh.NewManager(store, granter, token.NewValidator(), "configured-id")

		require.Empty(t, m.TryRefresh(ctx, expired))
		require.EqualValues(t, 1, granter.calls.Load())
	})

	t.Run("undecodable new token is not stored", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{resp: &oauth2.AccessToken{AccessToken: "not-a-jwt"}}
		m := refresh.NewManager(store, granter, token.NewValidator(), "configured-id")

		require.Empty(t, m.TryRefresh(ctx, expired))
		stored, err := store.Get(ctx, token.AccessToken)
		require.NoError(t, err)
		require.Empty(t, stored)
	})

	t.Run("cancelled caller stops waiting", func(t *testing.T) {
		store := newStore(t)
		require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
		granter := &fakeGranter{resp: &oauth2.AccessToken{AccessToken: fresh}, block: make(chan struct{})}
		defer close(granter.block)
		m := refresh.NewManager(store, granter, token.NewValidator(), "configured-id")

		cctx, cancel := context.WithCancel(ctx)
		cancel()
		require.Empty(t, m.TryRefresh(cctx, expired))
	})
}

func TestManager_ConcurrentCallersShareOneGrant(t *testing.T) {
	ctx := context.Background()
	creator := tokentest.NewCreator("client-1")
	expired := creator.ExpiringIn(-time.Hour)
	fresh := creator.ExpiringIn(time.Hour)

	store := newStore(t)
	require.NoError(t, store.Set(ctx, token.RefreshToken, "refresh-1"))
	granter := &fakeGranter{resp: &oauth2.AccessToken{AccessToken: fresh}, block: make(chan struct{})}
	m := refresh.NewManager(store, granter, token.NewValidator(), "client-1")

	const callers = 5
	results := make(chan string, callers)
	for i := 0; i < callers; i++ {
		go func() {
			results <- m.TryRefresh(ctx, expired)
		}()
	}

	require.Eventually(t, func() bool { return granter.calls.Load() == 1 }, time.Second, time.Millisecond)
	// let the remaining callers join the in-flight grant
	time.Sleep(50 * time.Millisecond)
	close(granter.block)

	for i := 0; i < callers; i++ {
		require.Equal(t, fresh, <-results)
	}
	require.EqualValues(t, 1, granter.calls.Load())
}
