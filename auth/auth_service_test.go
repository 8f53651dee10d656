package auth_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/jrsteele09/go-ordercloud/apierror"
	"github.com/jrsteele09/go-ordercloud/auth"
	"github.com/jrsteele09/go-ordercloud/config"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/jrsteele09/go-ordercloud/transport"
	"github.com/stretchr/testify/require"
)

const (
	testClientID     = "client-1"
	testClientSecret = "secret-1"
	testUsername     = "jane"
	testPassword     = "pa55word"
)

type authServer struct {
	forms  []url.Values
	status int
	body   string
}

func setupService(t *testing.T) (*auth.Service, *authServer) {
	t.Helper()
	as := &authServer{status: http.StatusOK, body: `{"access_token":"a.b.c","refresh_token":"r1","expires_in":600,"token_type":"bearer"}`}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/token", r.URL.Path)
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Accept"))
		require.NoError(t, r.ParseForm())
		as.forms = append(as.forms, r.PostForm)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(as.status)
		_, _ = w.Write([]byte(as.body))
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.New(config.WithBaseURL(srv.URL))
	require.NoError(t, err)
	svc, err := auth.NewService(transport.New(cfg, transport.WithHTTPClient(srv.Client())))
	require.NoError(t, err)
	return svc, as
}

func TestService_Grants(t *testing.T) {
	ctx := context.Background()

	t.Run("login", func(t *testing.T) {
		svc, as := setupService(t)
		tok, err := svc.Login(ctx, testUsername, testPassword, testClientID, []oauth2.ApiRole{oauth2.Shopper, oauth2.MeAdmin}, nil)
		require.NoError(t, err)
		require.Equal(t, "a.b.c", tok.AccessToken)
		require.Equal(t, "r1", tok.RefreshToken)
		require.Equal(t, 600, tok.ExpiresIn)

		form := as.forms[0]
		require.Equal(t, "password", form.Get("grant_type"))
		require.Equal(t, testUsername, form.Get("username"))
		require.Equal(t, testPassword, form.Get("password"))
		require.Equal(t, testClientID, form.Get("client_id"))
		require.Equal(t, "Shopper MeAdmin", form.Get("scope"))
		require.False(t, form.Has("client_secret"))
	})

	t.Run("elevated login", func(t *testing.T) {
		svc, as := setupService(t)
		_, err := svc.ElevatedLogin(ctx, testClientSecret, testUsername, testPassword, testClientID, nil, []string{"InventoryAdmin"})
		require.NoError(t, err)

		form := as.forms[0]
		require.Equal(t, "password", form.Get("grant_type"))
		require.Equal(t, testClientSecret, form.Get("client_secret"))
		require.Equal(t, " InventoryAdmin", form.Get("scope"))
	})

	t.Run("client credentials", func(t *testing.T) {
		svc, as := setupService(t)
		_, err := svc.ClientCredentials(ctx, testClientSecret, testClientID, []oauth2.ApiRole{oauth2.BuyerAdmin}, []string{"InventoryAdmin"})
		require.NoError(t, err)

		form := as.forms[0]
		require.Equal(t, "client_credentials", form.Get("grant_type"))
		require.Equal(t, testClientSecret, form.Get("client_secret"))
		require.Equal(t, "BuyerAdmin InventoryAdmin", form.Get("scope"))
	})

	t.Run("refresh token", func(t *testing.T) {
		svc, as := setupService(t)
		_, err := svc.RefreshToken(ctx, "r1", testClientID)
		require.NoError(t, err)

		form := as.forms[0]
		require.Equal(t, "refresh_token", form.Get("grant_type"))
		require.Equal(t, "r1", form.Get("refresh_token"))
		require.Equal(t, testClientID, form.Get("client_id"))
		require.False(t, form.Has("scope"))
	})

	t.Run("anonymous", func(t *testing.T) {
		svc, as := setupService(t)
		anonID := auth.NewAnonUserID()
		_, err := svc.Anonymous(ctx, testClientID, []oauth2.ApiRole{oauth2.Shopper}, nil, auth.WithAnonUserID(anonID))
		require.NoError(t, err)

		form := as.forms[0]
		require.Equal(t, "client_credentials", form.Get("grant_type"))
		require.Equal(t, anonID, form.Get("anonuserid"))
		require.False(t, form.Has("client_secret"))
	})
}

func TestService_Errors(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid arguments are not sent", func(t *testing.T) {
		svc, as := setupService(t)
		_, err := svc.Login(ctx, "", testPassword, testClientID, nil, nil)
		require.True(t, errors.Is(err, auth.ErrInvalidGrant))

		_, err = svc.ClientCredentials(ctx, "", testClientID, nil, nil)
		require.True(t, errors.Is(err, auth.ErrInvalidGrant))

		_, err = svc.RefreshToken(ctx, "", testClientID)
		require.True(t, errors.Is(err, auth.ErrInvalidGrant))
		require.Empty(t, as.forms)
	})

	t.Run("non 2xx is an api error", func(t *testing.T) {
		svc, as := setupService(t)
		as.status = http.StatusBadRequest
		body, _ := json.Marshal(map[string]any{"Errors": []map[string]any{{"ErrorCode": "Auth.InvalidUsernameOrPassword", "Message": "bad credentials"}}})
		as.body = string(body)

		_, err := svc.Login(ctx, testUsername, testPassword, testClientID, nil, nil)
		apiErr, ok := apierror.As(err)
		require.True(t, ok)
		require.Equal(t, "Auth.InvalidUsernameOrPassword", apiErr.ErrorCode)
		require.Equal(t, "bad credentials", apiErr.Message)
	})

	t.Run("missing access token", func(t *testing.T) {
		svc, as := setupService(t)
		as.body = `{}`
		_, err := svc.RefreshToken(ctx, "r1", testClientID)
		require.True(t, errors.Is(err, auth.ErrNoTokenResponse))
	})

	t.Run("transport is required", func(t *testing.T) {
		_, err := auth.NewService(nil)
		require.Error(t, err)
	})
}
