package fakeapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-jose/go-jose/v4"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-ordercloud/models"
	"github.com/jrsteele09/go-ordercloud/oauth2"
	"github.com/pkg/errors"
)

type refreshGrant struct {
	username string
	clientID string
	roles    []string
}

// IssueToken signs an access token for username valid for ttl. A negative
// ttl gives a token that is already expired.
func (s *Server) IssueToken(username, clientID string, roles []string, ttl time.Duration) (string, error) {
	now := s.nowFunc()
	claims := jwtlib.MapClaims{
		"iss":     issuer,
		"aud":     issuer,
		"sub":     username,
		"usr":     username,
		"cid":     clientID,
		"usrtype": "buyer",
		"role":    roles,
		"iat":     now.Unix(),
		"nbf":     now.Add(-time.Minute).Unix(),
		"exp":     now.Add(ttl).Unix(),
		"jti":     uuid.NewString(),
	}
	tok := jwtlib.NewWithClaims(jwtlib.SigningMethodRS256, claims)
	tok.Header["kid"] = s.kid
	signed, err := tok.SignedString(s.key)
	if err != nil {
		return "", errors.Wrap(err, "Server.IssueToken")
	}
	return signed, nil
}

// IssueRefreshToken registers a refresh token for username.
func (s *Server) IssueRefreshToken(username, clientID string, roles []string) string {
	refreshToken := uuid.NewString()
	s.lock.Lock()
	defer s.lock.Unlock()
	s.refreshTokens[refreshToken] = refreshGrant{username: username, clientID: clientID, roles: roles}
	return refreshToken
}

func (s *Server) parseToken(raw string) (jwtlib.MapClaims, error) {
	claims := jwtlib.MapClaims{}
	_, err := jwtlib.ParseWithClaims(raw, claims,
		func(*jwtlib.Token) (any, error) { return &s.key.PublicKey, nil },
		jwtlib.WithValidMethods([]string{jwtlib.SigningMethodRS256.Alg()}),
		jwtlib.WithTimeFunc(s.nowFunc),
		jwtlib.WithExpirationRequired(),
	)
	if err != nil {
		return nil, err
	}
	return claims, nil
}

// TokenHandler serves the password, client_credentials and refresh_token grants.
func (s *Server) TokenHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			writeJSONError(w, "invalid_request", "Failed to parse form data", http.StatusBadRequest)
			return
		}
		clientID := r.FormValue("client_id")
		if s.clientID != "" && clientID != s.clientID {
			writeJSONError(w, "invalid_client", "Unknown client", http.StatusBadRequest)
			return
		}

		grantType := oauth2.GrantType(r.FormValue("grant_type"))
		grant := refreshGrant{clientID: clientID, roles: strings.Fields(r.FormValue("scope"))}
		issueRefresh := false

		switch grantType {
		case oauth2.PasswordGrant:
			grant.username = r.FormValue("username")
			if !s.checkPassword(grant.username, r.FormValue("password")) {
				writeJSONError(w, "invalid_grant", "Invalid username or password", http.StatusBadRequest)
				return
			}
			if secret := r.FormValue("client_secret"); secret != "" && secret != s.secret {
				writeJSONError(w, "invalid_client", "Invalid client secret", http.StatusBadRequest)
				return
			}
			issueRefresh = true
		case oauth2.ClientCredentialsGrant:
			switch secret := r.FormValue("client_secret"); {
			case secret == "":
				grant.username = r.FormValue("anonuserid")
				if grant.username == "" {
					grant.username = uuid.NewString()
				}
			case s.secret != "" && secret == s.secret:
				grant.username = "integration"
			default:
				writeJSONError(w, "invalid_client", "Invalid client secret", http.StatusBadRequest)
				return
			}
		case oauth2.RefreshTokenGrant:
			s.lock.RLock()
			stored, ok := s.refreshTokens[r.FormValue("refresh_token")]
			s.lock.RUnlock()
			if !ok || stored.clientID != clientID {
				writeJSONError(w, "invalid_grant", "Refresh token is invalid", http.StatusBadRequest)
				return
			}
			grant = stored
		default:
			writeJSONError(w, "unsupported_grant_type", "Unsupported grant type", http.StatusBadRequest)
			return
		}

		accessToken, err := s.IssueToken(grant.username, grant.clientID, grant.roles, s.tokenTTL)
		if err != nil {
			writeJSONError(w, "server_error", err.Error(), http.StatusInternalServerError)
			return
		}
		resp := oauth2.AccessToken{
			AccessToken: accessToken,
			ExpiresIn:   int(s.tokenTTL.Seconds()),
			TokenType:   "bearer",
		}
		if issueRefresh {
			resp.RefreshToken = s.IssueRefreshToken(grant.username, grant.clientID, grant.roles)
		}

		s.lock.Lock()
		s.grants[grantType]++
		s.lock.Unlock()

		w.Header().Set("Cache-Control", "no-store")
		w.Header().Set("Pragma", "no-cache")
		writeJSON(w, http.StatusOK, resp)
	}
}

// CertsHandler returns the public key used to sign tokens.
func (s *Server) CertsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		kid := r.PathValue("kid")
		if kid != s.kid {
			writeNotFound(w, "PublicKey", kid)
			return
		}
		jwk := jose.JSONWebKey{
			Key:       &s.key.PublicKey,
			KeyID:     s.kid,
			Algorithm: jwtlib.SigningMethodRS256.Alg(),
			Use:       "sig",
		}
		data, err := jwk.MarshalJSON()
		if err != nil {
			writeAPIError(w, http.StatusInternalServerError, "InternalServerError", err.Error(), nil)
			return
		}
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "public, max-age=3600")
		_, _ = w.Write(data)
	}
}

func (s *Server) UserInfoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims := claimsFrom(r)
		username := claimString(claims, "usr")
		writeJSON(w, http.StatusOK, models.UserInfo{
			Sub:               username,
			PreferredUsername: username,
			ClientID:          claimString(claims, "cid"),
			UserType:          claimString(claims, "usrtype"),
		})
	}
}

func claimString(claims jwtlib.MapClaims, name string) string {
	value, _ := claims[name].(string)
	return value
}
