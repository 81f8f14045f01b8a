package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
)

const googleTokenURL = "https://oauth2.googleapis.com/token"

func newMockedAuthHandler(t *testing.T, cfg *config.Config) (*AuthHandler, *httpmock.MockTransport) {
	t.Helper()
	transport := httpmock.NewMockTransport()
	h := NewAuthHandler(cfg)
	h.httpClient = &http.Client{Transport: transport}
	return h, transport
}

func callbackRequest(state, cookieState string) *http.Request {
	req := httptest.NewRequest("GET", "/auth/google/callback?state="+url.QueryEscape(state)+"&code=auth-code", nil)
	if cookieState != "" {
		req.AddCookie(&http.Cookie{Name: "oauthstate", Value: cookieState})
	}
	return req
}

func TestAuthHandler_Login(t *testing.T) {
	h := NewAuthHandler(&config.Config{GoogleClientID: "client-id", GoogleRedirectURL: "http://localhost:8080/auth/google/callback"})

	rr := httptest.NewRecorder()
	h.Login(rr, httptest.NewRequest("GET", "/auth/google/login", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	loc, err := url.Parse(rr.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "accounts.google.com", loc.Host)
	assert.Equal(t, "client-id", loc.Query().Get("client_id"))

	var state *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == "oauthstate" {
			state = c
		}
	}
	require.NotNil(t, state)
	assert.Equal(t, state.Value, loc.Query().Get("state"))
	assert.True(t, state.HttpOnly)
}

func TestAuthHandler_Callback(t *testing.T) {
	user := map[string]any{
		"id":             "google-123",
		"email":          "collector@example.com",
		"verified_email": true,
		"name":           "Collector",
	}

	t.Run("success sets session cookie", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret", FrontendURL: "http://localhost:3000"})
		transport.RegisterResponder("POST", googleTokenURL,
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"access_token": "access", "token_type": "Bearer", "expires_in": 3600}))
		transport.RegisterResponder("GET", googleUserInfoURL, httpmock.NewJsonResponderOrPanic(200, user))

		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("xyz", "xyz"))

		require.Equal(t, http.StatusTemporaryRedirect, rr.Code, rr.Body.String())
		assert.Equal(t, "http://localhost:3000", rr.Header().Get("Location"))

		var session *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == authCookieName {
				session = c
			}
		}
		require.NotNil(t, session)
		assert.True(t, session.HttpOnly)

		claims := &Claims{}
		_, err := jwt.ParseWithClaims(session.Value, claims, func(*jwt.Token) (any, error) { return []byte("secret"), nil })
		require.NoError(t, err)
		assert.Equal(t, "google-123", claims.Subject)
		assert.Equal(t, "collector@example.com", claims.Email)

		info := transport.GetCallCountInfo()
		assert.Equal(t, 1, info["POST "+googleTokenURL])
		assert.Equal(t, 1, info["GET "+googleUserInfoURL])
	})

	t.Run("missing state cookie", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret"})
		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("xyz", ""))
		assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
		assert.Equal(t, "/", rr.Header().Get("Location"))
		assert.Zero(t, transport.GetTotalCallCount())
	})

	t.Run("state mismatch", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret"})
		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("forged", "xyz"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Zero(t, transport.GetTotalCallCount())
	})

	t.Run("token exchange failure", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret"})
		transport.RegisterResponder("POST", googleTokenURL,
			httpmock.NewJsonResponderOrPanic(400, map[string]any{"error": "invalid_grant"}))

		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("xyz", "xyz"))
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("user info failure", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret"})
		transport.RegisterResponder("POST", googleTokenURL,
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"access_token": "access", "token_type": "Bearer"}))
		transport.RegisterResponder("GET", googleUserInfoURL, httpmock.NewStringResponder(500, "boom"))

		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("xyz", "xyz"))
		assert.Equal(t, http.StatusBadGateway, rr.Code)
	})

	t.Run("email not allowed", func(t *testing.T) {
		h, transport := newMockedAuthHandler(t, &config.Config{JWTSecret: "secret", AllowedEmails: []string{"owner@example.com"}})
		transport.RegisterResponder("POST", googleTokenURL,
			httpmock.NewJsonResponderOrPanic(200, map[string]any{"access_token": "access", "token_type": "Bearer"}))
		transport.RegisterResponder("GET", googleUserInfoURL, httpmock.NewJsonResponderOrPanic(200, user))

		rr := httptest.NewRecorder()
		h.Callback(rr, callbackRequest("xyz", "xyz"))
		assert.Equal(t, http.StatusForbidden, rr.Code)
		for _, c := range rr.Result().Cookies() {
			assert.NotEqual(t, authCookieName, c.Name)
		}
	})
}

func TestAuthHandler_Logout(t *testing.T) {
	h := NewAuthHandler(&config.Config{FrontendURL: "http://localhost:3000"})
	rr := httptest.NewRecorder()
	h.Logout(rr, httptest.NewRequest("GET", "/auth/logout", nil))

	assert.Equal(t, http.StatusTemporaryRedirect, rr.Code)
	header := strings.Join(rr.Header().Values("Set-Cookie"), ";")
	assert.Contains(t, header, authCookieName+"=;")
}
