package handler

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"
	sessionTTL        = 24 * time.Hour
)

type AuthHandler struct {
	oauthConfig  *oauth2.Config
	jwtSecret    []byte
	frontendURL  string
	cfg          *config.Config
	isProduction bool
	userInfoURL  string
	httpClient   *http.Client
	logger       *slog.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Claims is the session token payload. Subject holds the Google account id.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthHandler(cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		jwtSecret:    []byte(cfg.JWTSecret),
		frontendURL:  cfg.FrontendURL,
		cfg:          cfg,
		isProduction: cfg.IsProduction(),
		userInfoURL:  googleUserInfoURL,
		httpClient:   http.DefaultClient,
		logger:       logging.ForModule("auth"),
	}
}

// IssueToken signs a session token for user.
func IssueToken(secret []byte, user GoogleUser, ttl time.Duration) (string, time.Time, error) {
	expirationTime := time.Now().Add(ttl)
	claims := &Claims{
		Email: user.Email,
		Name:  user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
		},
	}
	tokenString, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return tokenString, expirationTime, nil
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	url := h.oauthConfig.AuthCodeURL(state)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	log := logging.FromContext(r.Context(), h.logger)

	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		log.Warn("callback without oauthstate cookie", "error", err)
		http.Redirect(w, r, "/", http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		log.Warn("callback with invalid oauth state")
		RespondMessage(w, http.StatusBadRequest, "invalid oauth google state")
		return
	}

	ctx := context.WithValue(r.Context(), oauth2.HTTPClient, h.httpClient)
	token, err := h.oauthConfig.Exchange(ctx, r.FormValue("code"))
	if err != nil {
		log.Error("code exchange failed", "error", err)
		RespondMessage(w, http.StatusBadGateway, "code exchange failed")
		return
	}

	googleUser, err := h.fetchUser(ctx, token)
	if err != nil {
		log.Error("failed getting user info", "error", err)
		RespondMessage(w, http.StatusBadGateway, "failed getting user info")
		return
	}
	if googleUser.ID == "" {
		log.Error("user info without account id")
		RespondMessage(w, http.StatusBadGateway, "failed getting user info")
		return
	}

	if !h.cfg.EmailAllowed(googleUser.Email) {
		log.Warn("email not in allowlist", "email", googleUser.Email)
		RespondMessage(w, http.StatusForbidden, "Access denied: your email is not in the allowlist")
		return
	}

	tokenString, expirationTime, err := IssueToken(h.jwtSecret, googleUser, sessionTTL)
	if err != nil {
		log.Error("failed signing JWT", "error", err)
		RespondMessage(w, http.StatusInternalServerError, "internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    tokenString,
		Expires:  expirationTime,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})

	log.Info("login successful", "user_id", googleUser.ID)
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) fetchUser(ctx context.Context, token *oauth2.Token) (GoogleUser, error) {
	var user GoogleUser
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return user, err
	}
	response, err := h.oauthConfig.Client(ctx, token).Do(req)
	if err != nil {
		return user, err
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return user, fmt.Errorf("userinfo returned %s", response.Status)
	}
	if err := json.NewDecoder(response.Body).Decode(&user); err != nil {
		return user, fmt.Errorf("decode user info: %w", err)
	}
	return user, nil
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookieName,
		Value:    "",
		Expires:  time.Now().Add(-1 * time.Hour),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	cookie := http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	}
	http.SetCookie(w, &cookie)
	return state
}
