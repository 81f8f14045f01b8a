package handler

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/config"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/logging"
	"github.com/wadjakorntonsri/go-diecast-catalog/pkg/metrics"
)

const authCookieName = "auth_token"

// User is the authenticated caller. ID is the stable account id used to key
// collections.
type User struct {
	ID    string
	Email string
}

type userContextKey struct{}

// WithUser stores u in ctx.
func WithUser(ctx context.Context, u User) context.Context {
	return context.WithValue(ctx, userContextKey{}, u)
}

// UserFromContext returns the user set by AuthMiddleware.
func UserFromContext(ctx context.Context) (User, bool) {
	u, ok := ctx.Value(userContextKey{}).(User)
	return u, ok
}

type Middleware struct {
	jwtSecret []byte
	metrics   *metrics.Metrics
	logger    *slog.Logger

	rps        rate.Limit
	burst      int
	limiters   *cache.Cache
	trustProxy bool
}

func NewMiddleware(cfg *config.Config, m *metrics.Metrics) *Middleware {
	return &Middleware{
		jwtSecret: []byte(cfg.JWTSecret),
		metrics:   m,
		logger:    logging.ForModule("http"),
		rps:       rate.Limit(cfg.RateLimitRPS),
		burst:     cfg.RateLimitBurst,
		limiters:  cache.New(10*time.Minute, 20*time.Minute),

		trustProxy: cfg.TrustProxyHeaders,
	}
}

// AuthMiddleware verifies the JWT from the auth cookie or a Bearer header
func (m *Middleware) AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			if cookie, err := r.Cookie(authCookieName); err == nil {
				tokenString = cookie.Value
			}
		}
		if tokenString == "" {
			m.unauthorized(w, r)
			return
		}

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return m.jwtSecret, nil
		}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

		if err != nil || !token.Valid || claims.Subject == "" {
			m.unauthorized(w, r)
			return
		}

		ctx := WithUser(r.Context(), User{ID: claims.Subject, Email: claims.Email})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request) {
	if isAPIRequest(r) {
		RespondMessage(w, http.StatusUnauthorized, "unauthorized")
	} else {
		http.Redirect(w, r, "/auth/google/login", http.StatusTemporaryRedirect)
	}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "Bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func isAPIRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/api/")
}

// RateLimit applies a token bucket per client address. A non-positive rate
// disables limiting.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	if m.rps <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter(m.clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			RespondMessage(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (m *Middleware) limiter(key string) *rate.Limiter {
	if v, found := m.limiters.Get(key); found {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(m.rps, m.burst)
	if err := m.limiters.Add(key, l, cache.DefaultExpiration); err != nil {
		// Another request created it first.
		if v, found := m.limiters.Get(key); found {
			return v.(*rate.Limiter)
		}
	}
	return l
}

// clientIP keys rate limits. X-Forwarded-For is client controlled, so it is
// read only when a trusted proxy sets it.
func (m *Middleware) clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); m.trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger tags each request with an id, then logs and measures it.
func (m *Middleware) RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", id)

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		req := r.WithContext(logging.WithRequestID(r.Context(), id))
		next.ServeHTTP(rec, req)

		route := req.Pattern
		if route == "" {
			route = "unmatched"
		}
		duration := time.Since(start)
		m.metrics.ObserveHTTPRequest(r.Method, route, rec.status, duration)
		logging.FromContext(req.Context(), m.logger).Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", duration)
	})
}
