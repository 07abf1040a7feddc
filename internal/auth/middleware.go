package auth

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"
)

// CookieName is the credential cookie set at login.
const CookieName = "authToken"

type contextKey int

const usernameKey contextKey = iota

// UsernameFromContext returns the verified username placed on the request
// context by the access gate, or "" for unauthenticated requests.
func UsernameFromContext(r *http.Request) string {
	if v, ok := r.Context().Value(usernameKey).(string); ok {
		return v
	}
	return ""
}

// withUsername attaches the verified username to the request context.
func withUsername(r *http.Request, username string) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), usernameKey, username))
}

// RequireAuth is middleware that redirects unauthenticated web requests to
// the login page. It skips public paths and API paths (API paths are
// handled by RequireToken). A stale or invalid cookie is cleared before
// the redirect.
func RequireAuth(tokens *TokenService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isPublicPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := verifyRequest(tokens, r)
		if err != nil {
			ClearCookie(w)
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		next.ServeHTTP(w, withUsername(r, claims.Username))
	})
}

// RequireToken is middleware that validates the credential on /api/ routes,
// from either the Authorization header (Bearer) or the authToken cookie.
// Login and passkey login endpoints stay open; everything else returns
// 401 for a missing or invalid credential.
func RequireToken(tokens *TokenService, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/api/") {
			next.ServeHTTP(w, r)
			return
		}

		if isOpenAPIPath(r.URL.Path) {
			next.ServeHTTP(w, r)
			return
		}

		claims, err := verifyRequest(tokens, r)
		if err != nil {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"error":"authentication required"}`))
			return
		}

		next.ServeHTTP(w, withUsername(r, claims.Username))
	})
}

// verifyRequest extracts the credential from the Authorization header or
// the cookie and verifies it.
func verifyRequest(tokens *TokenService, r *http.Request) (*Claims, error) {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return tokens.Verify(strings.TrimPrefix(h, "Bearer "))
	}

	cookie, err := r.Cookie(CookieName)
	if err != nil {
		return nil, err
	}
	return tokens.Verify(cookie.Value)
}

// SetCookie writes the credential cookie on a successful login.
func SetCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(TokenValidity / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearCookie removes the credential cookie on logout or verification
// failure.
func ClearCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func isPublicPath(path string) bool {
	if path == "/login" || path == "/health" {
		return true
	}
	if strings.HasPrefix(path, "/static/") {
		return true
	}
	// Passkey login endpoints must be public (user isn't authenticated yet)
	if path == "/passkey/login/begin" || path == "/passkey/login/finish" {
		return true
	}
	return false
}

func isOpenAPIPath(path string) bool {
	return path == "/api/auth/login" || path == "/api/health"
}

// LoginLimiter tracks failed login attempts per IP over a sliding window.
type LoginLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

// NewLoginLimiter creates an empty limiter.
func NewLoginLimiter() *LoginLimiter {
	return &LoginLimiter{attempts: make(map[string][]time.Time)}
}

const (
	rateLimitWindow  = 1 * time.Minute
	rateLimitMaxFail = 10
)

// RecordFailure records a failed attempt and returns true if the IP is
// now rate limited.
func (rl *LoginLimiter) RecordFailure(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cutoff := now.Add(-rateLimitWindow)

	// Prune old entries
	valid := rl.attempts[ip][:0]
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}

	valid = append(valid, now)
	rl.attempts[ip] = valid

	return len(valid) > rateLimitMaxFail
}

// Limited reports whether the IP has already exceeded the failure budget.
func (rl *LoginLimiter) Limited(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-rateLimitWindow)
	var n int
	for _, t := range rl.attempts[ip] {
		if t.After(cutoff) {
			n++
		}
	}
	return n > rateLimitMaxFail
}
