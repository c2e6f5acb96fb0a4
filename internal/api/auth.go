package api

import (
	"net"
	"net/http"
	"strings"
	"sync"

	"spotbook/internal/config"
	"spotbook/internal/domain"

	"golang.org/x/time/rate"
)

// SessionAuth resolves opaque session tokens into user ids and applies
// per-client rate limiting. Issuing tokens is an external concern; this side
// only trusts what the session store resolves.
type SessionAuth struct {
	header    string
	rateLimit config.RateLimitConfig
	sessions  domain.SessionStore
	limiters  sync.Map // map[string]*rate.Limiter
}

func NewSessionAuth(authCfg config.AuthConfig, rlCfg config.RateLimitConfig, sessions domain.SessionStore) *SessionAuth {
	header := strings.TrimSpace(strings.ToLower(authCfg.HeaderSessionToken))
	if header == "" {
		header = "x-session-token"
	}
	return &SessionAuth{header: header, rateLimit: rlCfg, sessions: sessions}
}

// Wrap applies rate limiting to every request. Authentication itself is
// per-endpoint because most reads are public.
func (a *SessionAuth) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := a.checkRateLimit(r); err != nil {
			writeError(w, http.StatusTooManyRequests, err.Error(), nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// UserID resolves the caller's session token, if any.
func (a *SessionAuth) UserID(r *http.Request) (int64, bool) {
	token := strings.TrimSpace(r.Header.Get(a.header))
	if token == "" {
		return 0, false
	}
	userID, err := a.sessions.Resolve(r.Context(), token)
	if err != nil {
		return 0, false
	}
	return userID, true
}

// Require resolves the caller or answers 401.
func (a *SessionAuth) Require(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := a.UserID(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required", nil)
		return 0, false
	}
	return userID, true
}

var errRateLimited = &rateLimitError{}

type rateLimitError struct{}

func (*rateLimitError) Error() string { return "rate limit exceeded" }

func (a *SessionAuth) checkRateLimit(r *http.Request) error {
	if a.rateLimit.RPS <= 0 {
		return nil
	}

	key := a.clientKey(r)
	lim := a.getLimiter(key)
	if !lim.Allow() {
		return errRateLimited
	}
	return nil
}

// clientKey prefers the session token so authenticated clients do not share a
// bucket; anonymous callers fall back to the remote host.
func (a *SessionAuth) clientKey(r *http.Request) string {
	if token := strings.TrimSpace(r.Header.Get(a.header)); token != "" {
		return token
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err == nil && host != "" {
		return host
	}
	return "unknown"
}

func (a *SessionAuth) getLimiter(key string) *rate.Limiter {
	if v, ok := a.limiters.Load(key); ok {
		return v.(*rate.Limiter)
	}

	burst := a.rateLimit.Burst
	if burst <= 0 {
		burst = 5
	}

	lim := rate.NewLimiter(rate.Limit(a.rateLimit.RPS), burst)
	actual, loaded := a.limiters.LoadOrStore(key, lim)
	if loaded {
		return actual.(*rate.Limiter)
	}
	return lim
}
