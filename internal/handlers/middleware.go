package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"rocketlearn/internal/models"
	"rocketlearn/internal/security"
	"rocketlearn/internal/session"
)

// ContextKey is a custom type for context keys to avoid collisions
type ContextKey string

const UserContextKey ContextKey = "user"

// Middleware holds dependencies for middleware functions
type Middleware struct {
	store   *session.Store
	issuer  *security.TokenIssuer
	limiter *security.RateLimiter
}

// NewMiddleware creates a new middleware instance
func NewMiddleware(store *session.Store, issuer *security.TokenIssuer, limiter *security.RateLimiter) *Middleware {
	return &Middleware{
		store:   store,
		issuer:  issuer,
		limiter: limiter,
	}
}

// RequireAuth validates the session token cookie and checks it against
// the active session. The token names a user; if that user is no
// longer the active session (logout, or a switch to another profile)
// the cookie is stale and gets cleared.
func (m *Middleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(security.SessionCookieName)
		if err != nil {
			respondWithError(w, http.StatusUnauthorized, "Authentication required", "", nil)
			return
		}

		userID, err := m.issuer.Verify(cookie.Value)
		if err != nil {
			http.SetCookie(w, security.DeleteSessionCookie(r))
			if errors.Is(err, security.ErrExpiredToken) {
				respondWithError(w, http.StatusUnauthorized, "Session expired", "", nil)
				return
			}
			respondWithError(w, http.StatusUnauthorized, "Invalid session", "", nil)
			return
		}

		user := m.store.CurrentUser()
		if user == nil || user.ID != userID {
			http.SetCookie(w, security.DeleteSessionCookie(r))
			respondWithError(w, http.StatusUnauthorized, "Session is no longer active", "", nil)
			return
		}

		ctx := context.WithValue(r.Context(), UserContextKey, user)
		next(w, r.WithContext(ctx))
	}
}

// RateLimit rejects clients that exceed the per-IP budget.
func (m *Middleware) RateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !m.limiter.Allow(security.ClientIP(r)) {
			respondWithError(w, http.StatusTooManyRequests, "Too many requests", "", nil)
			return
		}
		next(w, r)
	}
}

// Logging middleware logs HTTP requests
func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		next.ServeHTTP(w, r)

		log.Printf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}

// GetUserFromContext retrieves the user from the request context
func GetUserFromContext(ctx context.Context) *models.User {
	user, ok := ctx.Value(UserContextKey).(*models.User)
	if !ok {
		return nil
	}
	return user
}
