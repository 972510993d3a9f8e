package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/avend/stockroom/internal/user/domain"
	"github.com/avend/stockroom/pkg/logger"
)

type contextKey string

const userKey contextKey = "current_user"

// SessionAuth resolves the session cookie into the logged-in user
type SessionAuth struct {
	sessions   domain.SessionRepository
	users      domain.UserRepository
	cookieName string
}

// NewSessionAuth creates a new session auth middleware
func NewSessionAuth(sessions domain.SessionRepository, users domain.UserRepository, cookieName string) *SessionAuth {
	return &SessionAuth{
		sessions:   sessions,
		users:      users,
		cookieName: cookieName,
	}
}

// CookieName returns the name of the session cookie
func (a *SessionAuth) CookieName() string {
	return a.cookieName
}

// UserFromContext returns the authenticated user stored by the middleware
func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(userKey).(*domain.User)
	return user, ok
}

// Resolve looks up the user behind the request's session cookie.
// Expired sessions are deleted on sight.
func (a *SessionAuth) Resolve(r *http.Request) (*domain.User, error) {
	cookie, err := r.Cookie(a.cookieName)
	if err != nil || cookie.Value == "" {
		return nil, domain.ErrUnauthorized
	}

	session, err := a.sessions.FindByToken(cookie.Value)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	if session.Expired(time.Now()) {
		if err := a.sessions.DeleteByToken(session.Token); err != nil {
			logger.Logger.Warn().
				Err(err).
				Str("user_id", session.UserID).
				Msg("Failed to delete expired session")
		}
		return nil, domain.ErrUnauthorized
	}

	user, err := a.users.FindByID(session.UserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}

	return user, nil
}

// RequireAuth rejects requests without a valid session
func (a *SessionAuth) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		user, err := a.Resolve(r)
		if err != nil {
			respondError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		ctx := context.WithValue(r.Context(), userKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin rejects requests from users below the admin level
func (a *SessionAuth) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return a.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		user, ok := UserFromContext(r.Context())
		if !ok || !user.IsAdmin() {
			respondError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func respondError(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
