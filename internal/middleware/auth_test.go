package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avend/stockroom/internal/user/domain"
)

type fakeSessions struct {
	sessions map[string]*domain.Session
}

func (f *fakeSessions) Create(session *domain.Session) error {
	f.sessions[session.Token] = session
	return nil
}

func (f *fakeSessions) FindByToken(token string) (*domain.Session, error) {
	session, ok := f.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (f *fakeSessions) DeleteByToken(token string) error {
	delete(f.sessions, token)
	return nil
}

func (f *fakeSessions) DeleteByUserID(userID string) error {
	for token, session := range f.sessions {
		if session.UserID == userID {
			delete(f.sessions, token)
		}
	}
	return nil
}

type fakeUsers struct {
	users map[string]*domain.User
}

func (f *fakeUsers) Create(user *domain.User) error {
	f.users[user.UserID] = user
	return nil
}

func (f *fakeUsers) FindByID(userID string) (*domain.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (f *fakeUsers) FindAll(limit, offset int) ([]domain.User, error) { return nil, nil }
func (f *fakeUsers) UpdateAccountLevel(userID string, level int) error {
	return nil
}
func (f *fakeUsers) Delete(userID string) error { return nil }
func (f *fakeUsers) Count() (int64, error)      { return int64(len(f.users)), nil }

func fixture(accountLevel int) (*SessionAuth, *fakeSessions) {
	sessions := &fakeSessions{sessions: make(map[string]*domain.Session)}
	users := &fakeUsers{users: map[string]*domain.User{
		"jo": {UserID: "jo", FirstName: "Jo", AccountLevel: accountLevel},
	}}
	return NewSessionAuth(sessions, users, "_SESSION"), sessions
}

func requestWithCookie(token string) *http.Request {
	r := httptest.NewRequest(http.MethodGet, "/homepage", nil)
	if token != "" {
		r.AddCookie(&http.Cookie{Name: "_SESSION", Value: token})
	}
	return r
}

func TestResolveValidSession(t *testing.T) {
	auth, sessions := fixture(0)
	sessions.Create(&domain.Session{
		Token:     "tok",
		UserID:    "jo",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	user, err := auth.Resolve(requestWithCookie("tok"))
	require.NoError(t, err)
	assert.Equal(t, "jo", user.UserID)
}

func TestResolveMissingCookie(t *testing.T) {
	auth, _ := fixture(0)

	_, err := auth.Resolve(requestWithCookie(""))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveUnknownToken(t *testing.T) {
	auth, _ := fixture(0)

	_, err := auth.Resolve(requestWithCookie("nope"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveExpiredSessionIsDeleted(t *testing.T) {
	auth, sessions := fixture(0)
	sessions.Create(&domain.Session{
		Token:     "old",
		UserID:    "jo",
		ExpiresAt: time.Now().Add(-time.Minute),
	})

	_, err := auth.Resolve(requestWithCookie("old"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, sessions.sessions, "expired sessions are removed on sight")
}

func TestRequireAuthInjectsUser(t *testing.T) {
	auth, sessions := fixture(0)
	sessions.Create(&domain.Session{
		Token:     "tok",
		UserID:    "jo",
		ExpiresAt: time.Now().Add(time.Hour),
	})

	var seen *domain.User
	handler := auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = UserFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookie("tok"))

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, "jo", seen.UserID)
}

func TestRequireAuthRejectsAnonymous(t *testing.T) {
	auth, _ := fixture(0)

	called := false
	handler := auth.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		called = true
	})

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, requestWithCookie(""))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, called)
}

func TestRequireAdmin(t *testing.T) {
	tests := []struct {
		name         string
		accountLevel int
		wantStatus   int
	}{
		{"regular user", domain.AdminLevel - 1, http.StatusForbidden},
		{"admin", domain.AdminLevel, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth, sessions := fixture(tt.accountLevel)
			sessions.Create(&domain.Session{
				Token:     "tok",
				UserID:    "jo",
				ExpiresAt: time.Now().Add(time.Hour),
			})

			handler := auth.RequireAdmin(func(w http.ResponseWriter, r *http.Request) {})

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, requestWithCookie("tok"))
			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
