package command

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/avend/stockroom/internal/user/domain"
	"github.com/avend/stockroom/internal/user/repository"
)

// memorySessionRepo is a map-backed stand-in for the SQL session store
type memorySessionRepo struct {
	sessions map[string]*domain.Session
}

func newMemorySessionRepo() *memorySessionRepo {
	return &memorySessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memorySessionRepo) Create(session *domain.Session) error {
	r.sessions[session.Token] = session
	return nil
}

func (r *memorySessionRepo) FindByToken(token string) (*domain.Session, error) {
	session, ok := r.sessions[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return session, nil
}

func (r *memorySessionRepo) DeleteByToken(token string) error {
	delete(r.sessions, token)
	return nil
}

func (r *memorySessionRepo) DeleteByUserID(userID string) error {
	for token, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, token)
		}
	}
	return nil
}

func newUserRepo(t *testing.T) *repository.GormUserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	repo := repository.NewGormUserRepository(db)
	require.NoError(t, repo.AutoMigrate())
	return repo
}

func registerTestUser(t *testing.T, users domain.UserRepository, userID string) {
	t.Helper()
	_, err := NewRegisterUserHandler(users).Handle(RegisterUserCommand{
		UserID:    userID,
		FirstName: "Jo",
		LastName:  "Smith",
		Password:  "secret1",
	})
	require.NoError(t, err)
}

func TestRegisterStoresHashedPassword(t *testing.T) {
	users := newUserRepo(t)
	registerTestUser(t, users, "jo")

	stored, err := users.FindByID("jo")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)
	assert.Equal(t, 0, stored.AccountLevel, "new accounts start untrusted")
}

func TestRegisterDuplicateUserID(t *testing.T) {
	users := newUserRepo(t)
	registerTestUser(t, users, "jo")

	_, err := NewRegisterUserHandler(users).Handle(RegisterUserCommand{
		UserID:    "jo",
		FirstName: "Other",
		LastName:  "Person",
		Password:  "different",
	})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestRegisterShortPassword(t *testing.T) {
	users := newUserRepo(t)

	_, err := NewRegisterUserHandler(users).Handle(RegisterUserCommand{
		UserID:    "jo",
		FirstName: "Jo",
		LastName:  "Smith",
		Password:  "tiny",
	})
	assert.Error(t, err)
}

func TestLoginCreatesSession(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()
	registerTestUser(t, users, "jo")

	response, err := NewLoginUserHandler(users, sessions, 12*time.Hour).Handle(LoginUserCommand{
		UserID:   "jo",
		Password: "secret1",
	})
	require.NoError(t, err)
	require.NotEmpty(t, response.Token)

	session, err := sessions.FindByToken(response.Token)
	require.NoError(t, err)
	assert.Equal(t, "jo", session.UserID)
	assert.WithinDuration(t, time.Now().Add(12*time.Hour), session.ExpiresAt, time.Minute)
}

func TestLoginWrongPassword(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()
	registerTestUser(t, users, "jo")

	_, err := NewLoginUserHandler(users, sessions, time.Hour).Handle(LoginUserCommand{
		UserID:   "jo",
		Password: "wrong",
	})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.Empty(t, sessions.sessions, "failed login must not create a session")
}

func TestLoginUnknownUser(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()

	_, err := NewLoginUserHandler(users, sessions, time.Hour).Handle(LoginUserCommand{
		UserID:   "ghost",
		Password: "secret1",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReloginInvalidatesOldSession(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()
	registerTestUser(t, users, "jo")

	handler := NewLoginUserHandler(users, sessions, time.Hour)

	first, err := handler.Handle(LoginUserCommand{UserID: "jo", Password: "secret1"})
	require.NoError(t, err)
	second, err := handler.Handle(LoginUserCommand{UserID: "jo", Password: "secret1"})
	require.NoError(t, err)

	_, err = sessions.FindByToken(first.Token)
	assert.ErrorIs(t, err, domain.ErrNotFound, "old session must be gone")
	_, err = sessions.FindByToken(second.Token)
	assert.NoError(t, err)
}

func TestLogoutIsIdempotent(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()
	registerTestUser(t, users, "jo")

	response, err := NewLoginUserHandler(users, sessions, time.Hour).Handle(LoginUserCommand{
		UserID:   "jo",
		Password: "secret1",
	})
	require.NoError(t, err)

	logout := NewLogoutUserHandler(sessions)
	require.NoError(t, logout.Handle(LogoutUserCommand{Token: response.Token}))
	require.NoError(t, logout.Handle(LogoutUserCommand{Token: response.Token}))
	require.NoError(t, logout.Handle(LogoutUserCommand{Token: ""}))
}

func TestDeleteUserGuards(t *testing.T) {
	users := newUserRepo(t)
	sessions := newMemorySessionRepo()

	registerTestUser(t, users, "admin")
	registerTestUser(t, users, "worker")
	registerTestUser(t, users, "boss")
	require.NoError(t, users.UpdateAccountLevel("admin", domain.AdminLevel))
	require.NoError(t, users.UpdateAccountLevel("boss", domain.AdminLevel))

	handler := NewDeleteUserHandler(users, sessions)

	// Non-admin actors are refused
	err := handler.Handle(DeleteUserCommand{ActorID: "worker", TargetID: "admin"})
	assert.Error(t, err)

	// Admins cannot delete themselves
	err = handler.Handle(DeleteUserCommand{ActorID: "admin", TargetID: "admin"})
	assert.Error(t, err)

	// Admins cannot delete other admins
	err = handler.Handle(DeleteUserCommand{ActorID: "admin", TargetID: "boss"})
	assert.Error(t, err)

	// Deleting a regular user works and drops their sessions
	_, err = NewLoginUserHandler(users, sessions, time.Hour).Handle(LoginUserCommand{UserID: "worker", Password: "secret1"})
	require.NoError(t, err)
	require.NoError(t, handler.Handle(DeleteUserCommand{ActorID: "admin", TargetID: "worker"}))

	_, err = users.FindByID("worker")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, sessions.sessions)
}

func TestUpdateAccountLevels(t *testing.T) {
	users := newUserRepo(t)
	registerTestUser(t, users, "jo")
	registerTestUser(t, users, "sam")

	handler := NewUpdateAccountLevelsHandler(users)

	// Below admin level the whole batch is refused
	err := handler.Handle(UpdateAccountLevelsCommand{
		ActorLevel: domain.AdminLevel - 1,
		Levels:     map[string]int{"jo": 5},
	})
	assert.Error(t, err)

	// Unknown ids are skipped, known ones applied
	err = handler.Handle(UpdateAccountLevelsCommand{
		ActorLevel: domain.AdminLevel,
		Levels:     map[string]int{"jo": 5, "ghost": 3},
	})
	require.NoError(t, err)

	jo, err := users.FindByID("jo")
	require.NoError(t, err)
	assert.Equal(t, 5, jo.AccountLevel)

	sam, err := users.FindByID("sam")
	require.NoError(t, err)
	assert.Equal(t, 0, sam.AccountLevel)
}
