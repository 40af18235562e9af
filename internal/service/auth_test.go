package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/auth"
	"github.com/sakif/event-manager/internal/model"
)

// =========================================================================
// FAKES AND HELPERS
// =========================================================================

// fakeUserRepo is an in-memory repository.UserRepository.
// Using a fake (not a mock framework) keeps tests easy to read: you can see
// exactly what the fake does.
type fakeUserRepo struct {
	mu     sync.Mutex
	users  []model.User
	nextID int
	// set to a non-nil error to simulate a storage failure
	createErr error
	getErr    error
}

func (f *fakeUserRepo) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	for _, existing := range f.users {
		if existing.Username == u.Username || existing.Email == u.Email {
			return apperror.Conflict("User already registered with this username or email.")
		}
	}
	f.nextID++
	u.ID = "user-" + string(rune('0'+f.nextID))
	f.users = append(f.users, *u)
	return nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperror.NotFound("user not found")
}

// fakeBlacklist is an in-memory repository.BlacklistRepository.
type fakeBlacklist struct {
	mu          sync.Mutex
	tokens      map[string]bool
	addErr      error
	containsErr error
}

func newFakeBlacklist() *fakeBlacklist {
	return &fakeBlacklist{tokens: make(map[string]bool)}
}

func (f *fakeBlacklist) Add(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.tokens[token] = true
	return nil
}

func (f *fakeBlacklist) Contains(_ context.Context, token string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.containsErr != nil {
		return false, f.containsErr
	}
	return f.tokens[token], nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

const testSecret = "test-secret-at-least-16-chars!!"

type authFixture struct {
	svc       *AuthService
	users     *fakeUserRepo
	blacklist *fakeBlacklist
	tokens    *auth.TokenService
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	tokens, err := auth.NewTokenService(testSecret)
	require.NoError(t, err)

	f := &authFixture{
		users:     &fakeUserRepo{},
		blacklist: newFakeBlacklist(),
		tokens:    tokens,
	}
	f.svc = NewAuthService(f.users, f.blacklist, tokens, auth.NewPasswordServiceForTest(bcrypt.MinCost), discardLogger())
	return f
}

// registerAndLogin registers u1 and returns a fresh token for it.
func (f *authFixture) registerAndLogin(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterParams{Username: "u1", Email: "u1@example.com", Password: "secret1"})
	require.NoError(t, err)

	token, err := f.svc.Login(ctx, LoginParams{Email: "u1@example.com", Password: "secret1"})
	require.NoError(t, err)
	return token
}

// =========================================================================
// Register TESTS
// =========================================================================

func TestRegister_StoresHashedPassword(t *testing.T) {
	f := newAuthFixture(t)

	user, err := f.svc.Register(context.Background(), RegisterParams{
		Username: "u1", Email: "u1@example.com", Password: "secret1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "u1", user.Username)
	assert.NotEqual(t, "secret1", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
}

func TestRegister_MissingFields(t *testing.T) {
	f := newAuthFixture(t)

	tests := []struct {
		name      string
		params    RegisterParams
		wantField string
	}{
		{"no username", RegisterParams{Email: "e", Password: "p"}, "username"},
		{"no email", RegisterParams{Username: "u", Password: "p"}, "email"},
		{"no password", RegisterParams{Username: "u", Email: "e"}, "password"},
		{"nothing", RegisterParams{}, "username"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Register(context.Background(), tt.params)
			require.ErrorIs(t, err, apperror.ErrValidation)

			var appErr *apperror.AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, "All fields are mandatory: username, email, password.", appErr.Message)
			assert.Equal(t, tt.wantField, appErr.Field)
		})
	}
	assert.Empty(t, f.users.users)
}

func TestRegister_DistinctUsersAcceptedDuplicatesRejected(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, RegisterParams{Username: "u1", Email: "u1@example.com", Password: "p"})
	require.NoError(t, err)
	_, err = f.svc.Register(ctx, RegisterParams{Username: "u2", Email: "u2@example.com", Password: "p"})
	require.NoError(t, err)

	_, err = f.svc.Register(ctx, RegisterParams{Username: "u1", Email: "new@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	_, err = f.svc.Register(ctx, RegisterParams{Username: "new", Email: "u2@example.com", Password: "p"})
	assert.ErrorIs(t, err, apperror.ErrConflict)

	assert.Len(t, f.users.users, 2)
}

func TestRegister_PasswordTooLong(t *testing.T) {
	f := newAuthFixture(t)

	long := make([]byte, 73)
	for i := range long {
		long[i] = 'a'
	}

	_, err := f.svc.Register(context.Background(), RegisterParams{Username: "u", Email: "e", Password: string(long)})
	require.ErrorIs(t, err, apperror.ErrValidation)

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "password", appErr.Field)
}

func TestRegister_StorageFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.createErr = errors.New("disk full")

	_, err := f.svc.Register(context.Background(), RegisterParams{Username: "u", Email: "e", Password: "p"})
	require.Error(t, err)

	var appErr *apperror.AppError
	assert.False(t, errors.As(err, &appErr), "storage failures must not look like client errors")
}

// =========================================================================
// Login TESTS
// =========================================================================

func TestLogin_IssuesTokenWithIdentity(t *testing.T) {
	f := newAuthFixture(t)
	token := f.registerAndLogin(t)

	id, err := f.tokens.Validate(token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.Username)
	assert.Equal(t, "u1@example.com", id.Email)
	assert.Equal(t, f.users.users[0].ID, id.ID)
}

func TestLogin_BadCredentialsLookTheSame(t *testing.T) {
	f := newAuthFixture(t)
	f.registerAndLogin(t)

	for _, p := range []LoginParams{
		{Email: "u1@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret1"},
		{Email: "U1@example.com", Password: "secret1"},
	} {
		_, err := f.svc.Login(context.Background(), p)
		require.ErrorIs(t, err, apperror.ErrUnauthorized)
		assert.Equal(t, "Email or password is not correct.", err.Error())
	}
}

func TestLogin_MissingFields(t *testing.T) {
	f := newAuthFixture(t)

	for _, p := range []LoginParams{{Email: "e"}, {Password: "p"}, {}} {
		_, err := f.svc.Login(context.Background(), p)
		require.ErrorIs(t, err, apperror.ErrValidation)
		assert.Equal(t, "All fields are mandatory: email and password.", err.Error())
	}
}

func TestLogin_LookupFailureIsInternal(t *testing.T) {
	f := newAuthFixture(t)
	f.users.getErr = errors.New("io error")

	_, err := f.svc.Login(context.Background(), LoginParams{Email: "e", Password: "p"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrUnauthorized)
}

// =========================================================================
// Logout / Authenticate TESTS
// =========================================================================

func TestAuthenticate_ValidToken(t *testing.T) {
	f := newAuthFixture(t)
	token := f.registerAndLogin(t)

	id, err := f.svc.Authenticate(context.Background(), token)
	require.NoError(t, err)
	assert.Equal(t, "u1", id.Username)
}

func TestLogout_RevokesToken(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	token := f.registerAndLogin(t)

	require.NoError(t, f.svc.Logout(ctx, token))

	_, err := f.svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, "Access denied. Token revoked", err.Error())

	// Logging out twice is harmless.
	assert.NoError(t, f.svc.Logout(ctx, token))
}

func TestLogout_OtherSessionsStayValid(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	first := f.registerAndLogin(t)

	second, err := f.svc.Login(ctx, LoginParams{Email: "u1@example.com", Password: "secret1"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, first))

	_, err = f.svc.Authenticate(ctx, second)
	assert.NoError(t, err)
}

func TestLogout_EmptyToken(t *testing.T) {
	f := newAuthFixture(t)

	err := f.svc.Logout(context.Background(), "")
	require.ErrorIs(t, err, apperror.ErrValidation)
	assert.Equal(t, "Token not provided.", err.Error())
}

func TestLogout_StorageFailure(t *testing.T) {
	f := newAuthFixture(t)
	f.blacklist.addErr = errors.New("read-only fs")

	err := f.svc.Logout(context.Background(), "tok")
	require.Error(t, err)
	assert.NotErrorIs(t, err, apperror.ErrValidation)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	f := newAuthFixture(t)

	token, err := f.tokens.GenerateWithDuration(auth.Identity{ID: "u-1"}, -time.Minute)
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, "Invalid token", err.Error())
}

func TestAuthenticate_ForeignSignature(t *testing.T) {
	f := newAuthFixture(t)

	other, err := auth.NewTokenService("another-secret-of-enough-length")
	require.NoError(t, err)
	token, err := other.Generate(auth.Identity{ID: "u-1"})
	require.NoError(t, err)

	_, err = f.svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, apperror.ErrUnauthorized)
	assert.Equal(t, "Invalid token", err.Error())
}

// Revocation is checked before the signature, so even a garbage string that
// was put on the blacklist reports "revoked".
func TestAuthenticate_RevocationCheckedFirst(t *testing.T) {
	f := newAuthFixture(t)
	ctx := context.Background()
	require.NoError(t, f.blacklist.Add(ctx, "garbage"))

	_, err := f.svc.Authenticate(ctx, "garbage")
	assert.Equal(t, "Access denied. Token revoked", err.Error())
}

func TestAuthenticate_BlacklistUnreadable(t *testing.T) {
	f := newAuthFixture(t)
	token := f.registerAndLogin(t)
	f.blacklist.containsErr = errors.New("boom")

	_, err := f.svc.Authenticate(context.Background(), token)
	require.Error(t, err)

	var appErr *apperror.AppError
	assert.False(t, errors.As(err, &appErr))
}
