package users

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

const testSecret = "test-secret-key-at-least-32-chars-long"

func newTestService(t *testing.T) (*UserService, *MockUserRepository, auth.TokenService) {
	t.Helper()
	repo := &MockUserRepository{}
	tokens, err := auth.NewTokenService(testSecret, 24*time.Hour)
	require.NoError(t, err)
	svc := NewUserService(repo, auth.NewPasswordHasher(bcrypt.MinCost), tokens, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc, repo, tokens
}

func TestUserService_Signup(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "kim@example.com").Return(nil, domain.ErrUserNotFound).Once()
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool {
		return u.Email == "kim@example.com" && u.Name == "kim" && u.Role == domain.RoleUser &&
			bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw1234")) == nil
	})).Return(nil).Once()

	user, err := svc.Signup(ctx, SignupInput{Name: " kim ", Email: "kim@example.com", Password: "pw1234"})

	require.NoError(t, err)
	assert.Equal(t, domain.RoleUser, user.Role)
	repo.AssertExpectations(t)
}

func TestUserService_Signup_Validation(t *testing.T) {
	svc, repo, _ := newTestService(t)

	tests := []SignupInput{
		{Email: "kim@example.com", Password: "pw"},
		{Name: "kim", Password: "pw"},
		{Name: "kim", Email: "kim@example.com"},
		{Name: "kim", Email: "kim@example", Password: "pw"},
		{Name: "kim", Email: "kim example@x.com", Password: "pw"},
		{Name: "kim", Email: "kim@example.com", Password: strings.Repeat("p", 80)},
	}
	for _, in := range tests {
		_, err := svc.Signup(context.Background(), in)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, in.Email)
	}
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestUserService_Signup_EmailTaken(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "kim@example.com").Return(&domain.User{ID: "u1"}, nil).Once()

	_, err := svc.Signup(ctx, SignupInput{Name: "kim", Email: "kim@example.com", Password: "pw"})

	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserService_Login(t *testing.T) {
	svc, repo, tokens := newTestService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw1234"), bcrypt.MinCost)
	require.NoError(t, err)
	stored := &domain.User{ID: "u1", Email: "kim@example.com", PasswordHash: string(hash), Role: domain.RoleAdmin}
	repo.On("FindByEmail", ctx, "kim@example.com").Return(stored, nil)
	repo.On("FindByEmail", ctx, "nobody@example.com").Return(nil, domain.ErrUserNotFound)

	result, err := svc.Login(ctx, "kim@example.com", "pw1234")
	require.NoError(t, err)
	assert.Equal(t, stored, result.User)

	claims, err := tokens.Validate(result.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, domain.RoleAdmin, claims.Role)

	_, err = svc.Login(ctx, "kim@example.com", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody@example.com", "pw1234")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "", "pw1234")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUserService_Login_MalformedEmail(t *testing.T) {
	svc, repo, _ := newTestService(t)

	for _, email := range []string{"not-an-email", "kim@example", "kim example@x.com"} {
		_, err := svc.Login(context.Background(), email, "pw")
		assert.ErrorIs(t, err, domain.ErrInvalidInput, email)
	}
	repo.AssertNotCalled(t, "FindByEmail", mock.Anything, mock.Anything)
}

func TestUserService_Login_StorageError(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	dbErr := errors.New("connection refused")

	repo.On("FindByEmail", ctx, "kim@example.com").Return(nil, dbErr).Once()

	_, err := svc.Login(ctx, "kim@example.com", "pw")
	assert.ErrorIs(t, err, dbErr)
}

func TestUserService_EnsureAdmin(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()
	in := SignupInput{Name: "admin", Email: "admin@admin.com", Password: "admin"}

	repo.On("FindByEmail", ctx, "admin@admin.com").Return(nil, domain.ErrUserNotFound).Twice()
	repo.On("Create", ctx, mock.MatchedBy(func(u *domain.User) bool { return u.Role == domain.RoleAdmin })).Return(nil).Once()

	user, created, err := svc.EnsureAdmin(ctx, in)
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, user.IsAdmin())
	repo.AssertExpectations(t)
}

func TestUserService_EnsureAdmin_Existing(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	repo.On("FindByEmail", ctx, "admin@admin.com").Return(&domain.User{ID: "a1", Role: domain.RoleAdmin}, nil).Once()
	repo.On("FindByEmail", ctx, "kim@example.com").Return(&domain.User{ID: "u1", Role: domain.RoleUser}, nil).Once()

	user, created, err := svc.EnsureAdmin(ctx, SignupInput{Name: "admin", Email: "admin@admin.com", Password: "x"})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "a1", user.ID)

	_, _, err = svc.EnsureAdmin(ctx, SignupInput{Name: "kim", Email: "kim@example.com", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrEmailTaken)
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}
