package users

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/Domenick1991/flightbook/internal/auth"
	"github.com/Domenick1991/flightbook/internal/domain"
	"github.com/Domenick1991/flightbook/internal/repository"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// bcrypt rejects longer input.
const maxPasswordBytes = 72

type UserUseCase interface {
	Signup(ctx context.Context, input SignupInput) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*LoginResult, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) (bool, error)
}

type SignupInput struct {
	Name     string
	Email    string
	Password string
}

func (in SignupInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return fmt.Errorf("%w: name, email and password are required", domain.ErrInvalidInput)
	}
	if !emailPattern.MatchString(in.Email) {
		return fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}
	if len(in.Password) > maxPasswordBytes {
		return fmt.Errorf("%w: password must be at most %d bytes", domain.ErrInvalidInput, maxPasswordBytes)
	}
	return nil
}

type LoginResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

type UserService struct {
	users  repository.UserRepository
	hasher PasswordHasher
	tokens auth.TokenService
	logger *slog.Logger
}

func NewUserService(users repository.UserRepository, hasher PasswordHasher, tokens auth.TokenService, logger *slog.Logger) *UserService {
	return &UserService{users: users, hasher: hasher, tokens: tokens, logger: logger}
}

func (s *UserService) Signup(ctx context.Context, input SignupInput) (*domain.User, error) {
	return s.register(ctx, input, domain.RoleUser)
}

func (s *UserService) register(ctx context.Context, input SignupInput, role domain.Role) (*domain.User, error) {
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil:
		return nil, domain.ErrEmailTaken
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, err
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: hash,
		Name:         strings.TrimSpace(input.Name),
		Role:         role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", user.Role)
	return user, nil
}

// Login never reveals whether the email or the password was wrong.
func (s *UserService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrInvalidInput)
	}
	if !emailPattern.MatchString(email) {
		return nil, fmt.Errorf("%w: invalid email format", domain.ErrInvalidInput)
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	ok, err := s.hasher.Compare(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.ErrInvalidCredentials
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}
	return &LoginResult{Token: token, User: user}, nil
}

// EnsureAdmin creates an admin account unless one already exists with the
// same email. It reports whether a new account was created.
func (s *UserService) EnsureAdmin(ctx context.Context, input SignupInput) (*domain.User, bool, error) {
	existing, err := s.users.FindByEmail(ctx, input.Email)
	switch {
	case err == nil && existing.IsAdmin():
		return existing, false, nil
	case err == nil:
		return nil, false, fmt.Errorf("%w: %s belongs to a non-admin account", domain.ErrEmailTaken, input.Email)
	case !errors.Is(err, domain.ErrUserNotFound):
		return nil, false, err
	}

	user, err := s.register(ctx, input, domain.RoleAdmin)
	if err != nil {
		return nil, false, err
	}
	return user, true, nil
}

var _ UserUseCase = (*UserService)(nil)
