package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/sakif/event-manager/internal/apperror"
	"github.com/sakif/event-manager/internal/auth"
	"github.com/sakif/event-manager/internal/metrics"
	"github.com/sakif/event-manager/internal/model"
	"github.com/sakif/event-manager/internal/repository"
)

// Client-facing messages. Existing clients match on some of these strings.
const (
	msgRegisterFieldsRequired = "All fields are mandatory: username, email, password."
	msgLoginFieldsRequired    = "All fields are mandatory: email and password."
	msgBadCredentials         = "Email or password is not correct."
	msgTokenNotProvided       = "Token not provided."
	msgTokenRevoked           = "Access denied. Token revoked"
	msgInvalidToken           = "Invalid token"
	msgPasswordTooLong        = "Password must be 72 bytes or fewer."
)

// RegisterParams is the input of Register. It is also the JSON body of
// POST /api/user/register.
type RegisterParams struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginParams is the input of Login and the JSON body of POST /api/user/login.
type LoginParams struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthService owns the token lifecycle: register, login, logout, and the
// per-request check behind the auth guard.
//
//	AuthHandler (HTTP) → AuthService → UserRepository / BlacklistRepository
//	                                 ↘ TokenService (JWT), PasswordService (bcrypt)
type AuthService struct {
	users     repository.UserRepository
	blacklist repository.BlacklistRepository
	tokens    *auth.TokenService
	passwords *auth.PasswordService
	logger    *slog.Logger
}

var _ auth.Authenticator = (*AuthService)(nil)

func NewAuthService(
	users repository.UserRepository,
	blacklist repository.BlacklistRepository,
	tokens *auth.TokenService,
	passwords *auth.PasswordService,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		users:     users,
		blacklist: blacklist,
		tokens:    tokens,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a user with a bcrypt-hashed password.
//
// Username and email must each be unused (exact, case-sensitive match); the
// uniqueness check and the append happen under the store's write lock.
func (s *AuthService) Register(ctx context.Context, p RegisterParams) (*model.User, error) {
	if err := validateRequired(p, msgRegisterFieldsRequired); err != nil {
		recordAuth("register", "invalid")
		return nil, err
	}

	hash, err := s.passwords.Hash(p.Password)
	if err != nil {
		if errors.Is(err, auth.ErrPasswordTooLong) {
			recordAuth("register", "invalid")
			return nil, apperror.ValidationFailed("password", msgPasswordTooLong)
		}
		recordAuth("register", "error")
		return nil, fmt.Errorf("registering user: %w", err)
	}

	user := &model.User{
		Username:     p.Username,
		Email:        p.Email,
		PasswordHash: hash,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, apperror.ErrConflict) {
			recordAuth("register", "conflict")
			return nil, err
		}
		recordAuth("register", "error")
		s.logger.Error("failed to store user",
			slog.String("username", p.Username),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("registering user: %w", err)
	}

	recordAuth("register", "success")
	s.logger.Info("user registered",
		slog.String("userID", user.ID),
		slog.String("username", user.Username),
	)
	return user, nil
}

// Login verifies the credentials and issues a signed access token.
//
// An unknown email and a wrong password produce the same error so the
// response does not reveal which accounts exist.
func (s *AuthService) Login(ctx context.Context, p LoginParams) (string, error) {
	if err := validateRequired(p, msgLoginFieldsRequired); err != nil {
		recordAuth("login", "invalid")
		return "", err
	}

	user, err := s.users.GetByEmail(ctx, p.Email)
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			recordAuth("login", "denied")
			return "", apperror.Unauthorized(msgBadCredentials)
		}
		recordAuth("login", "error")
		return "", fmt.Errorf("logging in: %w", err)
	}

	if err := s.passwords.Verify(user.PasswordHash, p.Password); err != nil {
		if errors.Is(err, auth.ErrPasswordMismatch) {
			recordAuth("login", "denied")
			return "", apperror.Unauthorized(msgBadCredentials)
		}
		recordAuth("login", "error")
		s.logger.Error("stored password hash is unreadable",
			slog.String("userID", user.ID),
			slog.String("error", err.Error()),
		)
		return "", fmt.Errorf("logging in: %w", err)
	}

	token, err := s.tokens.Generate(auth.Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
	if err != nil {
		recordAuth("login", "error")
		return "", fmt.Errorf("logging in: %w", err)
	}

	recordAuth("login", "success")
	s.logger.Info("user logged in", slog.String("userID", user.ID))
	return token, nil
}

// Logout revokes token by adding it to the blacklist. Revoking an already
// revoked token succeeds without writing a duplicate entry.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if token == "" {
		recordAuth("logout", "invalid")
		return apperror.ValidationFailed("token", msgTokenNotProvided)
	}

	if err := s.blacklist.Add(ctx, token); err != nil {
		recordAuth("logout", "error")
		return fmt.Errorf("revoking token: %w", err)
	}

	recordAuth("logout", "success")
	s.logger.Info("token revoked")
	return nil
}

// Authenticate is the check behind the auth guard: the blacklist is re-read
// on every call, then signature, algorithm, issuer and expiry are verified.
// Rejections are *apperror.AppError wrapping ErrUnauthorized; anything else
// is a failure to perform the check at all.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*auth.Identity, error) {
	revoked, err := s.blacklist.Contains(ctx, token)
	if err != nil {
		recordAuth("authenticate", "error")
		return nil, fmt.Errorf("checking token blacklist: %w", err)
	}
	if revoked {
		recordAuth("authenticate", "revoked")
		return nil, apperror.Unauthorized(msgTokenRevoked)
	}

	id, err := s.tokens.Validate(token)
	if err != nil {
		recordAuth("authenticate", "denied")
		s.logger.Debug("token rejected", slog.String("reason", err.Error()))
		return nil, apperror.Unauthorized(msgInvalidToken)
	}

	recordAuth("authenticate", "success")
	return id, nil
}

func recordAuth(operation, outcome string) {
	metrics.AuthOutcomes.WithLabelValues(operation, outcome).Inc()
}
