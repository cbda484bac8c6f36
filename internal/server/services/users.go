// Package services contains the business logic of the development backend:
// account registration and login, and the per-user platform collection.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/dmitrijs2005/secretkey/internal/server/auth"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/users"
	"golang.org/x/crypto/bcrypt"
)

// AuthResult is what register and login hand back to the caller.
type AuthResult struct {
	Token string
	User  models.User
}

// UserService handles registration, login and token verification.
type UserService struct {
	repo          users.Repository
	jwtSecret     []byte
	tokenValidity time.Duration
	logger        logging.Logger
	// dummyHash is compared against when the login is unknown.
	dummyHash []byte
}

func NewUserService(repo users.Repository, secret []byte, tokenValidity time.Duration, logger logging.Logger) (*UserService, error) {
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-password"), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("init password hashing: %w", err)
	}
	return &UserService{
		repo:          repo,
		jwtSecret:     secret,
		tokenValidity: tokenValidity,
		logger:        logger.With("module", "user_service"),
		dummyHash:     dummy,
	}, nil
}

// Register creates an account and signs it in.
func (s *UserService) Register(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return nil, fmt.Errorf("%w: password is too long", ErrInvalidInput)
		}
		return nil, common.ErrorInternal
	}

	u, err := s.repo.Create(ctx, &models.User{UserName: username, PasswordHash: hash, CreatedAt: time.Now().UTC()})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "create user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return s.issue(u)
}

// Login verifies the password and returns a fresh token. Unknown logins and
// wrong passwords both yield common.ErrInvalidCredentials.
func (s *UserService) Login(ctx context.Context, username, password string) (*AuthResult, error) {
	username = strings.TrimSpace(username)
	if err := validateCredentials(username, password); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "get user", "error", err)
		return nil, common.ErrorInternal
	}

	if err := bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}
	return s.issue(u)
}

// Authenticate verifies a bearer token and returns the account id.
func (s *UserService) Authenticate(token string) (int64, error) {
	claims, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return 0, err
	}
	return claims.UserID()
}

func (s *UserService) issue(u *models.User) (*AuthResult, error) {
	token, err := auth.GenerateToken(u.ID, u.UserName, s.jwtSecret, s.tokenValidity)
	if err != nil {
		return nil, common.ErrorInternal
	}
	out := *u
	out.PasswordHash = nil
	return &AuthResult{Token: token, User: out}, nil
}

func validateCredentials(username, password string) error {
	if username == "" {
		return fmt.Errorf("%w: username must not be empty", ErrInvalidInput)
	}
	if password == "" {
		return fmt.Errorf("%w: password must not be empty", ErrInvalidInput)
	}
	return nil
}
