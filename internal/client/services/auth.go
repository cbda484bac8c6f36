// Package services contains the application services of the SecretKey
// client that sit next to the Store: account registration and login on top
// of the session gate, and the export of the collection to a file or S3.
package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
)

// AuthService defines authentication operations for the CLI.
//
// Register and Login start a persisted session on success. Logout and
// Close are safe to call without a session.
type AuthService interface {
	Register(ctx context.Context, username string, password []byte) (models.User, error)
	Login(ctx context.Context, username string, password []byte) (models.User, error)
	Logout(ctx context.Context) error
	// Restore loads a persisted session and reports whether one exists.
	Restore(ctx context.Context) (models.User, bool, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// AuthClient is the part of the remote API used for authentication.
type AuthClient interface {
	Register(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Login(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)
	Ping(ctx context.Context) error
	Close() error
}

// SessionGate is where a successful login is recorded.
type SessionGate interface {
	Start(ctx context.Context, resp models.AuthResponse) error
	Restore(ctx context.Context) error
	Clear(ctx context.Context) error
	HasSession() bool
	User() models.User
}

type authService struct {
	client AuthClient
	gate   SessionGate
	logger logging.Logger
}

func NewAuthService(client AuthClient, gate SessionGate, logger logging.Logger) AuthService {
	return &authService{client: client, gate: gate, logger: logger.With("component", "auth")}
}

// Register creates an account and signs in with the returned token. The
// password buffer is wiped before returning.
func (a *authService) Register(ctx context.Context, username string, password []byte) (models.User, error) {
	defer common.WipeByteArray(password)
	return a.authenticate(ctx, username, password, a.client.Register)
}

// Login authenticates against the server and starts a session. The password
// buffer is wiped before returning.
func (a *authService) Login(ctx context.Context, username string, password []byte) (models.User, error) {
	defer common.WipeByteArray(password)
	return a.authenticate(ctx, username, password, a.client.Login)
}

type authCall func(ctx context.Context, req models.AuthRequest) (*models.AuthResponse, error)

func (a *authService) authenticate(ctx context.Context, username string, password []byte, call authCall) (models.User, error) {
	req := models.AuthRequest{Username: username, Password: string(password)}
	if err := req.Validate(); err != nil {
		return models.User{}, err
	}

	resp, err := call(ctx, req)
	if err != nil {
		return models.User{}, err
	}
	if resp.Token == "" {
		return models.User{}, fmt.Errorf("authenticate %s: %w", username, common.ErrInvalidToken)
	}

	// A previous user's session must not survive a failed switch.
	if a.gate.HasSession() && a.gate.User().Username != resp.Username {
		if err := a.gate.Clear(ctx); err != nil {
			return models.User{}, err
		}
	}

	if err := a.gate.Start(ctx, *resp); err != nil {
		return models.User{}, fmt.Errorf("save session: %w", err)
	}

	a.logger.Info(ctx, "signed in", "user", resp.Username, "token", common.TokenPrefix(resp.Token, 8))
	return resp.User(), nil
}

func (a *authService) Logout(ctx context.Context) error {
	if err := a.gate.Clear(ctx); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	return nil
}

func (a *authService) Restore(ctx context.Context) (models.User, bool, error) {
	if err := a.gate.Restore(ctx); err != nil {
		return models.User{}, false, err
	}
	if !a.gate.HasSession() {
		return models.User{}, false, nil
	}
	return a.gate.User(), true, nil
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the underlying client.
func (a *authService) Close(ctx context.Context) error {
	return a.client.Close()
}
