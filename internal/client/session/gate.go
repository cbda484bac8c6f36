// Package session holds the current authentication credential of the
// client. The Gate answers whether authenticated calls may proceed, supplies
// the bearer token to the HTTP transport, and persists the session in the
// local database so it survives restarts.
package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/dbx"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

// Persisted keys of the session.
const (
	KeyToken = "token"
	KeyUser  = "user"
)

// DB is what the gate needs from the local database. *sql.DB satisfies it.
type DB interface {
	dbx.DBTX
	dbx.Beginner
}

// Gate is safe for concurrent use.
type Gate struct {
	mu    sync.RWMutex
	token string
	user  models.User

	db     DB
	logger logging.Logger
}

func New(db DB, logger logging.Logger) *Gate {
	return &Gate{db: db, logger: logger.With("component", "session")}
}

// Restore loads a previously persisted session, if any. A token without a
// readable user record is still restored.
func (g *Gate) Restore(ctx context.Context) error {
	repo := metadata.NewSQLiteRepository(g.db)

	token, err := repo.Get(ctx, KeyToken)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if len(token) == 0 {
		return nil
	}

	user, _, err := metadata.GetJSON[models.User](ctx, repo, KeyUser)
	if err != nil {
		g.logger.Warn(ctx, "stored user is unreadable", "error", err)
	}

	g.mu.Lock()
	g.token = string(token)
	g.user = user
	g.mu.Unlock()

	g.logger.Debug(ctx, "session restored", "user", user.Username, "token", common.TokenPrefix(string(token), 8))
	return nil
}

// Start installs the session returned by login or register and persists it.
func (g *Gate) Start(ctx context.Context, resp models.AuthResponse) error {
	if resp.Token == "" {
		return fmt.Errorf("start session: %w", common.ErrInvalidToken)
	}

	err := dbx.WithTx(ctx, g.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := metadata.NewSQLiteRepository(tx)
		if err := repo.Set(ctx, KeyToken, []byte(resp.Token)); err != nil {
			return err
		}
		return metadata.SetJSON(ctx, repo, KeyUser, resp.User())
	})
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}

	g.mu.Lock()
	g.token = resp.Token
	g.user = resp.User()
	g.mu.Unlock()

	g.logger.Info(ctx, "session started", "user", resp.Username)
	return nil
}

// HasSession reports whether a non-empty token is held.
func (g *Gate) HasSession() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token != ""
}

// Token implements client.TokenSource.
func (g *Gate) Token() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.token
}

func (g *Gate) User() models.User {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.user
}

// ExpiresAt returns the exp claim of the token. The signature is not
// checked; the value is informational only. Zero when unknown.
func (g *Gate) ExpiresAt() time.Time {
	token := g.Token()
	if token == "" {
		return time.Time{}
	}

	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}

// Clear drops the session. The in-memory credential is dropped before the
// persisted copy, so HasSession is false even when the delete fails.
// Clearing an absent session is a no-op.
func (g *Gate) Clear(ctx context.Context) error {
	g.mu.Lock()
	had := g.token != ""
	g.token = ""
	g.user = models.User{}
	g.mu.Unlock()

	repo := metadata.NewSQLiteRepository(g.db)
	if err := repo.Delete(ctx, KeyToken, KeyUser); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	if had {
		g.logger.Info(ctx, "session cleared")
	}
	return nil
}
