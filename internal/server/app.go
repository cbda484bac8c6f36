// Package server wires the storage backend, services and HTTP API of the
// SecretKey backend and runs them until the context is cancelled.
package server

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/dmitrijs2005/secretkey/internal/server/config"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/boltdb"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/memory"
	"github.com/dmitrijs2005/secretkey/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/secretkey/internal/server/rest"
	"github.com/dmitrijs2005/secretkey/internal/server/services"
	"go.etcd.io/bbolt"
)

const (
	secretSize       = 32
	bboltOpenTimeout = time.Second
)

type App struct {
	config *config.Config
	logger logging.Logger
	repos  repomanager.RepositoryManager
	server *rest.Server
}

// NewLogger builds the JSON logger of the backend at the configured level.
func NewLogger(c *config.Config) (logging.Logger, error) {
	level, err := logging.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	return logging.NewJSON(os.Stdout, level), nil
}

func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := newRepositoryManager(c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	secret := c.SecretKey
	if secret == "" {
		secret, err = common.MakeRandHexString(secretSize)
		if err != nil {
			_ = repos.Close()
			return nil, fmt.Errorf("generate secret: %w", err)
		}
		logger.Warn(ctx, "no secret configured, tokens will not survive a restart")
	}

	us, err := services.NewUserService(repos.Users(), []byte(secret), c.TokenValidityDuration, logger)
	if err != nil {
		_ = repos.Close()
		return nil, err
	}
	ps := services.NewPlatformService(repos.Platforms(), logger)

	return &App{
		config: c,
		logger: logger,
		repos:  repos,
		server: rest.NewServer(c.Address, logger, us, ps),
	}, nil
}

func newRepositoryManager(c *config.Config) (repomanager.RepositoryManager, error) {
	switch c.Storage {
	case config.StorageBolt:
		m, err := boltdb.NewManagerFromFile(c.DataPath, &bbolt.Options{Timeout: bboltOpenTimeout})
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return memory.NewManager(), nil
	}
}

// Run serves the API until ctx is done and then closes the storage.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...", "storage", app.config.Storage)

	defer func() {
		if err := app.repos.Close(); err != nil {
			app.logger.Error(ctx, "close storage", "error", err)
		}
	}()

	if err := app.server.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
