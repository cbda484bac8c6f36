// Package rest exposes the backend services over HTTP/JSON.
package rest

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/common"
	"github.com/dmitrijs2005/secretkey/internal/logging"
	"github.com/dmitrijs2005/secretkey/internal/server/models"
	"github.com/dmitrijs2005/secretkey/internal/server/services"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// UserService is the account logic the handlers need.
type UserService interface {
	Register(ctx context.Context, username, password string) (*services.AuthResult, error)
	Login(ctx context.Context, username, password string) (*services.AuthResult, error)
	Authenticate(token string) (int64, error)
}

// PlatformService is the collection logic the handlers need.
type PlatformService interface {
	Page(ctx context.Context, ownerID int64, number, size int) (*services.Page, error)
	FindByName(ctx context.Context, ownerID int64, name string) (*models.Platform, error)
	Create(ctx context.Context, ownerID int64, in services.PlatformInput) (*models.Platform, error)
	Update(ctx context.Context, ownerID int64, id string, in services.PlatformInput) (*models.Platform, error)
	Delete(ctx context.Context, ownerID int64, id string) error
	Export(ctx context.Context, ownerID int64, format string) ([]byte, string, error)
}

const shutdownTimeout = 10 * time.Second

type Server struct {
	address   string
	users     UserService
	platforms PlatformService
	logger    logging.Logger
}

func NewServer(address string, l logging.Logger, us UserService, ps PlatformService) *Server {
	return &Server{
		address:   address,
		logger:    l.With("module", "http_server"),
		users:     us,
		platforms: ps,
	}
}

// Router returns the chi router with every route mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Get(common.RouteHealth, s.Health)
	r.Post(common.RouteRegister, s.Register)
	r.Post(common.RouteLogin, s.Login)

	r.Route("/v1/secret-key/platform", func(r chi.Router) {
		r.Use(s.authMiddleware)
		r.Get("/", s.ListPlatforms)
		r.Post("/", s.CreatePlatform)
		r.Get("/name", s.FindPlatform)
		r.Get("/export/{format}", s.ExportPlatforms)
		r.Put("/{id}", s.UpdatePlatform)
		r.Delete("/{id}", s.DeletePlatform)
	})

	return r
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	return s.serve(ctx, listen)
}

func (s *Server) serve(ctx context.Context, listen net.Listener) error {
	srv := &http.Server{
		Handler:           s.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan error, 1)
	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
		defer cancel()
		done <- srv.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "Starting HTTP server", "address", listen.Addr().String())

	if err := srv.Serve(listen); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return <-done
}
