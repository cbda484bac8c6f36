package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/dmitrijs2005/secretkey/internal/client/client"
	"github.com/dmitrijs2005/secretkey/internal/client/config"
	"github.com/dmitrijs2005/secretkey/internal/client/models"
	"github.com/dmitrijs2005/secretkey/internal/client/services"
	"github.com/dmitrijs2005/secretkey/internal/client/session"
	"github.com/dmitrijs2005/secretkey/internal/client/store"
	"github.com/dmitrijs2005/secretkey/internal/logging"
)

// getSimpleText, getPassword and confirm are indirections used to facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	confirm       = Confirm
)

// sessionInfo is what the prompt needs to know about the session.
type sessionInfo interface {
	HasSession() bool
	User() models.User
	ExpiresAt() time.Time
}

type exporter interface {
	Export(ctx context.Context, kind client.ExportKind) (string, error)
}

type App struct {
	auth    services.AuthService
	store   *store.Store
	session sessionInfo
	exports exporter
	logger  logging.Logger

	reader *bufio.Reader
	out    io.Writer
	outMu  sync.Mutex

	unsubscribe func()
	closers     []func() error
}

// NewApp wires the local database, session gate, HTTP client, Store and
// services from c.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("init database: %w", err)
	}

	gate := session.New(db, logger)

	api, err := client.NewHTTPClient(c.ServerURL, gate, c.RequestTimeout, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	st := store.New(api, gate, logger, store.WithPageSize(c.PageSize))

	sink, err := newSink(ctx, c)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := newApp(
		services.NewAuthService(api, gate, logger),
		st,
		gate,
		services.NewExportService(st, sink, logger),
		logger,
		os.Stdin,
		os.Stdout,
	)
	a.closers = append(a.closers, db.Close)
	return a, nil
}

func newSink(ctx context.Context, c *config.Config) (services.Sink, error) {
	if !c.S3.Enabled() {
		return services.FileSink{Dir: c.ExportDir}, nil
	}
	return services.NewS3Sink(ctx, services.S3Config{
		Bucket:       c.S3.Bucket,
		Region:       c.S3.Region,
		BaseEndpoint: c.S3.BaseEndpoint,
		AccessKey:    c.S3.AccessKey,
		SecretKey:    c.S3.SecretKey,
		Prefix:       c.S3.Prefix,
	})
}

func newApp(auth services.AuthService, st *store.Store, si sessionInfo, ex exporter, logger logging.Logger, in io.Reader, out io.Writer) *App {
	a := &App{
		auth:    auth,
		store:   st,
		session: si,
		exports: ex,
		logger:  logger.With("component", "cli"),
		reader:  bufio.NewReader(in),
		out:     out,
	}
	a.unsubscribe = st.Subscribe(a.onChange)
	return a
}

// onChange re-renders the view once a state change has settled.
func (a *App) onChange(snap store.Snapshot) {
	if snap.Loading {
		return
	}
	a.outMu.Lock()
	defer a.outMu.Unlock()

	if !a.session.HasSession() {
		if snap.Error != "" {
			fmt.Fprintf(a.out, "! %s\n", snap.Error)
		}
		return
	}
	renderSnapshot(a.out, snap)
}

func (a *App) printf(format string, args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintf(a.out, format, args...)
}

// Run restores a saved session, loads the first page and runs the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) error {
	defer a.Close(ctx)

	a.printf("Welcome to SecretKey (type 'help' for commands)\n")

	if err := a.auth.Ping(ctx); err != nil {
		a.logger.Warn(ctx, "server is not reachable", "error", err)
		a.printf("! %s\n", store.Message(err))
	}

	user, ok, err := a.auth.Restore(ctx)
	if err != nil {
		a.logger.Warn(ctx, "restore session", "error", err)
	}
	if ok {
		a.printf("Signed in as %s\n", user.Username)
		_ = a.load(ctx, a.store.Init)
	} else {
		a.printf("Not signed in. Type 'login' or 'register'.\n")
	}

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
	return nil
}

// Close releases the client and the local database.
func (a *App) Close(ctx context.Context) {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
	if err := a.auth.Close(ctx); err != nil {
		a.logger.Warn(ctx, "close client", "error", err)
	}
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.logger.Warn(ctx, "close", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.session.HasSession()
}

// getStatus is shown in the prompt: the user and when the session expires.
func (a *App) getStatus() string {
	if !a.session.HasSession() {
		return ""
	}
	s := a.session.User().Username
	if exp := a.session.ExpiresAt(); !exp.IsZero() {
		s += ", until " + exp.Local().Format("15:04 2 Jan")
	}
	return "(" + s + ")"
}
