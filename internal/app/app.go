package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minesweeper-agent/internal/config"
	"github.com/vancomm/minesweeper-agent/internal/database"
	"github.com/vancomm/minesweeper-agent/internal/handlers"
	"github.com/vancomm/minesweeper-agent/internal/middleware"
	"github.com/vancomm/minesweeper-agent/internal/repository"
)

const (
	maxSessions     = 4096
	shutdownTimeout = 30 * time.Second
)

type App struct {
	log        *logrus.Logger
	router     *http.ServeMux
	db         *pgxpool.Pool
	jwt        *config.JWT
	ws         *config.WebSocket
	sessions   *handlers.Sessions
	migrations fs.FS
}

func New(log *logrus.Logger, migrations fs.FS) *App {
	return &App{
		log:        log,
		router:     http.NewServeMux(),
		sessions:   handlers.NewSessions(maxSessions),
		ws:         config.NewWebSocket(),
		migrations: migrations,
	}
}

// Handler builds the routes and wraps them in the middleware chain.
func (a *App) Handler(store handlers.RecordStore) http.Handler {
	a.loadRoutes(store)
	return middleware.Wrap(
		a.router,
		middleware.Auth(a.log, a.jwt),
		middleware.Logging(a.log),
		middleware.Cors(config.Development()),
	)
}

func (a *App) Start(ctx context.Context) error {
	addr, err := config.Addr()
	if err != nil {
		return err
	}

	a.jwt, err = config.NewJWT()
	if err != nil {
		return fmt.Errorf("unable to load jwt secret: %w", err)
	}

	db, err := database.ConnectAndMigrate(ctx, a.migrations)
	if err != nil {
		return fmt.Errorf("unable to connect to db: %w", err)
	}
	a.db = db
	defer a.db.Close()

	server := &http.Server{
		Addr:    addr,
		Handler: a.Handler(repository.New(a.db)),
		BaseContext: func(l net.Listener) context.Context {
			return ctx
		},
	}

	a.log.Infof("ready to serve @ %s", addr)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
