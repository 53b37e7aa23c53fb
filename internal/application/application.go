package application

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/loadwise/palletizer/internal/api"
	"github.com/loadwise/palletizer/internal/config"
	"github.com/loadwise/palletizer/internal/optimizer"
	"github.com/loadwise/palletizer/internal/pallet"
	"github.com/loadwise/palletizer/internal/storage"
)

// App encapsulates the application dependencies and HTTP server.
type App struct {
	storage   storage.Storage
	optimizer optimizer.Optimizer
	handler   *api.Handler
	router    http.Handler
	logger    *zap.Logger
	server    *http.Server
}

// New initializes the application with all dependencies from the provided configuration.
func New(cfg config.Config, logger *zap.Logger) (*App, error) {
	units := pallet.DefaultUnits()

	store := storage.NewMemoryStorage(units)
	initial, err := pallet.NewPresetConfig(cfg.PalletPreset, cfg.PalletCount, units)
	if err != nil {
		return nil, fmt.Errorf("failed to build initial pallet configuration: %w", err)
	}
	if err := store.SetConfig(initial); err != nil {
		return nil, fmt.Errorf("failed to apply initial pallet configuration: %w", err)
	}

	opt := optimizer.New(optimizer.WithTimeLimit(cfg.SolverTimeLimit))
	handler := api.NewHandler(opt, store, units)
	router := api.NewRouter(handler, logger,
		api.WithLogging(cfg.EnableRequestLogging),
		api.WithRateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst),
	)

	server := NewServer(cfg, router)

	return &App{
		storage:   store,
		optimizer: opt,
		handler:   handler,
		router:    router,
		logger:    logger,
		server:    server,
	}, nil
}

// NewServer creates and configures an HTTP server from the provided configuration.
func NewServer(cfg config.Config, handler http.Handler) *http.Server {
	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

// Start starts the HTTP server in a goroutine and logs the listening address.
func (a *App) Start() error {
	go func() {
		a.logger.Info("server listening", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Fatal("server error", zap.Error(err))
		}
	}()
	return nil
}

// Server returns the HTTP server instance for shutdown handling.
func (a *App) Server() *http.Server {
	return a.server
}

// Router returns the HTTP handler, primarily for tests.
func (a *App) Router() http.Handler {
	return a.router
}
