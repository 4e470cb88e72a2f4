package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/userdesk/userdesk/internal/admin/http"
	"github.com/userdesk/userdesk/internal/admin/service"
	"github.com/userdesk/userdesk/internal/admin/store"
	"github.com/userdesk/userdesk/internal/admin/store/drivers/sqlite"
	"github.com/userdesk/userdesk/pkg/jwtx"
	"github.com/userdesk/userdesk/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application encapsulates the admin service with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db store.Store

	authService      *service.AuthService
	userService      *service.UserService
	groupService     *service.GroupService
	bootstrapService *service.BootstrapService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized: database
// migrated, token services wired, the initial admin seeded.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "userdesk",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}
	if err := app.initServices(); err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.initHTTP()

	// Seed the initial admin before accepting traffic.
	ctx := slogx.WithContext(context.Background(), app.logger)
	if err := app.bootstrapService.EnsureInitialAdmin(ctx); err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("seed initial admin: %w", err)
	}

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.logger.Info("admin service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)
		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down admin service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("admin service stopped")
	return nil
}

// initDatabase opens the SQLite store and applies migrations.
func (app *Application) initDatabase() error {
	db, err := sqlite.NewStore(app.cfg.DatabaseFile)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

// initServices wires the business logic services, including the two signer
// and verifier pairs for the separate token families.
func (app *Application) initServices() error {
	accessSigner, err := jwtx.NewSignerHMAC(app.cfg.AccessAlgorithm, []byte(app.cfg.AccessSecret))
	if err != nil {
		return fmt.Errorf("access signer: %w", err)
	}
	refreshSigner, err := jwtx.NewSignerHMAC(app.cfg.RefreshAlgorithm, []byte(app.cfg.RefreshSecret))
	if err != nil {
		return fmt.Errorf("refresh signer: %w", err)
	}
	accessVerifier, err := jwtx.NewVerifierHMAC(app.cfg.AccessAlgorithm, []byte(app.cfg.AccessSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("access verifier: %w", err)
	}
	refreshVerifier, err := jwtx.NewVerifierHMAC(app.cfg.RefreshAlgorithm, []byte(app.cfg.RefreshSecret), app.cfg.Issuer)
	if err != nil {
		return fmt.Errorf("refresh verifier: %w", err)
	}

	app.authService = &service.AuthService{
		Store:           app.db,
		AccessSigner:    accessSigner,
		RefreshSigner:   refreshSigner,
		AccessVerifier:  accessVerifier,
		RefreshVerifier: refreshVerifier,
		Issuer:          app.cfg.Issuer,
		AccessTTL:       app.cfg.AccessTTL,
		RefreshTTL:      app.cfg.RefreshTTL,
	}
	app.userService = &service.UserService{Store: app.db}
	app.groupService = &service.GroupService{Store: app.db}
	app.bootstrapService = &service.BootstrapService{
		Store:         app.db,
		AdminUsername: app.cfg.FirstAdminUsername,
		AdminPassword: app.cfg.FirstAdminPassword,
	}

	return nil
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(BuildVersion, app.db, app.logger)
	router.AuthService = app.authService
	router.UserService = app.userService
	router.GroupService = app.groupService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
