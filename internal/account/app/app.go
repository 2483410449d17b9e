package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tidehub/accountd/internal/account/credentials"
	httpapi "github.com/tidehub/accountd/internal/account/http"
	"github.com/tidehub/accountd/internal/account/mail"
	"github.com/tidehub/accountd/internal/account/service"
	"github.com/tidehub/accountd/internal/account/store"
	"github.com/tidehub/accountd/internal/account/store/drivers/sqlite"
	"github.com/tidehub/accountd/pkg/jwtx"
	"github.com/tidehub/accountd/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the account service together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	signer *jwtx.HS256
	creds  *credentials.Manager

	accountService      *service.AccountService
	tokenService        *service.TokenService
	verificationService *service.VerificationService
	housekeeping        *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "accountd",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	signer, err := jwtx.NewHS256(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token signer: %w", err)
	}
	app.signer = signer

	creds, err := credentials.NewManager(cfg.ProofSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize credentials: %w", err)
	}
	app.creds = creds

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	dispatcher, err := mail.NewSMTPDispatcher(cfg.SMTPAddr, cfg.SMTPSender, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize mail dispatcher: %w", err)
	}

	app.initServices(dispatcher)
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeeping.Start()

	app.logger.Info("account service starting", "port", app.cfg.Port, "version", BuildVersion)

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

// Shutdown drains in-flight requests, stops the sweeper, and closes the
// store.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down account service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGrace)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeeping.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("account service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
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

func (app *Application) initServices(dispatcher mail.Dispatcher) {
	app.tokenService = &service.TokenService{
		Signer:     app.signer,
		Store:      app.db,
		Issuer:     app.cfg.JWTIssuer,
		Audience:   app.cfg.JWTAudience,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.accountService = &service.AccountService{
		Store:       app.db,
		Credentials: app.creds,
		Tokens:      app.tokenService,
	}

	app.verificationService = &service.VerificationService{
		Store:       app.db,
		Credentials: app.creds,
		Mail:        dispatcher,
	}

	app.housekeeping = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.SweepInterval,
		app.cfg.VerificationCodeTTL,
	)
}

func (app *Application) initHTTP() {
	app.router = httpapi.NewRouter(app.signer, app.signer, BuildVersion, app.db, app.logger)
	app.router.AccountService = app.accountService
	app.router.VerificationService = app.verificationService
	app.router.SessionTTL = app.cfg.RefreshTokenTTL
	app.router.ApplyRoutes()

	app.server = &http.Server{
		Addr:    fmt.Sprintf(":%d", app.cfg.Port),
		Handler: app.router,
	}
}
