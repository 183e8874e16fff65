package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/godview/internal/admin/http"
	"github.com/aussiebroadwan/godview/internal/admin/service"
	"github.com/aussiebroadwan/godview/internal/admin/store"
	"github.com/aussiebroadwan/godview/internal/admin/store/drivers/sqlite"
	"github.com/aussiebroadwan/godview/pkg/cryptox"
	"github.com/aussiebroadwan/godview/pkg/mailx"
	"github.com/aussiebroadwan/godview/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"

	// totpIssuer is the label authenticator apps show next to the account.
	totpIssuer = "godview"
)

// Application is the super admin panel with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db   store.Store
	keys *SessionKeys

	// Services
	guard                *service.Guard
	auditRecorder        *service.AuditRecorder
	mailer               *service.Mailer
	accountService       *service.AccountService
	mfaService           *service.MFAService
	invitationService    *service.InvitationService
	organizationService  *service.OrganizationService
	impersonationService *service.ImpersonationService
	insightsService      *service.InsightsService
	featureFlagService   *service.FeatureFlagService
	housekeepingService  *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	return newApplication(cfg, slogx.New(slogx.Config{
		Service: "godview",
		Version: BuildVersion,
		Env:     cfg.Env,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}))
}

func newApplication(cfg Config, logger *slog.Logger) (*Application, error) {
	app := &Application{cfg: cfg, logger: logger}

	// Set pepper path for password hashing
	cryptox.SetPepperPath(app.cfg.PepperFile)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	keys, err := InitSessionKeys(app.cfg, []string{service.DefaultAudience}, app.logger)
	if err != nil {
		_ = app.db.Close()
		return nil, err
	}
	app.keys = keys

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the routed handler, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("godview starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down godview...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("godview stopped")
	return nil
}

// initDatabase opens sqlite in WAL mode and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully", "path", app.cfg.DatabaseFile)
	return nil
}

// newSender picks Resend when an API key is configured.
func (app *Application) newSender() mailx.Sender {
	if app.cfg.ResendAPIKey == "" {
		app.logger.Warn("RESEND_API_KEY not set, emails will be recorded but not sent")
		return mailx.NoopSender{}
	}
	return mailx.NewResendSender(app.cfg.ResendAPIKey)
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.guard = &service.Guard{
		Store:    app.db,
		Verifier: app.keys.Verifier,
	}
	app.auditRecorder = &service.AuditRecorder{Store: app.db}
	app.mailer = &service.Mailer{
		Store:   app.db,
		Sender:  app.newSender(),
		From:    app.cfg.EmailFrom,
		ReplyTo: app.cfg.EmailReplyTo,
	}

	app.accountService = &service.AccountService{
		Store:          app.db,
		Signer:         app.keys.Signer,
		Issuer:         app.cfg.Issuer,
		Audience:       app.keys.Audience,
		SessionTTL:     app.cfg.SessionTTL,
		BootstrapToken: app.cfg.BootstrapToken,
	}
	app.mfaService = &service.MFAService{
		Store:  app.db,
		Issuer: totpIssuer,
	}
	app.invitationService = &service.InvitationService{
		Store:         app.db,
		Audit:         app.auditRecorder,
		Mailer:        app.mailer,
		InviteBaseURL: app.cfg.InviteBaseURL,
	}
	app.organizationService = &service.OrganizationService{
		Store:       app.db,
		Audit:       app.auditRecorder,
		Invitations: app.invitationService,
	}
	app.impersonationService = &service.ImpersonationService{
		Store:      app.db,
		Audit:      app.auditRecorder,
		MainAppURL: app.cfg.MainAppURL,
	}
	app.insightsService = &service.InsightsService{Store: app.db}
	app.featureFlagService = &service.FeatureFlagService{
		Store: app.db,
		Audit: app.auditRecorder,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)

	if app.cfg.BootstrapToken == "" {
		app.logger.Info("bootstrap disabled, set BOOTSTRAP_TOKEN to create the first super admin")
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.keys.KeySet,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.CookieSecure = app.cfg.CookieSecure
	router.Guard = app.guard
	router.AccountService = app.accountService
	router.MFAService = app.mfaService
	router.InvitationService = app.invitationService
	router.OrganizationService = app.organizationService
	router.ImpersonationService = app.impersonationService
	router.InsightsService = app.insightsService
	router.FeatureFlagService = app.featureFlagService
	router.AuditRecorder = app.auditRecorder
	router.Mailer = app.mailer
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
