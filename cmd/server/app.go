package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/phrazzld/memberguard/internal/api"
	"github.com/phrazzld/memberguard/internal/bot"
	"github.com/phrazzld/memberguard/internal/config"
	"github.com/phrazzld/memberguard/internal/jobqueue"
	"github.com/phrazzld/memberguard/internal/platform/discord"
	"github.com/phrazzld/memberguard/internal/platform/gemini"
	"github.com/phrazzld/memberguard/internal/platform/postgres"
	"github.com/phrazzld/memberguard/internal/platform/secret"
	"github.com/phrazzld/memberguard/internal/platform/youtube"
	"github.com/phrazzld/memberguard/internal/service"
	"github.com/phrazzld/memberguard/internal/service/auth"
	"github.com/phrazzld/memberguard/internal/service/reconcile"
	"github.com/phrazzld/memberguard/internal/store"
)

// application holds all the shared application dependencies to simplify management
// and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	channelStore    store.ChannelStore
	membershipStore store.MembershipStore
	linkStore       store.LinkStore

	// Job queues. OCR and reconciliation never compete for slots.
	ocrQueue       *jobqueue.Queue
	reconcileQueue *jobqueue.Queue

	// Services
	jwtService        auth.JWTService
	consent           api.ConsentURLBuilder
	membershipService service.MembershipService

	// Background workers
	bot        *bot.Bot
	reconciler *reconcile.Reconciler
}

// queueConfig builds a job queue configuration from per-component settings.
func queueConfig(concurrency, requestsPerMinute int, timeout time.Duration) jobqueue.Config {
	cfg := jobqueue.DefaultConfig()
	cfg.Concurrency = concurrency
	cfg.Timeout = timeout
	if requestsPerMinute > 0 {
		cfg.IntervalCap = requestsPerMinute
		cfg.Interval = time.Minute
	}
	return cfg
}

// newApplication creates a new application instance with all dependencies initialized.
// It accepts core dependencies like configuration, logger, and database connection that
// must be established before application initialization.
func newApplication(ctx context.Context, cfg *config.Config, logger *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	app.channelStore = postgres.NewPostgresChannelStore(db, logger)
	app.membershipStore = postgres.NewPostgresMembershipStore(db, logger)
	app.linkStore = postgres.NewPostgresLinkStore(db, logger)

	app.ocrQueue, err = jobqueue.New("ocr",
		queueConfig(cfg.OCR.Concurrency, cfg.OCR.RequestsPerMinute, cfg.OCR.Timeout()), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create OCR queue: %w", err)
	}
	app.reconcileQueue, err = jobqueue.New("reconcile",
		queueConfig(cfg.Reconcile.Concurrency, cfg.Reconcile.RequestsPerMinute, cfg.Reconcile.Timeout()), logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create reconcile queue: %w", err)
	}

	box, err := secret.NewBox(cfg.Auth.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token encryption: %w", err)
	}

	recognizer, err := gemini.NewRecognizer(ctx, logger, cfg.OCR)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize recognizer: %w", err)
	}
	logger.Info("OCR recognizer initialized", "model", cfg.OCR.ModelName)

	oauth := youtube.NewOAuth(cfg.YouTube)
	app.consent = oauth
	checker := youtube.NewChecker(logger)

	session, err := discord.NewSession(cfg.Discord.BotToken)
	if err != nil {
		return nil, err
	}
	roles := discord.NewRoleManager(session, logger)

	app.membershipService, err = service.NewMembershipService(service.MembershipDeps{
		Channels:    app.channelStore,
		Memberships: app.membershipStore,
		Links:       app.linkStore,
		OCRQueue:    app.ocrQueue,
		Recognizer:  recognizer,
		OAuth:       oauth,
		YouTube:     checker,
		Sealer:      box,
		Roles:       roles,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership service: %w", err)
	}

	app.bot = bot.New(session, app.membershipService, app.jwtService, oauth, cfg.Discord, logger)

	if cfg.Reconcile.Enabled {
		app.reconciler, err = reconcile.New(reconcile.Deps{
			Channels:    app.channelStore,
			Memberships: app.membershipStore,
			Links:       app.linkStore,
			Queue:       app.reconcileQueue,
			OAuth:       oauth,
			YouTube:     checker,
			Opener:      box,
			Roles:       roles,
		}, cfg.Reconcile.Interval(), logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create reconciler: %w", err)
		}
	}

	logger.Info("Application initialized successfully")
	return app, nil
}

// Run starts the bot, the reconciler and the HTTP server, and blocks until
// the server shuts down.
func (app *application) Run(ctx context.Context) error {
	if err := app.bot.Start(ctx); err != nil {
		app.cleanup()
		return fmt.Errorf("failed to start discord bot: %w", err)
	}

	if app.reconciler != nil {
		app.reconciler.Start(ctx)
		app.logger.Info("Membership reconciliation started",
			"interval", app.config.Reconcile.Interval().String())
	}

	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.reconciler != nil {
		app.reconciler.Stop()
	}

	if app.bot != nil {
		if err := app.bot.Stop(); err != nil {
			app.logger.Error("Error closing discord session", "error", err)
		}
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("Error closing database connection", "error", err)
		}
	}

	app.logger.Info("Application shutdown completed")
}
