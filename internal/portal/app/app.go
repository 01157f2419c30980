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

	"github.com/aussiebroadwan/portal/internal/portal/guard"
	httpapi "github.com/aussiebroadwan/portal/internal/portal/http"
	"github.com/aussiebroadwan/portal/internal/portal/obs"
	"github.com/aussiebroadwan/portal/internal/portal/service"
	"github.com/aussiebroadwan/portal/internal/portal/session"
	"github.com/aussiebroadwan/portal/internal/portal/store"
	"github.com/aussiebroadwan/portal/internal/portal/store/drivers/redis"
	"github.com/aussiebroadwan/portal/internal/portal/store/drivers/sqlite"
	"github.com/aussiebroadwan/portal/pkg/cryptox"
	"github.com/aussiebroadwan/portal/pkg/edgejwt"
	"github.com/aussiebroadwan/portal/pkg/jwtx"
	"github.com/aussiebroadwan/portal/pkg/slogx"
	"github.com/aussiebroadwan/portal/pkg/tokenx"
)

// BuildVersion is overridden at build time via ldflags.
var BuildVersion = "v0.1.0"

// Application encapsulates the portal with all its dependencies.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db          store.Store
	hasher      *cryptox.Hasher
	codec       tokenx.Codec // full tier: login, resolver
	edge        tokenx.Codec // constrained tier: route guard
	policy      *guard.Policy
	revocations *redis.Revocations // nil unless PORTAL_REDIS_URL is set
	metrics     *obs.Metrics

	// Services
	authService         *service.AuthService
	directorService     *service.DirectorService
	divisionService     *service.DivisionService
	housekeepingService *service.HousekeepingService
	housekeepingStarted bool

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	if cfg.SessionSecret.IsZero() {
		return nil, tokenx.ErrSecretMissing
	}

	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "portal",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	hasher, err := OpenHasher(cfg)
	if err != nil {
		return nil, err
	}
	app.hasher = hasher

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initSecurity(); err != nil {
		_ = app.Close()
		return nil, err
	}

	if err := app.initRevocations(context.Background()); err != nil {
		_ = app.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Handler exposes the fully wired router, mainly for tests.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()
	app.housekeepingStarted = true

	app.logger.Info("portal starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"denylist", app.revocations != nil,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.Close()
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
	app.logger.Info("shutting down portal...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.Info("portal stopped")
	return nil
}

// Close stops background work and releases storage without touching the
// HTTP server.
func (app *Application) Close() error {
	if app.housekeepingStarted {
		app.housekeepingService.Stop()
		app.housekeepingStarted = false
	}

	if app.revocations != nil {
		if err := app.revocations.Close(); err != nil {
			app.logger.Error("error closing denylist", "error", err)
		}
		app.revocations = nil
	}

	if app.db == nil {
		return nil
	}
	err := app.db.Close()
	app.db = nil
	if err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// OpenHasher loads (or creates) the pepper and builds the password hasher.
func OpenHasher(cfg Config) (*cryptox.Hasher, error) {
	pepper, err := cryptox.LoadOrGeneratePepper(cfg.PepperFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load pepper: %w", err)
	}
	return cryptox.NewHasher(pepper), nil
}

// OpenStore opens the database and applies migrations.
func OpenStore(cfg Config) (*sqlite.Store, error) {
	db, err := sqlite.NewStore(cfg.DatabaseFile)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to apply database migrations: %w", err)
	}
	return db, nil
}

func (app *Application) initDatabase() error {
	db, err := OpenStore(app.cfg)
	if err != nil {
		return err
	}
	app.db = db

	app.logger.Info("database migrations applied successfully", "file", app.cfg.DatabaseFile)
	return nil
}

// initSecurity builds both token codecs and the route policy.
func (app *Application) initSecurity() error {
	codec, err := jwtx.NewCodec(app.cfg.SessionSecret)
	if err != nil {
		return fmt.Errorf("failed to initialize token codec: %w", err)
	}
	app.codec = codec

	edge, err := edgejwt.New(app.cfg.SessionSecret, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize guard token codec: %w", err)
	}
	app.edge = edge

	if app.cfg.RoutePolicyFile == "" {
		app.policy = guard.DefaultPolicy()
		return nil
	}

	policy, err := guard.LoadPolicy(app.cfg.RoutePolicyFile)
	if err != nil {
		return fmt.Errorf("failed to load route policy: %w", err)
	}
	app.policy = policy
	app.logger.Info("route policy loaded",
		"file", app.cfg.RoutePolicyFile,
		"protected", len(policy.Protected),
		"unmatched", policy.Unmatched,
	)
	return nil
}

func (app *Application) initRevocations(ctx context.Context) error {
	if app.cfg.RedisURL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	client, err := redis.Connect(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect to denylist: %w", err)
	}
	app.revocations = redis.NewRevocations(client)
	app.logger.Info("revocation denylist enabled")
	return nil
}

// initServices initializes all business logic services.
func (app *Application) initServices() {
	app.metrics = obs.New()

	app.authService = &service.AuthService{
		Store:        app.db,
		Hasher:       app.hasher,
		Codec:        app.codec,
		ObserveLogin: app.metrics.ObserveLogin,
	}
	if app.revocations != nil {
		app.authService.Revocations = app.revocations
	}

	app.directorService = &service.DirectorService{Store: app.db, Hasher: app.hasher}
	app.divisionService = &service.DivisionService{Store: app.db}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
		app.cfg.LoginAuditRetention,
	)
}

// initHTTP initializes the HTTP router and server.
func (app *Application) initHTTP() {
	cookie := app.cfg.Cookie()

	var revocations store.Revocations
	if app.revocations != nil {
		revocations = app.revocations
	}
	resolver := session.NewResolver(app.db.Principals(), app.codec, revocations)
	g := guard.New(app.policy, app.edge, cookie, guard.WithDecisionCounter(app.metrics.GuardDecisions))

	router := httpapi.NewRouter(
		BuildVersion,
		app.db,
		resolver,
		g,
		app.metrics,
		cookie,
		app.logger,
	)
	router.LoginLimit = app.cfg.LoginLimit
	router.AdminLimit = app.cfg.AdminLimit
	router.TrustedProxies = app.cfg.TrustedProxies
	if app.revocations != nil {
		router.ReadyChecks["denylist"] = app.revocations.Ping
	}

	// Wire services to router
	router.AuthService = app.authService
	router.DirectorService = app.directorService
	router.DivisionService = app.divisionService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
