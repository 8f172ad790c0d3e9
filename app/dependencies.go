package app

import (
	"context"
	"fmt"

	"github.com/fintrack/finance-tracker/auth"
	"github.com/fintrack/finance-tracker/config"
	"github.com/fintrack/finance-tracker/handlers"
	"github.com/fintrack/finance-tracker/internal/observability"
	"github.com/fintrack/finance-tracker/middleware"
	"github.com/fintrack/finance-tracker/repositories"
	"github.com/fintrack/finance-tracker/repositories/postgres"
	"github.com/fintrack/finance-tracker/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Users     repositories.UserRepository
	TxManager repositories.TransactionManager

	// Metrics
	MetricsRegistry *prometheus.Registry
	Metrics         *observability.AuthMetrics

	// Auth primitives
	Hasher *auth.HashPool
	Tokens *auth.TokenCodec

	// Services
	AuthService *services.AuthService
	UserService *services.UserService

	// HTTP
	RoutePolicy    *middleware.RoutePolicy
	AuthMiddleware *middleware.AuthMiddleware
	AuthHandler    *handlers.AuthHandler
	UserHandler    *handlers.UserHandler
	HealthHandler  *handlers.HealthHandler
}

// NewDependencies connects to PostgreSQL and wires up all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	db, err := postgres.NewDB(cfg.Database, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.HealthCheck(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesFromDB(cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// NewDependenciesFromDB wires the application around an already open
// database handle.
func NewDependenciesFromDB(cfg *config.Config, logger *zap.Logger, db *postgres.DB) (*Dependencies, error) {
	return wire(cfg, logger, postgres.NewRepositoryFactoryFromDB(db, logger))
}

func wire(cfg *config.Config, logger *zap.Logger, factory *postgres.RepositoryFactory) (*Dependencies, error) {
	d := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
	}

	d.initRepositories()

	if err := d.initMetrics(); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	if err := d.initAuth(); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	d.initServices()

	if err := d.initHTTP(); err != nil {
		return nil, fmt.Errorf("failed to initialize http layer: %w", err)
	}

	return d, nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Users = repos.Users
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

// initMetrics creates a private registry so tests and multiple instances
// never collide on the default one.
func (d *Dependencies) initMetrics() error {
	reg := prometheus.NewRegistry()
	if d.Config.Observability.MetricsEnabled {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	metrics, err := observability.NewAuthMetrics(reg)
	if err != nil {
		return err
	}

	d.MetricsRegistry = reg
	d.Metrics = metrics
	return nil
}

func (d *Dependencies) initAuth() error {
	authCfg := d.Config.Auth

	bcryptHasher, err := auth.NewBcryptHasher(authCfg.BcryptCost)
	if err != nil {
		return err
	}
	d.Hasher = auth.NewHashPool(bcryptHasher, authCfg.HashConcurrency, d.Metrics.ObserveHash)

	tokens, err := auth.NewTokenCodec([]byte(authCfg.JWTSecret), authCfg.TokenTTL)
	if err != nil {
		return err
	}
	d.Tokens = tokens

	d.Logger.Info("auth initialized",
		zap.Int("bcrypt_cost", bcryptHasher.Cost()),
		zap.Duration("token_ttl", tokens.TTL()))
	return nil
}

func (d *Dependencies) initServices() {
	d.AuthService = services.NewAuthService(d.Users, d.Hasher, d.Tokens, d.Metrics, d.Logger, services.AuthServiceOptions{
		EqualizeLoginTiming: d.Config.Auth.EqualizeLoginTiming,
	})
	d.UserService = services.NewUserService(d.Users, d.TxManager, d.Logger)
}

func (d *Dependencies) initHTTP() error {
	entries := middleware.DefaultPublicRoutes()
	if len(d.Config.Auth.PublicRoutes) > 0 {
		parsed, err := middleware.ParseRouteSpecs(d.Config.Auth.PublicRoutes)
		if err != nil {
			return err
		}
		entries = parsed
	}

	policy, err := middleware.NewRoutePolicy(entries)
	if err != nil {
		return err
	}
	d.RoutePolicy = policy

	loaded := make([]string, 0, len(entries))
	for _, e := range policy.Entries() {
		loaded = append(loaded, fmt.Sprintf("%s %s %s", e.Method, e.Pattern, e.Requirement))
	}
	d.Logger.Info("route policy loaded", zap.Strings("routes", loaded))
	d.AuthMiddleware = middleware.NewAuthMiddleware(policy, d.Tokens, d.Metrics, d.Logger)

	var verifier handlers.BearerVerifier
	if d.Config.Auth.ValidateChecksToken {
		verifier = d.AuthMiddleware
	}
	d.AuthHandler = handlers.NewAuthHandler(d.AuthService, verifier, d.Logger)
	d.UserHandler = handlers.NewUserHandler(d.UserService, d.Logger)

	// A nil *postgres.DB must not become a non-nil interface.
	var checker handlers.HealthChecker
	if d.DB != nil {
		checker = d.DB
	}
	d.HealthHandler = handlers.NewHealthHandler(checker, d.Logger)

	d.Logger.Info("route policy loaded", zap.Int("public_routes", len(entries)))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	// Close database connection
	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	// Sync logger
	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors during shutdown: %v", errs)
	}

	return nil
}
