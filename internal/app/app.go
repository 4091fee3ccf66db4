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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/expertraah/marketplace-api/internal/auth"
	"github.com/expertraah/marketplace-api/internal/config"
	httpcontroller "github.com/expertraah/marketplace-api/internal/controller/http"
	"github.com/expertraah/marketplace-api/internal/database"
	adminservice "github.com/expertraah/marketplace-api/internal/domain/admin/service"
	consultantdao "github.com/expertraah/marketplace-api/internal/domain/consultant/dao"
	consultantservice "github.com/expertraah/marketplace-api/internal/domain/consultant/service"
	jobdao "github.com/expertraah/marketplace-api/internal/domain/job/dao"
	jobservice "github.com/expertraah/marketplace-api/internal/domain/job/service"
	messagingdao "github.com/expertraah/marketplace-api/internal/domain/messaging/dao"
	messagingservice "github.com/expertraah/marketplace-api/internal/domain/messaging/service"
	proposaldao "github.com/expertraah/marketplace-api/internal/domain/proposal/dao"
	proposalservice "github.com/expertraah/marketplace-api/internal/domain/proposal/service"
	reviewdao "github.com/expertraah/marketplace-api/internal/domain/review/dao"
	reviewservice "github.com/expertraah/marketplace-api/internal/domain/review/service"
	userdao "github.com/expertraah/marketplace-api/internal/domain/user/dao"
	userentity "github.com/expertraah/marketplace-api/internal/domain/user/entity"
	userservice "github.com/expertraah/marketplace-api/internal/domain/user/service"
	"github.com/expertraah/marketplace-api/internal/storage"
)

// App is the main application container
type App struct {
	cfg        config.Config
	httpServer *http.Server
	router     *chi.Mux
	logger     *slog.Logger

	pool   *pgxpool.Pool
	tokens *auth.TokenManager
	store  *storage.DocumentStore

	users       *userdao.UserPostgres
	authService *userservice.AuthService
	profiles    *userservice.ProfileService
	messaging   *messagingservice.Service
	consultants *consultantservice.Service
	jobs        *jobservice.Service
	proposals   *proposalservice.Service
	reviews     *reviewservice.Service
	admin       *adminservice.Service
}

// NewApp creates and initializes the application
func NewApp(ctx context.Context, cfg config.Config) (*App, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.Timeout(30 * time.Second))

	app := &App{
		cfg:    cfg,
		router: r,
		logger: logger,
	}

	if err := app.initInfrastructure(ctx); err != nil {
		return nil, fmt.Errorf("initializing infrastructure: %w", err)
	}

	app.initDomains()

	if err := app.ensureAdminAccount(ctx); err != nil {
		return nil, fmt.Errorf("ensuring admin account: %w", err)
	}

	app.registerRoutes()

	app.httpServer = &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      app.router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return app, nil
}

// initInfrastructure initializes the database pool and document store
func (a *App) initInfrastructure(ctx context.Context) error {
	pool, err := database.NewPostgresPool(ctx, a.cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting to postgres: %w", err)
	}
	a.pool = pool

	store, err := storage.NewDocumentStore(storage.S3Config{
		Endpoint:        a.cfg.S3.Endpoint,
		AccessKeyID:     a.cfg.S3.AccessKeyID,
		SecretAccessKey: a.cfg.S3.SecretAccessKey,
		Bucket:          a.cfg.S3.Bucket,
		Region:          a.cfg.S3.Region,
		PublicURL:       a.cfg.S3.PublicURL,
	})
	if err != nil {
		return fmt.Errorf("initializing document store: %w", err)
	}
	a.store = store

	a.tokens = auth.NewTokenManager(a.cfg.Auth.JWTSecret, a.cfg.Auth.TokenTTL)

	return nil
}

// initDomains wires DAOs into domain services
func (a *App) initDomains() {
	a.users = userdao.NewUserPostgres(a.pool)
	profiles := userdao.NewProfilePostgres(a.pool)
	conversations := messagingdao.NewConversationPostgres(a.pool)
	messages := messagingdao.NewMessagePostgres(a.pool)
	consultants := consultantdao.NewConsultantPostgres(a.pool)
	jobs := jobdao.NewJobPostgres(a.pool)
	proposals := proposaldao.NewProposalPostgres(a.pool)
	reviews := reviewdao.NewReviewPostgres(a.pool)

	a.authService = userservice.NewAuthService(a.users, a.tokens)
	a.profiles = userservice.NewProfileService(profiles, a.users)
	a.messaging = messagingservice.New(conversations, messages, a.users)
	a.consultants = consultantservice.New(consultants, a.users)
	a.jobs = jobservice.New(jobs, a.users)
	a.proposals = proposalservice.New(proposals, jobs, consultants)
	a.reviews = reviewservice.New(reviews, jobs, consultants)
	a.admin = adminservice.New(a.users, consultants, jobs, proposals, reviews, conversations)
}

// ensureAdminAccount provisions the support admin from config if it does
// not exist yet. The contact form routes submissions to this account.
func (a *App) ensureAdminAccount(ctx context.Context) error {
	existing, err := a.users.GetByRole(ctx, userentity.RoleAdmin)
	if err != nil {
		return fmt.Errorf("looking up admin: %w", err)
	}
	if existing != nil {
		return nil
	}

	hash, err := auth.HashPassword(a.cfg.Admin.Password)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	admin := &userentity.User{
		ID:           uuid.New(),
		Name:         a.cfg.Admin.Name,
		Email:        a.cfg.Admin.Email,
		PasswordHash: hash,
		AccountType:  userentity.AccountTypeBuyer,
		Roles:        []string{userentity.RoleAdmin},
		IsVerified:   true,
	}
	if err := a.users.Create(ctx, admin); err != nil {
		// A concurrent replica may have created it between the lookup
		// and the insert
		if existing, lookupErr := a.users.GetByRole(ctx, userentity.RoleAdmin); lookupErr == nil && existing != nil {
			return nil
		}
		return fmt.Errorf("creating admin: %w", err)
	}

	a.logger.Info("admin account provisioned", "email", admin.Email)
	return nil
}

// registerRoutes registers all HTTP routes
func (a *App) registerRoutes() {
	a.router.Get("/healthz", a.healthHandler)
	a.router.Get("/readyz", a.readyHandler)

	protected := auth.Middleware(a.tokens)

	a.router.Route("/api/v1", func(r chi.Router) {
		httpcontroller.NewAuthHandler(a.authService, protected).RegisterRoutes(r)
		httpcontroller.NewProfileHandler(a.profiles, protected).RegisterRoutes(r)
		httpcontroller.NewMessageHandler(a.messaging, protected).RegisterRoutes(r)
		httpcontroller.NewConsultantHandler(a.consultants, protected).RegisterRoutes(r)
		httpcontroller.NewJobHandler(a.jobs, protected).RegisterRoutes(r)
		httpcontroller.NewProposalHandler(a.proposals, protected).RegisterRoutes(r)
		httpcontroller.NewReviewHandler(a.reviews, protected).RegisterRoutes(r)
		httpcontroller.NewDocumentHandler(a.store, protected).RegisterRoutes(r)
		httpcontroller.NewAdminHandler(a.admin).RegisterRoutes(r)
	})
}

// healthHandler handles health check requests
func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}

// readyHandler handles readiness check requests
func (a *App) readyHandler(w http.ResponseWriter, r *http.Request) {
	if err := a.pool.Ping(r.Context()); err != nil {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}

// Run starts the application and blocks until shutdown signal
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		a.logger.Info("starting HTTP server", "addr", a.cfg.Server.Address())
		if err := a.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		a.logger.Info("received shutdown signal", "signal", sig.String())
	case <-ctx.Done():
		a.logger.Info("context cancelled")
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down the application
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down HTTP server: %w", err)
	}

	if a.pool != nil {
		a.pool.Close()
	}

	a.logger.Info("shutdown complete")
	return nil
}
