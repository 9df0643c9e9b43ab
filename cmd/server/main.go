package main

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

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"

	"github.com/g1000/portal/internal/config"
	"github.com/g1000/portal/internal/domain"
	"github.com/g1000/portal/internal/handler"
	"github.com/g1000/portal/internal/mailer"
	"github.com/g1000/portal/internal/metrics"
	"github.com/g1000/portal/internal/repository"
	"github.com/g1000/portal/internal/service"
)

func main() {
	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if err := migrateUp(cfg); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	db, err := sqlx.Connect("pgx", cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	slog.Info("database connected")

	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	appRepo := repository.NewApplicationRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	var sender service.EmailSender = mailer.LogSender{}
	if cfg.SMTPHost != "" {
		sender = mailer.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword, cfg.EmailFrom)
	}
	notifier := service.NewNotificationService(sender)

	authSvc := service.NewAuthService(userRepo, service.AuthConfig{
		GoogleClientID:     cfg.GoogleClientID,
		GoogleClientSecret: cfg.GoogleClientSecret,
		JWTSecret:          cfg.JWTSecret,
		FrontendURL:        cfg.FrontendURL,
	})
	lifecycleSvc := service.NewLifecycleService(appRepo, projectRepo, userRepo, profileRepo, notifier)
	projectSvc := service.NewProjectService(projectRepo, appRepo)
	profileSvc := service.NewProfileService(profileRepo)

	authHandler := handler.NewAuthHandler(authSvc)
	businessHandler := handler.NewBusinessHandler(projectSvc, lifecycleSvc, profileSvc)
	studentHandler := handler.NewStudentHandler(lifecycleSvc, projectSvc, profileSvc)
	opportunityHandler := handler.NewOpportunityHandler(projectSvc)

	r := chi.NewRouter()

	r.Use(handler.RequestID)
	r.Use(handler.Logger)
	r.Use(handler.Recover)
	r.Use(metrics.Middleware)
	r.Use(middleware.RealIP)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		handler.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Get("/google", authHandler.GoogleRedirect)
			r.Get("/google/callback", authHandler.GoogleCallback)
			r.Post("/owner/register", authHandler.RegisterOwner)
			r.Post("/owner/login", authHandler.LoginOwner)
			r.Post("/refresh", authHandler.Refresh)
		})

		// Public opportunity listing
		r.Get("/opportunities", opportunityHandler.List)
		r.Get("/opportunities/{projectID}", opportunityHandler.Get)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(handler.Auth(authSvc))

			r.Get("/auth/me", authHandler.Me)

			r.Route("/business", func(r chi.Router) {
				r.Use(handler.RequireRole(domain.RoleOwner))

				r.Get("/profile", businessHandler.Profile)
				r.Put("/profile", businessHandler.SaveProfile)

				r.Route("/projects", func(r chi.Router) {
					r.Get("/", businessHandler.ListProjects)
					r.Post("/", businessHandler.CreateProject)
					r.Patch("/{projectID}", businessHandler.UpdateProject)
					r.Get("/{projectID}/applications", businessHandler.ListApplications)

					r.Route("/{projectID}/applications/{appID}", func(r chi.Router) {
						r.Post("/accept", businessHandler.Accept)
						r.Post("/reject", businessHandler.Reject)
						r.Post("/undo-reject", businessHandler.UndoReject)
						r.Post("/invite", businessHandler.Invite)
						r.Post("/reschedule", businessHandler.Reschedule)
					})
				})
			})

			r.Route("/student", func(r chi.Router) {
				r.Use(handler.RequireRole(domain.RoleStudent))

				r.Get("/profile", studentHandler.Profile)
				r.Put("/profile", studentHandler.SaveProfile)
				r.Get("/applications", studentHandler.ListApplications)
				r.Post("/applications/{appID}/withdraw", studentHandler.Withdraw)
				r.Post("/opportunities/{projectID}/apply", studentHandler.Apply)
			})
		})
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		errCh <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", "signal", sig)
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// migrateUp applies pending schema migrations. The schema is versioned
// explicitly so repositories always write against a known shape.
func migrateUp(cfg config.Config) error {
	m, err := migrate.New("file://"+cfg.MigrationsDir, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	slog.Info("schema migrations up to date")
	return nil
}
