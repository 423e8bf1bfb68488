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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mind-links/contractor-backend-go/internal/config"
	"github.com/mind-links/contractor-backend-go/internal/domain/invitation"
	"github.com/mind-links/contractor-backend-go/internal/domain/wizard"
	appHTTP "github.com/mind-links/contractor-backend-go/internal/handler/http"
	"github.com/mind-links/contractor-backend-go/internal/pkg/cron"
	"github.com/mind-links/contractor-backend-go/internal/pkg/database"
	"github.com/mind-links/contractor-backend-go/internal/pkg/email"
	"github.com/mind-links/contractor-backend-go/internal/pkg/jwt"
	"github.com/mind-links/contractor-backend-go/internal/pkg/logger"
	"github.com/mind-links/contractor-backend-go/internal/pkg/metrics"
	pkgRedis "github.com/mind-links/contractor-backend-go/internal/pkg/redis"
	"github.com/mind-links/contractor-backend-go/internal/pkg/sse"
	"github.com/mind-links/contractor-backend-go/internal/pkg/validator"
	"github.com/mind-links/contractor-backend-go/internal/repository/memory"
	"github.com/mind-links/contractor-backend-go/internal/repository/postgresql"
	redisRepo "github.com/mind-links/contractor-backend-go/internal/repository/redis"
	invitationService "github.com/mind-links/contractor-backend-go/internal/service/invitation"
	wizardService "github.com/mind-links/contractor-backend-go/internal/service/wizard"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		os.Exit(1)
	}

	log := logger.New(os.Stdout, logger.Options{
		Level:   cfg.App.LogLevel,
		Env:     cfg.App.Env,
		Version: cfg.App.Version,
	})
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		slog.Error("Server exited with error", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	m := metrics.New(prometheus.DefaultRegisterer)

	invitationRepo, closeStorage, err := newInvitationRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStorage()

	sessionRepo, closeSessions, err := newSessionRepository(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeSessions()

	JWTService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	hub := sse.NewHub()

	emailService, err := email.NewEmailService(email.Config{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		From:     cfg.SMTP.From,
		FromName: cfg.SMTP.FromName,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize email service: %w", err)
	}

	invitationSvc := invitationService.NewInvitationService(invitationRepo, hub, emailService, m, invitationService.Config{
		InvitationBaseURL: cfg.SMTP.InvitationBaseURL,
	})
	wizardCfg := wizardService.Config{SessionTTL: cfg.Wizard.SessionTTL}
	if cfg.Wizard.StrictEmail {
		wizardCfg.Email = validator.IsValidEmail
	}
	wizardSvc := wizardService.NewWizardService(sessionRepo, invitationSvc, hub, m, wizardCfg)

	scheduler := cron.NewScheduler()
	cron.NewWizardJobs(wizardSvc, cfg.Wizard.SweepInterval).RegisterJobs(scheduler)
	scheduler.Start(ctx)
	defer scheduler.Stop()

	router := appHTTP.NewRouter(
		log,
		cfg.AllowedOrigins(),
		JWTService,
		promhttp.Handler(),
		appHTTP.NewWizardHandler(wizardSvc),
		appHTTP.NewInvitationHandler(invitationSvc),
		appHTTP.NewEventsHandler(hub, JWTService),
	)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Server running", "addr", server.Addr, "storage", cfg.Database.Driver, "sessions", cfg.Wizard.SessionDriver)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	slog.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

func newInvitationRepository(ctx context.Context, cfg *config.Config) (invitation.InvitationRepository, func(), error) {
	if cfg.Database.Driver == config.StorageDriverMemory {
		slog.Warn("Using in-memory invitation storage; invitations are lost on restart")
		return memory.NewInvitationRepository(), func() {}, nil
	}

	db, err := database.NewPostgreSQLDB(ctx, cfg.DatabaseURL(), database.PoolConfig{
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to database: %w", err)
	}

	if err := postgresql.EnsureSchema(ctx, db); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("error preparing database schema: %w", err)
	}

	return postgresql.NewInvitationRepository(db), db.Close, nil
}

func newSessionRepository(ctx context.Context, cfg *config.Config) (wizard.SessionRepository, func(), error) {
	if cfg.Wizard.SessionDriver != config.SessionDriverRedis {
		return memory.NewSessionRepository(), func() {}, nil
	}

	client, err := pkgRedis.New(ctx, pkgRedis.Config{
		URL:      cfg.Redis.URL,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("error connecting to redis: %w", err)
	}

	closeFn := func() {
		if err := client.Close(); err != nil {
			slog.Warn("Failed to close redis client", "error", err)
		}
	}
	return redisRepo.NewSessionRepository(client.Client), closeFn, nil
}
