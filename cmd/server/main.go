package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"google.golang.org/api/option"

	"github.com/gauravnainwal518/note-app/docs"
	"github.com/gauravnainwal518/note-app/internal/auth"
	"github.com/gauravnainwal518/note-app/internal/cache"
	"github.com/gauravnainwal518/note-app/internal/config"
	"github.com/gauravnainwal518/note-app/internal/handler"
	"github.com/gauravnainwal518/note-app/internal/logger"
	"github.com/gauravnainwal518/note-app/internal/mail"
	"github.com/gauravnainwal518/note-app/internal/metrics"
	"github.com/gauravnainwal518/note-app/internal/repository"
	"github.com/gauravnainwal518/note-app/internal/router"
	"github.com/gauravnainwal518/note-app/internal/service"
)

const shutdownTimeout = 10 * time.Second

// @title Note App API
// @version 1.0
// @description Notes API with email OTP and Google login.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	log := logger.SetupDefault(os.Stdout, cfg.SlogLevel())

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx := context.Background()

	stores, err := repository.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := stores.Close(context.Background()); err != nil {
			log.Warn("close store", slog.String("error", err.Error()))
		}
	}()
	log.Info("store ready", slog.String("driver", cfg.DBDriver), slog.Bool("reset", cfg.ResetDB))

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB, "noteapp:")
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Warn("redis unavailable, user cache disabled until it recovers", slog.String("error", err.Error()))
	}

	mailer, err := newMailer(cfg, log)
	if err != nil {
		return err
	}
	verifier, err := newIdentityVerifier(ctx, cfg, log)
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	recorder := metrics.NewCollector(reg)

	jwtService := auth.NewJWTService(cfg.JWTSecret, auth.WithTTL(cfg.SessionTTL))
	opts := []service.Option{
		service.WithLogger(log),
		service.WithMetrics(recorder),
		service.WithCache(cacheClient),
	}

	// Initialize services
	otpService := service.NewOTPService(stores.Users, mailer, auth.NewOTPGenerator(cfg.OTPLength), cfg.OTPTTL, opts...)
	authService := service.NewAuthService(stores.Users, jwtService, verifier, opts...)
	noteService := service.NewNoteService(stores.Notes, cfg.SanitizeNotes, opts...)

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "http://"), "https://")
	}

	e := echo.New()
	e.HideBanner = true
	router.Register(e, cfg, router.Deps{
		Logger:      log,
		Sessions:    jwtService,
		Recorder:    recorder,
		Gatherer:    reg,
		AuthHandler: handler.NewAuthHandler(otpService, authService),
		NoteHandler: handler.NewNoteHandler(noteService),
	})

	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      e,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("API server starting",
			slog.String("addr", server.Addr),
			slog.String("swagger", "http://"+docs.SwaggerInfo.Host+"/swagger/index.html"),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
	}
	log.Info("shutting down API server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Info("API server stopped gracefully")
	return nil
}

// newMailer returns the SMTP mailer, or a mailer that only logs when no
// relay is configured.
func newMailer(cfg *config.Config, log *slog.Logger) (mail.Mailer, error) {
	if cfg.SMTPHost == "" {
		log.Warn("SMTP_HOST not set, OTP codes are written to the log")
		return mail.NewLogMailer(log), nil
	}
	return mail.NewSMTPMailer(mail.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.MailFrom,
	})
}

func newIdentityVerifier(ctx context.Context, cfg *config.Config, log *slog.Logger) (auth.IdentityVerifier, error) {
	if cfg.GoogleClientID == "" {
		log.Warn("GOOGLE_CLIENT_ID not set, google login is disabled")
		return auth.NewGoogleVerifierWithValidator("", nil), nil
	}
	return auth.NewGoogleVerifier(ctx, cfg.GoogleClientID,
		option.WithHTTPClient(&http.Client{Timeout: 10 * time.Second}))
}
