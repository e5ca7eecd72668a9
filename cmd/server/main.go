package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"snapfeed/backend/internal/audit"
	auditrepo "snapfeed/backend/internal/audit/repository"
	authhandler "snapfeed/backend/internal/auth/handler"
	authservice "snapfeed/backend/internal/auth/service"
	"snapfeed/backend/internal/caption"
	commenthandler "snapfeed/backend/internal/comment/handler"
	commentrepo "snapfeed/backend/internal/comment/repository"
	"snapfeed/backend/internal/config"
	"snapfeed/backend/internal/db"
	healthhandler "snapfeed/backend/internal/health/handler"
	posthandler "snapfeed/backend/internal/post/handler"
	postrepo "snapfeed/backend/internal/post/repository"
	"snapfeed/backend/internal/security"
	"snapfeed/backend/internal/server"
	"snapfeed/backend/internal/storage"
	"snapfeed/backend/internal/telemetry/otel"
	tokenrepo "snapfeed/backend/internal/token/repository"
	userhandler "snapfeed/backend/internal/user/handler"
	userrepo "snapfeed/backend/internal/user/repository"
)

const serviceName = "snapfeed-backend"

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		slog.Error("telemetry", "error", err)
		os.Exit(1)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	database, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		slog.Error("database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	tokens := security.NewTokenProvider([]byte(cfg.TokenSecret), cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	hasher := security.NewHasher(cfg.BcryptCost)
	auditLogger := audit.NewLogger(auditrepo.NewPostgresRepository(database)).
		WithEmitter(otel.NewAuditEmitter(providers.LoggerProvider))

	users := userrepo.NewPostgresRepository(database)
	authSvc := authservice.NewAuthService(users, tokenrepo.NewPostgresRepository(database), hasher, tokens, auditLogger)
	authH := authhandler.NewAuthHandler(authSvc, cfg.RefreshTTL(), cfg.Production())

	store, staticDir, err := buildStore(ctx, cfg)
	if err != nil {
		slog.Error("storage", "error", err)
		os.Exit(1)
	}

	var captioner posthandler.Captioner
	if cfg.OpenAIAPIKey != "" {
		captioner = caption.NewClient(
			caption.NewOpenAIModel(cfg.OpenAIAPIKey, cfg.OpenAIModel),
			caption.WithMaxAttempts(cfg.CaptionMaxAttempts),
			caption.WithBaseDelay(cfg.CaptionRetryBaseDelay()),
		)
	}

	posts := posthandler.NewPostHandler(postrepo.NewPostgresRepository(database), captioner, store, auditLogger)
	comments := commenthandler.NewCommentHandler(commentrepo.NewPostgresRepository(database))
	accounts := userhandler.NewUserHandler(users)
	health := healthhandler.NewHealthHandler(database)

	router := server.NewRouter(server.Options{
		ServiceName: serviceName,
		Tokens:      tokens,
		StaticDir:   staticDir,
		Health:      health.Check,
		Auth:        authH.Mount,
		Users:       accounts.Register,
		Mount:       []server.Routes{posts, comments},
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("http server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("serve", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown", "error", err)
	}
	slog.Info("http server stopped")
}

// buildStore picks the upload backend: S3 when a bucket is configured,
// otherwise local disk served under /uploads.
func buildStore(ctx context.Context, cfg *config.Config) (storage.Store, string, error) {
	if cfg.S3Bucket != "" {
		store, err := storage.NewS3Store(ctx, storage.S3Config{
			Bucket:    cfg.S3Bucket,
			Region:    cfg.S3Region,
			Endpoint:  cfg.S3Endpoint,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			BaseURL:   cfg.PublicBaseURL,
		})
		return store, "", err
	}
	store, err := storage.NewDiskStore(cfg.UploadDir, cfg.PublicBaseURL+"/uploads")
	if err != nil {
		return nil, "", err
	}
	return store, store.Dir(), nil
}
