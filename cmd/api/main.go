package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/quanty/quanty-backend/api"
	"github.com/quanty/quanty-backend/api/routes"
	"github.com/quanty/quanty-backend/internal/auth"
	"github.com/quanty/quanty-backend/internal/catalog"
	"github.com/quanty/quanty-backend/internal/interviews"
	"github.com/quanty/quanty-backend/internal/oauth"
	"github.com/quanty/quanty-backend/internal/oauth/google"
	"github.com/quanty/quanty-backend/internal/profiles"
	"github.com/quanty/quanty-backend/internal/questions"
	"github.com/quanty/quanty-backend/internal/users"
	"github.com/quanty/quanty-backend/pkg/auth/session"
	"github.com/quanty/quanty-backend/pkg/config"
	"github.com/quanty/quanty-backend/pkg/db"
	"github.com/quanty/quanty-backend/pkg/logger"
	"github.com/quanty/quanty-backend/pkg/metrics"
	"github.com/quanty/quanty-backend/pkg/migrate"
	"github.com/quanty/quanty-backend/pkg/redis"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logg); err != nil {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logg *logger.Logger) error {
	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRun(ctx, cfg, logg, dbClient); err != nil {
		return err
	}

	redisClient, err := redis.New(ctx, cfg.Redis, logg)
	if err != nil {
		return err
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		return err
	}

	authService, err := auth.NewService(auth.ServiceParams{
		DB:             dbClient,
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		return err
	}

	profileService, err := profiles.NewService(profiles.NewRepository(dbClient.DB()), cfg.Admin)
	if err != nil {
		return err
	}

	interviewRepo := interviews.NewRepository(dbClient.DB())
	interviewService, err := interviews.NewService(interviewRepo)
	if err != nil {
		return err
	}
	catalogService, err := catalog.NewService(interviewRepo)
	if err != nil {
		return err
	}

	var oauthService *oauth.Service
	if cfg.Google.Enabled() {
		provider, err := google.New(ctx, cfg.Google, logg)
		if err != nil {
			return err
		}
		oauthService, err = oauth.NewService(provider, authService, cfg.Google.AllowedReturnHosts)
		if err != nil {
			return err
		}
	} else {
		logg.Info(ctx, "google sign-in disabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	handler := routes.NewRouter(cfg, logg, routes.Dependencies{
		DBPinger:    dbClient,
		RedisPinger: redisClient,
		RateLimiter: redisClient,
		Sessions:    sessionManager,
		Registry:    registry,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		AuthMetrics: metrics.NewAuthMetrics(registry),
		Auth:        authService,
		OAuth:       oauthService,
		Profiles:    profileService,
		Interviews:  interviewService,
		Catalog:     catalogService,
		Questions:   questions.NewService(),
	})

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	logCtx := logg.WithFields(ctx, map[string]any{
		"env":    cfg.App.Env,
		"addr":   addr,
		"driver": dbClient.Driver(),
	})
	logg.Info(logCtx, "starting api server")

	return api.Serve(logCtx, api.NewServer(addr, handler), logg)
}
