package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/testimonials/testimonials/handlers"
	"github.com/testimonials/testimonials/internal/config"
	"github.com/testimonials/testimonials/internal/database"
	"github.com/testimonials/testimonials/internal/intake"
	"github.com/testimonials/testimonials/internal/oidc"
	"github.com/testimonials/testimonials/internal/storage"
	"github.com/testimonials/testimonials/internal/testimonial/handler"
	"github.com/testimonials/testimonials/internal/testimonial/service"
	"github.com/testimonials/testimonials/internal/tokens"
	"github.com/testimonials/testimonials/pkg/logger"
	"github.com/testimonials/testimonials/pkg/metrics"
	"github.com/testimonials/testimonials/pkg/middleware"
)

const (
	mongoConnectAttempts = 5
	shutdownTimeout      = 15 * time.Second
)

var startTime = time.Now()

func main() {
	// initialize logging (can be controlled with LOG_LEVEL env: debug|info|warn|error|fatal)
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	logger.Infof("config loaded: storage=%s mongo=%v redis=%v admin_auth=%v",
		cfg.Storage.Driver, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.AdminAuthEnabled())
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := gin.New()
	r.Use(middleware.RequestID(), gin.Logger(), gin.Recovery(), middleware.CORS(cfg.CORS.AllowedOrigin))
	checks := map[string]handlers.Check{}

	// Redis backs the shared rate limiter and token revocation; both degrade
	// gracefully without it.
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer redisClient.Close()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnf("failed to connect to Redis (%s): %v", cfg.Redis.Addr(), err)
		} else {
			logger.Infof("connected to Redis: %s", cfg.Redis.Addr())
		}
		checks["redis"] = func(ctx context.Context) error { return redisClient.Ping(ctx).Err() }
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		logger.Fatalf("failed to initialize %s storage: %v", cfg.Storage.Driver, err)
	}
	logger.Infof("image storage: %s", cfg.Storage.Driver)

	constraints := intake.ImageConstraints(cfg.Upload.MaxBytes)
	var svc service.Service
	if cfg.MongoDB.URI != "" {
		client, err := database.ConnectWithRetry(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout, mongoConnectAttempts)
		if err != nil {
			logger.Fatalf("could not connect to MongoDB: %v", err)
		}
		defer func() { _ = client.Disconnect(context.Background()) }()
		col := client.Database(cfg.MongoDB.Database).Collection(cfg.MongoDB.Collection)
		svc = service.NewMongoService(ctx, col, store, constraints)
		checks["mongo"] = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		logger.Infof("using MongoDB collection %s.%s", cfg.MongoDB.Database, cfg.MongoDB.Collection)
	} else {
		logger.Warnf("MONGODB_URI not set; testimonials are kept in memory and lost on restart")
		svc = service.NewMemoryService(store, constraints)
	}

	opts := handler.Options{
		MaxBodyBytes: cfg.Upload.MaxBytes + 1<<20,
		MaxMemory:    cfg.Upload.MaxMemory,
	}

	revocations := tokens.NewRevocations(redisClient, cfg.Admin.TokenTTL)
	var revoker middleware.Revoker
	if revocations.Enabled() {
		revoker = revocations
		opts.Revoker = revocations
	}

	var verifiers middleware.Verifiers
	if cfg.Admin.JWTSecret != "" {
		verifiers = append(verifiers, tokens.NewAdminVerifier(cfg.Admin.JWTSecret))
	}
	if cfg.Keycloak.URL != "" && cfg.Keycloak.Realm != "" && cfg.Keycloak.ClientID != "" {
		ver, err := oidc.NewVerifier(ctx, cfg.Keycloak.Issuer(), cfg.Keycloak.ClientID, cfg.Keycloak.AdminRole)
		if err != nil {
			logger.Warnf("failed to initialize OIDC verifier: %v", err)
		} else {
			verifiers = append(verifiers, ver)
		}
	}
	switch {
	case len(verifiers) > 0:
		opts.AdminMiddleware = []gin.HandlerFunc{middleware.AuthMiddleware(verifiers, revoker)}
	case cfg.AdminAuthEnabled():
		logger.Fatalf("admin auth is configured but no token verifier could be initialized")
	default:
		logger.Warnf("admin auth not configured; /api/testimonials/admin routes are open")
	}

	if cfg.RateLimit.Enabled {
		if cfg.RateLimit.UseRedis && redisClient != nil {
			win := time.Duration(cfg.RateLimit.WindowSeconds) * time.Second
			opts.IntakeMiddleware = append(opts.IntakeMiddleware,
				middleware.RedisRateLimitMiddleware(redisClient, "intake", cfg.RateLimit.RPS, cfg.RateLimit.Burst, win))
		} else {
			opts.IntakeMiddleware = append(opts.IntakeMiddleware,
				middleware.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
		}
	}

	handler.RegisterTestimonialRoutes(r, svc, opts)
	handlers.RegisterSwagger(r)
	handlers.RegisterHealth(r, startTime, checks)

	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("starting testimonials API on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}
