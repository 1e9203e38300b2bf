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

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"github.com/agencydesk/crm-sla-sweep/internal/config"
	"github.com/agencydesk/crm-sla-sweep/internal/handler"
	"github.com/agencydesk/crm-sla-sweep/internal/health"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/ai"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/notifier"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/repository"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/sweeprecorder"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/logging"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/metrics"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/middleware"
	"github.com/agencydesk/crm-sla-sweep/internal/service/dispatch"
	"github.com/agencydesk/crm-sla-sweep/internal/service/rule"
	"github.com/agencydesk/crm-sla-sweep/internal/service/summary"
	"github.com/agencydesk/crm-sla-sweep/internal/service/sweep"
)

// Version is set via ldflags at build time
var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	obs, err := initObservability(ctx)
	if err != nil {
		slog.Error("failed to initialize observability", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := obs.Shutdown(shutdownCtx); err != nil {
			slog.Warn("observability shutdown error", slog.String("error", err.Error()))
		}
	}()

	slog.SetDefault(obs.Logger())

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		return 1
	}

	if err := config.ValidateForRun(cfg); err != nil {
		slog.Error("configuration validation error", slog.String("error", err.Error()))
		return 1
	}

	httpMetrics, err := metrics.NewHTTPMetrics()
	if err != nil {
		slog.Error("failed to initialize HTTP metrics", slog.String("error", err.Error()))
		return 1
	}

	sweepMetrics, err := metrics.NewSweepMetrics()
	if err != nil {
		slog.Error("failed to initialize sweep metrics", slog.String("error", err.Error()))
		return 1
	}

	// Sweep result recorder (InfluxDB for local, BigQuery for gcloud)
	recorderCfg := sweeprecorder.LoadConfig()
	recorder, err := sweeprecorder.NewRecorder(ctx, recorderCfg)
	if err != nil {
		slog.Error("failed to initialize sweep recorder", slog.String("error", err.Error()))
		return 1
	}
	defer func() {
		if err := recorder.Close(); err != nil {
			slog.Warn("failed to close sweep recorder", slog.String("error", err.Error()))
		}
	}()

	// Mongo holds the tracked items and the rule set
	connectCtx, connectCancel := context.WithTimeout(ctx, 10*time.Second)
	mongoClient, err := mongo.Connect(connectCtx, options.Client().ApplyURI(cfg.Mongo.URI))
	connectCancel()
	if err != nil {
		slog.Error("failed to connect mongo",
			slog.String("event", "mongo.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}
	defer func() {
		disconnectCtx, disconnectCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer disconnectCancel()
		if err := mongoClient.Disconnect(disconnectCtx); err != nil {
			slog.Warn("failed to disconnect mongo", slog.String("error", err.Error()))
		}
	}()

	if err := mongoClient.Ping(ctx, readpref.Primary()); err != nil {
		slog.Error("failed to ping mongo",
			slog.String("event", "mongo.ping.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	db := mongoClient.Database(cfg.Mongo.Database)
	if err := repository.EnsureItemIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure item indexes", slog.String("error", err.Error()))
		return 1
	}
	if err := repository.EnsureRuleIndexes(ctx, db); err != nil {
		slog.Error("failed to ensure rule indexes", slog.String("error", err.Error()))
		return 1
	}

	slog.Info("mongo connected",
		slog.String("database", cfg.Mongo.Database),
	)

	// Redis backs the in-app toast feed
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := redisotel.InstrumentTracing(redisClient); err != nil {
		slog.Error("failed to instrument redis tracing",
			slog.String("event", "redis.otel.tracing.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisotel.InstrumentMetrics(redisClient); err != nil {
		slog.Error("failed to instrument redis metrics",
			slog.String("event", "redis.otel.metrics.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	if err := redisClient.Ping(ctx).Err(); err != nil {
		slog.Error("failed to connect redis",
			slog.String("event", "redis.connect.fail"),
			slog.String("error", err.Error()),
		)
		return 1
	}

	defer func() {
		if err := redisClient.Close(); err != nil {
			slog.Warn("failed to close redis client", slog.String("error", err.Error()))
		}
	}()

	slog.Info("redis connected",
		slog.String("addr", cfg.Redis.Addr),
	)

	itemRepo := repository.NewItemRepository(db, cfg.Sweep.BatchLimit)
	ruleRepo := repository.NewRuleRepository(db)

	// Notification channels: toast always, email and push when configured
	notifiers := []notifier.Notifier{notifier.NewToastNotifier(redisClient)}

	if cfg.Notify.SendGridAPIKey != "" {
		notifiers = append(notifiers, notifier.NewEmailNotifier(
			cfg.Notify.SendGridAPIKey,
			cfg.Notify.SendGridFromEmail,
			cfg.Notify.SendGridFromName,
		))
		slog.Info("email channel enabled",
			slog.String("from", cfg.Notify.SendGridFromEmail),
		)
	}

	pushQueue, pushCleanup, err := initPushQueue(ctx, cfg)
	if err != nil {
		slog.Error("failed to initialize push queue", slog.String("error", err.Error()))
		return 1
	}
	if pushCleanup != nil {
		defer func() {
			if err := pushCleanup(); err != nil {
				slog.Error("push queue cleanup error", slog.String("error", err.Error()))
			}
		}()
	}
	if pushQueue != nil {
		notifiers = append(notifiers, notifier.NewPushNotifier(pushQueue))
	}

	dispatcher := dispatch.NewDispatcher(notifiers, sweepMetrics)
	sweepService := sweep.NewService(
		itemRepo,
		ruleRepo,
		rule.NewEngine(),
		dispatcher,
		recorder,
		sweepMetrics,
		cfg.Sweep.OpTimeout,
	)

	sweepHandler := handler.NewSweepHandler(sweepService)
	itemHandler := handler.NewItemHandler(itemRepo)

	// Setup router with observability middleware
	r := gin.New()
	r.Use(middleware.Gin(middleware.GinConfig{
		SkipPaths:   []string{"/health", "/health/live", "/health/ready"},
		Module:      logging.Module("sla-sweep"),
		TracerName:  "github.com/agencydesk/crm-sla-sweep/internal/observability/middleware",
		HTTPMetrics: httpMetrics,
	}))
	r.Use(middleware.PanicRecoveryGin())

	// Health check endpoints
	healthChecker := health.NewChecker(mongoClient, redisClient, Version)
	r.GET("/health/live", healthChecker.LiveHandler())
	r.GET("/health/ready", healthChecker.ReadyHandler())
	r.GET("/health", healthChecker.ReadyHandler())

	// API routes
	v1 := r.Group("/api/v1")
	{
		secured := v1.Group("", handler.RequireSweepSecret(cfg.Sweep.Secret))
		secured.POST("/sweep", sweepHandler.HandleSweep)
		secured.GET("/sweep", sweepHandler.HandleSweep)

		v1.POST("/items/:id/dismiss", itemHandler.HandleDismiss)
		v1.POST("/items/:id/reschedule", itemHandler.HandleReschedule)

		if cfg.AI.Enabled() {
			summaryService := summary.NewService(ai.NewClient(cfg.AI))
			summaryHandler := handler.NewSummaryHandler(summaryService)
			v1.POST("/summary/pipeline", handler.RequireSweepSecret(cfg.Sweep.Secret), summaryHandler.HandlePipelineSummary)
			slog.Info("pipeline summary enabled",
				slog.String("model", cfg.AI.Model),
			)
		} else {
			slog.Warn("AI_API_KEY not set, pipeline summary disabled")
		}
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server",
			slog.String("port", cfg.Port),
			slog.Int("sweep_batch_limit", cfg.Sweep.BatchLimit),
			slog.Duration("sweep_op_timeout", cfg.Sweep.OpTimeout),
			slog.Int("notification_channels", len(notifiers)),
		)
		serverErr <- srv.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		slog.Info("shutdown signal received", slog.String("signal", sig.String()))
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown server", slog.String("error", err.Error()))
			return 1
		}

		slog.Info("server exited properly")
		return 0

	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return 0
		}
		slog.Error("server exited with error", slog.String("error", err.Error()))
		return 1
	}
}
