//go:build gcloud

package main

import (
	"context"
	"log/slog"
	"os"
	"strings"

	"github.com/agencydesk/crm-sla-sweep/internal/config"
	"github.com/agencydesk/crm-sla-sweep/internal/infra/pushqueue"
	"github.com/agencydesk/crm-sla-sweep/internal/observability"
	"github.com/agencydesk/crm-sla-sweep/internal/observability/logging"
)

func initPushQueue(ctx context.Context, cfg *config.Config) (pushqueue.Queue, func() error, error) {
	client, err := pushqueue.NewCloudTasksClient(ctx, pushqueue.CloudTasksConfig{
		ProjectID:  cfg.Notify.GCloudProjectID,
		LocationID: cfg.Notify.GCloudLocationID,
		QueueID:    cfg.Notify.GCloudQueueID,
		TargetURL:  cfg.Notify.GCloudTargetURL,
	})
	if err != nil {
		return nil, nil, err
	}

	slog.Info("push queue initialized",
		slog.String("type", "cloud_tasks"),
		slog.String("project", cfg.Notify.GCloudProjectID),
		slog.String("location", cfg.Notify.GCloudLocationID),
		slog.String("queue", cfg.Notify.GCloudQueueID),
	)

	cleanup := func() error {
		if err := client.Close(); err != nil {
			slog.Warn("failed to close cloud tasks client", slog.String("error", err.Error()))

			return err
		}

		return nil
	}

	return client, cleanup, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("K_SERVICE")
	if serviceName == "" {
		serviceName = "sla-sweep"
	}

	env := logging.EnvProd
	if e := os.Getenv("ENV"); e != "" {
		env = logging.Environment(e)
	}

	return observability.Init(ctx, observability.Config{
		ServiceInfo: logging.ServiceInfo{
			Name:    serviceName,
			Version: Version,
		},
		Environment:  env,
		LogLevel:     logLevelFromEnv(),
		SamplingRate: 0.1,
	})
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
