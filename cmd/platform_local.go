//go:build !gcloud

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

func initPushQueue(_ context.Context, cfg *config.Config) (pushqueue.Queue, func() error, error) {
	if cfg.Notify.PushRelayURL == "" {
		slog.Warn("PUSH_RELAY_URL not set, push channel disabled")

		return nil, nil, nil
	}

	q := pushqueue.NewRelayClient(
		cfg.Notify.PushRelayURL,
		cfg.Notify.PushQueueName,
		cfg.Notify.PushMaxRetries,
	)

	slog.Info("push queue initialized",
		slog.String("type", "relay"),
		slog.String("url", cfg.Notify.PushRelayURL),
		slog.String("queue", cfg.Notify.PushQueueName),
	)

	return q, nil, nil
}

func initObservability(ctx context.Context) (*observability.Resources, error) {
	serviceName := os.Getenv("SERVICE_NAME")
	if serviceName == "" {
		serviceName = "sla-sweep"
	}

	env := logging.EnvDev
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
		SamplingRate: 1.0,
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
