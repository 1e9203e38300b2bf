package config

import (
	"os"
	"strconv"
)

const (
	sendgridAPIKeyEnv    = "SENDGRID_API_KEY"
	sendgridFromEmailEnv = "SENDGRID_FROM_EMAIL"
	sendgridFromNameEnv  = "SENDGRID_FROM_NAME"

	pushRelayURLEnv   = "PUSH_RELAY_URL"
	pushQueueNameEnv  = "PUSH_QUEUE_NAME"
	pushMaxRetriesEnv = "PUSH_MAX_RETRIES"

	gcloudProjectIDEnv  = "GCLOUD_PROJECT_ID"
	gcloudLocationIDEnv = "GCLOUD_LOCATION_ID"
	gcloudQueueIDEnv    = "GCLOUD_QUEUE_ID"
	gcloudTargetURLEnv  = "GCLOUD_TARGET_URL"

	defaultSendgridFromName = "AgencyDesk CRM"
)

type NotifyConfig struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	PushRelayURL   string
	PushQueueName  string
	PushMaxRetries int

	GCloudProjectID  string
	GCloudLocationID string
	GCloudQueueID    string
	GCloudTargetURL  string
}

func LoadNotifyConfig() *NotifyConfig {
	queueName := os.Getenv(pushQueueNameEnv)
	if queueName == "" {
		queueName = "default"
	}

	maxRetries := 3
	if v := os.Getenv(pushMaxRetriesEnv); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			maxRetries = parsed
		}
	}

	return &NotifyConfig{
		SendGridAPIKey:    os.Getenv(sendgridAPIKeyEnv),
		SendGridFromEmail: os.Getenv(sendgridFromEmailEnv),
		SendGridFromName:  getEnvOrDefault(sendgridFromNameEnv, defaultSendgridFromName),

		PushRelayURL:   os.Getenv(pushRelayURLEnv),
		PushQueueName:  queueName,
		PushMaxRetries: maxRetries,

		GCloudProjectID:  os.Getenv(gcloudProjectIDEnv),
		GCloudLocationID: os.Getenv(gcloudLocationIDEnv),
		GCloudQueueID:    os.Getenv(gcloudQueueIDEnv),
		GCloudTargetURL:  os.Getenv(gcloudTargetURLEnv),
	}
}
