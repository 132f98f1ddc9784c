package config

const (
	EnvPrefix = "DISCOUNTSYNC"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv           = "DISCOUNTSYNC_APP_ENV"
	EnvPort             = "DISCOUNTSYNC_APP_PORT"
	EnvLogLevel         = "DISCOUNTSYNC_LOG_LEVEL"
	EnvRemoteBaseURL    = "DISCOUNTSYNC_REMOTE_BASE_URL"
	EnvRemoteAuthToken  = "DISCOUNTSYNC_REMOTE_AUTH_TOKEN"
	EnvRemoteTimeout    = "DISCOUNTSYNC_REMOTE_TIMEOUT"
	EnvRedisURL         = "DISCOUNTSYNC_REDIS_URL"
	EnvSelectionTTL     = "DISCOUNTSYNC_SELECTION_TTL"
	EnvSelectionContext = "DISCOUNTSYNC_SELECTION_CONTEXT"
	EnvMetricsEnabled   = "DISCOUNTSYNC_METRICS_ENABLED"
)
