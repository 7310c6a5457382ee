package config

// EnvPrefix is applied by envconfig on top of the explicit tags.
const EnvPrefix = "WANDERSTAY"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvAppEnv                 = "WANDERSTAY_APP_ENV"
	EnvPort                   = "WANDERSTAY_APP_PORT"
	EnvDBDSN                  = "WANDERSTAY_DB_DSN"
	EnvDBHost                 = "WANDERSTAY_DB_HOST"
	EnvDBUser                 = "WANDERSTAY_DB_USER"
	EnvDBName                 = "WANDERSTAY_DB_NAME"
	EnvRedisURL               = "WANDERSTAY_REDIS_URL"
	EnvJWTSecret              = "WANDERSTAY_JWT_SECRET"
	EnvJWTIssuer              = "WANDERSTAY_JWT_ISSUER"
	EnvJWTExpMins             = "WANDERSTAY_JWT_EXPIRATION_MINUTES"
	EnvRefreshTokenTTLMinutes = "WANDERSTAY_REFRESH_TOKEN_TTL_MINUTES"
	EnvGCPProjectID           = "WANDERSTAY_GCP_PROJECT_ID"
	EnvBookingPendingTTL      = "WANDERSTAY_BOOKING_PENDING_TTL_HOURS"
	EnvPubSubBookingTopic     = "WANDERSTAY_PUBSUB_BOOKING_TOPIC"
	EnvPubSubListingTopic     = "WANDERSTAY_PUBSUB_LISTING_TOPIC"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
