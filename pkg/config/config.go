package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	Booking       BookingConfig
	Listing       ListingConfig
	Geocoder      GeocoderConfig
	Cron          CronConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Eventing      EventingConfig
	Outbox        OutboxConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WANDERSTAY_APP_ENV" required:"true"`
	Port         string `envconfig:"WANDERSTAY_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WANDERSTAY_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WANDERSTAY_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WANDERSTAY_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WANDERSTAY_DB_DSN"`
	Driver string `envconfig:"WANDERSTAY_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WANDERSTAY_DB_HOST"`
	LegacyPort     int    `envconfig:"WANDERSTAY_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WANDERSTAY_DB_USER"`
	LegacyPassword string `envconfig:"WANDERSTAY_DB_PASSWORD"`
	LegacyName     string `envconfig:"WANDERSTAY_DB_NAME"`
	LegacySSLMode  string `envconfig:"WANDERSTAY_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WANDERSTAY_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WANDERSTAY_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WANDERSTAY_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WANDERSTAY_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WANDERSTAY_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WANDERSTAY_REDIS_ADDR"`
	Password     string        `envconfig:"WANDERSTAY_REDIS_PASSWORD"`
	DB           int           `envconfig:"WANDERSTAY_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WANDERSTAY_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WANDERSTAY_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WANDERSTAY_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WANDERSTAY_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WANDERSTAY_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"WANDERSTAY_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"WANDERSTAY_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"WANDERSTAY_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"WANDERSTAY_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WANDERSTAY_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WANDERSTAY_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WANDERSTAY_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WANDERSTAY_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WANDERSTAY_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"WANDERSTAY_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WANDERSTAY_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WANDERSTAY_AUTO_MIGRATE" default:"false"`
}

// BookingConfig tunes the booking lifecycle.
type BookingConfig struct {
	PendingTTLHours int `envconfig:"WANDERSTAY_BOOKING_PENDING_TTL_HOURS" default:"168"`
	SweepBatchSize  int `envconfig:"WANDERSTAY_BOOKING_SWEEP_BATCH_SIZE" default:"100"`
	MaxRoomsPerStay int `envconfig:"WANDERSTAY_BOOKING_MAX_ROOMS_PER_STAY" default:"10"`
}

// PendingTTL returns how long a booking request may sit unanswered.
func (b BookingConfig) PendingTTL() time.Duration {
	if b.PendingTTLHours <= 0 {
		return 168 * time.Hour
	}
	return time.Duration(b.PendingTTLHours) * time.Hour
}

type ListingConfig struct {
	DefaultImageURL string `envconfig:"WANDERSTAY_LISTING_DEFAULT_IMAGE_URL" default:"https://cdn.wanderstay.app/static/listing-placeholder.jpg"`
	PageSize        int    `envconfig:"WANDERSTAY_LISTING_PAGE_SIZE" default:"20"`
}

type GeocoderConfig struct {
	BaseURL   string        `envconfig:"WANDERSTAY_GEOCODER_BASE_URL" default:"https://nominatim.openstreetmap.org"`
	UserAgent string        `envconfig:"WANDERSTAY_GEOCODER_USER_AGENT" default:"wanderstay-backend"`
	Timeout   time.Duration `envconfig:"WANDERSTAY_GEOCODER_TIMEOUT" default:"10s"`
	Disabled  bool          `envconfig:"WANDERSTAY_GEOCODER_DISABLED" default:"false"`
}

type CronConfig struct {
	TickInterval time.Duration `envconfig:"WANDERSTAY_CRON_TICK_INTERVAL" default:"1m"`
	LockTTL      time.Duration `envconfig:"WANDERSTAY_CRON_LOCK_TTL" default:"5m"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WANDERSTAY_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"WANDERSTAY_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WANDERSTAY_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	BookingTopic             string `envconfig:"WANDERSTAY_PUBSUB_BOOKING_TOPIC" default:"ws-booking-events"`
	BookingSubscription      string `envconfig:"WANDERSTAY_PUBSUB_BOOKING_SUBSCRIPTION"`
	ListingTopic             string `envconfig:"WANDERSTAY_PUBSUB_LISTING_TOPIC" default:"ws-listing-events"`
	ListingSubscription      string `envconfig:"WANDERSTAY_PUBSUB_LISTING_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"WANDERSTAY_PUBSUB_NOTIFICATION_TOPIC" default:"ws-notification-events"`
	NotificationSubscription string `envconfig:"WANDERSTAY_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type EventingConfig struct {
	OutboxIdempotencyTTL time.Duration `envconfig:"WANDERSTAY_EVENTING_IDEMPOTENCY_TTL" default:"720h"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"WANDERSTAY_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"WANDERSTAY_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"WANDERSTAY_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
