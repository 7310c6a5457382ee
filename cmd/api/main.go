package main

import (
	"context"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sofiamendes/wanderstay-backend/api/routes"
	"github.com/sofiamendes/wanderstay-backend/internal/auth"
	"github.com/sofiamendes/wanderstay-backend/internal/bookings"
	"github.com/sofiamendes/wanderstay-backend/internal/listings"
	"github.com/sofiamendes/wanderstay-backend/internal/notifications"
	"github.com/sofiamendes/wanderstay-backend/internal/reviews"
	"github.com/sofiamendes/wanderstay-backend/internal/users"
	"github.com/sofiamendes/wanderstay-backend/pkg/auth/session"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/db"
	"github.com/sofiamendes/wanderstay-backend/pkg/geocode"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/metrics"
	"github.com/sofiamendes/wanderstay-backend/pkg/migrate"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/redis"
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

	dbClient, err := db.New(context.Background(), cfg.DB, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap database", err)
		os.Exit(1)
	}
	defer func() {
		if err := dbClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing database", err)
		}
	}()

	if err := migrate.MaybeRunDev(context.Background(), cfg, logg, dbClient); err != nil {
		logg.Error(context.Background(), "failed to run dev migrations", err)
		os.Exit(1)
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to bootstrap redis", err)
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	sessionManager, err := session.NewManager(redisClient, cfg.JWT)
	if err != nil {
		logg.Error(context.Background(), "failed to create session manager", err)
		os.Exit(1)
	}

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(dbClient.DB()),
		SessionManager: sessionManager,
		JWTConfig:      cfg.JWT,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create auth service", err)
		os.Exit(1)
	}

	registerService, err := auth.NewRegisterService(auth.RegisterServiceParams{
		TxRunner:       dbClient,
		PasswordConfig: cfg.Password,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create register service", err)
		os.Exit(1)
	}

	outboxService := outbox.NewService(outbox.NewRepository(dbClient.DB()), logg)
	bookingRepo := bookings.NewRepository(dbClient.DB())
	listingRepo := listings.NewRepository(dbClient.DB())

	bookingService, err := bookings.NewService(bookings.ServiceParams{
		Repo:      bookingRepo,
		Listings:  listingRepo,
		Tx:        dbClient,
		Outbox:    outboxService,
		Inventory: bookings.NewInventory(),
		Metrics:   metrics.NewBookingMetrics(prometheus.DefaultRegisterer),
		Config:    cfg.Booking,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create booking service", err)
		os.Exit(1)
	}

	var geocoderClient *geocode.Client
	if !cfg.Geocoder.Disabled {
		geocoderClient, err = geocode.NewClient(
			cfg.Geocoder.UserAgent,
			geocode.WithBaseURL(cfg.Geocoder.BaseURL),
			geocode.WithHTTPClient(&http.Client{Timeout: cfg.Geocoder.Timeout}),
		)
		if err != nil {
			logg.Error(context.Background(), "failed to create geocoder client", err)
			os.Exit(1)
		}
	}

	listingParams := listings.ServiceParams{
		Repo:     listingRepo,
		Tx:       dbClient,
		Outbox:   outboxService,
		Bookings: bookingRepo,
		Sweeper:  bookingService,
		Logger:   logg,
		Config:   cfg.Listing,
	}
	if geocoderClient != nil {
		listingParams.Geocoder = geocoderClient
	}
	listingService, err := listings.NewService(listingParams)
	if err != nil {
		logg.Error(context.Background(), "failed to create listing service", err)
		os.Exit(1)
	}

	reviewService, err := reviews.NewService(reviews.ServiceParams{
		Repo:     reviews.NewRepository(dbClient.DB()),
		Listings: listingRepo,
		Tx:       dbClient,
		Outbox:   outboxService,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create review service", err)
		os.Exit(1)
	}

	notificationService, err := notifications.NewService(notifications.NewRepository(dbClient.DB()))
	if err != nil {
		logg.Error(context.Background(), "failed to create notification service", err)
		os.Exit(1)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	id := os.Getenv("DYNO")
	if id == "" {
		id = "local"
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": id,
	})
	logg.Info(ctx, "starting api server")

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			dbClient,
			redisClient,
			sessionManager,
			authService,
			registerService,
			listingService,
			bookingService,
			reviewService,
			notificationService,
		),
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logg.Error(ctx, "api server stopped unexpectedly", err)
		os.Exit(1)
	}
}
