package routes

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sofiamendes/wanderstay-backend/api/controllers"
	"github.com/sofiamendes/wanderstay-backend/api/middleware"
	"github.com/sofiamendes/wanderstay-backend/internal/auth"
	"github.com/sofiamendes/wanderstay-backend/internal/bookings"
	"github.com/sofiamendes/wanderstay-backend/internal/listings"
	"github.com/sofiamendes/wanderstay-backend/internal/notifications"
	"github.com/sofiamendes/wanderstay-backend/internal/reviews"
	"github.com/sofiamendes/wanderstay-backend/pkg/auth/session"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/db"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/redis"
)

// sessionManager is the session surface the router needs: liveness checks
// for the auth middleware plus rotation and revocation for the token routes.
type sessionManager interface {
	session.AccessSessionChecker
	Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error)
	Revoke(ctx context.Context, accessID string) error
}

// NewRouter assembles the HTTP surface: health and metrics, the public
// catalog, the auth flows, and the authenticated guest/host groups.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbPinger db.Pinger,
	redisClient *redis.Client,
	sessions sessionManager,
	authService auth.Service,
	registerService auth.RegisterService,
	listingService listings.Service,
	bookingService bookings.Service,
	reviewService reviews.Service,
	notificationService notifications.Service,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.CORS())

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbPinger, redisClient))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	)
	registerPolicy := middleware.NewAuthRateLimitPolicy(
		"register",
		cfg.AuthRateLimit.RegisterWindow,
		cfg.AuthRateLimit.RegisterIPLimit,
		cfg.AuthRateLimit.RegisterEmailLimit,
	)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).
			Post("/login", controllers.AuthLogin(authService, logg))
		r.With(middleware.AuthRateLimit(registerPolicy, redisClient, logg)).
			Post("/register", controllers.AuthRegister(registerService, authService, logg))
		r.Post("/logout", controllers.AuthLogout(sessions, cfg.JWT, logg))
		r.Post("/refresh", controllers.AuthRefresh(sessions, cfg.JWT, logg))
	})

	authenticate := middleware.Auth(cfg.JWT, sessions, logg)
	idempotency := middleware.Idempotency(redisClient, logg)

	// Catalog reads are public; listing mutations and host-side views share
	// the same subtree behind auth.
	r.Route("/api/v1/listings", func(r chi.Router) {
		r.Get("/", controllers.BrowseListings(listingService, logg))
		r.Get("/{listingId}", controllers.ListingDetail(listingService, logg))
		r.Get("/{listingId}/reviews", controllers.ListListingReviews(reviewService, logg))

		r.Group(func(r chi.Router) {
			r.Use(authenticate)
			r.Use(idempotency)
			r.Post("/", controllers.CreateListing(listingService, logg))
			r.Patch("/{listingId}", controllers.UpdateListing(listingService, logg))
			r.Delete("/{listingId}", controllers.DeleteListing(listingService, logg))
			r.Get("/{listingId}/bookings", controllers.ListListingBookings(bookingService, logg))
			r.Post("/{listingId}/reviews", controllers.CreateReview(reviewService, logg))
		})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(authenticate)
		r.Use(idempotency)

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/bookings", func(r chi.Router) {
			r.Post("/", controllers.RequestBooking(bookingService, logg))
			r.Get("/", controllers.ListMyBookings(bookingService, logg))
			r.Get("/{bookingId}", controllers.BookingDetail(bookingService, logg))
			r.Post("/{bookingId}/confirm", controllers.ConfirmBooking(bookingService, logg))
			r.Post("/{bookingId}/reject", controllers.RejectBooking(bookingService, logg))
		})

		r.Get("/v1/me/listings", controllers.MyListings(listingService, logg))

		r.Delete("/v1/reviews/{reviewId}", controllers.DeleteReview(reviewService, logg))

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationService, logg))
		})
	})

	return r
}
