package routes

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/internal/auth"
	"github.com/sofiamendes/wanderstay-backend/internal/bookings"
	"github.com/sofiamendes/wanderstay-backend/internal/listings"
	"github.com/sofiamendes/wanderstay-backend/internal/notifications"
	"github.com/sofiamendes/wanderstay-backend/internal/reviews"
	pkgAuth "github.com/sofiamendes/wanderstay-backend/pkg/auth"
	"github.com/sofiamendes/wanderstay-backend/pkg/auth/session"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/redis"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error {
	return nil
}

type stubAuthService struct{}

func (stubAuthService) Login(ctx context.Context, req auth.LoginRequest) (*auth.LoginResponse, error) {
	return nil, fmt.Errorf("not implemented")
}

type stubRegisterService struct{}

func (stubRegisterService) Register(ctx context.Context, req auth.RegisterRequest) error {
	return nil
}

type stubSessionManager struct{}

func (stubSessionManager) HasSession(ctx context.Context, accessID string) (bool, error) {
	return true, nil
}

func (stubSessionManager) Rotate(ctx context.Context, oldAccessID, provided string) (string, string, error) {
	return "", "", nil
}

func (stubSessionManager) Revoke(ctx context.Context, accessID string) error {
	return nil
}

type stubListingService struct{}

func (stubListingService) Create(ctx context.Context, ownerID uuid.UUID, input listings.CreateListingInput) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{}, nil
}

func (stubListingService) Update(ctx context.Context, ownerID, listingID uuid.UUID, input listings.UpdateListingInput) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{}, nil
}

func (stubListingService) Get(ctx context.Context, listingID uuid.UUID) (*listings.ListingDTO, error) {
	return &listings.ListingDTO{}, nil
}

func (stubListingService) Browse(ctx context.Context, params listings.BrowseParams) (*listings.BrowseResult, error) {
	return &listings.BrowseResult{}, nil
}

func (stubListingService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]listings.ListingDTO, error) {
	return nil, nil
}

func (stubListingService) Delete(ctx context.Context, ownerID, listingID uuid.UUID) error {
	return nil
}

type stubBookingService struct{}

func (stubBookingService) Request(ctx context.Context, input bookings.RequestInput) (*bookings.BookingDTO, error) {
	return &bookings.BookingDTO{}, nil
}

func (stubBookingService) Confirm(ctx context.Context, input bookings.DecisionInput) (*bookings.DecisionResult, error) {
	return &bookings.DecisionResult{}, nil
}

func (stubBookingService) Reject(ctx context.Context, input bookings.DecisionInput) (*bookings.DecisionResult, error) {
	return &bookings.DecisionResult{}, nil
}

func (stubBookingService) GetForRequester(ctx context.Context, bookingID, userID uuid.UUID) (*bookings.BookingDTO, error) {
	return &bookings.BookingDTO{}, nil
}

func (stubBookingService) ListForGuest(ctx context.Context, userID uuid.UUID, params bookings.ListParams) (*bookings.ListResult, error) {
	return &bookings.ListResult{}, nil
}

func (stubBookingService) ListForListing(ctx context.Context, listingID, ownerID uuid.UUID, params bookings.ListParams) (*bookings.ListResult, error) {
	return &bookings.ListResult{}, nil
}

func (stubBookingService) ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	return 0, nil
}

func (stubBookingService) ExpireEndedStays(ctx context.Context, now time.Time, limit int) (int, error) {
	return 0, nil
}

func (stubBookingService) ExpireEndedStaysForListing(ctx context.Context, listingID uuid.UUID, now time.Time) (int, error) {
	return 0, nil
}

type stubReviewService struct{}

func (stubReviewService) Create(ctx context.Context, authorID, listingID uuid.UUID, input reviews.CreateReviewInput) (*reviews.ReviewDTO, error) {
	return &reviews.ReviewDTO{}, nil
}

func (stubReviewService) ListForListing(ctx context.Context, listingID uuid.UUID, limit int) ([]reviews.ReviewDTO, error) {
	return nil, nil
}

func (stubReviewService) Delete(ctx context.Context, authorID, reviewID uuid.UUID) error {
	return nil
}

type stubNotificationService struct{}

func (stubNotificationService) List(ctx context.Context, params notifications.ListParams) (*notifications.ListResult, error) {
	return &notifications.ListResult{}, nil
}

func (stubNotificationService) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return nil
}

func (stubNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return 0, nil
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:                 "secret",
			Issuer:                 "issuer",
			ExpirationMinutes:      60,
			RefreshTokenTTLMinutes: 120,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(
		cfg,
		logg,
		stubPinger{},
		(*redis.Client)(nil),
		stubSessionManager{},
		stubAuthService{},
		stubRegisterService{},
		stubListingService{},
		stubBookingService{},
		stubReviewService{},
		stubNotificationService{},
	)
}

func buildToken(t *testing.T, cfg *config.Config) string {
	t.Helper()
	token, err := pkgAuth.MintAccessToken(cfg.JWT, time.Now(), pkgAuth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "guest@example.com",
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestHealthLiveIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
}

func TestMetricsIsExposed(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for metrics got %d", resp.Code)
	}
}

func TestPrivateGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestPrivateGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/ping", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for private ping got %d", resp.Code)
	}
}

func TestBrowseListingsIsPublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public browse got %d", resp.Code)
	}
}

func TestListingReviewsArePublic(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/listings/"+uuid.NewString()+"/reviews", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public reviews got %d", resp.Code)
	}
}

func TestListingMutationsRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodPost, "/api/v1/listings", strings.NewReader("{}"))
	anon.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous create got %d", resp.Code)
	}

	anonDelete := httptest.NewRequest(http.MethodDelete, "/api/v1/listings/"+uuid.NewString(), nil)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, anonDelete)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous delete got %d", resp.Code)
	}
}

func TestBookingRoutesRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous bookings list got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/bookings", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed bookings list got %d", resp.Code)
	}
}

func TestNotificationsRequireAuth(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	anon := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, anon)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for anonymous notifications got %d", resp.Code)
	}

	authed := httptest.NewRequest(http.MethodGet, "/api/v1/notifications", nil)
	authed.Header.Set("Authorization", "Bearer "+buildToken(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, authed)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for authed notifications got %d", resp.Code)
	}
}

func TestPublicPingIsOpen(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/public/ping", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public ping got %d", resp.Code)
	}
}
