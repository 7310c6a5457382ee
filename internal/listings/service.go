package listings

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/geocode"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox/payloads"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type bookingGuard interface {
	CountEndingOnOrAfter(ctx context.Context, listingID uuid.UUID, date time.Time) (int64, error)
}

type expirySweeper interface {
	ExpireEndedStaysForListing(ctx context.Context, listingID uuid.UUID, now time.Time) (int, error)
}

type geocoder interface {
	Resolve(ctx context.Context, parts ...string) (geocode.Coordinates, error)
}

// Service exposes listing catalog operations.
type Service interface {
	Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*ListingDTO, error)
	Update(ctx context.Context, ownerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error)
	Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error)
	Browse(ctx context.Context, params BrowseParams) (*BrowseResult, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]ListingDTO, error)
	Delete(ctx context.Context, ownerID, listingID uuid.UUID) error
}

// CreateListingInput captures a validated listing creation payload.
type CreateListingInput struct {
	Title        string
	Description  string
	NightlyPrice decimal.Decimal
	Location     string
	Country      string
	Category     string
	ImageURL     *string
	ContactPhone string
	TotalRooms   int
}

// UpdateListingInput captures the mutable listing fields. TotalRooms is
// deliberately absent: the capacity baseline is immutable once created.
type UpdateListingInput struct {
	Title        *string
	Description  *string
	NightlyPrice *decimal.Decimal
	Location     *string
	Country      *string
	Category     *string
	ImageURL     *string
	ContactPhone *string
}

// BrowseParams configures catalog pagination and filtering.
type BrowseParams struct {
	Category string
	Search   string
	Country  string
	Limit    int
	Cursor   string
}

// BrowseResult wraps returned listings and the cursor for the next page.
type BrowseResult struct {
	Items  []ListingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// ServiceParams bundles the dependencies required to build the listing service.
type ServiceParams struct {
	Repo     Repository
	Tx       txRunner
	Outbox   outboxPublisher
	Bookings bookingGuard
	Sweeper  expirySweeper
	Geocoder geocoder
	Logger   *logger.Logger
	Config   config.ListingConfig
}

type service struct {
	repo     Repository
	tx       txRunner
	outbox   outboxPublisher
	bookings bookingGuard
	sweeper  expirySweeper
	geocoder geocoder
	logg     *logger.Logger
	cfg      config.ListingConfig
	now      func() time.Time
}

// NewService builds a listing service with the provided dependencies.
// Geocoder may be nil; creation then falls back to the default coordinates.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("listings repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Bookings == nil {
		return nil, fmt.Errorf("booking guard required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("expiry sweeper required")
	}
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &service{
		repo:     params.Repo,
		tx:       params.Tx,
		outbox:   params.Outbox,
		bookings: params.Bookings,
		sweeper:  params.Sweeper,
		geocoder: params.Geocoder,
		logg:     params.Logger,
		cfg:      params.Config,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, ownerID uuid.UUID, input CreateListingInput) (*ListingDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	category, err := enums.ParseListingCategory(input.Category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	if input.TotalRooms < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_rooms must be at least 1")
	}
	if input.NightlyPrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "nightly_price must not be negative")
	}

	imageURL := s.cfg.DefaultImageURL
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) != "" {
		imageURL = strings.TrimSpace(*input.ImageURL)
	}

	coords := s.resolveCoordinates(ctx, input.Location, input.Country)

	listing := &models.Listing{
		OwnerID:        ownerID,
		Title:          input.Title,
		Description:    input.Description,
		NightlyPrice:   input.NightlyPrice,
		Location:       input.Location,
		Country:        input.Country,
		Category:       category,
		ImageURL:       imageURL,
		ImageFilename:  imageFilename(imageURL),
		ContactPhone:   input.ContactPhone,
		Latitude:       coords.Latitude,
		Longitude:      coords.Longitude,
		TotalRooms:     input.TotalRooms,
		RoomsAvailable: input.TotalRooms,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create listing")
		}
		return s.outbox.Emit(ctx, tx, s.lifecycleEvent(enums.EventListingCreated, listing, ownerID))
	})
	if err != nil {
		return nil, err
	}

	return FromModel(listing), nil
}

func (s *service) Update(ctx context.Context, ownerID, listingID uuid.UUID, input UpdateListingInput) (*ListingDTO, error) {
	listing, err := s.loadOwned(ctx, ownerID, listingID)
	if err != nil {
		return nil, err
	}

	relocated := false
	if input.Title != nil {
		listing.Title = *input.Title
	}
	if input.Description != nil {
		listing.Description = *input.Description
	}
	if input.NightlyPrice != nil {
		if input.NightlyPrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "nightly_price must not be negative")
		}
		listing.NightlyPrice = *input.NightlyPrice
	}
	if input.Location != nil && *input.Location != listing.Location {
		listing.Location = *input.Location
		relocated = true
	}
	if input.Country != nil && *input.Country != listing.Country {
		listing.Country = *input.Country
		relocated = true
	}
	if input.Category != nil {
		category, err := enums.ParseListingCategory(*input.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		listing.Category = category
	}
	if input.ImageURL != nil && strings.TrimSpace(*input.ImageURL) != "" {
		listing.ImageURL = strings.TrimSpace(*input.ImageURL)
		listing.ImageFilename = imageFilename(listing.ImageURL)
	}
	if input.ContactPhone != nil {
		listing.ContactPhone = *input.ContactPhone
	}

	if relocated {
		coords := s.resolveCoordinates(ctx, listing.Location, listing.Country)
		listing.Latitude = coords.Latitude
		listing.Longitude = coords.Longitude
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Update(ctx, listing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update listing")
		}
		return s.outbox.Emit(ctx, tx, s.lifecycleEvent(enums.EventListingUpdated, listing, ownerID))
	})
	if err != nil {
		return nil, err
	}

	return FromModel(listing), nil
}

// Get returns a listing for viewing. Viewing first sweeps the listing's
// ended confirmed stays so the advertised rooms_available catches up; a
// sweep failure is logged and does not block the view.
func (s *service) Get(ctx context.Context, listingID uuid.UUID) (*ListingDTO, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	if _, err := s.sweeper.ExpireEndedStaysForListing(ctx, listingID, s.now().UTC()); err != nil {
		logCtx := s.logg.WithListingID(ctx, listingID.String())
		s.logg.Error(logCtx, "listing view sweep failed", err)
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return FromModel(listing), nil
}

func (s *service) Browse(ctx context.Context, params BrowseParams) (*BrowseResult, error) {
	query := BrowseQuery{
		Search:  params.Search,
		Country: params.Country,
		Limit:   params.Limit,
	}
	if query.Limit <= 0 {
		query.Limit = s.cfg.PageSize
	}
	if params.Category != "" {
		category, err := enums.ParseListingCategory(params.Category)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category filter")
		}
		query.Category = &category
	}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}

	rows, next, err := s.repo.Browse(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "browse listings")
	}

	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &BrowseResult{Items: FromModels(rows), Cursor: cursor}, nil
}

func (s *service) ListMine(ctx context.Context, ownerID uuid.UUID) ([]ListingDTO, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	rows, err := s.repo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list own listings")
	}
	return FromModels(rows), nil
}

// Delete removes a listing when no booking, in any status, still ends today
// or later. Reviews cascade with the listing.
func (s *service) Delete(ctx context.Context, ownerID, listingID uuid.UUID) error {
	listing, err := s.loadOwned(ctx, ownerID, listingID)
	if err != nil {
		return err
	}

	active, err := s.bookings.CountEndingOnOrAfter(ctx, listing.ID, s.now().UTC())
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check active bookings")
	}
	if active > 0 {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "listing has active or future bookings").
			WithDetails(map[string]any{"listing_id": listing.ID, "blocking": active})
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteWithReviews(ctx, listing.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete listing")
		}
		return s.outbox.Emit(ctx, tx, s.lifecycleEvent(enums.EventListingDeleted, listing, ownerID))
	})
}

func (s *service) loadOwned(ctx context.Context, ownerID, listingID uuid.UUID) (*models.Listing, error) {
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}

	listing, err := s.repo.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to user")
	}
	return listing, nil
}

// resolveCoordinates geocodes the free-text location, falling back to the
// default coordinates. Geocoding failures never block listing writes.
func (s *service) resolveCoordinates(ctx context.Context, location, country string) geocode.Coordinates {
	if s.geocoder == nil {
		return geocode.DefaultCoordinates
	}
	coords, err := s.geocoder.Resolve(ctx, location, country)
	if err != nil {
		logCtx := s.logg.WithFields(ctx, map[string]any{"location": location, "country": country})
		s.logg.Error(logCtx, "geocoding failed, using default coordinates", err)
		return geocode.DefaultCoordinates
	}
	return coords
}

func (s *service) lifecycleEvent(eventType enums.OutboxEventType, listing *models.Listing, actorID uuid.UUID) outbox.DomainEvent {
	return outbox.DomainEvent{
		EventType:     eventType,
		AggregateType: enums.AggregateListing,
		AggregateID:   listing.ID,
		Version:       1,
		OccurredAt:    s.now().UTC(),
		Actor:         &outbox.ActorRef{UserID: actorID, Role: "host"},
		Data: payloads.ListingLifecycleEvent{
			ListingID: listing.ID,
			OwnerID:   listing.OwnerID,
			Title:     listing.Title,
			Category:  listing.Category,
		},
	}
}

func imageFilename(imageURL string) string {
	trimmed := strings.TrimRight(imageURL, "/")
	if idx := strings.LastIndex(trimmed, "/"); idx >= 0 {
		return trimmed[idx+1:]
	}
	return trimmed
}
