package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/metrics"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type listingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// Service is the booking lifecycle manager.
type Service interface {
	Request(ctx context.Context, input RequestInput) (*BookingDTO, error)
	Confirm(ctx context.Context, input DecisionInput) (*DecisionResult, error)
	Reject(ctx context.Context, input DecisionInput) (*DecisionResult, error)
	GetForRequester(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDTO, error)
	ListForGuest(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error)
	ListForListing(ctx context.Context, listingID, ownerID uuid.UUID, params ListParams) (*ListResult, error)
	ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ExpireEndedStays(ctx context.Context, now time.Time, limit int) (int, error)
	ExpireEndedStaysForListing(ctx context.Context, listingID uuid.UUID, now time.Time) (int, error)
}

// RequestInput carries a validated booking request.
type RequestInput struct {
	ListingID       uuid.UUID
	UserID          uuid.UUID
	GuestName       string
	GuestEmail      string
	GuestPhone      string
	DateFrom        time.Time
	DateTo          time.Time
	Rooms           int
	People          int
	SpecialRequests *string
}

// DecisionInput identifies a booking and the host acting on it.
type DecisionInput struct {
	BookingID uuid.UUID
	ActorID   uuid.UUID
}

// DecisionResult reports the outcome of a confirm/reject action. Already is
// true when the booking was already in the requested terminal state; that is
// informational, not an error.
type DecisionResult struct {
	Booking *BookingDTO `json:"booking"`
	Already bool        `json:"already"`
}

// ListParams configures booking list pagination and filtering.
type ListParams struct {
	Limit  int
	Cursor string
	Status string
}

// ListResult wraps returned bookings and the cursor for the next page.
type ListResult struct {
	Items  []BookingDTO `json:"items"`
	Cursor string       `json:"cursor"`
}

// ServiceParams bundles the dependencies required to build the booking service.
type ServiceParams struct {
	Repo      Repository
	Listings  listingReader
	Tx        txRunner
	Outbox    outboxPublisher
	Inventory Inventory
	Metrics   *metrics.BookingMetrics
	Config    config.BookingConfig
}

type service struct {
	repo      Repository
	listings  listingReader
	tx        txRunner
	outbox    outboxPublisher
	inventory Inventory
	checker   *Checker
	metrics   *metrics.BookingMetrics
	cfg       config.BookingConfig
	now       func() time.Time
}

// NewService builds the booking lifecycle manager.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("bookings repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listings reader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	if params.Inventory == nil {
		return nil, fmt.Errorf("inventory required")
	}
	checker, err := NewChecker(params.Repo)
	if err != nil {
		return nil, err
	}
	return &service{
		repo:      params.Repo,
		listings:  params.Listings,
		tx:        params.Tx,
		outbox:    params.Outbox,
		inventory: params.Inventory,
		checker:   checker,
		metrics:   params.Metrics,
		cfg:       params.Config,
		now:       time.Now,
	}, nil
}

func (s *service) Request(ctx context.Context, input RequestInput) (*BookingDTO, error) {
	if input.ListingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if input.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.DateTo.Before(input.DateFrom) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}
	if input.Rooms < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rooms must be at least 1")
	}
	if max := s.cfg.MaxRoomsPerStay; max > 0 && input.Rooms > max {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("rooms must not exceed %d", max))
	}

	listing, err := s.loadListing(ctx, input.ListingID)
	if err != nil {
		return nil, err
	}

	if err := s.checker.Check(ctx, listing, input.DateFrom, input.DateTo, input.Rooms); err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeNoVacancy {
			s.metrics.IncNoVacancy()
		}
		return nil, err
	}

	booking := &models.Booking{
		ListingID:       listing.ID,
		UserID:          input.UserID,
		GuestName:       input.GuestName,
		GuestEmail:      input.GuestEmail,
		GuestPhone:      input.GuestPhone,
		DateFrom:        input.DateFrom,
		DateTo:          input.DateTo,
		Rooms:           input.Rooms,
		People:          input.People,
		SpecialRequests: input.SpecialRequests,
		Status:          enums.BookingStatusPending,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, booking); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create booking")
		}
		event := outbox.DomainEvent{
			EventType:     enums.EventBookingRequested,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: input.UserID, Role: "guest"},
			Data:          requestedEvent(booking, listing.OwnerID),
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}

	return FromModel(booking), nil
}

func (s *service) Confirm(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	result := &DecisionResult{}
	err := s.decide(ctx, input, func(ctx context.Context, tx *gorm.DB, booking *models.Booking, listing *models.Listing) error {
		if booking.Status == enums.BookingStatusConfirmed {
			result.Already = true
			result.Booking = FromModel(booking)
			return nil
		}
		if booking.Status != enums.BookingStatusPending {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking already decided").
				WithDetails(map[string]any{"status": booking.Status})
		}

		held, err := s.inventory.Hold(ctx, tx, listing.ID, booking.Rooms)
		if err != nil {
			return err
		}
		if !held {
			s.metrics.IncNoVacancy()
			return pkgerrors.New(pkgerrors.CodeNoVacancy, "not enough rooms available").
				WithDetails(map[string]any{"listing_id": listing.ID, "requested": booking.Rooms})
		}

		now := s.now().UTC()
		updated, err := s.repo.WithTx(tx).UpdateStatusFrom(ctx, booking.ID, enums.BookingStatusPending, enums.BookingStatusConfirmed, &now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "confirm booking")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking changed while deciding")
		}

		booking.Status = enums.BookingStatusConfirmed
		booking.DecidedAt = &now
		result.Booking = FromModel(booking)
		s.metrics.IncDecision("confirmed")

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingConfirmed,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			OccurredAt:    now,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: "host"},
			Data:          decisionEvent(booking, listing.OwnerID, now),
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *service) Reject(ctx context.Context, input DecisionInput) (*DecisionResult, error) {
	result := &DecisionResult{}
	err := s.decide(ctx, input, func(ctx context.Context, tx *gorm.DB, booking *models.Booking, listing *models.Listing) error {
		if booking.Status == enums.BookingStatusRejected {
			result.Already = true
			result.Booking = FromModel(booking)
			return nil
		}
		if booking.Status == enums.BookingStatusExpired {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking already expired")
		}

		prior := booking.Status
		if prior == enums.BookingStatusConfirmed {
			restored, err := s.inventory.Restore(ctx, tx, listing.ID, booking.Rooms)
			if err != nil {
				return err
			}
			if !restored {
				return pkgerrors.New(pkgerrors.CodeDependency, "inventory restore exceeded capacity").
					WithDetails(map[string]any{"listing_id": listing.ID, "rooms": booking.Rooms})
			}
		}

		now := s.now().UTC()
		updated, err := s.repo.WithTx(tx).UpdateStatusFrom(ctx, booking.ID, prior, enums.BookingStatusRejected, &now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reject booking")
		}
		if !updated {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "booking changed while deciding")
		}

		booking.Status = enums.BookingStatusRejected
		booking.DecidedAt = &now
		result.Booking = FromModel(booking)
		s.metrics.IncDecision("rejected")

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingRejected,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			OccurredAt:    now,
			Actor:         &outbox.ActorRef{UserID: input.ActorID, Role: "host"},
			Data:          decisionEvent(booking, listing.OwnerID, now),
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

type decisionFn func(ctx context.Context, tx *gorm.DB, booking *models.Booking, listing *models.Listing) error

func (s *service) decide(ctx context.Context, input DecisionInput, fn decisionFn) error {
	if input.BookingID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if input.ActorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		booking, err := repo.FindByID(ctx, input.BookingID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
		}

		listing, err := s.loadListing(ctx, booking.ListingID)
		if err != nil {
			return err
		}
		if listing.OwnerID != input.ActorID {
			return pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to user")
		}

		return fn(ctx, tx, booking, listing)
	})
}

func (s *service) GetForRequester(ctx context.Context, bookingID, userID uuid.UUID) (*BookingDTO, error) {
	if bookingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "booking id required")
	}
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	booking, err := s.repo.FindByID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "booking not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load booking")
	}
	if booking.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "booking does not belong to user")
	}
	return FromModel(booking), nil
}

func (s *service) ListForGuest(ctx context.Context, userID uuid.UUID, params ListParams) (*ListResult, error) {
	if userID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListForGuest(ctx, userID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list bookings")
	}
	return buildListResult(rows, next), nil
}

func (s *service) ListForListing(ctx context.Context, listingID, ownerID uuid.UUID, params ListParams) (*ListResult, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	if ownerID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}

	listing, err := s.loadListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerID != ownerID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "listing does not belong to user")
	}

	query, err := buildListQuery(params)
	if err != nil {
		return nil, err
	}
	rows, next, err := s.repo.ListForListing(ctx, listingID, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list booking requests")
	}
	return buildListResult(rows, next), nil
}

func (s *service) loadListing(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	listing, err := s.listings.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	return listing, nil
}

func buildListQuery(params ListParams) (ListQuery, error) {
	query := ListQuery{Limit: params.Limit}
	if params.Cursor != "" {
		cursor, err := pagination.ParseCursor(params.Cursor)
		if err != nil {
			return ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
		}
		query.Cursor = cursor
	}
	if params.Status != "" {
		status, err := enums.ParseBookingStatus(params.Status)
		if err != nil {
			return ListQuery{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		query.Status = &status
	}
	return query, nil
}

func buildListResult(rows []models.Booking, next *pagination.Cursor) *ListResult {
	cursor := ""
	if next != nil {
		cursor = pagination.EncodeCursor(*next)
	}
	return &ListResult{Items: FromModels(rows), Cursor: cursor}
}
