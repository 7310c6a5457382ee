package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox/payloads"
	"gorm.io/gorm"
)

// ExpirePendingBefore expires pending bookings created before the cutoff.
// Pending bookings never held inventory, so only the status flips. Each
// booking is expired in its own transaction; a failure stops the batch.
func (s *service) ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int, error) {
	stale, err := s.repo.FindPendingBefore(ctx, cutoff, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query stale pending bookings")
	}

	count := 0
	for i := range stale {
		expired, err := s.expireOne(ctx, &stale[i], enums.BookingStatusPending)
		if err != nil {
			return count, err
		}
		if expired {
			count++
		}
	}
	return count, nil
}

// ExpireEndedStays expires confirmed bookings whose stay ended before now
// and restores their rooms to the listing.
func (s *service) ExpireEndedStays(ctx context.Context, now time.Time, limit int) (int, error) {
	ended, err := s.repo.FindConfirmedEndedBefore(ctx, now, limit)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ended confirmed bookings")
	}
	return s.expireConfirmed(ctx, ended)
}

// ExpireEndedStaysForListing runs the confirmed-stay sweep for a single
// listing. Listing views call this so inventory catches up lazily even
// between scheduled sweeps.
func (s *service) ExpireEndedStaysForListing(ctx context.Context, listingID uuid.UUID, now time.Time) (int, error) {
	if listingID == uuid.Nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	ended, err := s.repo.FindConfirmedEndedForListing(ctx, listingID, now)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "query ended confirmed bookings")
	}
	return s.expireConfirmed(ctx, ended)
}

func (s *service) expireConfirmed(ctx context.Context, ended []models.Booking) (int, error) {
	count := 0
	for i := range ended {
		expired, err := s.expireOne(ctx, &ended[i], enums.BookingStatusConfirmed)
		if err != nil {
			return count, err
		}
		if expired {
			count++
		}
	}
	return count, nil
}

// expireOne transitions a single booking to expired. The status CAS runs
// first so a raced decision (or a concurrent sweep) makes this a no-op;
// inventory is only restored when this sweep won the transition.
func (s *service) expireOne(ctx context.Context, booking *models.Booking, prior enums.BookingStatus) (bool, error) {
	won := false
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		now := s.now().UTC()

		updated, err := repo.UpdateStatusFrom(ctx, booking.ID, prior, enums.BookingStatusExpired, &now)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "expire booking")
		}
		if !updated {
			return nil
		}
		won = true

		roomsRestored := 0
		if prior == enums.BookingStatusConfirmed {
			restored, err := s.inventory.Restore(ctx, tx, booking.ListingID, booking.Rooms)
			if err != nil {
				return err
			}
			if !restored {
				return pkgerrors.New(pkgerrors.CodeDependency, "inventory restore exceeded capacity").
					WithDetails(map[string]any{"listing_id": booking.ListingID, "rooms": booking.Rooms})
			}
			roomsRestored = booking.Rooms
		}

		s.metrics.IncExpired()

		event := outbox.DomainEvent{
			EventType:     enums.EventBookingExpired,
			AggregateType: enums.AggregateBooking,
			AggregateID:   booking.ID,
			Version:       1,
			OccurredAt:    now,
			Data: payloads.BookingExpiredEvent{
				BookingID:     booking.ID,
				ListingID:     booking.ListingID,
				GuestID:       booking.UserID,
				PriorStatus:   prior,
				ExpiredAt:     now,
				RoomsRestored: roomsRestored,
			},
		}
		return s.outbox.Emit(ctx, tx, event)
	})
	if err != nil {
		return false, err
	}
	return won, nil
}

func requestedEvent(booking *models.Booking, hostID uuid.UUID) payloads.BookingRequestedEvent {
	return payloads.BookingRequestedEvent{
		BookingID: booking.ID,
		ListingID: booking.ListingID,
		GuestID:   booking.UserID,
		HostID:    hostID,
		DateFrom:  booking.DateFrom,
		DateTo:    booking.DateTo,
		Rooms:     booking.Rooms,
	}
}

func decisionEvent(booking *models.Booking, hostID uuid.UUID, decidedAt time.Time) payloads.BookingDecisionEvent {
	return payloads.BookingDecisionEvent{
		BookingID: booking.ID,
		ListingID: booking.ListingID,
		GuestID:   booking.UserID,
		HostID:    hostID,
		Status:    booking.Status,
		DecidedAt: decidedAt,
	}
}
