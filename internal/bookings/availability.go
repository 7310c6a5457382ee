package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
)

// RangesOverlap reports whether two inclusive date ranges intersect.
// Closed ranges [a,b] and [c,d] overlap iff a <= d && c <= b.
func RangesOverlap(aFrom, aTo, bFrom, bTo time.Time) bool {
	return !aFrom.After(bTo) && !bFrom.After(aTo)
}

type confirmedRoomsSummer interface {
	SumConfirmedOverlappingRooms(ctx context.Context, listingID uuid.UUID, dateFrom, dateTo time.Time) (int, error)
}

// Checker decides whether a requested room count fits a listing over a
// date window. The live rooms_available counter is a fast path only; the
// authoritative answer subtracts overlapping confirmed rooms from the
// immutable total_rooms baseline.
type Checker struct {
	repo confirmedRoomsSummer
}

// NewChecker builds an availability checker over the bookings repository.
func NewChecker(repo confirmedRoomsSummer) (*Checker, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "bookings repository required")
	}
	return &Checker{repo: repo}, nil
}

// Check returns nil when the listing can absorb the requested rooms over
// [dateFrom, dateTo], or a NO_VACANCY error when it cannot.
func (c *Checker) Check(ctx context.Context, listing *models.Listing, dateFrom, dateTo time.Time, rooms int) error {
	if listing == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
	}
	if rooms < 1 {
		return pkgerrors.New(pkgerrors.CodeValidation, "rooms must be at least 1")
	}
	if dateTo.Before(dateFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	if rooms > listing.RoomsAvailable {
		return pkgerrors.New(pkgerrors.CodeNoVacancy, "not enough rooms available").
			WithDetails(map[string]any{"listing_id": listing.ID, "requested": rooms, "available": listing.RoomsAvailable})
	}

	booked, err := c.repo.SumConfirmedOverlappingRooms(ctx, listing.ID, dateFrom, dateTo)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum overlapping confirmed rooms")
	}
	if booked+rooms > listing.TotalRooms {
		return pkgerrors.New(pkgerrors.CodeNoVacancy, "dates collide with confirmed bookings").
			WithDetails(map[string]any{"listing_id": listing.ID, "requested": rooms, "booked": booked, "capacity": listing.TotalRooms})
	}
	return nil
}
