package payloads

import (
	"time"

	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
)

// BookingRequestedEvent signals a new pending booking awaiting the host.
type BookingRequestedEvent struct {
	BookingID uuid.UUID `json:"bookingId"`
	ListingID uuid.UUID `json:"listingId"`
	GuestID   uuid.UUID `json:"guestId"`
	HostID    uuid.UUID `json:"hostId"`
	DateFrom  time.Time `json:"dateFrom"`
	DateTo    time.Time `json:"dateTo"`
	Rooms     int       `json:"rooms"`
}

// BookingDecisionEvent is emitted when a host confirms or rejects a booking.
type BookingDecisionEvent struct {
	BookingID uuid.UUID           `json:"bookingId"`
	ListingID uuid.UUID           `json:"listingId"`
	GuestID   uuid.UUID           `json:"guestId"`
	HostID    uuid.UUID           `json:"hostId"`
	Status    enums.BookingStatus `json:"status"`
	DecidedAt time.Time           `json:"decidedAt"`
}

// BookingExpiredEvent describes the payload when the sweeper expires a booking.
type BookingExpiredEvent struct {
	BookingID      uuid.UUID           `json:"bookingId"`
	ListingID      uuid.UUID           `json:"listingId"`
	GuestID        uuid.UUID           `json:"guestId"`
	PriorStatus    enums.BookingStatus `json:"priorStatus"`
	ExpiredAt      time.Time           `json:"expiredAt"`
	RoomsRestored  int                 `json:"roomsRestored"`
	PendingTTLDays *int                `json:"ttlDays,omitempty"`
}

// ListingLifecycleEvent covers listing create/update/delete notifications.
type ListingLifecycleEvent struct {
	ListingID uuid.UUID             `json:"listingId"`
	OwnerID   uuid.UUID             `json:"ownerId"`
	Title     string                `json:"title"`
	Category  enums.ListingCategory `json:"category"`
}

// ReviewPostedEvent signals new guest feedback on a listing.
type ReviewPostedEvent struct {
	ReviewID  uuid.UUID `json:"reviewId"`
	ListingID uuid.UUID `json:"listingId"`
	AuthorID  uuid.UUID `json:"authorId"`
	Rating    int       `json:"rating"`
}

// NotificationRequestedEvent tells downstream systems to alert a user.
type NotificationRequestedEvent struct {
	UserID    uuid.UUID `json:"userId"`
	BookingID uuid.UUID `json:"bookingId"`
	ListingID uuid.UUID `json:"listingId"`
	Type      string    `json:"type"`
}
