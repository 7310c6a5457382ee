package bookings

import (
	"time"

	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
)

// BookingDTO is the external representation of a booking.
type BookingDTO struct {
	ID              uuid.UUID           `json:"id"`
	ListingID       uuid.UUID           `json:"listing_id"`
	UserID          uuid.UUID           `json:"user_id"`
	GuestName       string              `json:"guest_name"`
	GuestEmail      string              `json:"guest_email"`
	GuestPhone      string              `json:"guest_phone"`
	DateFrom        string              `json:"date_from"`
	DateTo          string              `json:"date_to"`
	Rooms           int                 `json:"rooms"`
	People          int                 `json:"people"`
	SpecialRequests *string             `json:"special_requests,omitempty"`
	Status          enums.BookingStatus `json:"status"`
	DecidedAt       *time.Time          `json:"decided_at,omitempty"`
	CreatedAt       time.Time           `json:"created_at"`
}

const dateLayout = "2006-01-02"

// FromModel converts the persistence model into the external DTO.
func FromModel(booking *models.Booking) *BookingDTO {
	if booking == nil {
		return nil
	}
	return &BookingDTO{
		ID:              booking.ID,
		ListingID:       booking.ListingID,
		UserID:          booking.UserID,
		GuestName:       booking.GuestName,
		GuestEmail:      booking.GuestEmail,
		GuestPhone:      booking.GuestPhone,
		DateFrom:        booking.DateFrom.Format(dateLayout),
		DateTo:          booking.DateTo.Format(dateLayout),
		Rooms:           booking.Rooms,
		People:          booking.People,
		SpecialRequests: booking.SpecialRequests,
		Status:          booking.Status,
		DecidedAt:       booking.DecidedAt,
		CreatedAt:       booking.CreatedAt,
	}
}

// FromModels maps a slice of bookings into DTOs.
func FromModels(bookings []models.Booking) []BookingDTO {
	out := make([]BookingDTO, 0, len(bookings))
	for i := range bookings {
		out = append(out, *FromModel(&bookings[i]))
	}
	return out
}
