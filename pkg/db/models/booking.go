package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
)

// Booking is a guest's request for rooms on a listing over a date window.
//
// DateFrom/DateTo are inclusive calendar dates. Only confirmed bookings hold
// inventory; pending bookings hold none until the host answers.
type Booking struct {
	ID              uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	ListingID       uuid.UUID           `gorm:"column:listing_id;type:uuid;not null;index"`
	UserID          uuid.UUID           `gorm:"column:user_id;type:uuid;not null;index"`
	GuestName       string              `gorm:"column:guest_name;type:text;not null"`
	GuestEmail      string              `gorm:"column:guest_email;type:text;not null"`
	GuestPhone      string              `gorm:"column:guest_phone;type:text;not null"`
	DateFrom        time.Time           `gorm:"column:date_from;type:date;not null"`
	DateTo          time.Time           `gorm:"column:date_to;type:date;not null"`
	Rooms           int                 `gorm:"column:rooms;not null;default:1"`
	People          int                 `gorm:"column:people;not null;default:1"`
	SpecialRequests *string             `gorm:"column:special_requests;type:text"`
	Status          enums.BookingStatus `gorm:"type:booking_status;not null;default:'pending';index"`
	DecidedAt       *time.Time          `gorm:"column:decided_at"`
	CreatedAt       time.Time           `gorm:"column:created_at;autoCreateTime;index"`
	UpdatedAt       time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}
