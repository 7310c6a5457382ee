package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
)

// Listing is a bookable property owned by a host.
//
// TotalRooms is the immutable capacity baseline; RoomsAvailable is the live
// counter decremented on confirmation and restored on rejection or expiry.
// The invariant 0 <= rooms_available <= total_rooms is enforced by guarded
// updates, never by read-modify-write.
type Listing struct {
	ID             uuid.UUID             `gorm:"type:uuid;default:gen_random_uuid();primaryKey"`
	OwnerID        uuid.UUID             `gorm:"column:owner_id;type:uuid;not null;index"`
	Title          string                `gorm:"type:text;not null"`
	Description    string                `gorm:"type:text;not null"`
	NightlyPrice   decimal.Decimal       `gorm:"column:nightly_price;type:numeric(12,2);not null"`
	Location       string                `gorm:"type:text;not null"`
	Country        string                `gorm:"type:text;not null"`
	Category       enums.ListingCategory `gorm:"type:listing_category;not null;index"`
	ImageURL       string                `gorm:"column:image_url;type:text;not null"`
	ImageFilename  string                `gorm:"column:image_filename;type:text;not null"`
	ContactPhone   string                `gorm:"column:contact_phone;type:text;not null"`
	Latitude       float64               `gorm:"column:latitude;not null"`
	Longitude      float64               `gorm:"column:longitude;not null"`
	TotalRooms     int                   `gorm:"column:total_rooms;not null"`
	RoomsAvailable int                   `gorm:"column:rooms_available;not null"`
	CreatedAt      time.Time             `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time             `gorm:"column:updated_at;autoUpdateTime"`
}
