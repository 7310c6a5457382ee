package listings

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
)

// ListingDTO is the external representation of a listing.
type ListingDTO struct {
	ID             uuid.UUID             `json:"id"`
	OwnerID        uuid.UUID             `json:"owner_id"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	NightlyPrice   decimal.Decimal       `json:"nightly_price"`
	Location       string                `json:"location"`
	Country        string                `json:"country"`
	Category       enums.ListingCategory `json:"category"`
	ImageURL       string                `json:"image_url"`
	ContactPhone   string                `json:"contact_phone"`
	Latitude       float64               `json:"latitude"`
	Longitude      float64               `json:"longitude"`
	TotalRooms     int                   `json:"total_rooms"`
	RoomsAvailable int                   `json:"rooms_available"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
}

// FromModel converts the persistence model into the external DTO.
func FromModel(listing *models.Listing) *ListingDTO {
	if listing == nil {
		return nil
	}
	return &ListingDTO{
		ID:             listing.ID,
		OwnerID:        listing.OwnerID,
		Title:          listing.Title,
		Description:    listing.Description,
		NightlyPrice:   listing.NightlyPrice,
		Location:       listing.Location,
		Country:        listing.Country,
		Category:       listing.Category,
		ImageURL:       listing.ImageURL,
		ContactPhone:   listing.ContactPhone,
		Latitude:       listing.Latitude,
		Longitude:      listing.Longitude,
		TotalRooms:     listing.TotalRooms,
		RoomsAvailable: listing.RoomsAvailable,
		CreatedAt:      listing.CreatedAt,
		UpdatedAt:      listing.UpdatedAt,
	}
}

// FromModels maps a slice of listings into DTOs.
func FromModels(listings []models.Listing) []ListingDTO {
	out := make([]ListingDTO, 0, len(listings))
	for i := range listings {
		out = append(out, *FromModel(&listings[i]))
	}
	return out
}
