package bookings

import (
	"context"

	"github.com/google/uuid"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"gorm.io/gorm"
)

// Inventory mutates a listing's live room counter. Both operations are
// single guarded UPDATEs so that racing confirmations can never overcommit
// and restores can never push the counter past total_rooms.
type Inventory interface {
	Hold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, rooms int) (bool, error)
	Restore(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, rooms int) (bool, error)
}

type inventoryImpl struct{}

// NewInventory exposes the default guarded-counter implementation.
func NewInventory() Inventory {
	return inventoryImpl{}
}

func (inventoryImpl) Hold(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, rooms int) (bool, error) {
	if rooms <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "rooms must be positive")
	}
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory hold")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE listings
		SET rooms_available = rooms_available - ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND rooms_available >= ?
	`, rooms, listingID, rooms)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "hold rooms")
	}
	return res.RowsAffected > 0, nil
}

func (inventoryImpl) Restore(ctx context.Context, tx *gorm.DB, listingID uuid.UUID, rooms int) (bool, error) {
	if rooms <= 0 {
		return false, pkgerrors.New(pkgerrors.CodeValidation, "rooms must be positive")
	}
	if tx == nil {
		return false, pkgerrors.New(pkgerrors.CodeDependency, "transaction required for inventory restore")
	}

	res := tx.WithContext(ctx).Exec(`
		UPDATE listings
		SET rooms_available = rooms_available + ?,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND rooms_available + ? <= total_rooms
	`, rooms, listingID, rooms)
	if res.Error != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, res.Error, "restore rooms")
	}
	return res.RowsAffected > 0, nil
}
