package bookings

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes booking persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, booking *models.Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error)
	ListForGuest(ctx context.Context, userID uuid.UUID, query ListQuery) ([]models.Booking, *pagination.Cursor, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, query ListQuery) ([]models.Booking, *pagination.Cursor, error)
	SumConfirmedOverlappingRooms(ctx context.Context, listingID uuid.UUID, dateFrom, dateTo time.Time) (int, error)
	UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.BookingStatus, decidedAt *time.Time) (bool, error)
	FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error)
	FindConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error)
	FindConfirmedEndedForListing(ctx context.Context, listingID uuid.UUID, before time.Time) ([]models.Booking, error)
	CountEndingOnOrAfter(ctx context.Context, listingID uuid.UUID, date time.Time) (int64, error)
}

// ListQuery filters and paginates booking listings.
type ListQuery struct {
	Limit  int
	Cursor *pagination.Cursor
	Status *enums.BookingStatus
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a bookings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).First(&booking, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *repository) ListForGuest(ctx context.Context, userID uuid.UUID, query ListQuery) ([]models.Booking, *pagination.Cursor, error) {
	return r.list(ctx, query, "user_id = ?", userID)
}

func (r *repository) ListForListing(ctx context.Context, listingID uuid.UUID, query ListQuery) ([]models.Booking, *pagination.Cursor, error) {
	return r.list(ctx, query, "listing_id = ?", listingID)
}

func (r *repository) list(ctx context.Context, query ListQuery, cond string, arg any) ([]models.Booking, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.Booking{}).Where(cond, arg)
	if query.Status != nil {
		q = q.Where("status = ?", *query.Status)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var bookings []models.Booking
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&bookings).Error; err != nil {
		return nil, nil, err
	}

	if len(bookings) > normalized {
		next := bookings[normalized]
		bookings = bookings[:normalized]
		return bookings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return bookings, nil, nil
}

// SumConfirmedOverlappingRooms totals confirmed rooms whose inclusive date
// range intersects [dateFrom, dateTo].
func (r *repository) SumConfirmedOverlappingRooms(ctx context.Context, listingID uuid.UUID, dateFrom, dateTo time.Time) (int, error) {
	var total int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Select("COALESCE(SUM(rooms), 0)").
		Where("listing_id = ? AND status = ?", listingID, enums.BookingStatusConfirmed).
		Where("date_from <= ? AND ? <= date_to", dateTo, dateFrom).
		Scan(&total).Error
	if err != nil {
		return 0, err
	}
	return int(total), nil
}

// UpdateStatusFrom flips a booking's status only when it still holds the
// expected prior status. The caller decides what RowsAffected == 0 means.
func (r *repository) UpdateStatusFrom(ctx context.Context, id uuid.UUID, from, to enums.BookingStatus, decidedAt *time.Time) (bool, error) {
	updates := map[string]any{"status": to}
	if decidedAt != nil {
		updates["decided_at"] = *decidedAt
	}
	res := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(updates)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindPendingBefore(ctx context.Context, cutoff time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", enums.BookingStatusPending, cutoff).
		Order("created_at ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindConfirmedEndedBefore(ctx context.Context, before time.Time, limit int) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).
		Where("status = ? AND date_to < ?", enums.BookingStatusConfirmed, before).
		Order("date_to ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *repository) FindConfirmedEndedForListing(ctx context.Context, listingID uuid.UUID, before time.Time) ([]models.Booking, error) {
	var bookings []models.Booking
	err := r.db.WithContext(ctx).
		Where("listing_id = ? AND status = ? AND date_to < ?", listingID, enums.BookingStatusConfirmed, before).
		Order("date_to ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountEndingOnOrAfter counts bookings, in any status, whose stay has not
// finished before the given date. Listings with such bookings cannot be
// deleted.
func (r *repository) CountEndingOnOrAfter(ctx context.Context, listingID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("listing_id = ? AND date_to >= ?", listingID, date).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
