package listings

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

// Repository exposes listing persistence operations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, listing *models.Listing) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Browse(ctx context.Context, query BrowseQuery) ([]models.Listing, *pagination.Cursor, error)
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error)
	DeleteWithReviews(ctx context.Context, id uuid.UUID) error
}

// BrowseQuery filters and paginates the public listing catalog.
type BrowseQuery struct {
	Category *enums.ListingCategory
	Search   string
	Country  string
	Limit    int
	Cursor   *pagination.Cursor
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a listings repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Create(listing).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *repository) Update(ctx context.Context, listing *models.Listing) error {
	return r.db.WithContext(ctx).Save(listing).Error
}

func (r *repository) Browse(ctx context.Context, query BrowseQuery) ([]models.Listing, *pagination.Cursor, error) {
	limit := pagination.LimitWithBuffer(query.Limit)
	normalized := pagination.NormalizeLimit(query.Limit)
	q := r.db.WithContext(ctx).Model(&models.Listing{})
	if query.Category != nil {
		q = q.Where("category = ?", *query.Category)
	}
	if search := strings.TrimSpace(query.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		q = q.Where("LOWER(title) LIKE ? OR LOWER(location) LIKE ?", pattern, pattern)
	}
	if country := strings.TrimSpace(query.Country); country != "" {
		q = q.Where("LOWER(country) = LOWER(?)", country)
	}
	if query.Cursor != nil {
		q = q.Where("(created_at, id) < (?, ?)", query.Cursor.CreatedAt, query.Cursor.ID)
	}

	var listings []models.Listing
	if err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&listings).Error; err != nil {
		return nil, nil, err
	}

	if len(listings) > normalized {
		next := listings[normalized]
		listings = listings[:normalized]
		return listings, &pagination.Cursor{CreatedAt: next.CreatedAt, ID: next.ID}, nil
	}
	return listings, nil, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

// DeleteWithReviews removes the listing and its reviews. The caller is
// responsible for the active-booking guard; this only performs the cascade.
func (r *repository) DeleteWithReviews(ctx context.Context, id uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("listing_id = ?", id).Delete(&models.Review{}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Listing{}).Error
}
