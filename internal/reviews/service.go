package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox/payloads"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type outboxPublisher interface {
	Emit(ctx context.Context, tx *gorm.DB, event outbox.DomainEvent) error
}

type listingReader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Listing, error)
}

// ReviewDTO is the external representation of a review.
type ReviewDTO struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listing_id"`
	AuthorID  uuid.UUID `json:"author_id"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateReviewInput captures a validated review submission.
type CreateReviewInput struct {
	Rating  int
	Comment string
}

// Service exposes review operations.
type Service interface {
	Create(ctx context.Context, authorID, listingID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error)
	ListForListing(ctx context.Context, listingID uuid.UUID, limit int) ([]ReviewDTO, error)
	Delete(ctx context.Context, authorID, reviewID uuid.UUID) error
}

// ServiceParams bundles the dependencies required to build the review service.
type ServiceParams struct {
	Repo     Repository
	Listings listingReader
	Tx       txRunner
	Outbox   outboxPublisher
}

type service struct {
	repo     Repository
	listings listingReader
	tx       txRunner
	outbox   outboxPublisher
	now      func() time.Time
}

// NewService builds a review service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("reviews repository required")
	}
	if params.Listings == nil {
		return nil, fmt.Errorf("listing reader required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Outbox == nil {
		return nil, fmt.Errorf("outbox publisher required")
	}
	return &service{
		repo:     params.Repo,
		listings: params.Listings,
		tx:       params.Tx,
		outbox:   params.Outbox,
		now:      time.Now,
	}, nil
}

func (s *service) Create(ctx context.Context, authorID, listingID uuid.UUID, input CreateReviewInput) (*ReviewDTO, error) {
	if authorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if input.Rating < 1 || input.Rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(input.Comment)
	if comment == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comment required")
	}

	listing, err := s.listings.FindByID(ctx, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "listing not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load listing")
	}
	if listing.OwnerID == authorID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "hosts cannot review their own listing")
	}

	review := &models.Review{
		ListingID: listing.ID,
		AuthorID:  authorID,
		Rating:    input.Rating,
		Comment:   comment,
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, review); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewPosted,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: authorID, Role: "guest"},
			Data: payloads.ReviewPostedEvent{
				ReviewID:  review.ID,
				ListingID: review.ListingID,
				AuthorID:  review.AuthorID,
				Rating:    review.Rating,
			},
		})
	})
	if err != nil {
		return nil, err
	}

	return fromModel(review), nil
}

func (s *service) ListForListing(ctx context.Context, listingID uuid.UUID, limit int) ([]ReviewDTO, error) {
	if listingID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "listing id required")
	}
	rows, err := s.repo.ListForListing(ctx, listingID, pagination.NormalizeLimit(limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	out := make([]ReviewDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *fromModel(&rows[i]))
	}
	return out, nil
}

func (s *service) Delete(ctx context.Context, authorID, reviewID uuid.UUID) error {
	if authorID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	review, err := s.repo.FindByID(ctx, reviewID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "review not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load review")
	}
	if review.AuthorID != authorID {
		return pkgerrors.New(pkgerrors.CodeForbidden, "review does not belong to user")
	}

	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.Delete(ctx, review.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete review")
		}
		return s.outbox.Emit(ctx, tx, outbox.DomainEvent{
			EventType:     enums.EventReviewDeleted,
			AggregateType: enums.AggregateReview,
			AggregateID:   review.ID,
			Version:       1,
			OccurredAt:    s.now().UTC(),
			Actor:         &outbox.ActorRef{UserID: authorID, Role: "guest"},
			Data: payloads.ReviewPostedEvent{
				ReviewID:  review.ID,
				ListingID: review.ListingID,
				AuthorID:  review.AuthorID,
				Rating:    review.Rating,
			},
		})
	})
}

func fromModel(review *models.Review) *ReviewDTO {
	if review == nil {
		return nil
	}
	return &ReviewDTO{
		ID:        review.ID,
		ListingID: review.ListingID,
		AuthorID:  review.AuthorID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}
