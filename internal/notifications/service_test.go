package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
	"github.com/sofiamendes/wanderstay-backend/pkg/pagination"
	"gorm.io/gorm"
)

type stubRepository struct {
	items      []models.Notification
	next       *pagination.Cursor
	listParams listNotificationsParams
	markResult notificationMarkResult
	markedAll  int64
	err        error
}

func (s *stubRepository) WithTx(tx *gorm.DB) Repository { return s }

func (s *stubRepository) Create(ctx context.Context, notification *models.Notification) error {
	s.items = append(s.items, *notification)
	return s.err
}

func (s *stubRepository) List(ctx context.Context, params listNotificationsParams) ([]models.Notification, *pagination.Cursor, error) {
	s.listParams = params
	if s.err != nil {
		return nil, nil, s.err
	}
	return s.items, s.next, nil
}

func (s *stubRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID, now time.Time) (notificationMarkResult, error) {
	if s.err != nil {
		return notificationMarkResult{}, s.err
	}
	return s.markResult, nil
}

func (s *stubRepository) MarkAllRead(ctx context.Context, userID uuid.UUID, now time.Time) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.markedAll, nil
}

func (s *stubRepository) DeleteOlderThan(ctx context.Context, tx *gorm.DB, cutoff time.Time) (int64, error) {
	return 0, nil
}

func TestServiceListReturnsCursor(t *testing.T) {
	next := &pagination.Cursor{CreatedAt: time.Now().UTC(), ID: uuid.New()}
	repo := &stubRepository{
		items: []models.Notification{{ID: uuid.New(), Title: "Booking confirmed"}},
		next:  next,
	}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	result, err := svc.List(context.Background(), ListParams{UserID: uuid.New(), Limit: 10})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	if result.Cursor == "" {
		t.Fatalf("expected cursor for next page")
	}
	parsed, err := pagination.ParseCursor(result.Cursor)
	if err != nil {
		t.Fatalf("parse returned cursor: %v", err)
	}
	if parsed.ID != next.ID {
		t.Fatalf("cursor id mismatch")
	}
}

func TestServiceListRequiresUser(t *testing.T) {
	svc, err := NewService(&stubRepository{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.List(context.Background(), ListParams{Limit: 10})
	if err == nil {
		t.Fatalf("expected validation error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestServiceListRejectsBadCursor(t *testing.T) {
	svc, err := NewService(&stubRepository{})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	_, err = svc.List(context.Background(), ListParams{UserID: uuid.New(), Cursor: "not-a-cursor"})
	if err == nil {
		t.Fatalf("expected validation error for bad cursor")
	}
}

func TestServiceMarkReadNotFound(t *testing.T) {
	repo := &stubRepository{markResult: notificationMarkResult{Found: false}}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	err = svc.MarkRead(context.Background(), uuid.New(), uuid.New())
	if err == nil {
		t.Fatalf("expected not found error")
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found error, got %v", err)
	}
}

func TestServiceMarkAllRead(t *testing.T) {
	repo := &stubRepository{markedAll: 3}
	svc, err := NewService(repo)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	count, err := svc.MarkAllRead(context.Background(), uuid.New())
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if count != 3 {
		t.Fatalf("expected 3 marked, got %d", count)
	}
}
