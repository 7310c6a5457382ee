package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	pkgerrors "github.com/sofiamendes/wanderstay-backend/pkg/errors"
)

type stubSummer struct {
	total int
	err   error
	from  time.Time
	to    time.Time
}

func (s *stubSummer) SumConfirmedOverlappingRooms(ctx context.Context, listingID uuid.UUID, dateFrom, dateTo time.Time) (int, error) {
	s.from = dateFrom
	s.to = dateTo
	return s.total, s.err
}

func TestRangesOverlap(t *testing.T) {
	cases := []struct {
		name                   string
		aFrom, aTo, bFrom, bTo string
		want                   bool
	}{
		{"disjoint before", "2024-06-01", "2024-06-05", "2024-06-06", "2024-06-10", false},
		{"disjoint after", "2024-06-11", "2024-06-15", "2024-06-01", "2024-06-10", false},
		{"shared endpoint", "2024-06-01", "2024-06-10", "2024-06-10", "2024-06-12", true},
		{"contained", "2024-06-05", "2024-06-07", "2024-06-01", "2024-06-10", true},
		{"partial", "2024-06-08", "2024-06-12", "2024-06-01", "2024-06-10", true},
		{"single day both", "2024-06-05", "2024-06-05", "2024-06-05", "2024-06-05", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := RangesOverlap(day(tc.aFrom), day(tc.aTo), day(tc.bFrom), day(tc.bTo))
			if got != tc.want {
				t.Fatalf("RangesOverlap(%s..%s, %s..%s) = %v, want %v", tc.aFrom, tc.aTo, tc.bFrom, tc.bTo, got, tc.want)
			}
		})
	}
}

func TestCheckerOverlapCorrectness(t *testing.T) {
	// Capacity 3 with 2 rooms confirmed for 2024-06-12..2024-06-20:
	// requesting 2 rooms for 2024-06-10..2024-06-15 must fail, 1 must pass.
	listing := &models.Listing{
		ID:             uuid.New(),
		TotalRooms:     3,
		RoomsAvailable: 3,
	}
	summer := &stubSummer{total: 2}
	checker, err := NewChecker(summer)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	err = checker.Check(context.Background(), listing, day("2024-06-10"), day("2024-06-15"), 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNoVacancy {
		t.Fatalf("expected no-vacancy for 2 rooms, got %v", err)
	}

	if err := checker.Check(context.Background(), listing, day("2024-06-10"), day("2024-06-15"), 1); err != nil {
		t.Fatalf("expected 1 room to fit, got %v", err)
	}
	if !summer.from.Equal(day("2024-06-10")) || !summer.to.Equal(day("2024-06-15")) {
		t.Fatalf("checker queried wrong window %v..%v", summer.from, summer.to)
	}
}

func TestCheckerFastPathOnLiveCounter(t *testing.T) {
	listing := &models.Listing{
		ID:             uuid.New(),
		TotalRooms:     5,
		RoomsAvailable: 1,
	}
	summer := &stubSummer{total: 0}
	checker, err := NewChecker(summer)
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	err = checker.Check(context.Background(), listing, day("2024-06-10"), day("2024-06-15"), 2)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNoVacancy {
		t.Fatalf("expected fast-path no-vacancy, got %v", err)
	}
	if !summer.from.IsZero() {
		t.Fatalf("fast path must not query overlaps")
	}
}

func TestCheckerRejectsInvertedRange(t *testing.T) {
	listing := &models.Listing{ID: uuid.New(), TotalRooms: 2, RoomsAvailable: 2}
	checker, err := NewChecker(&stubSummer{})
	if err != nil {
		t.Fatalf("new checker: %v", err)
	}

	err = checker.Check(context.Background(), listing, day("2024-06-15"), day("2024-06-10"), 1)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}
