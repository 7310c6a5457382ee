package bookings

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupBookingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:bookings_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	listings := `
CREATE TABLE IF NOT EXISTS listings (
  id TEXT PRIMARY KEY,
  owner_id TEXT NOT NULL,
  title TEXT NOT NULL,
  description TEXT NOT NULL,
  nightly_price TEXT NOT NULL,
  location TEXT NOT NULL,
  country TEXT NOT NULL,
  category TEXT NOT NULL,
  image_url TEXT NOT NULL,
  image_filename TEXT NOT NULL,
  contact_phone TEXT NOT NULL,
  latitude REAL NOT NULL DEFAULT 0,
  longitude REAL NOT NULL DEFAULT 0,
  total_rooms INTEGER NOT NULL,
  rooms_available INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	bookings := `
CREATE TABLE IF NOT EXISTS bookings (
  id TEXT PRIMARY KEY,
  listing_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  guest_name TEXT NOT NULL,
  guest_email TEXT NOT NULL,
  guest_phone TEXT NOT NULL,
  date_from DATETIME NOT NULL,
  date_to DATETIME NOT NULL,
  rooms INTEGER NOT NULL DEFAULT 1,
  people INTEGER NOT NULL DEFAULT 1,
  special_requests TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  decided_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(listings).Error)
	require.NoError(t, db.Exec(bookings).Error)
	return db
}

func seedListing(t *testing.T, db *gorm.DB, totalRooms, available int) *models.Listing {
	t.Helper()
	listing := &models.Listing{
		ID:             uuid.New(),
		OwnerID:        uuid.New(),
		Title:          "Seaside Flat",
		Description:    "Two rooms over the harbor",
		Location:       "Brighton, UK",
		Country:        "United Kingdom",
		Category:       enums.ListingCategoryIconicCities,
		ImageURL:       "https://cdn.example.com/default.jpg",
		ImageFilename:  "default.jpg",
		ContactPhone:   "07700900000",
		TotalRooms:     totalRooms,
		RoomsAvailable: available,
	}
	require.NoError(t, db.Create(listing).Error)
	return listing
}

func seedBooking(t *testing.T, db *gorm.DB, listingID uuid.UUID, status enums.BookingStatus, from, to time.Time, rooms int) *models.Booking {
	t.Helper()
	booking := &models.Booking{
		ID:         uuid.New(),
		ListingID:  listingID,
		UserID:     uuid.New(),
		GuestName:  "Dana Guest",
		GuestEmail: "dana@example.com",
		GuestPhone: "5550001111",
		DateFrom:   from,
		DateTo:     to,
		Rooms:      rooms,
		People:     2,
		Status:     status,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func day(value string) time.Time {
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return parsed
}

func TestSumConfirmedOverlappingRooms(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	listing := seedListing(t, db, 3, 3)

	seedBooking(t, db, listing.ID, enums.BookingStatusConfirmed, day("2024-06-12"), day("2024-06-20"), 2)
	seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-12"), day("2024-06-20"), 3)
	seedBooking(t, db, listing.ID, enums.BookingStatusConfirmed, day("2024-07-01"), day("2024-07-05"), 1)

	total, err := repo.SumConfirmedOverlappingRooms(ctx, listing.ID, day("2024-06-10"), day("2024-06-15"))
	require.NoError(t, err)
	require.Equal(t, 2, total, "pending and non-overlapping bookings must not count")

	total, err = repo.SumConfirmedOverlappingRooms(ctx, listing.ID, day("2024-06-20"), day("2024-06-25"))
	require.NoError(t, err)
	require.Equal(t, 2, total, "closed ranges sharing an endpoint overlap")

	total, err = repo.SumConfirmedOverlappingRooms(ctx, listing.ID, day("2024-06-21"), day("2024-06-25"))
	require.NoError(t, err)
	require.Equal(t, 0, total)
}

func TestUpdateStatusFromGuardsPriorStatus(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	listing := seedListing(t, db, 2, 2)
	booking := seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-10"), day("2024-06-15"), 1)

	now := time.Now().UTC()
	updated, err := repo.UpdateStatusFrom(ctx, booking.ID, enums.BookingStatusPending, enums.BookingStatusConfirmed, &now)
	require.NoError(t, err)
	require.True(t, updated)

	// A second transition from pending must lose: the row moved on.
	updated, err = repo.UpdateStatusFrom(ctx, booking.ID, enums.BookingStatusPending, enums.BookingStatusRejected, &now)
	require.NoError(t, err)
	require.False(t, updated)

	var reloaded models.Booking
	require.NoError(t, db.First(&reloaded, "id = ?", booking.ID).Error)
	require.Equal(t, enums.BookingStatusConfirmed, reloaded.Status)
	require.NotNil(t, reloaded.DecidedAt)
}

func TestInventoryHoldNeverOvercommits(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	inventory := NewInventory()
	ctx := context.Background()
	listing := seedListing(t, db, 3, 3)

	held, err := inventory.Hold(ctx, db, listing.ID, 2)
	require.NoError(t, err)
	require.True(t, held)

	held, err = inventory.Hold(ctx, db, listing.ID, 2)
	require.NoError(t, err)
	require.False(t, held, "second hold must fail with only 1 room left")

	held, err = inventory.Hold(ctx, db, listing.ID, 1)
	require.NoError(t, err)
	require.True(t, held)

	var reloaded models.Listing
	require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
	require.Equal(t, 0, reloaded.RoomsAvailable)
}

func TestInventoryHoldConcurrentConfirms(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// sqlite serializes writers; one connection keeps the race at the
	// guard instead of surfacing driver busy errors.
	sqlDB.SetMaxOpenConns(1)

	inventory := NewInventory()
	ctx := context.Background()
	listing := seedListing(t, db, 3, 3)

	const racers = 8
	held := make(chan bool, racers)
	errs := make(chan error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := inventory.Hold(ctx, db, listing.ID, 1)
			if err != nil {
				errs <- err
				return
			}
			held <- ok
		}()
	}
	wg.Wait()
	close(errs)
	close(held)

	for err := range errs {
		require.NoError(t, err)
	}
	succeeded := 0
	for ok := range held {
		if ok {
			succeeded++
		}
	}
	require.Equal(t, 3, succeeded, "exactly as many confirms as rooms may win")

	var reloaded models.Listing
	require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
	require.Equal(t, 0, reloaded.RoomsAvailable)
}

func TestInventoryRestoreCapsAtTotalRooms(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	inventory := NewInventory()
	ctx := context.Background()
	listing := seedListing(t, db, 3, 2)

	restored, err := inventory.Restore(ctx, db, listing.ID, 1)
	require.NoError(t, err)
	require.True(t, restored)

	restored, err = inventory.Restore(ctx, db, listing.ID, 1)
	require.NoError(t, err)
	require.False(t, restored, "restore past total_rooms must be refused")

	var reloaded models.Listing
	require.NoError(t, db.First(&reloaded, "id = ?", listing.ID).Error)
	require.Equal(t, 3, reloaded.RoomsAvailable)
}

func TestFindPendingBefore(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	listing := seedListing(t, db, 2, 2)

	stale := seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-10"), day("2024-06-15"), 1)
	require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", stale.ID).
		UpdateColumn("created_at", time.Now().UTC().Add(-10*24*time.Hour)).Error)
	seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-10"), day("2024-06-15"), 1)

	cutoff := time.Now().UTC().Add(-7 * 24 * time.Hour)
	found, err := repo.FindPendingBefore(ctx, cutoff, 10)
	require.NoError(t, err)
	require.Len(t, found, 1)
	require.Equal(t, stale.ID, found[0].ID)
}

func TestCountEndingOnOrAfter(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	listing := seedListing(t, db, 2, 2)

	seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-10"), day("2024-06-15"), 1)
	seedBooking(t, db, listing.ID, enums.BookingStatusExpired, day("2024-05-01"), day("2024-05-05"), 1)

	count, err := repo.CountEndingOnOrAfter(ctx, listing.ID, day("2024-06-01"))
	require.NoError(t, err)
	require.Equal(t, int64(1), count, "past bookings never block deletion, future ones do regardless of status")

	count, err = repo.CountEndingOnOrAfter(ctx, listing.ID, day("2024-07-01"))
	require.NoError(t, err)
	require.Equal(t, int64(0), count)
}

func TestListForListingPaginatesAndFilters(t *testing.T) {
	t.Parallel()
	db := setupBookingsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()
	listing := seedListing(t, db, 5, 5)

	base := time.Now().UTC().Add(-time.Hour)
	for i := 0; i < 3; i++ {
		b := seedBooking(t, db, listing.ID, enums.BookingStatusPending, day("2024-06-10"), day("2024-06-15"), 1)
		require.NoError(t, db.Model(&models.Booking{}).Where("id = ?", b.ID).
			UpdateColumn("created_at", base.Add(time.Duration(i)*time.Minute)).Error)
	}
	confirmed := seedBooking(t, db, listing.ID, enums.BookingStatusConfirmed, day("2024-06-10"), day("2024-06-15"), 1)

	pending := enums.BookingStatusPending
	rows, next, err := repo.ListForListing(ctx, listing.ID, ListQuery{Limit: 2, Status: &pending})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.NotNil(t, next)

	rows, next, err = repo.ListForListing(ctx, listing.ID, ListQuery{Limit: 2, Status: &pending, Cursor: next})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Nil(t, next)

	status := enums.BookingStatusConfirmed
	rows, _, err = repo.ListForListing(ctx, listing.ID, ListQuery{Limit: 10, Status: &status})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, confirmed.ID, rows[0].ID)
}
