package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/sofiamendes/wanderstay-backend/pkg/config"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"go.uber.org/multierr"
)

type bookingSweeper interface {
	ExpirePendingBefore(ctx context.Context, cutoff time.Time, limit int) (int, error)
	ExpireEndedStays(ctx context.Context, now time.Time, limit int) (int, error)
}

// BookingTTLJobParams configure the booking expiry scheduler.
type BookingTTLJobParams struct {
	Logger  *logger.Logger
	Sweeper bookingSweeper
	Config  config.BookingConfig
}

// NewBookingTTLJob builds the cron job that expires unanswered booking
// requests and closes out confirmed stays whose dates have passed.
func NewBookingTTLJob(params BookingTTLJobParams) (Job, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Sweeper == nil {
		return nil, fmt.Errorf("booking sweeper required")
	}
	return &bookingTTLJob{
		logg:    params.Logger,
		sweeper: params.Sweeper,
		cfg:     params.Config,
		now:     time.Now,
	}, nil
}

type bookingTTLJob struct {
	logg    *logger.Logger
	sweeper bookingSweeper
	cfg     config.BookingConfig
	now     func() time.Time
}

func (j *bookingTTLJob) Name() string { return "booking-ttl" }

func (j *bookingTTLJob) Run(ctx context.Context) error {
	var errs []error
	if err := j.expireStalePending(ctx); err != nil {
		errs = append(errs, err)
	}
	if err := j.expireEndedStays(ctx); err != nil {
		errs = append(errs, err)
	}
	return multierr.Combine(errs...)
}

func (j *bookingTTLJob) expireStalePending(ctx context.Context) error {
	cutoff := j.now().UTC().Add(-j.cfg.PendingTTL())
	count, err := j.sweeper.ExpirePendingBefore(ctx, cutoff, j.cfg.SweepBatchSize)
	if err != nil {
		return fmt.Errorf("expire stale pending bookings: %w", err)
	}
	if count > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{"count": count, "cutoff": cutoff})
		j.logg.Info(logCtx, "expired unanswered booking requests")
	}
	return nil
}

func (j *bookingTTLJob) expireEndedStays(ctx context.Context) error {
	count, err := j.sweeper.ExpireEndedStays(ctx, j.now().UTC(), j.cfg.SweepBatchSize)
	if err != nil {
		return fmt.Errorf("expire ended stays: %w", err)
	}
	if count > 0 {
		logCtx := j.logg.WithFields(ctx, map[string]any{"count": count})
		j.logg.Info(logCtx, "released inventory for ended stays")
	}
	return nil
}
