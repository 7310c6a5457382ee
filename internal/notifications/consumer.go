package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/google/uuid"
	"github.com/sofiamendes/wanderstay-backend/pkg/db/models"
	"github.com/sofiamendes/wanderstay-backend/pkg/enums"
	"github.com/sofiamendes/wanderstay-backend/pkg/logger"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox/idempotency"
	"github.com/sofiamendes/wanderstay-backend/pkg/outbox/payloads"
)

const bookingNotificationConsumer = "booking-notifications"

type repository interface {
	Create(ctx context.Context, notification *models.Notification) error
}

// Consumer watches booking lifecycle events and turns them into in-app notifications.
type Consumer struct {
	repo         repository
	subscription *pubsub.Subscriber
	idempotency  *idempotency.Manager
	logg         *logger.Logger
}

// NewConsumer builds a booking notification consumer.
func NewConsumer(repo repository, subscription *pubsub.Subscriber, manager *idempotency.Manager, logg *logger.Logger) (*Consumer, error) {
	if repo == nil {
		return nil, fmt.Errorf("notifications repository required")
	}
	if subscription == nil {
		return nil, fmt.Errorf("booking subscription required")
	}
	if manager == nil {
		return nil, fmt.Errorf("idempotency manager required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Consumer{
		repo:         repo,
		subscription: subscription,
		idempotency:  manager,
		logg:         logg,
	}, nil
}

// Run starts the consumer loop until the context is canceled.
func (c *Consumer) Run(ctx context.Context) error {
	return c.subscription.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		result := c.process(ctx, msg)
		if result.nack {
			msg.Nack()
			return
		}
		msg.Ack()
	})
}

type processResult struct {
	ack  bool
	nack bool
}

func (c *Consumer) process(ctx context.Context, msg *pubsub.Message) processResult {
	rawType := msg.Attributes["event_type"]
	fields := map[string]any{
		"message_id": msg.ID,
		"event_type": rawType,
	}
	logCtx := c.logg.WithFields(ctx, fields)

	eventType, err := enums.ParseOutboxEventType(rawType)
	if err != nil || !isBookingEvent(eventType) {
		c.logg.Info(logCtx, "skipping non-booking event")
		return processResult{ack: true}
	}

	var envelope outbox.PayloadEnvelope
	if err := json.Unmarshal(msg.Data, &envelope); err != nil {
		c.logg.Error(logCtx, "failed to decode envelope", err)
		return processResult{ack: true}
	}

	eventID, err := uuid.Parse(envelope.EventID)
	if err != nil {
		c.logg.Error(logCtx, "invalid event id", err)
		return processResult{ack: true}
	}

	already, err := c.idempotency.CheckAndMarkProcessed(ctx, bookingNotificationConsumer, eventID)
	if err != nil {
		c.logg.Error(logCtx, "idempotency check failed", err)
		return processResult{nack: true}
	}
	if already {
		c.logg.Info(logCtx, "event already processed")
		return processResult{ack: true}
	}

	if err := c.handleEvent(ctx, eventType, envelope.Data, logCtx); err != nil {
		c.logg.Error(logCtx, "notification handling failed", err)
		_ = c.idempotency.Delete(ctx, bookingNotificationConsumer, eventID)
		return processResult{nack: true}
	}

	return processResult{ack: true}
}

func isBookingEvent(eventType enums.OutboxEventType) bool {
	switch eventType {
	case enums.EventBookingRequested, enums.EventBookingConfirmed, enums.EventBookingRejected, enums.EventBookingExpired:
		return true
	}
	return false
}

func (c *Consumer) handleEvent(ctx context.Context, eventType enums.OutboxEventType, data json.RawMessage, logCtx context.Context) error {
	switch eventType {
	case enums.EventBookingRequested:
		var payload payloads.BookingRequestedEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking requested payload: %w", err)
		}
		return c.notifyHostOfRequest(ctx, payload, logCtx)
	case enums.EventBookingConfirmed, enums.EventBookingRejected:
		var payload payloads.BookingDecisionEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking decision payload: %w", err)
		}
		return c.notifyGuestOfDecision(ctx, payload, logCtx)
	case enums.EventBookingExpired:
		var payload payloads.BookingExpiredEvent
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("parse booking expired payload: %w", err)
		}
		return c.notifyGuestOfExpiry(ctx, payload, logCtx)
	}
	return nil
}

func (c *Consumer) notifyHostOfRequest(ctx context.Context, payload payloads.BookingRequestedEvent, logCtx context.Context) error {
	if payload.HostID == uuid.Nil {
		return fmt.Errorf("host id missing")
	}
	link := fmt.Sprintf("/listings/%s/bookings/%s", payload.ListingID, payload.BookingID)
	message := fmt.Sprintf(
		"New booking request for %s to %s (%d room(s)) awaits your decision.",
		payload.DateFrom.Format("2006-01-02"),
		payload.DateTo.Format("2006-01-02"),
		payload.Rooms,
	)
	notification := &models.Notification{
		UserID:  payload.HostID,
		Type:    enums.NotificationTypeBookingRequested,
		Title:   "New booking request",
		Message: message,
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "host notified of booking request")
	return nil
}

func (c *Consumer) notifyGuestOfDecision(ctx context.Context, payload payloads.BookingDecisionEvent, logCtx context.Context) error {
	if payload.GuestID == uuid.Nil {
		return fmt.Errorf("guest id missing")
	}
	link := fmt.Sprintf("/bookings/%s", payload.BookingID)
	title := "Booking confirmed"
	message := fmt.Sprintf("Your booking %s has been confirmed by the host.", payload.BookingID)
	notificationType := enums.NotificationTypeBookingConfirmed
	if payload.Status == enums.BookingStatusRejected {
		title = "Booking rejected"
		message = fmt.Sprintf("Your booking %s was rejected by the host.", payload.BookingID)
		notificationType = enums.NotificationTypeBookingRejected
	}
	notification := &models.Notification{
		UserID:  payload.GuestID,
		Type:    notificationType,
		Title:   title,
		Message: message,
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "guest notified of booking decision")
	return nil
}

func (c *Consumer) notifyGuestOfExpiry(ctx context.Context, payload payloads.BookingExpiredEvent, logCtx context.Context) error {
	if payload.GuestID == uuid.Nil {
		return fmt.Errorf("guest id missing")
	}
	link := fmt.Sprintf("/bookings/%s", payload.BookingID)
	notification := &models.Notification{
		UserID:  payload.GuestID,
		Type:    enums.NotificationTypeBookingExpired,
		Title:   "Booking expired",
		Message: fmt.Sprintf("Your booking %s expired without a host decision.", payload.BookingID),
		Link:    stringPtr(link),
	}
	if err := c.repo.Create(ctx, notification); err != nil {
		return err
	}
	c.logg.Info(logCtx, "guest notified of booking expiry")
	return nil
}

func stringPtr(value string) *string {
	return &value
}
