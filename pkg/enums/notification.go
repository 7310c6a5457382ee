package enums

import "fmt"

// NotificationType maps to the notification_type enum in Postgres.
type NotificationType string

const (
	NotificationTypeSystemAnnouncement NotificationType = "system_announcement"
	NotificationTypeBookingRequested   NotificationType = "booking_requested"
	NotificationTypeBookingConfirmed   NotificationType = "booking_confirmed"
	NotificationTypeBookingRejected    NotificationType = "booking_rejected"
	NotificationTypeBookingExpired     NotificationType = "booking_expired"
	NotificationTypeReviewPosted       NotificationType = "review_posted"
	NotificationTypeSecurityAlert      NotificationType = "security_alert"
)

var validNotificationTypes = []NotificationType{
	NotificationTypeSystemAnnouncement,
	NotificationTypeBookingRequested,
	NotificationTypeBookingConfirmed,
	NotificationTypeBookingRejected,
	NotificationTypeBookingExpired,
	NotificationTypeReviewPosted,
	NotificationTypeSecurityAlert,
}

// IsValid checks whether the given type matches the canonical enum.
func (n NotificationType) IsValid() bool {
	for _, candidate := range validNotificationTypes {
		if candidate == n {
			return true
		}
	}
	return false
}

// ParseNotificationType converts raw strings into NotificationType.
func ParseNotificationType(value string) (NotificationType, error) {
	for _, candidate := range validNotificationTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid notification type %q", value)
}
