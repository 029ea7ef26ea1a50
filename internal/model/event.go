package model

import (
	"time"
)

// NotificationLevel represents the severity of a user-facing notification.
type NotificationLevel string

const (
	NotificationInfo  NotificationLevel = "info"
	NotificationError NotificationLevel = "error"
)

// Notification is a transient user-visible event emitted on the notification
// side-channel, the server-side equivalent of a toast.
type Notification struct {
	ID             string            `json:"id"`
	ConversationID string            `json:"conversation_id"`
	Level          NotificationLevel `json:"level"`
	Text           string            `json:"text"`
	CreatedAt      time.Time         `json:"created_at"`
}
