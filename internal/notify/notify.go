// Package notify delivers transient user-facing notifications, the gateway's
// equivalent of a toast in the browser client.
package notify

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scriptsense/chat-gateway/internal/model"
	natsclient "github.com/scriptsense/chat-gateway/internal/nats"
	"github.com/scriptsense/chat-gateway/pkg/logger"
)

// Notifier emits transient user-visible notifications for a conversation.
type Notifier interface {
	Info(conversationID, text string)
	Error(conversationID, text string)
}

// SubjectPrefix is the prefix for notification subjects.
const SubjectPrefix = "chat.notify"

// NATSNotifier publishes notifications to NATS, one subject per conversation
// and level, for delivery to connected frontends.
type NATSNotifier struct {
	client *natsclient.Client
	logger *logger.Logger
}

// NewNATSNotifier creates a NATS-backed notifier.
func NewNATSNotifier(client *natsclient.Client, log *logger.Logger) *NATSNotifier {
	return &NATSNotifier{client: client, logger: log}
}

// Info publishes an informational notification.
func (n *NATSNotifier) Info(conversationID, text string) {
	n.publish(conversationID, model.NotificationInfo, text)
}

// Error publishes an error notification.
func (n *NATSNotifier) Error(conversationID, text string) {
	n.publish(conversationID, model.NotificationError, text)
}

func (n *NATSNotifier) publish(conversationID string, level model.NotificationLevel, text string) {
	notification := model.Notification{
		ID:             uuid.Must(uuid.NewV7()).String(),
		ConversationID: conversationID,
		Level:          level,
		Text:           text,
		CreatedAt:      time.Now(),
	}

	data, err := json.Marshal(notification)
	if err != nil {
		n.logger.Error("failed to marshal notification", zap.Error(err))
		return
	}

	subject := fmt.Sprintf("%s.%s.%s", SubjectPrefix, conversationID, level)
	if err := n.client.Publish(subject, data); err != nil {
		// Notification loss is tolerable; the chat bubble still carries the
		// failure text.
		n.logger.Warn("failed to publish notification",
			zap.String("conversation_id", conversationID),
			zap.Error(err),
		)
	}
}

// LogNotifier writes notifications to the structured log. Used when NATS is
// not configured.
type LogNotifier struct {
	logger *logger.Logger
}

// NewLogNotifier creates a log-only notifier.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

// Info logs an informational notification.
func (n *LogNotifier) Info(conversationID, text string) {
	n.logger.Info("notification",
		zap.String("conversation_id", conversationID),
		zap.String("level", string(model.NotificationInfo)),
		zap.String("text", text),
	)
}

// Error logs an error notification.
func (n *LogNotifier) Error(conversationID, text string) {
	n.logger.Warn("notification",
		zap.String("conversation_id", conversationID),
		zap.String("level", string(model.NotificationError)),
		zap.String("text", text),
	)
}
