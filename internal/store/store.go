// Package store provides the in-memory, append-only conversation log.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/scriptsense/chat-gateway/internal/model"
)

// WelcomeSentinel identifies the seeded welcome message. History projection
// excludes any bot message containing this text.
const WelcomeSentinel = "Hello! I'm your AI assistant"

// WelcomeText is the full text of the seeded welcome message.
const WelcomeText = "Hello! I'm your AI assistant. I can help you with questions about Tamil OCR, Brahmi scripts, and related topics based on the knowledge base. How can I help you today?"

// Log holds the ordered sequence of messages exchanged in one conversation.
// Appends never reorder and messages are never mutated after insertion, so
// sequence order equals chronological exchange order.
type Log struct {
	mu       sync.RWMutex
	messages []model.Message
}

// NewLog creates an empty conversation log.
func NewLog() *Log {
	return &Log{}
}

// Append adds a message to the end of the log. It never rejects based on
// content; empty bot fallback text is permitted.
func (l *Log) Append(msg model.Message) {
	l.mu.Lock()
	l.messages = append(l.messages, msg)
	l.mu.Unlock()
}

// All returns a copy of the full ordered message sequence.
func (l *Log) All() []model.Message {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]model.Message, len(l.messages))
	copy(out, l.messages)
	return out
}

// Len returns the number of messages in the log.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.messages)
}

// History projects the log into the wire format sent to the chatbot backend,
// excluding the seeded welcome message and preserving order.
func (l *Log) History() []model.HistoryEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()

	entries := make([]model.HistoryEntry, 0, len(l.messages))
	for _, msg := range l.messages {
		if msg.Sender == model.SenderBot && strings.Contains(msg.Text, WelcomeSentinel) {
			continue
		}
		role := model.RoleUser
		if msg.Sender == model.SenderBot {
			role = model.RoleAssistant
		}
		entries = append(entries, model.HistoryEntry{Role: role, Text: msg.Text})
	}
	return entries
}

// HasNearDuplicate reports whether the log already holds a message with the
// given id, or one from the same sender with identical text created within
// tolerance of ts. Safety net against double-fired completion handlers.
func (l *Log) HasNearDuplicate(msg model.Message, tolerance time.Duration) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, m := range l.messages {
		if m.ID == msg.ID {
			return true
		}
		if m.Sender == msg.Sender && m.Text == msg.Text {
			delta := m.Timestamp.Sub(msg.Timestamp)
			if delta < 0 {
				delta = -delta
			}
			if delta < tolerance {
				return true
			}
		}
	}
	return false
}
