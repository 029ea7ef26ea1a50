// Package chatbot provides the client for the remote chat backend.
package chatbot

import (
	"context"

	"github.com/scriptsense/chat-gateway/internal/model"
)

// Client is the interface to the remote chat collaborator.
type Client interface {
	// Chat sends a question plus prior conversation history and returns the
	// answer text.
	Chat(ctx context.Context, message string, history []model.HistoryEntry) (string, error)

	// Status reports whether the backend's knowledge base is initialized.
	Status(ctx context.Context) (*model.ChatbotStatus, error)
}
