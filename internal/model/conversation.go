package model

import (
	"time"
)

// Conversation represents a conversation session with the chatbot.
type Conversation struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Initialized reports whether the chatbot backend's knowledge base was
	// ready when the conversation was created.
	Initialized bool `json:"initialized"`

	MessageCount int  `json:"message_count,omitempty"`
	Deleted      bool `json:"deleted,omitempty"`
}

// CreateConversationRequest is the request to create a new conversation.
type CreateConversationRequest struct {
	Title string `json:"title"`
}

// ListConversationsResponse is the response for listing conversations.
type ListConversationsResponse struct {
	Conversations []Conversation `json:"conversations"`
	Total         int            `json:"total"`
	HasMore       bool           `json:"has_more"`
}

// ChatbotStatus is the status reported by the chatbot backend.
type ChatbotStatus struct {
	Initialized bool `json:"initialized"`
}
