// Package model defines data structures for the chat gateway.
package model

import (
	"time"
)

// Sender identifies which side of the conversation produced a message.
type Sender string

const (
	SenderUser Sender = "user"
	SenderBot  Sender = "bot"
)

// HistoryRole is the role label used on the wire to the chatbot backend.
type HistoryRole string

const (
	RoleUser      HistoryRole = "user"
	RoleAssistant HistoryRole = "assistant"
)

// Message is one exchanged utterance. Messages are append-only and never
// mutated after insertion into a conversation log.
type Message struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Sender    Sender    `json:"sender"`
	Timestamp time.Time `json:"timestamp"`

	// SuggestedQuestions holds up to three follow-up prompts; bot messages only.
	SuggestedQuestions []string `json:"suggested_questions,omitempty"`

	// IsError marks a synthesized failure reply.
	IsError bool `json:"is_error,omitempty"`
}

// HistoryEntry is the projection of a Message sent to the chatbot backend.
type HistoryEntry struct {
	Role HistoryRole `json:"role"`
	Text string      `json:"text"`
}

// SubmitMessageRequest is the request to submit a user message or a clicked
// suggestion to a conversation.
type SubmitMessageRequest struct {
	Text string `json:"text"`
}

// SubmitMessageResponse is returned once the user message has been admitted.
// The bot reply arrives asynchronously and is read via the message listing.
type SubmitMessageResponse struct {
	Message   *Message `json:"message"`
	RequestID uint64   `json:"request_id"`
}

// ListMessagesResponse is the response for listing a conversation's messages.
type ListMessagesResponse struct {
	Messages []Message `json:"messages"`
	Busy     bool      `json:"busy"`
}
