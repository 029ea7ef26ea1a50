// Package service provides business logic for the chat gateway.
package service

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/internal/notify"
	"github.com/scriptsense/chat-gateway/internal/sequencer"
	"github.com/scriptsense/chat-gateway/internal/store"
	"github.com/scriptsense/chat-gateway/internal/suggest"
	"github.com/scriptsense/chat-gateway/pkg/logger"
	"github.com/scriptsense/chat-gateway/pkg/metrics"
)

// State is the controller state of a conversation.
type State string

const (
	// StateIdle means the conversation can accept a submission.
	StateIdle State = "idle"
	// StateAwaitingResponse means a request is in flight; submissions are
	// rejected, not queued.
	StateAwaitingResponse State = "awaiting_response"
)

var (
	// ErrEmptyInput is returned for blank or whitespace-only submissions.
	ErrEmptyInput = errors.New("message text cannot be empty")
	// ErrBusy is returned while a request is already in flight.
	ErrBusy = errors.New("a request is already in flight for this conversation")
	// ErrNotFound is returned when a conversation does not exist.
	ErrNotFound = errors.New("conversation not found")
)

// ErrorReplyText is the fixed text of a synthesized failure reply.
const ErrorReplyText = "Sorry, I encountered an error. Please try again later."

// FailureNotificationText is the fixed text of the failure notification.
const FailureNotificationText = "Failed to get response from chatbot"

// InitializingNotificationText is emitted when the chatbot backend's
// knowledge base is not yet ready at conversation creation.
const InitializingNotificationText = "Initializing knowledge base... This may take a moment."

// Controller orchestrates submissions and completions for one conversation.
// All controller state is owned by this instance; the request id counter
// lives in the sequencer, the message log in the store. Appends happen only
// here, which makes completion delivery idempotent by construction; the
// near-duplicate check remains as a safety net.
type Controller struct {
	conversationID string
	log            *store.Log
	seq            *sequencer.Sequencer
	notifier       notify.Notifier
	logger         *logger.Logger
	dedupWindow    time.Duration

	mu    sync.Mutex
	state State
}

// NewController creates a controller in the Idle state with the welcome
// message already seeded.
func NewController(
	conversationID string,
	seq *sequencer.Sequencer,
	notifier notify.Notifier,
	log *logger.Logger,
	dedupWindow time.Duration,
) *Controller {
	c := &Controller{
		conversationID: conversationID,
		log:            store.NewLog(),
		seq:            seq,
		notifier:       notifier,
		logger:         log,
		dedupWindow:    dedupWindow,
		state:          StateIdle,
	}

	c.log.Append(model.Message{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Text:               store.WelcomeText,
		Sender:             model.SenderBot,
		Timestamp:          time.Now(),
		SuggestedQuestions: suggest.WelcomeQuestions(),
	})

	return c
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Busy reports whether a request is in flight.
func (c *Controller) Busy() bool {
	return c.State() == StateAwaitingResponse
}

// Messages returns the full ordered message log.
func (c *Controller) Messages() []model.Message {
	return c.log.All()
}

// Submit admits a typed submission or a clicked suggestion. The user message
// is appended and the history computed before the request is issued, so no
// deferral is needed to let state settle. While a request is in flight the
// submission is rejected outright with ErrBusy; there is no queueing.
func (c *Controller) Submit(text string) (*model.Message, uint64, error) {
	if strings.TrimSpace(text) == "" {
		metrics.SubmissionsRejected.WithLabelValues("empty").Inc()
		return nil, 0, ErrEmptyInput
	}

	c.mu.Lock()
	if c.state != StateIdle {
		c.mu.Unlock()
		metrics.SubmissionsRejected.WithLabelValues("busy").Inc()
		return nil, 0, ErrBusy
	}

	userMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Text:      text,
		Sender:    model.SenderUser,
		Timestamp: time.Now(),
	}
	c.log.Append(userMsg)
	metrics.MessagesTotal.WithLabelValues(string(model.SenderUser)).Inc()

	// History includes the just-appended user message.
	history := c.log.History()
	c.state = StateAwaitingResponse
	c.mu.Unlock()

	id := c.seq.Issue(text, history,
		func(answer string) { c.onSuccess(text, answer) },
		func(err error) { c.onFailure(err) },
	)

	return &userMsg, id, nil
}

func (c *Controller) onSuccess(question, answer string) {
	botMsg := model.Message{
		ID:                 uuid.Must(uuid.NewV7()).String(),
		Text:               answer,
		Sender:             model.SenderBot,
		Timestamp:          time.Now(),
		SuggestedQuestions: suggest.Generate(answer, question),
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.appendCompletion(botMsg)
	c.state = StateIdle
}

func (c *Controller) onFailure(err error) {
	c.logger.Warn("chat request failed",
		zap.String("conversation_id", c.conversationID),
		zap.Error(err),
	)

	errMsg := model.Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Text:      ErrorReplyText,
		Sender:    model.SenderBot,
		Timestamp: time.Now(),
		IsError:   true,
	}

	c.mu.Lock()
	c.appendCompletion(errMsg)
	c.state = StateIdle
	c.mu.Unlock()

	c.notifier.Error(c.conversationID, FailureNotificationText)
}

// appendCompletion appends a bot reply unless an identical one already landed
// within the duplicate window. Callers hold c.mu.
func (c *Controller) appendCompletion(msg model.Message) {
	if c.log.HasNearDuplicate(msg, c.dedupWindow) {
		metrics.DuplicatesSuppressed.Inc()
		c.logger.Debug("suppressed duplicate completion",
			zap.String("conversation_id", c.conversationID),
			zap.String("message_id", msg.ID),
		)
		return
	}
	c.log.Append(msg)
	metrics.MessagesTotal.WithLabelValues(string(model.SenderBot)).Inc()
}
