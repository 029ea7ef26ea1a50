package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/scriptsense/chat-gateway/internal/chatbot"
	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/internal/notify"
	"github.com/scriptsense/chat-gateway/internal/sequencer"
	"github.com/scriptsense/chat-gateway/pkg/logger"
	"github.com/scriptsense/chat-gateway/pkg/metrics"
)

// Options tunes conversation behavior.
type Options struct {
	// ChatTimeout bounds one round trip to the chatbot backend.
	ChatTimeout time.Duration
	// StatusTimeout bounds the status poll at conversation creation.
	StatusTimeout time.Duration
	// DedupWindow is the tolerance of the duplicate completion guard.
	DedupWindow time.Duration
}

// ConversationService owns all active conversations. Each conversation gets
// its own controller and sequencer; nothing is shared process-wide.
type ConversationService struct {
	client   chatbot.Client
	notifier notify.Notifier
	logger   *logger.Logger
	opts     Options

	mu            sync.RWMutex
	conversations map[string]*conversation
}

type conversation struct {
	meta       *model.Conversation // guarded by ConversationService.mu
	controller *Controller
}

// NewConversationService creates a conversation service.
func NewConversationService(client chatbot.Client, notifier notify.Notifier, log *logger.Logger, opts Options) *ConversationService {
	if opts.ChatTimeout == 0 {
		opts.ChatTimeout = 60 * time.Second
	}
	if opts.StatusTimeout == 0 {
		opts.StatusTimeout = 5 * time.Second
	}
	if opts.DedupWindow == 0 {
		opts.DedupWindow = time.Second
	}
	return &ConversationService{
		client:        client,
		notifier:      notifier,
		logger:        log,
		opts:          opts,
		conversations: make(map[string]*conversation),
	}
}

// Create starts a new conversation seeded with the welcome message. The
// chatbot backend status is polled once; an unreachable status endpoint is
// logged, not fatal.
func (s *ConversationService) Create(ctx context.Context, userID string, req *model.CreateConversationRequest) (*model.Conversation, error) {
	now := time.Now()
	id := uuid.Must(uuid.NewV7()).String()

	initialized := false
	statusCtx, cancel := context.WithTimeout(ctx, s.opts.StatusTimeout)
	defer cancel()
	if status, err := s.client.Status(statusCtx); err != nil {
		s.logger.Warn("failed to check chatbot status",
			zap.String("conversation_id", id),
			zap.Error(err),
		)
	} else {
		initialized = status.Initialized
	}
	if !initialized {
		s.notifier.Info(id, InitializingNotificationText)
	}

	seq := sequencer.New(s.client, s.opts.ChatTimeout, s.logger)
	ctrl := NewController(id, seq, s.notifier, s.logger, s.opts.DedupWindow)

	conv := &conversation{
		meta: &model.Conversation{
			ID:          id,
			UserID:      userID,
			Title:       req.Title,
			CreatedAt:   now,
			UpdatedAt:   now,
			Initialized: initialized,
		},
		controller: ctrl,
	}

	s.mu.Lock()
	s.conversations[id] = conv
	snap := snapshot(conv)
	s.mu.Unlock()

	metrics.ConversationsTotal.Inc()
	s.logger.Info("conversation created",
		zap.String("conversation_id", id),
		zap.String("user_id", userID),
		zap.Bool("chatbot_initialized", initialized),
	)

	return snap, nil
}

// Get retrieves conversation metadata.
func (s *ConversationService) Get(userID, conversationID string) (*model.Conversation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conv, err := s.lookupLocked(userID, conversationID)
	if err != nil {
		return nil, err
	}
	return snapshot(conv), nil
}

// List retrieves conversations for a user, newest first.
func (s *ConversationService) List(userID string, limit, offset int) (*model.ListConversationsResponse, error) {
	s.mu.RLock()
	var convs []model.Conversation
	for _, conv := range s.conversations {
		if conv.meta.UserID == userID && !conv.meta.Deleted {
			convs = append(convs, *snapshot(conv))
		}
	}
	s.mu.RUnlock()

	sort.Slice(convs, func(i, j int) bool {
		return convs[i].CreatedAt.After(convs[j].CreatedAt)
	})

	total := len(convs)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	return &model.ListConversationsResponse{
		Conversations: convs[start:end],
		Total:         total,
		HasMore:       end < total,
	}, nil
}

// Delete tears down a conversation. The log is in-memory only, so this ends
// the session; there is no persistence to reconcile.
func (s *ConversationService) Delete(userID, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	conv, err := s.lookupLocked(userID, conversationID)
	if err != nil {
		return err
	}

	conv.meta.Deleted = true
	conv.meta.UpdatedAt = time.Now()

	return nil
}

// Submit routes a typed submission or clicked suggestion to the conversation
// controller. Returns ErrBusy while a request is in flight and ErrEmptyInput
// for blank text.
func (s *ConversationService) Submit(userID, conversationID, text string) (*model.Message, uint64, error) {
	s.mu.RLock()
	conv, err := s.lookupLocked(userID, conversationID)
	s.mu.RUnlock()
	if err != nil {
		return nil, 0, err
	}

	msg, requestID, err := conv.controller.Submit(text)
	if err != nil {
		return nil, 0, err
	}

	s.mu.Lock()
	conv.meta.UpdatedAt = time.Now()
	s.mu.Unlock()

	return msg, requestID, nil
}

// Messages returns the conversation log plus the in-flight flag.
func (s *ConversationService) Messages(userID, conversationID string) (*model.ListMessagesResponse, error) {
	s.mu.RLock()
	conv, err := s.lookupLocked(userID, conversationID)
	s.mu.RUnlock()
	if err != nil {
		return nil, err
	}

	return &model.ListMessagesResponse{
		Messages: conv.controller.Messages(),
		Busy:     conv.controller.Busy(),
	}, nil
}

// Status proxies the chatbot backend status.
func (s *ConversationService) Status(ctx context.Context) (*model.ChatbotStatus, error) {
	statusCtx, cancel := context.WithTimeout(ctx, s.opts.StatusTimeout)
	defer cancel()
	return s.client.Status(statusCtx)
}

// lookupLocked resolves a conversation for a user. Callers hold s.mu; meta
// fields are written under the full lock, so checks must not outlive it.
func (s *ConversationService) lookupLocked(userID, conversationID string) (*conversation, error) {
	conv, exists := s.conversations[conversationID]
	if !exists || conv.meta.UserID != userID || conv.meta.Deleted {
		return nil, ErrNotFound
	}
	return conv, nil
}

// snapshot copies conversation metadata. Callers hold s.mu.
func snapshot(conv *conversation) *model.Conversation {
	meta := *conv.meta
	meta.MessageCount = conv.controller.log.Len()
	return &meta
}
