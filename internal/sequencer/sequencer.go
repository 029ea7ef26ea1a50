// Package sequencer issues outbound chat requests and admits only the result
// of the most recently issued one. There is no true cancellation of a
// superseded network call; its effects are suppressed by request-id
// comparison, which substitutes for mutual exclusion across the asynchronous
// boundary.
package sequencer

import (
	"context"
	"sync"
	"time"

	"github.com/scriptsense/chat-gateway/internal/chatbot"
	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/pkg/logger"
	"github.com/scriptsense/chat-gateway/pkg/metrics"

	"go.uber.org/zap"
)

// Sequencer tags each outbound request with a strictly increasing id and
// drops any completion whose id is no longer the latest issued. One Sequencer
// belongs to exactly one conversation; the id counter is owned state, never
// shared process-wide.
type Sequencer struct {
	client  chatbot.Client
	timeout time.Duration
	logger  *logger.Logger

	mu     sync.Mutex
	latest uint64
}

// New creates a sequencer for one conversation.
func New(client chatbot.Client, timeout time.Duration, log *logger.Logger) *Sequencer {
	return &Sequencer{
		client:  client,
		timeout: timeout,
		logger:  log,
	}
}

// Latest returns the most recently issued request id.
func (s *Sequencer) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.latest
}

// Issue allocates the next request id, starts the asynchronous call to the
// chat backend, and returns the id immediately. When the call completes,
// exactly one of onSuccess or onFailure is invoked, and only if no newer
// request has been issued in the meantime; stale completions are discarded
// silently. Mutual exclusion of submissions is the caller's job; Issue only
// guarantees latest-wins admission.
func (s *Sequencer) Issue(
	question string,
	history []model.HistoryEntry,
	onSuccess func(answer string),
	onFailure func(err error),
) uint64 {
	s.mu.Lock()
	s.latest++
	id := s.latest
	s.mu.Unlock()

	go s.run(id, question, history, onSuccess, onFailure)

	return id
}

func (s *Sequencer) run(
	id uint64,
	question string,
	history []model.HistoryEntry,
	onSuccess func(answer string),
	onFailure func(err error),
) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	answer, err := s.client.Chat(ctx, question, history)

	s.mu.Lock()
	stale := id != s.latest
	s.mu.Unlock()

	if stale {
		// Expected concurrency outcome, not a failure.
		metrics.StaleResultsDropped.Inc()
		s.logger.Debug("dropped stale chat result",
			zap.Uint64("request_id", id),
			zap.Uint64("latest_id", s.Latest()),
		)
		return
	}

	if err != nil {
		metrics.RecordChatRequest("error", time.Since(start).Seconds())
		onFailure(err)
		return
	}

	metrics.RecordChatRequest("success", time.Since(start).Seconds())
	onSuccess(answer)
}
