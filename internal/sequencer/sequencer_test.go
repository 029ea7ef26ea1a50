package sequencer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/pkg/logger"
)

type chatResult struct {
	answer string
	err    error
}

// gatedClient blocks each Chat call until the test resolves it, so tests can
// control completion order precisely.
type gatedClient struct {
	mu      sync.Mutex
	pending []chan chatResult
}

func (c *gatedClient) Chat(ctx context.Context, message string, history []model.HistoryEntry) (string, error) {
	ch := make(chan chatResult, 1)
	c.mu.Lock()
	c.pending = append(c.pending, ch)
	c.mu.Unlock()

	r := <-ch
	return r.answer, r.err
}

func (c *gatedClient) Status(ctx context.Context) (*model.ChatbotStatus, error) {
	return &model.ChatbotStatus{Initialized: true}, nil
}

func (c *gatedClient) calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *gatedClient) resolve(i int, answer string, err error) {
	c.mu.Lock()
	ch := c.pending[i]
	c.mu.Unlock()
	ch <- chatResult{answer: answer, err: err}
}

func waitForCalls(t *testing.T, client *gatedClient, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return client.calls() >= n },
		time.Second, 5*time.Millisecond)
}

// callbacks records completion deliveries.
type callbacks struct {
	mu        sync.Mutex
	successes []string
	failures  []error
}

func (cb *callbacks) onSuccess(answer string) {
	cb.mu.Lock()
	cb.successes = append(cb.successes, answer)
	cb.mu.Unlock()
}

func (cb *callbacks) onFailure(err error) {
	cb.mu.Lock()
	cb.failures = append(cb.failures, err)
	cb.mu.Unlock()
}

func (cb *callbacks) counts() (int, int) {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return len(cb.successes), len(cb.failures)
}

func TestIssueAllocatesIncreasingIDs(t *testing.T) {
	client := &gatedClient{}
	seq := New(client, time.Minute, logger.NewNop())
	cb := &callbacks{}

	id1 := seq.Issue("first", nil, cb.onSuccess, cb.onFailure)
	id2 := seq.Issue("second", nil, cb.onSuccess, cb.onFailure)

	assert.Equal(t, uint64(1), id1)
	assert.Equal(t, uint64(2), id2)
	assert.Equal(t, uint64(2), seq.Latest())

	waitForCalls(t, client, 2)
	client.resolve(0, "a", nil)
	client.resolve(1, "b", nil)
}

func TestCurrentResultDelivered(t *testing.T) {
	client := &gatedClient{}
	seq := New(client, time.Minute, logger.NewNop())
	cb := &callbacks{}

	seq.Issue("question", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 1)
	client.resolve(0, "the answer", nil)

	require.Eventually(t, func() bool {
		s, _ := cb.counts()
		return s == 1
	}, time.Second, 5*time.Millisecond)

	_, failures := cb.counts()
	assert.Zero(t, failures)
	assert.Equal(t, "the answer", cb.successes[0])
}

func TestStaleSuccessDropped(t *testing.T) {
	client := &gatedClient{}
	seq := New(client, time.Minute, logger.NewNop())
	cb := &callbacks{}

	seq.Issue("first", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 1)

	// A newer request supersedes the first before it resolves.
	seq.Issue("second", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 2)

	// The first request resolves after being superseded: its result must be
	// discarded regardless of arrival order.
	client.resolve(0, "stale answer", nil)
	client.resolve(1, "current answer", nil)

	require.Eventually(t, func() bool {
		s, _ := cb.counts()
		return s == 1
	}, time.Second, 5*time.Millisecond)

	// Give the stale completion a chance to misbehave before asserting.
	time.Sleep(50 * time.Millisecond)

	cb.mu.Lock()
	defer cb.mu.Unlock()
	require.Len(t, cb.successes, 1)
	assert.Equal(t, "current answer", cb.successes[0])
	assert.Empty(t, cb.failures)
}

func TestStaleFailureDropped(t *testing.T) {
	client := &gatedClient{}
	seq := New(client, time.Minute, logger.NewNop())
	cb := &callbacks{}

	seq.Issue("first", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 1)
	seq.Issue("second", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 2)

	client.resolve(0, "", errors.New("network down"))
	client.resolve(1, "current answer", nil)

	require.Eventually(t, func() bool {
		s, _ := cb.counts()
		return s == 1
	}, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)

	_, failures := cb.counts()
	assert.Zero(t, failures)
}

func TestFailureInvokesOnFailureOnly(t *testing.T) {
	client := &gatedClient{}
	seq := New(client, time.Minute, logger.NewNop())
	cb := &callbacks{}

	seq.Issue("question", nil, cb.onSuccess, cb.onFailure)
	waitForCalls(t, client, 1)
	client.resolve(0, "", errors.New("boom"))

	require.Eventually(t, func() bool {
		_, f := cb.counts()
		return f == 1
	}, time.Second, 5*time.Millisecond)

	successes, _ := cb.counts()
	assert.Zero(t, successes)
}
