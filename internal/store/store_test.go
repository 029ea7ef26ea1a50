package store

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptsense/chat-gateway/internal/model"
)

func welcomeMessage() model.Message {
	return model.Message{
		ID:        "welcome",
		Text:      WelcomeText,
		Sender:    model.SenderBot,
		Timestamp: time.Now(),
	}
}

func TestAppendPreservesOrder(t *testing.T) {
	log := NewLog()

	for i := 0; i < 5; i++ {
		log.Append(model.Message{
			ID:     fmt.Sprintf("msg-%d", i),
			Text:   fmt.Sprintf("message %d", i),
			Sender: model.SenderUser,
		})
	}

	all := log.All()
	require.Len(t, all, 5)
	for i, msg := range all {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), msg.ID)
	}
}

func TestAppendNeverRejects(t *testing.T) {
	log := NewLog()

	// Empty bot fallback text is permitted.
	log.Append(model.Message{ID: "empty", Text: "", Sender: model.SenderBot})

	assert.Equal(t, 1, log.Len())
}

func TestHistoryExcludesWelcomeOnly(t *testing.T) {
	log := NewLog()
	log.Append(welcomeMessage())

	// A log seeded only with the welcome message projects to empty history.
	assert.Empty(t, log.History())

	log.Append(model.Message{ID: "u1", Text: "What is Brahmi script?", Sender: model.SenderUser})
	log.Append(model.Message{ID: "b1", Text: "Brahmi is an ancient script.", Sender: model.SenderBot})

	history := log.History()
	require.Len(t, history, 2)
	assert.Equal(t, model.RoleUser, history[0].Role)
	assert.Equal(t, "What is Brahmi script?", history[0].Text)
	assert.Equal(t, model.RoleAssistant, history[1].Role)
	assert.Equal(t, "Brahmi is an ancient script.", history[1].Text)
}

func TestHistoryKeepsUserMessageQuotingWelcome(t *testing.T) {
	log := NewLog()
	log.Append(welcomeMessage())
	log.Append(model.Message{ID: "u1", Text: WelcomeText, Sender: model.SenderUser})

	// Only bot messages carrying the sentinel are filtered.
	history := log.History()
	require.Len(t, history, 1)
	assert.Equal(t, model.RoleUser, history[0].Role)
}

func TestAllReturnsCopy(t *testing.T) {
	log := NewLog()
	log.Append(model.Message{ID: "u1", Text: "hello", Sender: model.SenderUser})

	all := log.All()
	all[0].Text = "mutated"

	assert.Equal(t, "hello", log.All()[0].Text)
}

func TestHasNearDuplicate(t *testing.T) {
	now := time.Now()
	log := NewLog()
	log.Append(model.Message{
		ID:        "b1",
		Text:      "the answer",
		Sender:    model.SenderBot,
		Timestamp: now,
	})

	t.Run("same id", func(t *testing.T) {
		dup := model.Message{ID: "b1", Text: "other", Sender: model.SenderBot, Timestamp: now.Add(time.Hour)}
		assert.True(t, log.HasNearDuplicate(dup, time.Second))
	})

	t.Run("same text within window", func(t *testing.T) {
		dup := model.Message{ID: "b2", Text: "the answer", Sender: model.SenderBot, Timestamp: now.Add(500 * time.Millisecond)}
		assert.True(t, log.HasNearDuplicate(dup, time.Second))
	})

	t.Run("same text outside window", func(t *testing.T) {
		// The window is an approximate guard, not an exact contract; assert
		// well clear of the boundary.
		late := model.Message{ID: "b3", Text: "the answer", Sender: model.SenderBot, Timestamp: now.Add(10 * time.Second)}
		assert.False(t, log.HasNearDuplicate(late, time.Second))
	})

	t.Run("different sender", func(t *testing.T) {
		user := model.Message{ID: "u1", Text: "the answer", Sender: model.SenderUser, Timestamp: now}
		assert.False(t, log.HasNearDuplicate(user, time.Second))
	})
}
