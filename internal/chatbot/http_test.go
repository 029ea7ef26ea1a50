package chatbot

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptsense/chat-gateway/internal/model"
)

func TestChat(t *testing.T) {
	var got chatRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chatbot/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		json.NewEncoder(w).Encode(map[string]string{"answer": "Brahmi is an ancient script."})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)

	history := []model.HistoryEntry{
		{Role: model.RoleUser, Text: "What is Brahmi script?"},
	}
	answer, err := client.Chat(context.Background(), "What is Brahmi script?", history)
	require.NoError(t, err)
	assert.Equal(t, "Brahmi is an ancient script.", answer)

	assert.Equal(t, "What is Brahmi script?", got.Message)
	require.Len(t, got.ConversationHistory, 1)
	assert.Equal(t, model.RoleUser, got.ConversationHistory[0].Role)
}

func TestChatNilHistorySentAsEmptyArray(t *testing.T) {
	var raw map[string]json.RawMessage
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		json.NewEncoder(w).Encode(map[string]string{"answer": "ok"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Chat(context.Background(), "hello", nil)
	require.NoError(t, err)

	assert.JSONEq(t, "[]", string(raw["conversation_history"]))
}

func TestChatErrorDetail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]string{"detail": "Message cannot be empty"})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Chat(context.Background(), "", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Message cannot be empty")
}

func TestChatTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // connection refused

	client := NewHTTPClient(server.URL, time.Second)
	_, err := client.Chat(context.Background(), "hello", nil)
	require.Error(t, err)
}

func TestStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chatbot/status", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]bool{"initialized": true})
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	status, err := client.Status(context.Background())
	require.NoError(t, err)
	assert.True(t, status.Initialized)
}

func TestStatusNonOK(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewHTTPClient(server.URL, 5*time.Second)
	_, err := client.Status(context.Background())
	require.Error(t, err)
}
