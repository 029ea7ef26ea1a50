package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scriptsense/chat-gateway/internal/middleware"
	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/internal/notify"
	"github.com/scriptsense/chat-gateway/internal/service"
	"github.com/scriptsense/chat-gateway/pkg/logger"
)

// blockingClient never resolves Chat, keeping the conversation busy.
type blockingClient struct{}

func (c *blockingClient) Chat(ctx context.Context, message string, history []model.HistoryEntry) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func (c *blockingClient) Status(ctx context.Context) (*model.ChatbotStatus, error) {
	return &model.ChatbotStatus{Initialized: true}, nil
}

func withUser(userID string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), middleware.UserIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func newTestRouter(t *testing.T) (http.Handler, *service.ConversationService) {
	t.Helper()
	log := logger.NewNop()
	svc := service.NewConversationService(&blockingClient{}, notify.NewLogNotifier(log), log, service.Options{
		ChatTimeout:   time.Minute,
		StatusTimeout: time.Second,
	})

	messageHandler := NewMessageHandler(svc, log)

	r := chi.NewRouter()
	r.Route("/api/v1/conversations/{id}", func(r chi.Router) {
		r.Get("/messages", messageHandler.List)
		r.Post("/messages", messageHandler.Submit)
	})

	return withUser("user-1", r), svc
}

func TestSubmitEndpoint(t *testing.T) {
	router, svc := newTestRouter(t)
	conv, err := svc.Create(context.Background(), "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	body := `{"text":"What is Brahmi script?"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusAccepted, w.Code)

	var resp model.SubmitMessageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, uint64(1), resp.RequestID)
	require.NotNil(t, resp.Message)
	assert.Equal(t, model.SenderUser, resp.Message.Sender)
	assert.Equal(t, "What is Brahmi script?", resp.Message.Text)
}

func TestSubmitEndpointConflictWhileBusy(t *testing.T) {
	router, svc := newTestRouter(t)
	conv, err := svc.Create(context.Background(), "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	first := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", strings.NewReader(`{"text":"hello"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, first)
	require.Equal(t, http.StatusAccepted, w.Code)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", strings.NewReader(`{"text":"world"}`))
	w = httptest.NewRecorder()
	router.ServeHTTP(w, second)
	assert.Equal(t, http.StatusConflict, w.Code)

	// The rejected submission left no trace in the log.
	list := httptest.NewRequest(http.MethodGet, "/api/v1/conversations/"+conv.ID+"/messages", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, list)
	require.Equal(t, http.StatusOK, w.Code)

	var resp model.ListMessagesResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Len(t, resp.Messages, 2) // welcome + "hello"
	assert.True(t, resp.Busy)
}

func TestSubmitEndpointValidation(t *testing.T) {
	router, svc := newTestRouter(t)
	conv, err := svc.Create(context.Background(), "user-1", &model.CreateConversationRequest{})
	require.NoError(t, err)

	t.Run("empty text", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/"+conv.ID+"/messages", strings.NewReader(`{"text":""}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		var envelope map[string]string
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &envelope))
		assert.NotEmpty(t, envelope["error"])
	})

	t.Run("invalid conversation id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/not-a-uuid/messages", strings.NewReader(`{"text":"hello"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("unknown conversation", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/conversations/0190c3a4-0000-7000-8000-000000000000/messages", strings.NewReader(`{"text":"hello"}`))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
