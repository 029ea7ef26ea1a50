package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/scriptsense/chat-gateway/internal/middleware"
	"github.com/scriptsense/chat-gateway/internal/model"
	"github.com/scriptsense/chat-gateway/internal/service"
	"github.com/scriptsense/chat-gateway/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(svc *service.ConversationService, log *logger.Logger) *MessageHandler {
	return &MessageHandler{
		service: svc,
		logger:  log,
	}
}

// List handles GET /api/v1/conversations/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Messages(userID, conversationID)
	if err != nil {
		writeError(w, http.StatusNotFound, "conversation not found")
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

// Submit handles POST /api/v1/conversations/{id}/messages. The user message
// is admitted synchronously; the bot reply arrives asynchronously and is read
// via List. A submission while a request is in flight gets 409 and is not
// queued.
func (h *MessageHandler) Submit(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())
	conversationID := chi.URLParam(r, "id")

	if err := middleware.ValidateConversationID(conversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SubmitMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageText(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msg, requestID, err := h.service.Submit(userID, conversationID, req.Text)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrNotFound):
			writeError(w, http.StatusNotFound, "conversation not found")
		case errors.Is(err, service.ErrEmptyInput):
			writeError(w, http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrBusy):
			writeError(w, http.StatusConflict, err.Error())
		default:
			h.logger.Error("failed to submit message", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "failed to submit message")
		}
		return
	}

	writeJSON(w, http.StatusAccepted, &model.SubmitMessageResponse{
		Message:   msg,
		RequestID: requestID,
	})
}
