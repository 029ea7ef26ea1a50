package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/scriptsense/chat-gateway/internal/service"
	"github.com/scriptsense/chat-gateway/pkg/logger"
)

// StatusHandler proxies the chatbot backend status.
type StatusHandler struct {
	service *service.ConversationService
	logger  *logger.Logger
}

// NewStatusHandler creates a new status handler.
func NewStatusHandler(svc *service.ConversationService, log *logger.Logger) *StatusHandler {
	return &StatusHandler{
		service: svc,
		logger:  log,
	}
}

// Get handles GET /api/v1/chatbot/status
func (h *StatusHandler) Get(w http.ResponseWriter, r *http.Request) {
	status, err := h.service.Status(r.Context())
	if err != nil {
		h.logger.Warn("failed to fetch chatbot status", zap.Error(err))
		writeError(w, http.StatusBadGateway, "failed to fetch chatbot status")
		return
	}

	writeJSON(w, http.StatusOK, status)
}
