package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/services"
)

type ChatHandler struct {
	log  *logger.Logger
	chat services.ChatService
}

func NewChatHandler(baseLog *logger.Logger, chat services.ChatService) *ChatHandler {
	return &ChatHandler{log: baseLog.With("handler", "ChatHandler"), chat: chat}
}

type chatRequest struct {
	Messages []services.IncomingMessage `json:"messages"`
	ThreadID string                     `json:"thread_id"`
	Model    string                     `json:"model"`
	// ModelProvider is the legacy field name for the model identifier.
	ModelProvider string `json:"model_provider"`
}

// POST /api/chat
//
// Streams one chat turn as server-sent events: one {text, thread_id} frame
// per fragment, at most one {error, thread_id} frame, and exactly one
// terminal {done, thread_id} frame. Everything that fails before the stream
// opens is a plain JSON error instead.
func (h *ChatHandler) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	if len(req.Messages) == 0 {
		RespondOK(c, gin.H{"text": "No message received."})
		return
	}

	ctx := c.Request.Context()
	threadID, err := h.chat.BeginTurn(ctx, req.ThreadID, req.Messages)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "chat_failed", err)
		return
	}

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		RespondError(c, http.StatusInternalServerError, "streaming_unsupported", fmt.Errorf("streaming unsupported"))
		return
	}

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")
	flusher.Flush()

	writeFrame := func(payload any) {
		raw, err := json.Marshal(payload)
		if err != nil {
			h.log.Warn("Failed to marshal stream frame", "error", err)
			return
		}
		_, _ = fmt.Fprintf(c.Writer, "data: %s\n\n", raw)
		flusher.Flush()
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = strings.TrimSpace(req.ModelProvider)
	}

	func() {
		defer func() {
			if r := recover(); r != nil {
				h.log.Error("Chat turn panicked mid-stream", "thread_id", threadID, "panic", r)
				writeFrame(gin.H{"error": fmt.Sprint(r), "thread_id": threadID})
			}
		}()
		h.chat.StreamReply(ctx, threadID, req.Messages, model, func(fragment string) {
			writeFrame(gin.H{"text": fragment, "thread_id": threadID})
		})
	}()

	writeFrame(gin.H{"done": true, "thread_id": threadID})
}
