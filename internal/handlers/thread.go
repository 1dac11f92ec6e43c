package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/threadstream-backend/internal/logger"
	pkgerrors "github.com/yungbote/threadstream-backend/internal/pkg/errors"
	"github.com/yungbote/threadstream-backend/internal/services"
	"github.com/yungbote/threadstream-backend/internal/types"
)

type ThreadHandler struct {
	log     *logger.Logger
	threads services.ThreadService
}

func NewThreadHandler(baseLog *logger.Logger, threads services.ThreadService) *ThreadHandler {
	return &ThreadHandler{log: baseLog.With("handler", "ThreadHandler"), threads: threads}
}

type createThreadRequest struct {
	Title string `json:"title"`
}

type updateThreadRequest struct {
	Title string `json:"title"`
}

type addMessageRequest struct {
	Role    string                     `json:"role"`
	Content []types.ContentItem        `json:"content"`
	Batch   []services.IncomingMessage `json:"messages"`
}

type updateMessageRequest struct {
	Content []types.ContentItem `json:"content"`
}

// POST /api/threads
func (h *ThreadHandler) CreateThread(c *gin.Context) {
	var req createThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	thread, err := h.threads.CreateThread(c.Request.Context(), req.Title)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "create_thread_failed", err)
		return
	}
	RespondOK(c, thread)
}

// GET /api/threads?skip=0&limit=100
func (h *ThreadHandler) ListThreads(c *gin.Context) {
	skip := intQuery(c, "skip", 0)
	limit := intQuery(c, "limit", 100)
	summaries, err := h.threads.ListThreads(c.Request.Context(), skip, limit)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_threads_failed", err)
		return
	}
	RespondOK(c, summaries)
}

// GET /api/threads/:thread_id
func (h *ThreadHandler) GetThread(c *gin.Context) {
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}
	thread, msgs, err := h.threads.GetThread(c.Request.Context(), threadID)
	if err != nil {
		respondRepoError(c, "get_thread_failed", err)
		return
	}
	RespondOK(c, gin.H{
		"id":         thread.ID,
		"title":      thread.Title,
		"created_at": thread.CreatedAt,
		"updated_at": thread.UpdatedAt,
		"messages":   msgs,
	})
}

// PUT /api/threads/:thread_id/title
func (h *ThreadHandler) UpdateThread(c *gin.Context) {
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}
	var req updateThreadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	thread, err := h.threads.UpdateThreadTitle(c.Request.Context(), threadID, req.Title)
	if err != nil {
		respondRepoError(c, "update_thread_failed", err)
		return
	}
	RespondOK(c, thread)
}

// DELETE /api/threads/:thread_id
func (h *ThreadHandler) DeleteThread(c *gin.Context) {
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}
	existed, err := h.threads.DeleteThread(c.Request.Context(), threadID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_thread_failed", err)
		return
	}
	if !existed {
		RespondError(c, http.StatusNotFound, "not_found", fmt.Errorf("thread %s not found", threadID))
		return
	}
	RespondOK(c, gin.H{"deleted": true, "thread_id": threadID})
}

// DELETE /api/threads
func (h *ThreadHandler) DeleteAllThreads(c *gin.Context) {
	count, err := h.threads.DeleteAllThreads(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "delete_all_threads_failed", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true, "count": count})
}

// GET /api/threads/:thread_id/messages
func (h *ThreadHandler) ListMessages(c *gin.Context) {
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}
	msgs, err := h.threads.ListMessages(c.Request.Context(), threadID)
	if err != nil {
		RespondError(c, http.StatusInternalServerError, "list_messages_failed", err)
		return
	}
	RespondOK(c, msgs)
}

// POST /api/threads/:thread_id/messages
//
// Accepts either one message ({role, content}) or a batch ({messages: [...]}).
func (h *ThreadHandler) AddMessages(c *gin.Context) {
	threadID, ok := pathUUID(c, "thread_id")
	if !ok {
		return
	}
	var req addMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}

	incoming := req.Batch
	if len(incoming) == 0 && req.Role != "" {
		incoming = []services.IncomingMessage{{Role: req.Role, Content: req.Content}}
	}
	if len(incoming) == 0 {
		RespondError(c, http.StatusBadRequest, "invalid_request", fmt.Errorf("no messages provided"))
		return
	}

	saved, err := h.threads.AddMessages(c.Request.Context(), threadID, incoming)
	if err != nil {
		respondRepoError(c, "add_messages_failed", err)
		return
	}
	RespondOK(c, gin.H{"added": len(saved), "messages": saved})
}

// PUT /api/messages/:message_id
func (h *ThreadHandler) UpdateMessage(c *gin.Context) {
	messageID, ok := pathUUID(c, "message_id")
	if !ok {
		return
	}
	var req updateMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", err)
		return
	}
	msg, err := h.threads.UpdateMessageContent(c.Request.Context(), messageID, req.Content)
	if err != nil {
		respondRepoError(c, "update_message_failed", err)
		return
	}
	RespondOK(c, msg)
}

func pathUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_id", fmt.Errorf("invalid %s", name))
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	raw := c.Query(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return fallback
	}
	return v
}

func respondRepoError(c *gin.Context, code string, err error) {
	if errors.Is(err, pkgerrors.ErrNotFound) {
		RespondError(c, http.StatusNotFound, "not_found", err)
		return
	}
	RespondError(c, http.StatusInternalServerError, code, err)
}
