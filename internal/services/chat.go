package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/threadstream-backend/internal/clients/litellm"
	"github.com/yungbote/threadstream-backend/internal/logger"
	pkgerrors "github.com/yungbote/threadstream-backend/internal/pkg/errors"
	"github.com/yungbote/threadstream-backend/internal/repos"
	"github.com/yungbote/threadstream-backend/internal/types"
)

// errorFragmentPrefix marks an accumulated reply as an adapter failure
// rather than generated text; such replies are never persisted.
const errorFragmentPrefix = "Error"

const titleMaxRunes = 50

// IncomingMessage is one turn of the inbound chat request.
type IncomingMessage struct {
	Role    string              `json:"role"`
	Content []types.ContentItem `json:"content"`
}

// ChatService runs one chat turn. BeginTurn does everything that must happen
// before the response stream opens (thread resolution, user-message
// persistence) so its failures can still surface as structured HTTP errors.
// StreamReply folds every later failure into the stream itself.
type ChatService interface {
	BeginTurn(ctx context.Context, threadID string, messages []IncomingMessage) (uuid.UUID, error)
	StreamReply(ctx context.Context, threadID uuid.UUID, messages []IncomingMessage, model string, onFragment func(fragment string)) string
}

type chatService struct {
	db          *gorm.DB
	log         *logger.Logger
	threadRepo  repos.ThreadRepo
	messageRepo repos.MessageRepo
	llm         litellm.Client
}

func NewChatService(db *gorm.DB, baseLog *logger.Logger, threadRepo repos.ThreadRepo, messageRepo repos.MessageRepo, llm litellm.Client) ChatService {
	serviceLog := baseLog.With("service", "ChatService")
	return &chatService{
		db:          db,
		log:         serviceLog,
		threadRepo:  threadRepo,
		messageRepo: messageRepo,
		llm:         llm,
	}
}

// BeginTurn resolves the thread (creating one when the id is missing or does
// not resolve) and persists the latest user message before any model call,
// so the input survives a failed generation.
func (cs *chatService) BeginTurn(ctx context.Context, threadID string, messages []IncomingMessage) (uuid.UUID, error) {
	if len(messages) == 0 {
		return uuid.Nil, pkgerrors.ErrInvalidArgument
	}

	resolved, err := cs.resolveThread(ctx, threadID)
	if err != nil {
		return uuid.Nil, err
	}

	last := messages[len(messages)-1]
	content, err := types.EncodeContent(last.Content)
	if err != nil {
		return uuid.Nil, err
	}
	_, err = cs.messageRepo.Create(ctx, nil, []*types.Message{{
		ThreadID: resolved,
		Role:     last.Role,
		Content:  content,
	}})
	if err != nil {
		return uuid.Nil, err
	}
	return resolved, nil
}

func (cs *chatService) resolveThread(ctx context.Context, threadID string) (uuid.UUID, error) {
	id, parseErr := uuid.Parse(strings.TrimSpace(threadID))
	if parseErr == nil {
		_, err := cs.threadRepo.GetByID(ctx, nil, id)
		if err == nil {
			return id, nil
		}
		if !errors.Is(err, pkgerrors.ErrNotFound) {
			return uuid.Nil, err
		}
	}

	// Silent fallback: an absent or stale thread id starts a fresh thread.
	thread, err := cs.threadRepo.Create(ctx, nil, &types.Thread{})
	if err != nil {
		return uuid.Nil, err
	}
	return thread.ID, nil
}

// StreamReply invokes the completion adapter, relays fragments in upstream
// order, and returns the accumulated reply. An adapter failure becomes a
// single synthetic error fragment; persistence of the assistant reply and
// title derivation are best-effort and never surface to the caller.
func (cs *chatService) StreamReply(ctx context.Context, threadID uuid.UUID, messages []IncomingMessage, model string, onFragment func(fragment string)) string {
	if strings.TrimSpace(model) == "" {
		model = litellm.DefaultModel
	}

	llmMsgs := make([]litellm.Message, 0, len(messages))
	for _, m := range messages {
		llmMsgs = append(llmMsgs, litellm.Message{
			Role:    m.Role,
			Content: types.FlattenText(m.Content),
		})
	}

	full, err := cs.llm.StreamChat(ctx, model, llmMsgs, onFragment)
	if err != nil {
		errMsg := fmt.Sprintf("%s with %s: %v", errorFragmentPrefix, model, err)
		cs.log.Error("Completion stream failed", "thread_id", threadID, "model", model, "error", err)
		if onFragment != nil {
			onFragment(errMsg)
		}
		full = errMsg
	}

	if full == "" || strings.HasPrefix(full, errorFragmentPrefix) {
		return full
	}

	content, encErr := types.EncodeContent([]types.ContentItem{{Type: types.ContentItemText, Text: full}})
	if encErr != nil {
		cs.log.Warn("Failed to encode assistant reply", "thread_id", threadID, "error", encErr)
		return full
	}
	_, saveErr := cs.messageRepo.Create(ctx, nil, []*types.Message{{
		ThreadID: threadID,
		Role:     types.RoleAssistant,
		Content:  content,
	}})
	if saveErr != nil {
		cs.log.Warn("Failed to save assistant message", "thread_id", threadID, "error", saveErr)
		return full
	}

	cs.maybeDeriveTitle(ctx, threadID)
	return full
}

// maybeDeriveTitle sets the thread title from the first user message when
// the title is still the placeholder. Failures are logged and swallowed; the
// turn has already succeeded from the caller's perspective.
func (cs *chatService) maybeDeriveTitle(ctx context.Context, threadID uuid.UUID) {
	thread, err := cs.threadRepo.GetByID(ctx, nil, threadID)
	if err != nil {
		cs.log.Warn("Title derivation: thread lookup failed", "thread_id", threadID, "error", err)
		return
	}
	if thread.Title != "" && thread.Title != types.DefaultThreadTitle {
		return
	}

	msgs, err := cs.messageRepo.ListByThread(ctx, nil, threadID)
	if err != nil {
		cs.log.Warn("Title derivation: message list failed", "thread_id", threadID, "error", err)
		return
	}

	var firstUserText string
	for _, m := range msgs {
		if m.Role == types.RoleUser {
			firstUserText = types.FlattenStoredContent(m.Content)
			break
		}
	}

	trimmed := strings.TrimSpace(firstUserText)
	runes := []rune(trimmed)
	autoTitle := trimmed
	if len(runes) > titleMaxRunes {
		autoTitle = string(runes[:titleMaxRunes]) + "..."
	}
	if autoTitle == "" {
		return
	}

	if _, err := cs.threadRepo.UpdateTitle(ctx, nil, threadID, autoTitle); err != nil {
		cs.log.Warn("Title derivation: update failed", "thread_id", threadID, "error", err)
	}
}
