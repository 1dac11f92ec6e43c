package services

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/threadstream-backend/internal/logger"
	"github.com/yungbote/threadstream-backend/internal/repos"
	"github.com/yungbote/threadstream-backend/internal/types"
)

// ThreadService is the CRUD surface over threads and their messages.
type ThreadService interface {
	CreateThread(ctx context.Context, title string) (*types.Thread, error)
	GetThread(ctx context.Context, threadID uuid.UUID) (*types.Thread, []*types.Message, error)
	ListThreads(ctx context.Context, skip, limit int) ([]*types.ThreadSummary, error)
	UpdateThreadTitle(ctx context.Context, threadID uuid.UUID, title string) (*types.Thread, error)
	DeleteThread(ctx context.Context, threadID uuid.UUID) (bool, error)
	DeleteAllThreads(ctx context.Context) (int64, error)
	ListMessages(ctx context.Context, threadID uuid.UUID) ([]*types.Message, error)
	AddMessages(ctx context.Context, threadID uuid.UUID, messages []IncomingMessage) ([]*types.Message, error)
	UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content []types.ContentItem) (*types.Message, error)
}

type threadService struct {
	db          *gorm.DB
	log         *logger.Logger
	threadRepo  repos.ThreadRepo
	messageRepo repos.MessageRepo
}

func NewThreadService(db *gorm.DB, baseLog *logger.Logger, threadRepo repos.ThreadRepo, messageRepo repos.MessageRepo) ThreadService {
	serviceLog := baseLog.With("service", "ThreadService")
	return &threadService{db: db, log: serviceLog, threadRepo: threadRepo, messageRepo: messageRepo}
}

func (ts *threadService) CreateThread(ctx context.Context, title string) (*types.Thread, error) {
	return ts.threadRepo.Create(ctx, nil, &types.Thread{Title: title})
}

func (ts *threadService) GetThread(ctx context.Context, threadID uuid.UUID) (*types.Thread, []*types.Message, error) {
	thread, err := ts.threadRepo.GetByID(ctx, nil, threadID)
	if err != nil {
		return nil, nil, err
	}
	msgs, err := ts.messageRepo.ListByThread(ctx, nil, threadID)
	if err != nil {
		return nil, nil, err
	}
	return thread, msgs, nil
}

func (ts *threadService) ListThreads(ctx context.Context, skip, limit int) ([]*types.ThreadSummary, error) {
	return ts.threadRepo.List(ctx, nil, skip, limit)
}

func (ts *threadService) UpdateThreadTitle(ctx context.Context, threadID uuid.UUID, title string) (*types.Thread, error) {
	return ts.threadRepo.UpdateTitle(ctx, nil, threadID, title)
}

func (ts *threadService) DeleteThread(ctx context.Context, threadID uuid.UUID) (bool, error) {
	return ts.threadRepo.Delete(ctx, nil, threadID)
}

func (ts *threadService) DeleteAllThreads(ctx context.Context) (int64, error) {
	return ts.threadRepo.DeleteAll(ctx, nil)
}

func (ts *threadService) ListMessages(ctx context.Context, threadID uuid.UUID) ([]*types.Message, error) {
	return ts.messageRepo.ListByThread(ctx, nil, threadID)
}

// AddMessages batch-inserts messages into an existing thread. The thread
// must resolve first; a missing thread inserts nothing.
func (ts *threadService) AddMessages(ctx context.Context, threadID uuid.UUID, messages []IncomingMessage) ([]*types.Message, error) {
	if _, err := ts.threadRepo.GetByID(ctx, nil, threadID); err != nil {
		return nil, err
	}

	rows := make([]*types.Message, 0, len(messages))
	for _, m := range messages {
		content, err := types.EncodeContent(m.Content)
		if err != nil {
			return nil, err
		}
		rows = append(rows, &types.Message{
			ThreadID: threadID,
			Role:     m.Role,
			Content:  content,
		})
	}
	return ts.messageRepo.Create(ctx, nil, rows)
}

func (ts *threadService) UpdateMessageContent(ctx context.Context, messageID uuid.UUID, content []types.ContentItem) (*types.Message, error) {
	encoded, err := types.EncodeContent(content)
	if err != nil {
		return nil, err
	}
	return ts.messageRepo.UpdateContent(ctx, nil, messageID, encoded)
}
