package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/threadstream-backend/internal/logger"
	pkgerrors "github.com/yungbote/threadstream-backend/internal/pkg/errors"
	"github.com/yungbote/threadstream-backend/internal/types"
)

type MessageRepo interface {
	Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error)
	GetByID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) (*types.Message, error)
	ListByThread(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) ([]*types.Message, error)
	UpdateContent(ctx context.Context, tx *gorm.DB, messageID uuid.UUID, content datatypes.JSON) (*types.Message, error)
}

type messageRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewMessageRepo(db *gorm.DB, baseLog *logger.Logger) MessageRepo {
	repoLog := baseLog.With("repo", "MessageRepo")
	return &messageRepo{db: db, log: repoLog}
}

// Create inserts the messages and bumps updated_at on every touched thread,
// so that thread listing reflects message activity.
func (mr *messageRepo) Create(ctx context.Context, tx *gorm.DB, messages []*types.Message) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	if len(messages) == 0 {
		return []*types.Message{}, nil
	}

	threadIDs := make([]uuid.UUID, 0, 1)
	seen := make(map[uuid.UUID]bool, 1)
	for _, m := range messages {
		if m.ID == uuid.Nil {
			m.ID = uuid.New()
		}
		if !seen[m.ThreadID] {
			seen[m.ThreadID] = true
			threadIDs = append(threadIDs, m.ThreadID)
		}
	}

	err := transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Create(&messages).Error; err != nil {
			return err
		}
		return txn.Model(&types.Thread{}).
			Where("id IN ?", threadIDs).
			Update("updated_at", time.Now().UTC()).Error
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func (mr *messageRepo) GetByID(ctx context.Context, tx *gorm.DB, messageID uuid.UUID) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var result types.Message
	if err := transaction.WithContext(ctx).
		Where("id = ?", messageID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (mr *messageRepo) ListByThread(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) ([]*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	var results []*types.Message
	if err := transaction.WithContext(ctx).
		Where("thread_id = ?", threadID).
		Order("created_at ASC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (mr *messageRepo) UpdateContent(ctx context.Context, tx *gorm.DB, messageID uuid.UUID, content datatypes.JSON) (*types.Message, error) {
	transaction := tx
	if transaction == nil {
		transaction = mr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Where("id = ?", messageID).
		Updates(map[string]any{"content": content})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return mr.GetByID(ctx, transaction, messageID)
}
