package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/threadstream-backend/internal/logger"
	pkgerrors "github.com/yungbote/threadstream-backend/internal/pkg/errors"
	"github.com/yungbote/threadstream-backend/internal/types"
)

type ThreadRepo interface {
	Create(ctx context.Context, tx *gorm.DB, thread *types.Thread) (*types.Thread, error)
	GetByID(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) (*types.Thread, error)
	List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.ThreadSummary, error)
	UpdateTitle(ctx context.Context, tx *gorm.DB, threadID uuid.UUID, title string) (*types.Thread, error)
	Delete(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) (bool, error)
	DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error)
}

type threadRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewThreadRepo(db *gorm.DB, baseLog *logger.Logger) ThreadRepo {
	repoLog := baseLog.With("repo", "ThreadRepo")
	return &threadRepo{db: db, log: repoLog}
}

func (tr *threadRepo) Create(ctx context.Context, tx *gorm.DB, thread *types.Thread) (*types.Thread, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	if thread == nil {
		thread = &types.Thread{}
	}
	if thread.ID == uuid.Nil {
		thread.ID = uuid.New()
	}
	if thread.Title == "" {
		thread.Title = types.DefaultThreadTitle
	}

	if err := transaction.WithContext(ctx).Create(thread).Error; err != nil {
		return nil, err
	}
	return thread, nil
}

func (tr *threadRepo) GetByID(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) (*types.Thread, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var result types.Thread
	if err := transaction.WithContext(ctx).
		Where("id = ?", threadID).
		First(&result).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (tr *threadRepo) List(ctx context.Context, tx *gorm.DB, offset, limit int) ([]*types.ThreadSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = 100
	}

	var threads []*types.Thread
	if err := transaction.WithContext(ctx).
		Order("updated_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&threads).Error; err != nil {
		return nil, err
	}

	summaries := make([]*types.ThreadSummary, 0, len(threads))
	if len(threads) == 0 {
		return summaries, nil
	}

	threadIDs := make([]uuid.UUID, 0, len(threads))
	for _, t := range threads {
		threadIDs = append(threadIDs, t.ID)
	}

	var counts []struct {
		ThreadID uuid.UUID
		Total    int64
	}
	if err := transaction.WithContext(ctx).
		Model(&types.Message{}).
		Select("thread_id, COUNT(*) AS total").
		Where("thread_id IN ?", threadIDs).
		Group("thread_id").
		Scan(&counts).Error; err != nil {
		return nil, err
	}
	countByThread := make(map[uuid.UUID]int64, len(counts))
	for _, row := range counts {
		countByThread[row.ThreadID] = row.Total
	}

	for _, t := range threads {
		summaries = append(summaries, &types.ThreadSummary{
			ID:           t.ID,
			Title:        t.Title,
			CreatedAt:    t.CreatedAt,
			UpdatedAt:    t.UpdatedAt,
			MessageCount: countByThread[t.ID],
		})
	}
	return summaries, nil
}

func (tr *threadRepo) UpdateTitle(ctx context.Context, tx *gorm.DB, threadID uuid.UUID, title string) (*types.Thread, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	res := transaction.WithContext(ctx).
		Model(&types.Thread{}).
		Where("id = ?", threadID).
		Updates(map[string]any{"title": title})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, pkgerrors.ErrNotFound
	}
	return tr.GetByID(ctx, transaction, threadID)
}

func (tr *threadRepo) Delete(ctx context.Context, tx *gorm.DB, threadID uuid.UUID) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	existed := false
	err := transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Where("thread_id = ?", threadID).Delete(&types.Message{}).Error; err != nil {
			return err
		}
		res := txn.Where("id = ?", threadID).Delete(&types.Thread{})
		if res.Error != nil {
			return res.Error
		}
		existed = res.RowsAffected > 0
		return nil
	})
	if err != nil {
		return false, err
	}
	return existed, nil
}

func (tr *threadRepo) DeleteAll(ctx context.Context, tx *gorm.DB) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = tr.db
	}

	var removed int64
	err := transaction.WithContext(ctx).Transaction(func(txn *gorm.DB) error {
		if err := txn.Where("1 = 1").Delete(&types.Message{}).Error; err != nil {
			return err
		}
		res := txn.Where("1 = 1").Delete(&types.Thread{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}
