package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/model"
)

// CompletionRepository records who finished what and when.
type CompletionRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewCompletionRepository(db *gorm.DB, logger *zap.Logger) *CompletionRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CompletionRepository{db: db, logger: logger}
}

func (r *CompletionRepository) Create(ctx context.Context, completion *model.Completion) error {
	if err := r.db.WithContext(ctx).Create(completion).Error; err != nil {
		return fmt.Errorf("create completion: %w", err)
	}
	r.logger.Info("Completion recorded",
		zap.Uint("task_id", completion.TaskID),
		zap.Uint("user_id", completion.UserID),
	)
	return nil
}

// LastCompletedByTask returns the most recent completion instant per task.
// Tasks that were never completed are absent from the map.
func (r *CompletionRepository) LastCompletedByTask(ctx context.Context, taskIDs []uint) (map[uint]time.Time, error) {
	last := make(map[uint]time.Time)
	if len(taskIDs) == 0 {
		return last, nil
	}
	var rows []model.Completion
	if err := r.db.WithContext(ctx).Select("task_id", "completed_at").
		Where("task_id IN ?", taskIDs).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find completions: %w", err)
	}
	for _, row := range rows {
		if prev, ok := last[row.TaskID]; !ok || row.CompletedAt.After(prev) {
			last[row.TaskID] = row.CompletedAt
		}
	}
	return last, nil
}

// CompletionTimesByUser lists the completion instants recorded by a member.
func (r *CompletionRepository) CompletionTimesByUser(ctx context.Context, userID uint) ([]time.Time, error) {
	var rows []model.Completion
	if err := r.db.WithContext(ctx).Select("completed_at").
		Where("user_id = ?", userID).
		Order("completed_at DESC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find user completions: %w", err)
	}
	times := make([]time.Time, 0, len(rows))
	for _, row := range rows {
		times = append(times, row.CompletedAt)
	}
	return times, nil
}

// CompletedOccurrenceIDs reports which of the occurrences have a completion.
func (r *CompletionRepository) CompletedOccurrenceIDs(ctx context.Context, occurrenceIDs []uint) (map[uint]bool, error) {
	done := make(map[uint]bool)
	if len(occurrenceIDs) == 0 {
		return done, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Completion{}).
		Where("occurrence_id IN ?", occurrenceIDs).
		Pluck("occurrence_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find completed occurrences: %w", err)
	}
	for _, id := range ids {
		done[id] = true
	}
	return done, nil
}

func (r *CompletionRepository) DeleteByOccurrence(ctx context.Context, occurrenceID uint) error {
	if err := r.db.WithContext(ctx).Where("occurrence_id = ?", occurrenceID).
		Delete(&model.Completion{}).Error; err != nil {
		return fmt.Errorf("delete completions: %w", err)
	}
	return nil
}
