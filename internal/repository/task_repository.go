package repository

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-planner/internal/model"
)

// TaskRepository handles CRUD for household tasks.
type TaskRepository struct {
	db     *gorm.DB
	cache  *TaskCache
	logger *zap.Logger
}

func NewTaskRepository(db *gorm.DB, cache *TaskCache, logger *zap.Logger) *TaskRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskRepository{db: db, cache: cache, logger: logger}
}

func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := r.db.WithContext(ctx).Create(task).Error; err != nil {
		return fmt.Errorf("create task: %w", err)
	}
	r.cache.Invalidate(ctx)
	r.logger.Info("Task created",
		zap.Uint("task_id", task.ID),
		zap.String("cadence", string(task.Cadence)),
	)
	return nil
}

func (r *TaskRepository) FindByID(ctx context.Context, id uint) (*model.Task, error) {
	var task model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").First(&task, id).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func (r *TaskRepository) FindByIDs(ctx context.Context, ids []uint) (map[uint]model.Task, error) {
	byID := make(map[uint]model.Task, len(ids))
	if len(ids) == 0 {
		return byID, nil
	}
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("find tasks: %w", err)
	}
	for _, task := range tasks {
		byID[task.ID] = task
	}
	return byID, nil
}

func (r *TaskRepository) List(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").Order("id ASC").Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return tasks, nil
}

// ListByCadence reads through the task cache.
func (r *TaskRepository) ListByCadence(ctx context.Context, cadence model.Cadence) ([]model.Task, error) {
	if tasks, ok := r.cache.GetByCadence(ctx, cadence); ok {
		return tasks, nil
	}

	var tasks []model.Task
	if err := r.db.WithContext(ctx).Preload("Assignees").
		Where("cadence = ?", cadence).
		Order("id ASC").
		Find(&tasks).Error; err != nil {
		return nil, fmt.Errorf("list %s tasks: %w", cadence.Label(), err)
	}

	r.cache.SetByCadence(ctx, cadence, tasks)
	return tasks, nil
}

// ListPinned returns tasks of the given cadence that have a pinned weekday.
func (r *TaskRepository) ListPinned(ctx context.Context, cadence model.Cadence) ([]model.Task, error) {
	tasks, err := r.ListByCadence(ctx, cadence)
	if err != nil {
		return nil, err
	}
	pinned := tasks[:0:0]
	for _, task := range tasks {
		if task.IsPinned() {
			pinned = append(pinned, task)
		}
	}
	return pinned, nil
}

// AssignedTaskIDs lists the tasks a member is explicitly assigned to.
func (r *TaskRepository) AssignedTaskIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Table("task_assignees").
		Where("user_id = ?", userID).
		Pluck("task_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list assigned tasks: %w", err)
	}
	return ids, nil
}

// Delete removes a task together with its occurrences, completions and assignments.
func (r *TaskRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("task_id = ?", id).Delete(&model.Completion{}).Error; err != nil {
			return fmt.Errorf("delete completions: %w", err)
		}
		if err := tx.Where("task_id = ?", id).Delete(&model.Occurrence{}).Error; err != nil {
			return fmt.Errorf("delete occurrences: %w", err)
		}
		res := tx.Select(clause.Associations).Delete(&model.Task{ID: id})
		if res.Error != nil {
			return fmt.Errorf("delete task: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	r.cache.Invalidate(ctx)
	return nil
}
