package repository

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
)

// InsertBatchSize bounds the rows sent in one INSERT statement.
const InsertBatchSize = 1000

// OccurrenceKey identifies the (task, civil day) slot an occurrence occupies.
type OccurrenceKey struct {
	TaskID uint
	Day    string
}

func KeyOf(o model.Occurrence) OccurrenceKey {
	return OccurrenceKey{TaskID: o.TaskID, Day: calendar.DayKey(o.Date)}
}

// OccurrenceRepository handles the materialized task grid.
type OccurrenceRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

func NewOccurrenceRepository(db *gorm.DB, logger *zap.Logger) *OccurrenceRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OccurrenceRepository{db: db, logger: logger}
}

// ExistingKeys returns every (task, day) slot already stored for the given tasks in
// [from, to), hidden rows included.
func (r *OccurrenceRepository) ExistingKeys(ctx context.Context, taskIDs []uint, from, to time.Time) (map[OccurrenceKey]struct{}, error) {
	keys := make(map[OccurrenceKey]struct{})
	if len(taskIDs) == 0 {
		return keys, nil
	}
	var rows []model.Occurrence
	if err := r.db.WithContext(ctx).Select("task_id", "date").
		Where("task_id IN ? AND date >= ? AND date < ?", taskIDs, from, to).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find existing occurrences: %w", err)
	}
	for _, row := range rows {
		keys[KeyOf(row)] = struct{}{}
	}
	return keys, nil
}

// InsertOrSkip writes rows in chunks, silently skipping any (task, day) that already
// exists. It returns the number of rows actually inserted.
func (r *OccurrenceRepository) InsertOrSkip(ctx context.Context, rows []model.Occurrence) (int, error) {
	inserted := 0
	for start := 0; start < len(rows); start += InsertBatchSize {
		end := start + InsertBatchSize
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]
		res := r.db.WithContext(ctx).
			Omit(clause.Associations).
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(&chunk)
		if res.Error != nil {
			return inserted, fmt.Errorf("insert occurrences: %w", res.Error)
		}
		inserted += int(res.RowsAffected)
	}
	r.logger.Debug("Occurrences inserted",
		zap.Int("candidates", len(rows)),
		zap.Int("inserted", inserted),
	)
	return inserted, nil
}

func (r *OccurrenceRepository) FindByID(ctx context.Context, id uint) (*model.Occurrence, error) {
	var occ model.Occurrence
	if err := r.db.WithContext(ctx).Preload("Task").First(&occ, id).Error; err != nil {
		return nil, err
	}
	return &occ, nil
}

func (r *OccurrenceRepository) FindByTaskAndDate(ctx context.Context, taskID uint, day time.Time) (*model.Occurrence, error) {
	var occ model.Occurrence
	if err := r.db.WithContext(ctx).
		Where("task_id = ? AND date = ?", taskID, calendar.StartOfDay(day)).
		First(&occ).Error; err != nil {
		return nil, err
	}
	return &occ, nil
}

// ListStaleIncomplete returns visible occurrences before the given day that have no
// completion, ordered by date and then creation order.
func (r *OccurrenceRepository) ListStaleIncomplete(ctx context.Context, before time.Time) ([]model.Occurrence, error) {
	var rows []model.Occurrence
	if err := r.db.WithContext(ctx).
		Where("hidden = ? AND date < ?", false, before).
		Where("NOT EXISTS (SELECT 1 FROM completions c WHERE c.occurrence_id = occurrences.id)").
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list stale occurrences: %w", err)
	}
	return rows, nil
}

// TaskIDsWithOccurrenceOn reports which of the tasks already own a row on day,
// visible or hidden.
func (r *OccurrenceRepository) TaskIDsWithOccurrenceOn(ctx context.Context, taskIDs []uint, day time.Time) (map[uint]bool, error) {
	found := make(map[uint]bool)
	if len(taskIDs) == 0 {
		return found, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Occurrence{}).
		Where("task_id IN ? AND date = ?", taskIDs, calendar.StartOfDay(day)).
		Pluck("task_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("find occurrences on day: %w", err)
	}
	for _, id := range ids {
		found[id] = true
	}
	return found, nil
}

func (r *OccurrenceRepository) Hide(ctx context.Context, ids []uint) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(&model.Occurrence{}).
		Where("id IN ?", ids).
		Update("hidden", true).Error; err != nil {
		return fmt.Errorf("hide occurrences: %w", err)
	}
	return nil
}

func (r *OccurrenceRepository) MoveDate(ctx context.Context, id uint, day time.Time) error {
	if err := r.db.WithContext(ctx).Model(&model.Occurrence{}).
		Where("id = ?", id).
		Update("date", calendar.StartOfDay(day)).Error; err != nil {
		return fmt.Errorf("move occurrence: %w", err)
	}
	return nil
}

// Reveal makes a hidden occurrence visible again with a new slot assignment.
func (r *OccurrenceRepository) Reveal(ctx context.Context, id uint, slot model.Cadence, suggested bool) error {
	if err := r.db.WithContext(ctx).Model(&model.Occurrence{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"hidden":    false,
			"slot":      slot,
			"suggested": suggested,
		}).Error; err != nil {
		return fmt.Errorf("reveal occurrence: %w", err)
	}
	return nil
}

func (r *OccurrenceRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&model.Occurrence{}, id).Error; err != nil {
		return fmt.Errorf("delete occurrence: %w", err)
	}
	return nil
}

// DistinctScheduledTaskIDs lists tasks of a cadence with a visible occurrence in [from, to).
func (r *OccurrenceRepository) DistinctScheduledTaskIDs(ctx context.Context, cadence model.Cadence, from, to time.Time) ([]uint, error) {
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&model.Occurrence{}).
		Joins("JOIN tasks ON tasks.id = occurrences.task_id").
		Where("tasks.cadence = ? AND occurrences.hidden = ?", cadence, false).
		Where("occurrences.date >= ? AND occurrences.date < ?", from, to).
		Distinct().
		Pluck("occurrences.task_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("list scheduled %s tasks: %w", cadence.Label(), err)
	}
	return ids, nil
}

// ListVisibleBetween returns the visible grid for [from, to) with tasks preloaded.
func (r *OccurrenceRepository) ListVisibleBetween(ctx context.Context, from, to time.Time) ([]model.Occurrence, error) {
	var rows []model.Occurrence
	if err := r.db.WithContext(ctx).Preload("Task").
		Where("hidden = ? AND date >= ? AND date < ?", false, from, to).
		Order("date ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	return rows, nil
}
