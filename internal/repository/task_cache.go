package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"household-planner/internal/model"
)

const taskCacheKeyPrefix = "householdplanner:tasks:cadence:"

// TaskCache is a short-lived read-through cache for task lookups by cadence.
// A nil *TaskCache is valid and never hits. Redis errors are logged and treated
// as misses so the database stays authoritative.
type TaskCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewTaskCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *TaskCache {
	if rdb == nil || ttl <= 0 {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskCache{rdb: rdb, ttl: ttl, logger: logger}
}

func cadenceKey(cadence model.Cadence) string {
	return taskCacheKeyPrefix + string(cadence)
}

func (c *TaskCache) GetByCadence(ctx context.Context, cadence model.Cadence) ([]model.Task, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.rdb.Get(ctx, cadenceKey(cadence)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Warn("Task cache read failed, reading through",
				zap.String("cadence", string(cadence)),
				zap.Error(err),
			)
		}
		return nil, false
	}
	var tasks []model.Task
	if err := json.Unmarshal(raw, &tasks); err != nil {
		c.logger.Warn("Task cache entry is corrupt", zap.String("cadence", string(cadence)), zap.Error(err))
		return nil, false
	}
	return tasks, true
}

func (c *TaskCache) SetByCadence(ctx context.Context, cadence model.Cadence, tasks []model.Task) {
	if c == nil {
		return
	}
	raw, err := json.Marshal(tasks)
	if err != nil {
		c.logger.Warn("Encode task cache entry", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, cadenceKey(cadence), raw, c.ttl).Err(); err != nil {
		c.logger.Warn("Task cache write failed",
			zap.String("cadence", string(cadence)),
			zap.Error(err),
		)
	}
}

// Invalidate drops every cadence entry; called after any task write.
func (c *TaskCache) Invalidate(ctx context.Context) {
	if c == nil {
		return
	}
	keys := make([]string, 0, len(model.Cadences))
	for _, cadence := range model.Cadences {
		keys = append(keys, cadenceKey(cadence))
	}
	if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
		c.logger.Warn("Task cache invalidation failed", zap.Error(err))
	}
}
