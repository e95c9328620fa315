package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"household-planner/internal/calendar"
	"household-planner/internal/metrics"
	"household-planner/internal/model"
)

// SuggestionRequest asks for a task to fill a vacant slot of CurrentCadence.
// UserID, when set, is a preference for tasks assigned to that member.
type SuggestionRequest struct {
	CurrentCadence model.Cadence
	UserID         *uint
	Now            time.Time
}

// Suggestion is the chosen slower-cadence task with the cycle it was picked from.
type Suggestion struct {
	Task            model.Task    `json:"task"`
	SourceCadence   model.Cadence `json:"source_cadence"`
	CycleStart      time.Time     `json:"cycle_start"`
	CycleEnd        time.Time     `json:"cycle_end"`
	LastCompletedAt *time.Time    `json:"last_completed_at,omitempty"`
}

// SuggestCascadedTask picks one task from the next slower cadence that has no
// visible occurrence in its current cycle. It returns nil when nothing fits.
func (s *CascadeService) SuggestCascadedTask(ctx context.Context, req SuggestionRequest) (*Suggestion, error) {
	if !req.CurrentCadence.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCadence, req.CurrentCadence)
	}
	source, ok := model.SourceCadence(req.CurrentCadence)
	if !ok {
		return nil, nil
	}

	cycleStart, cycleEnd, err := calendar.CycleRange(source, req.Now)
	if err != nil {
		return nil, err
	}

	tasks, err := s.taskRepo.ListByCadence(ctx, source)
	if err != nil {
		return nil, err
	}
	scheduled, err := s.occurrenceRepo.DistinctScheduledTaskIDs(ctx, source, cycleStart, cycleEnd)
	if err != nil {
		return nil, err
	}
	taken := make(map[uint]bool, len(scheduled))
	for _, id := range scheduled {
		taken[id] = true
	}

	var candidates []model.Task
	for _, task := range tasks {
		if !taken[task.ID] {
			candidates = append(candidates, task)
		}
	}

	if req.UserID != nil {
		assigned, err := s.taskRepo.AssignedTaskIDs(ctx, *req.UserID)
		if err != nil {
			return nil, err
		}
		mine := make(map[uint]bool, len(assigned))
		for _, id := range assigned {
			mine[id] = true
		}
		var preferred []model.Task
		for _, task := range candidates {
			if mine[task.ID] {
				preferred = append(preferred, task)
			}
		}
		if len(preferred) > 0 {
			candidates = preferred
		}
	}

	if len(candidates) == 0 {
		metrics.IncSuggestion(req.CurrentCadence.Label(), "none")
		return nil, nil
	}

	ids := make([]uint, 0, len(candidates))
	for _, task := range candidates {
		ids = append(ids, task.ID)
	}
	lastDone, err := s.completionRepo.LastCompletedByTask(ctx, ids)
	if err != nil {
		return nil, err
	}

	rankCandidates(candidates, lastDone)

	best := candidates[0]
	suggestion := &Suggestion{
		Task:          best,
		SourceCadence: source,
		CycleStart:    cycleStart,
		CycleEnd:      cycleEnd,
	}
	if at, ok := lastDone[best.ID]; ok {
		suggestion.LastCompletedAt = &at
	}

	metrics.IncSuggestion(req.CurrentCadence.Label(), "suggested")
	s.logger.Debug("Cascade suggestion",
		zap.String("slot", string(req.CurrentCadence)),
		zap.String("source", string(source)),
		zap.Uint("task_id", best.ID),
		zap.Int("candidates", len(candidates)),
	)
	return suggestion, nil
}

// rankCandidates orders never-completed tasks first, then the longest idle, then
// by title.
func rankCandidates(tasks []model.Task, lastDone map[uint]time.Time) {
	col := collate.New(language.Und, collate.IgnoreCase)
	sort.SliceStable(tasks, func(i, j int) bool {
		a, aDone := lastDone[tasks[i].ID]
		b, bDone := lastDone[tasks[j].ID]
		if aDone != bDone {
			return !aDone
		}
		if aDone && !a.Equal(b) {
			return a.Before(b)
		}
		if c := col.CompareString(tasks[i].Title, tasks[j].Title); c != 0 {
			return c < 0
		}
		return tasks[i].ID < tasks[j].ID
	})
}
