package service

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/model"
	"household-planner/internal/repository"
)

type testEnv struct {
	db          *gorm.DB
	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	occurrences *repository.OccurrenceRepository
	completions *repository.CompletionRepository
	absences    *repository.AbsenceRepository

	planner *PlannerService
	cascade *CascadeService
	taskSvc *TaskService
	absence *AbsenceService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log := zap.NewNop()
	db, err := repository.NewDB(filepath.Join(t.TempDir(), "planner.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	env := &testEnv{
		db:          db,
		users:       repository.NewUserRepository(db),
		tasks:       repository.NewTaskRepository(db, nil, log),
		occurrences: repository.NewOccurrenceRepository(db, log),
		completions: repository.NewCompletionRepository(db, log),
		absences:    repository.NewAbsenceRepository(db, log),
	}
	env.planner = NewPlannerService(env.tasks, env.occurrences, env.completions, 7, log)
	env.cascade = NewCascadeService(env.tasks, env.occurrences, env.completions, DefaultPaceOptions(), log)
	env.taskSvc = NewTaskService(env.tasks, env.users, env.completions)
	env.absence = NewAbsenceService(env.absences, env.completions, log)
	return env
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}

func (e *testEnv) task(t *testing.T, title string, cadence model.Cadence) model.Task {
	t.Helper()
	task, err := e.taskSvc.CreateTask(context.Background(), TaskInput{Title: title, Cadence: cadence})
	require.NoError(t, err)
	return *task
}

func (e *testEnv) pinned(t *testing.T, title string, cadence model.Cadence, weekday int, anchor *time.Time) model.Task {
	t.Helper()
	task, err := e.taskSvc.CreateTask(context.Background(), TaskInput{
		Title:         title,
		Cadence:       cadence,
		PinnedWeekday: &weekday,
		AnchorDate:    anchor,
	})
	require.NoError(t, err)
	return *task
}

func (e *testEnv) user(t *testing.T, name string) model.User {
	t.Helper()
	u := model.User{Name: name}
	require.NoError(t, e.users.Create(context.Background(), &u))
	return u
}

func (e *testEnv) schedule(t *testing.T, taskID uint, day time.Time, slot model.Cadence) model.Occurrence {
	t.Helper()
	occ, err := e.planner.ScheduleTask(context.Background(), ScheduleInput{TaskID: taskID, Date: day, Slot: slot})
	require.NoError(t, err)
	return *occ
}

func (e *testEnv) complete(t *testing.T, taskID, userID uint, at time.Time) {
	t.Helper()
	_, err := e.taskSvc.CompleteTask(context.Background(), userID, taskID, at, "")
	require.NoError(t, err)
}

func (e *testEnv) allOccurrences(t *testing.T) []model.Occurrence {
	t.Helper()
	var rows []model.Occurrence
	require.NoError(t, e.db.Order("date ASC, id ASC").Find(&rows).Error)
	return rows
}
