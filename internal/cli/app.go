package cli

import (
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"household-planner/internal/calendar"
	"household-planner/internal/config"
	"household-planner/internal/logger"
	"household-planner/internal/repository"
	"household-planner/internal/service"
)

// app is the wired planner shared by every command.
type app struct {
	cfg    config.Config
	logger *zap.Logger
	db     *gorm.DB
	rdb    *redis.Client

	users       *repository.UserRepository
	tasks       *repository.TaskRepository
	occurrences *repository.OccurrenceRepository
	completions *repository.CompletionRepository
	absences    *repository.AbsenceRepository

	planner *service.PlannerService
	cascade *service.CascadeService
	taskSvc *service.TaskService
	absence *service.AbsenceService
	summary *service.SummaryService
}

func openApp(opts *RootOptions) (*app, error) {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load config", err)
	}

	level := cfg.LogLevel
	if opts.Verbose {
		level = "debug"
	}
	log, err := logger.New(level)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "init logger", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL, log)
	if err != nil {
		_ = log.Sync()
		return nil, WrapExitError(ExitCommandError, "open database", err)
	}

	rdb := repository.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	cache := repository.NewTaskCache(rdb, time.Duration(cfg.Redis.TaskTTLSeconds)*time.Second, log)

	a := &app{
		cfg:         cfg,
		logger:      log,
		db:          db,
		rdb:         rdb,
		users:       repository.NewUserRepository(db),
		tasks:       repository.NewTaskRepository(db, cache, log),
		occurrences: repository.NewOccurrenceRepository(db, log),
		completions: repository.NewCompletionRepository(db, log),
		absences:    repository.NewAbsenceRepository(db, log),
	}

	pace := service.PaceOptions{
		BiweeklyDaysPerSlot:   cfg.Pace.BiweeklyDaysPerSlot,
		BimonthlyDaysPerSlot:  cfg.Pace.BimonthlyDaysPerSlot,
		SemiannualDaysPerSlot: cfg.Pace.SemiannualDaysPerSlot,
	}
	a.planner = service.NewPlannerService(a.tasks, a.occurrences, a.completions, cfg.Planning.HorizonDays, log.Named("planner"))
	a.cascade = service.NewCascadeService(a.tasks, a.occurrences, a.completions, pace, log.Named("cascade"))
	a.taskSvc = service.NewTaskService(a.tasks, a.users, a.completions)
	a.absence = service.NewAbsenceService(a.absences, a.completions, log.Named("absence"))
	a.summary = service.NewSummaryService(a.planner, a.cascade, cfg.Planning.WarningThreshold)
	return a, nil
}

func (a *app) Close() {
	if a.rdb != nil {
		if err := a.rdb.Close(); err != nil {
			a.logger.Warn("Close redis", zap.Error(err))
		}
	}
	if sqlDB, err := a.db.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			a.logger.Warn("Close database", zap.Error(err))
		}
	}
	_ = a.logger.Sync()
}

// resolveNow parses a --date flag; empty means the current instant.
func resolveNow(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now().UTC(), nil
	}
	return calendar.ParseCivilDate(raw)
}

// resolveInstant is resolveNow for flags that keep the time of day.
func resolveInstant(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now().UTC(), nil
	}
	return calendar.ParseInstant(raw)
}

var domainErrors = []error{
	service.ErrInvalidTask,
	service.ErrTaskNotFound,
	service.ErrOccurrenceNotFound,
	service.ErrAlreadyCompleted,
	service.ErrUnknownCadence,
	service.ErrAbsenceOverlap,
	service.ErrInvalidAbsenceRange,
	calendar.ErrInvalidDateFormat,
}

// exitCodeFor maps domain rejections to ExitFailure and everything else to ExitCommandError.
func exitCodeFor(err error) int {
	for _, target := range domainErrors {
		if errors.Is(err, target) {
			return ExitFailure
		}
	}
	return ExitCommandError
}
