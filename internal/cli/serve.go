package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"household-planner/internal/bot"
	"household-planner/internal/service"
)

const jobTimeout = 2 * time.Minute

// NewServeCommand creates the long-running serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var noBot bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler, metrics endpoint and Telegram bot",
		Long: `Run the nightly planning pass and the periodic pace refresh on cron, expose
Prometheus metrics on metrics_addr and answer Telegram commands until
interrupted.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()
			return runServe(cmd.Context(), a, noBot)
		},
	}
	cmd.Flags().BoolVar(&noBot, "no-bot", false, "run without the Telegram bot")
	return cmd
}

func runServe(ctx context.Context, a *app, noBot bool) error {
	log := a.logger

	var telegramBot *bot.Bot
	if !noBot {
		if err := a.cfg.RequireTelegram(); err != nil {
			return WrapExitError(ExitCommandError, "serve", err)
		}
		var err error
		telegramBot, err = bot.New(a.cfg.TelegramToken, bot.Services{
			Users:     a.users,
			Planner:   a.planner,
			Cascade:   a.cascade,
			Absence:   a.absence,
			Summary:   a.summary,
			Threshold: a.cfg.Planning.WarningThreshold,
		}, log.Named("bot"))
		if err != nil {
			return WrapExitError(ExitCommandError, "start bot", err)
		}
	}

	scheduler, err := newPlanningScheduler(a)
	if err != nil {
		return WrapExitError(ExitCommandError, "schedule jobs", err)
	}

	// Catch up on anything missed while the process was down.
	a.runPlanningPass()

	scheduler.Start()
	defer scheduler.Stop()

	if a.cfg.MetricsAddr != "" {
		srv := newMetricsServer(a.cfg.MetricsAddr)
		go func() {
			log.Info("Metrics server starting", zap.String("addr", srv.Addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server failed", zap.Error(err))
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Error("Metrics server shutdown error", zap.Error(err))
			}
		}()
	}

	log.Info("Household planner started", zap.Bool("bot", telegramBot != nil))
	if telegramBot != nil {
		if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return WrapExitError(ExitFailure, "bot stopped", err)
		}
	} else {
		<-ctx.Done()
	}
	log.Info("Shutdown complete")
	return nil
}

// newPlanningScheduler registers the nightly planning pass and the pace refresh.
func newPlanningScheduler(a *app) (*service.SchedulerService, error) {
	scheduler := service.NewSchedulerService(time.UTC, a.logger)
	if _, err := scheduler.Schedule(a.cfg.Planning.Cron, a.runPlanningPass); err != nil {
		return nil, err
	}
	refresh := time.Duration(a.cfg.Planning.PaceRefreshMinutes) * time.Minute
	if _, err := scheduler.ScheduleInterval(refresh, a.refreshPace); err != nil {
		return nil, err
	}
	return scheduler, nil
}

func (a *app) runPlanningPass() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	pass, err := a.planner.PreparePlanningDay(ctx, time.Now())
	if err != nil {
		a.logger.Error("Planning pass failed", zap.Error(err))
		return
	}
	a.logger.Info("Planning pass finished",
		zap.Int("daily", pass.Daily),
		zap.Int("weekly", pass.Weekly),
		zap.Int("biweekly", pass.Biweekly),
		zap.Int("moved", pass.RollForward.Moved),
		zap.Int("hidden", pass.RollForward.HiddenAsDuplicate),
	)
}

func (a *app) refreshPace() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	warnings, err := a.cascade.CheckCascadePace(ctx, time.Now())
	if err != nil {
		a.logger.Error("Pace refresh failed", zap.Error(err))
		return
	}
	for _, w := range warnings {
		a.logger.Warn("Cadence behind pace",
			zap.String("cadence", w.Cadence.Label()),
			zap.Int("remaining_tasks", w.RemainingTasks),
			zap.Int("remaining_slots", w.RemainingSlots),
		)
	}
}

func newMetricsServer(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
