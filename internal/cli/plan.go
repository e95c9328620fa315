package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
	"household-planner/internal/service"
)

// NewPlanCommand creates the plan command.
func NewPlanCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Run the daily planning pass",
		Long: `Materialize daily and pinned occurrences over the configured horizon and roll
unfinished past occurrences forward to the given day.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlan(cmd, rootOpts, date)
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "planning day (YYYY-MM-DD or RFC 3339, default now)")
	return cmd
}

func runPlan(cmd *cobra.Command, opts *RootOptions, date string) error {
	f := newFormatter(opts, cmd)
	now, err := resolveNow(date)
	if err != nil {
		return f.Fail(ExitCommandError, "parse --date", err)
	}

	a, err := openApp(opts)
	if err != nil {
		return err
	}
	defer a.Close()

	f.VerboseLog("Planning %s with a %d-day horizon", calendar.DayKey(now), a.cfg.Planning.HorizonDays)
	pass, err := a.planner.PreparePlanningDay(cmd.Context(), now)
	if err != nil {
		return f.Fail(exitCodeFor(err), "planning pass", err)
	}

	return f.Success(pass, func(w io.Writer) {
		printPlanningPass(w, calendar.DayKey(now), pass)
	})
}

func printPlanningPass(w io.Writer, day string, pass service.PlanningPass) {
	fmt.Fprintf(w, "Planned %s\n", day)
	fmt.Fprintf(w, "  daily created:     %d\n", pass.Daily)
	fmt.Fprintf(w, "  weekly created:    %d\n", pass.Weekly)
	fmt.Fprintf(w, "  biweekly created:  %d\n", pass.Biweekly)
	fmt.Fprintf(w, "  rolled forward:    %d\n", pass.RollForward.Moved)
	fmt.Fprintf(w, "  hidden duplicates: %d\n", pass.RollForward.HiddenAsDuplicate)
}
