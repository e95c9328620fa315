package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
)

// NewPaceCommand creates the pace command.
func NewPaceCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "pace",
		Short: "Show cadences with more unscheduled tasks than remaining opportunities",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			now, err := resolveNow(date)
			if err != nil {
				return f.Fail(ExitCommandError, "parse --date", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			warnings, err := a.cascade.CheckCascadePace(cmd.Context(), now)
			if err != nil {
				return f.Fail(exitCodeFor(err), "check pace", err)
			}
			return f.Success(warnings, func(w io.Writer) {
				if len(warnings) == 0 {
					fmt.Fprintln(w, "On pace")
					return
				}
				for _, pw := range warnings {
					fmt.Fprintf(w, "%-10s %d of %d tasks left, %d slots left (cycle %s..%s)\n",
						pw.Cadence.Label(), pw.RemainingTasks, pw.TotalTasks, pw.RemainingSlots,
						calendar.DayKey(pw.CycleStart), calendar.DayKey(calendar.AddDays(pw.CycleEnd, -1)))
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "evaluation day (default now)")
	return cmd
}
