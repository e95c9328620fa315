package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// NewWarningsCommand creates the warnings command.
func NewWarningsCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date      string
		threshold float64
	)

	cmd := &cobra.Command{
		Use:   "warnings",
		Short: "Show cycles close to their end with unscheduled tasks",
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

			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Planning.WarningThreshold
			}
			if threshold < 0 || threshold > 1 {
				return f.Fail(ExitCommandError, "parse --threshold", fmt.Errorf("must be within 0..1, got %v", threshold))
			}

			warnings, err := a.cascade.GetDashboardPlanningWarnings(cmd.Context(), now, threshold)
			if err != nil {
				return f.Fail(exitCodeFor(err), "planning warnings", err)
			}
			return f.Success(warnings, func(w io.Writer) {
				if len(warnings) == 0 {
					fmt.Fprintln(w, "No warnings")
					return
				}
				for _, pw := range warnings {
					fmt.Fprintf(w, "%-10s %3.0f%% of cycle left, unscheduled: %s\n",
						pw.Cadence.Label(), pw.RemainingFraction*100, strings.Join(pw.UnscheduledTasks, ", "))
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "evaluation day (default now)")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.25, "remaining cycle fraction at or below which to warn (default from config)")
	return cmd
}
