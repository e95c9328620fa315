package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewStreakCommand creates the streak command.
func NewStreakCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		date   string
		userID uint
	)

	cmd := &cobra.Command{
		Use:   "streak",
		Short: "Show a member's streak of consecutive completed days",
		Long: `Count consecutive civil days ending today on which the member completed at
least one occurrence. Declared absence days neither count nor break the streak.`,
		Args: cobra.NoArgs,
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

			summary, err := a.absence.UserStreak(cmd.Context(), userID, now)
			if err != nil {
				return f.Fail(exitCodeFor(err), "compute streak", err)
			}
			return f.Success(summary, func(w io.Writer) {
				fmt.Fprintf(w, "Member #%d: %d day streak", summary.UserID, summary.Days)
				if summary.OnAbsence {
					fmt.Fprint(w, " (on absence today)")
				}
				fmt.Fprintln(w)
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "evaluation day (default now)")
	cmd.Flags().UintVar(&userID, "user", 0, "member id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
