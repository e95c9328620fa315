package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
	"household-planner/internal/service"
)

// NewAbsenceCommand groups absence period subcommands.
func NewAbsenceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "absence",
		Short: "Declare and list absence periods",
	}
	cmd.AddCommand(newAbsenceAddCommand(rootOpts))
	cmd.AddCommand(newAbsenceListCommand(rootOpts))
	return cmd
}

func newAbsenceAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID   uint
		from, to string
		reason   string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Declare an inclusive absence period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			start, err := calendar.ParseCivilDate(from)
			if err != nil {
				return f.Fail(ExitCommandError, "parse --from", err)
			}
			end := start
			if to != "" {
				if end, err = calendar.ParseCivilDate(to); err != nil {
					return f.Fail(ExitCommandError, "parse --to", err)
				}
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			period, err := a.absence.CreateAbsence(cmd.Context(), service.AbsenceInput{
				UserID: userID,
				Start:  start,
				End:    end,
				Reason: reason,
			})
			if err != nil {
				return f.Fail(exitCodeFor(err), "create absence", err)
			}
			return f.Success(period, func(w io.Writer) {
				fmt.Fprintf(w, "Absence #%d for member #%d: %s..%s\n", period.ID, period.UserID,
					calendar.DayKey(period.StartDate), calendar.DayKey(period.EndDate))
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "member id")
	cmd.Flags().StringVar(&from, "from", "", "first absent day")
	cmd.Flags().StringVar(&to, "to", "", "last absent day (default --from)")
	cmd.Flags().StringVar(&reason, "reason", "", "optional reason")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("from")
	return cmd
}

func newAbsenceListCommand(rootOpts *RootOptions) *cobra.Command {
	var userID uint

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a member's absence periods",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			periods, err := a.absence.ListAbsences(cmd.Context(), userID)
			if err != nil {
				return f.Fail(exitCodeFor(err), "list absences", err)
			}
			return f.Success(periods, func(w io.Writer) {
				if len(periods) == 0 {
					fmt.Fprintln(w, "No absences")
					return
				}
				for _, p := range periods {
					fmt.Fprintf(w, "#%-4d %s..%s %s\n", p.ID, calendar.DayKey(p.StartDate), calendar.DayKey(p.EndDate), p.Reason)
				}
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "member id")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}
