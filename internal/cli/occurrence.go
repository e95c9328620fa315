package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/service"
)

// NewOccurrenceCommand groups the manual grid commands.
func NewOccurrenceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "occurrence",
		Aliases: []string{"occ"},
		Short:   "Schedule, complete and delete occurrences",
	}
	cmd.AddCommand(newOccurrenceScheduleCommand(rootOpts))
	cmd.AddCommand(newOccurrenceCompleteCommand(rootOpts))
	cmd.AddCommand(newOccurrenceDeleteCommand(rootOpts))
	cmd.AddCommand(newOccurrenceListCommand(rootOpts))
	return cmd
}

func newOccurrenceScheduleCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		taskID    uint
		date      string
		slot      string
		suggested bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Place a task on a day",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			day, err := resolveNow(date)
			if err != nil {
				return f.Fail(ExitCommandError, "parse --date", err)
			}
			input := service.ScheduleInput{TaskID: taskID, Date: day, Suggested: suggested}
			if slot != "" {
				if input.Slot, err = model.ParseCadence(slot); err != nil {
					return f.Fail(ExitCommandError, "parse --slot", err)
				}
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			occ, err := a.planner.ScheduleTask(cmd.Context(), input)
			if err != nil {
				return f.Fail(exitCodeFor(err), "schedule task", err)
			}
			return f.Success(occ, func(w io.Writer) {
				fmt.Fprintf(w, "Occurrence #%d: task #%d on %s in the %s slot\n",
					occ.ID, occ.TaskID, calendar.DayKey(occ.Date), occ.Slot.Label())
			})
		},
	}
	cmd.Flags().UintVar(&taskID, "task", 0, "task id")
	cmd.Flags().StringVar(&date, "date", "", "day (default today)")
	cmd.Flags().StringVar(&slot, "slot", "", "cadence slot to fill (default the task's cadence)")
	cmd.Flags().BoolVar(&suggested, "suggested", false, "mark as a cascaded suggestion")
	_ = cmd.MarkFlagRequired("task")
	return cmd
}

func newOccurrenceCompleteCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		userID uint
		at     string
		notes  string
	)

	cmd := &cobra.Command{
		Use:   "complete <occurrence-id>",
		Short: "Record that a member completed an occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseIDArg(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, "parse occurrence id", err)
			}
			completedAt, err := resolveInstant(at)
			if err != nil {
				return f.Fail(ExitCommandError, "parse --at", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			completion, err := a.planner.CompleteOccurrence(cmd.Context(), userID, id, completedAt, notes)
			if err != nil {
				return f.Fail(exitCodeFor(err), "complete occurrence", err)
			}
			return f.Success(completion, func(w io.Writer) {
				fmt.Fprintf(w, "Completed occurrence #%d\n", id)
			})
		},
	}
	cmd.Flags().UintVar(&userID, "user", 0, "member id")
	cmd.Flags().StringVar(&at, "at", "", "completion time (default now)")
	cmd.Flags().StringVar(&notes, "notes", "", "optional notes")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

func newOccurrenceDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <occurrence-id>",
		Short: "Remove an occurrence from the grid",
		Long: `Remove an occurrence and its completion. Daily and pinned slots are hidden
instead so the nightly planning pass does not recreate them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseIDArg(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, "parse occurrence id", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			hidden, err := a.planner.DeleteOccurrence(cmd.Context(), id)
			if err != nil {
				return f.Fail(exitCodeFor(err), "delete occurrence", err)
			}
			data := map[string]interface{}{"id": id, "hidden": hidden}
			return f.Success(data, func(w io.Writer) {
				if hidden {
					fmt.Fprintf(w, "Hid occurrence #%d\n", id)
					return
				}
				fmt.Fprintf(w, "Deleted occurrence #%d\n", id)
			})
		},
	}
}

func newOccurrenceListCommand(rootOpts *RootOptions) *cobra.Command {
	var date string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show the agenda of a day",
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

			agenda, err := a.planner.Agenda(cmd.Context(), now)
			if err != nil {
				return f.Fail(exitCodeFor(err), "list agenda", err)
			}
			return f.Success(agenda, func(w io.Writer) {
				if len(agenda) == 0 {
					fmt.Fprintf(w, "Nothing planned for %s\n", calendar.DayKey(now))
					return
				}
				for _, item := range agenda {
					mark := " "
					if item.Completed {
						mark = "x"
					}
					suffix := ""
					if item.Occurrence.Suggested {
						suffix = " (suggested)"
					}
					fmt.Fprintf(w, "[%s] #%-4d %-10s %s%s\n", mark, item.Occurrence.ID,
						item.Occurrence.Slot.Label(), item.Occurrence.Task.Title, suffix)
				}
			})
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "day (default today)")
	return cmd
}
