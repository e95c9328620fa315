package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/service"
)

// NewTaskCommand groups task management subcommands.
func NewTaskCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Manage recurring tasks",
	}
	cmd.AddCommand(newTaskAddCommand(rootOpts))
	cmd.AddCommand(newTaskListCommand(rootOpts))
	cmd.AddCommand(newTaskDeleteCommand(rootOpts))
	return cmd
}

type taskAddOptions struct {
	title       string
	description string
	cadence     string
	weekday     string
	anchor      string
	assignees   []uint
}

func newTaskAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &taskAddOptions{}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a task",
		Long: `Create a task with a cadence. Weekly and biweekly tasks may be pinned to a
weekday; a pinned biweekly task also needs an --anchor date on that weekday.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			input, err := opts.toInput()
			if err != nil {
				return f.Fail(ExitCommandError, "parse flags", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			task, err := a.taskSvc.CreateTask(cmd.Context(), input)
			if err != nil {
				return f.Fail(exitCodeFor(err), "create task", err)
			}
			return f.Success(task, func(w io.Writer) {
				fmt.Fprintf(w, "Created task #%d %s\n", task.ID, describeTask(*task))
			})
		},
	}
	cmd.Flags().StringVar(&opts.title, "title", "", "task title")
	cmd.Flags().StringVar(&opts.description, "description", "", "optional description")
	cmd.Flags().StringVar(&opts.cadence, "cadence", "", "daily|weekly|biweekly|monthly|bimonthly|semiannual|yearly")
	cmd.Flags().StringVar(&opts.weekday, "weekday", "", "pinned weekday (mon..sun or 0..6 with 0 = Monday)")
	cmd.Flags().StringVar(&opts.anchor, "anchor", "", "first day of a pinned biweekly task")
	cmd.Flags().UintSliceVar(&opts.assignees, "assignee", nil, "assigned member id (repeatable)")
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("cadence")
	return cmd
}

func (o *taskAddOptions) toInput() (service.TaskInput, error) {
	cadence, err := model.ParseCadence(o.cadence)
	if err != nil {
		return service.TaskInput{}, err
	}
	input := service.TaskInput{
		Title:       o.title,
		Description: o.description,
		Cadence:     cadence,
		AssigneeIDs: o.assignees,
	}
	if o.weekday != "" {
		wd, err := parseWeekday(o.weekday)
		if err != nil {
			return service.TaskInput{}, err
		}
		input.PinnedWeekday = &wd
	}
	if o.anchor != "" {
		anchor, err := calendar.ParseCivilDate(o.anchor)
		if err != nil {
			return service.TaskInput{}, err
		}
		input.AnchorDate = &anchor
	}
	return input, nil
}

var weekdayNames = []string{"mon", "tue", "wed", "thu", "fri", "sat", "sun"}

// parseWeekday accepts 0..6 (Monday first) or an English day name.
func parseWeekday(raw string) (int, error) {
	value := strings.ToLower(strings.TrimSpace(raw))
	if n, err := strconv.Atoi(value); err == nil {
		if n < 0 || n > 6 {
			return 0, fmt.Errorf("weekday %d out of range 0..6", n)
		}
		return n, nil
	}
	for i, name := range weekdayNames {
		if len(value) >= 3 && strings.HasPrefix(value, name) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown weekday %q", raw)
}

func describeTask(task model.Task) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%s [%s]", task.Title, task.Cadence.Label()))
	if task.PinnedWeekday != nil {
		sb.WriteString(" on " + weekdayNames[*task.PinnedWeekday])
	}
	if task.AnchorDate != nil {
		sb.WriteString(" from " + calendar.DayKey(*task.AnchorDate))
	}
	if len(task.Assignees) > 0 {
		names := make([]string, 0, len(task.Assignees))
		for _, u := range task.Assignees {
			names = append(names, u.Name)
		}
		sb.WriteString(" -> " + strings.Join(names, ", "))
	}
	return sb.String()
}

func newTaskListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			tasks, err := a.taskSvc.ListTasks(cmd.Context())
			if err != nil {
				return f.Fail(exitCodeFor(err), "list tasks", err)
			}
			return f.Success(tasks, func(w io.Writer) {
				if len(tasks) == 0 {
					fmt.Fprintln(w, "No tasks")
					return
				}
				for _, task := range tasks {
					fmt.Fprintf(w, "#%-4d %s\n", task.ID, describeTask(task))
				}
			})
		},
	}
}

func newTaskDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task with its occurrences and completions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			id, err := parseIDArg(args[0])
			if err != nil {
				return f.Fail(ExitCommandError, "parse task id", err)
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			if err := a.taskSvc.DeleteTask(cmd.Context(), id); err != nil {
				return f.Fail(exitCodeFor(err), "delete task", err)
			}
			return f.Success(map[string]uint{"deleted": id}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted task #%d\n", id)
			})
		},
	}
}

func parseIDArg(raw string) (uint, error) {
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || n == 0 {
		return 0, fmt.Errorf("invalid id %q", raw)
	}
	return uint(n), nil
}
