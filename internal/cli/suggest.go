package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"household-planner/internal/calendar"
	"household-planner/internal/model"
	"household-planner/internal/service"
)

type suggestOptions struct {
	date     string
	userID   uint
	schedule bool
}

// suggestResult is the JSON payload of the suggest command.
type suggestResult struct {
	Suggestion *service.Suggestion `json:"suggestion"`
	Scheduled  *model.Occurrence   `json:"scheduled,omitempty"`
}

// NewSuggestCommand creates the suggest command.
func NewSuggestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &suggestOptions{}

	cmd := &cobra.Command{
		Use:   "suggest <cadence>",
		Short: "Suggest a slower task for a vacant slot",
		Long: `Pick one task of the next slower cadence that has not been scheduled in its
current cycle. With --schedule the suggestion is placed on the given day as a
suggested occurrence filling the requested slot.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSuggest(cmd, rootOpts, opts, args[0])
		},
	}
	cmd.Flags().StringVar(&opts.date, "date", "", "day to plan (default now)")
	cmd.Flags().UintVar(&opts.userID, "user", 0, "prefer tasks assigned to this member")
	cmd.Flags().BoolVar(&opts.schedule, "schedule", false, "schedule the suggestion on --date")
	return cmd
}

func runSuggest(cmd *cobra.Command, rootOpts *RootOptions, opts *suggestOptions, rawCadence string) error {
	f := newFormatter(rootOpts, cmd)
	cadence, err := model.ParseCadence(rawCadence)
	if err != nil {
		return f.Fail(ExitCommandError, "parse cadence", err)
	}
	now, err := resolveNow(opts.date)
	if err != nil {
		return f.Fail(ExitCommandError, "parse --date", err)
	}

	a, err := openApp(rootOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	req := service.SuggestionRequest{CurrentCadence: cadence, Now: now}
	if opts.userID != 0 {
		req.UserID = &opts.userID
	}
	suggestion, err := a.cascade.SuggestCascadedTask(cmd.Context(), req)
	if err != nil {
		return f.Fail(exitCodeFor(err), "suggest", err)
	}

	result := suggestResult{Suggestion: suggestion}
	if suggestion != nil && opts.schedule {
		occ, err := a.planner.ScheduleTask(cmd.Context(), service.ScheduleInput{
			TaskID:    suggestion.Task.ID,
			Date:      now,
			Slot:      cadence,
			Suggested: true,
		})
		if err != nil {
			return f.Fail(exitCodeFor(err), "schedule suggestion", err)
		}
		result.Scheduled = occ
	}

	return f.Success(result, func(w io.Writer) {
		if suggestion == nil {
			fmt.Fprintf(w, "Nothing to suggest for a %s slot\n", cadence.Label())
			return
		}
		last := "never"
		if suggestion.LastCompletedAt != nil {
			last = calendar.DayKey(*suggestion.LastCompletedAt)
		}
		fmt.Fprintf(w, "Suggested #%d %s (%s, last done %s)\n",
			suggestion.Task.ID, suggestion.Task.Title, suggestion.SourceCadence.Label(), last)
		if result.Scheduled != nil {
			fmt.Fprintf(w, "Scheduled as occurrence #%d on %s\n", result.Scheduled.ID, calendar.DayKey(result.Scheduled.Date))
		}
	})
}
