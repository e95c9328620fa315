package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"household-planner/internal/model"
)

// NewUserCommand groups household member subcommands.
func NewUserCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage household members",
	}
	cmd.AddCommand(newUserAddCommand(rootOpts))
	cmd.AddCommand(newUserListCommand(rootOpts))
	return cmd
}

func newUserAddCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		name       string
		telegramID int64
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a household member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			name = strings.TrimSpace(name)
			if name == "" {
				return f.Fail(ExitCommandError, "parse --name", fmt.Errorf("name is required"))
			}

			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			user := model.User{Name: name}
			if telegramID != 0 {
				user.TelegramID = &telegramID
			}
			if err := a.users.Create(cmd.Context(), &user); err != nil {
				return f.Fail(exitCodeFor(err), "create member", err)
			}
			return f.Success(user, func(w io.Writer) {
				fmt.Fprintf(w, "Added member #%d %s\n", user.ID, user.Name)
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().Int64Var(&telegramID, "telegram-id", 0, "link to a Telegram account")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newUserListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List household members",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := newFormatter(rootOpts, cmd)
			a, err := openApp(rootOpts)
			if err != nil {
				return err
			}
			defer a.Close()

			users, err := a.users.ListAll(cmd.Context())
			if err != nil {
				return f.Fail(exitCodeFor(err), "list members", err)
			}
			return f.Success(users, func(w io.Writer) {
				if len(users) == 0 {
					fmt.Fprintln(w, "No members")
					return
				}
				for _, u := range users {
					fmt.Fprintf(w, "#%-4d %s\n", u.ID, u.Name)
				}
			})
		},
	}
}
