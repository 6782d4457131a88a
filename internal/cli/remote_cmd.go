package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/spf13/cobra"
)

// errRemoteFailed is returned after a failed remote result has been printed,
// so the process exits non-zero.
var errRemoteFailed = errors.New("remote command failed")

func newRemoteCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remote",
		Short: "Drive the assistant's tmux session over SSH",
	}

	status := &cobra.Command{
		Use:   "status",
		Short: "Show whether the session is running and its last output",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Remote.Status(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRemoteStatus(res))
			if !res.Success {
				return errRemoteFailed
			}
			return nil
		},
	}

	send := &cobra.Command{
		Use:   "send [command...]",
		Short: "Type a command into the session (default ./todo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Remote.Send(cmd.Context(), strings.Join(args, " "))
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSend(res))
			if !res.Success {
				return errRemoteFailed
			}
			return nil
		},
	}

	test := &cobra.Command{
		Use:   "test",
		Short: "Check the SSH connection",
		RunE: func(cmd *cobra.Command, args []string) error {
			res := app.Remote.Test(cmd.Context())
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatRemoteTest(res))
			if !res.Success {
				return errRemoteFailed
			}
			return nil
		},
	}

	trigger := &cobra.Command{
		Use:   "trigger <id>",
		Short: "Tell the assistant to work on a specific todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			res, err := app.Remote.Trigger(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSend(res))
			if !res.Success {
				return errRemoteFailed
			}
			return nil
		},
	}

	cmd.AddCommand(status, send, test, trigger)
	return cmd
}
