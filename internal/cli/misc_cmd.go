package cli

import (
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/version"
	"github.com/spf13/cobra"
)

func newNextVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "next-version <version>",
		Short: "Print the version that follows the given one",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), version.Next(args[0]))
			return nil
		},
	}
}

func newServeCmd(app *App) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.Serve == nil {
				return fmt.Errorf("serving is not configured")
			}
			if addr == "" {
				addr = app.ListenAddr
			}
			return app.Serve(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from TASKDECK_ADDR)")
	return cmd
}
