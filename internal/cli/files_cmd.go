package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/spf13/cobra"
)

func newAttachCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attach",
		Short: "Manage files attached to todos",
	}

	add := &cobra.Command{
		Use:   "add <todo-id> <file>",
		Short: "Attach a file to a todo",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			f, err := os.Open(args[1])
			if err != nil {
				return err
			}
			defer f.Close()

			a, err := app.Attachments.Upload(cmd.Context(), id, filepath.Base(args[1]), f)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Attached %s to #%d as #%d\n", a.FileName, id, a.ID)
			return nil
		},
	}

	var asJSON bool
	list := &cobra.Command{
		Use:   "list <todo-id>",
		Short: "List a todo's attachments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			items, err := app.Attachments.List(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromAttachments(items))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatAttachments(items))
			return nil
		},
	}
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	rm := &cobra.Command{
		Use:   "rm <attachment-id>",
		Short: "Delete an attachment and its file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Attachments.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted attachment #%d\n", id)
			return nil
		},
	}

	cmd.AddCommand(add, list, rm)
	return cmd
}

func newScreenshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "screenshots",
		Aliases: []string{"shots"},
		Short:   "Browse the configured screenshot directories",
	}

	var dir, search string
	var asJSON bool
	list := &cobra.Command{
		Use:   "list",
		Short: "List screenshots, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			shots, err := app.Screenshots.List(cmd.Context(), dir, search)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), shots)
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScreenshots(shots))
			return nil
		},
	}
	list.Flags().StringVar(&dir, "dir", "", "Only this configured directory")
	list.Flags().StringVarP(&search, "search", "s", "", "Filter by file name")
	list.Flags().BoolVar(&asJSON, "json", false, "Print JSON")

	rm := &cobra.Command{
		Use:   "rm <path>",
		Short: "Delete a screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Screenshots.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
			return nil
		},
	}

	cmd.AddCommand(list, rm)
	return cmd
}
