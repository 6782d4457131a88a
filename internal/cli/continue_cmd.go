package cli

import (
	"fmt"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/spf13/cobra"
)

func newContinueCmd(app *App) *cobra.Command {
	var (
		req        service.ContinueRequest
		mode       string
		promptOnly bool
	)

	cmd := &cobra.Command{
		Use:   "continue <id>",
		Short: "Continue a todo as a new version or reopen it",
		Long: "Continue a todo. With --new a successor todo is created with the next\n" +
			"version number (1.00, 1.01, ... 1.99, 2.00) and the original's history;\n" +
			"otherwise the todo itself is reopened. Prints the prompt for the assistant.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			req.Mode = domain.AssistantMode(mode)
			if cmd.Flags().NFlag() == 0 && app.interactive() {
				if err := continueForm(&req).Run(); err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if promptOnly {
				prompt, err := app.Continues.Prompt(cmd.Context(), id, req)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, prompt)
				return nil
			}

			res, err := app.Continues.Continue(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			if res.Continued != nil {
				fmt.Fprintf(out, "Continued #%d as #%d (v%s)\n", res.Original.ID, res.Continued.ID, res.Continued.Version)
			} else {
				fmt.Fprintf(out, "Reopened #%d %s\n", res.Original.ID, formatter.StatusPill(res.Original.Status))
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, formatter.Header("prompt"))
			fmt.Fprintln(out, res.Prompt)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&req.Reason, "reason", "", "Why the todo needs more work")
	fs.StringVar(&req.Notes, "notes", "", "Notes for the assistant")
	fs.StringVar(&req.Context, "context", "", "Extra context to include in the prompt")
	fs.BoolVar(&req.CreateNew, "new", false, "Create a new version instead of reopening")
	fs.BoolVar(&req.PlanMode, "plan", false, "Ask the assistant to plan first")
	fs.BoolVar(&req.HighPriority, "high", false, "Raise the priority to high")
	fs.StringVar(&mode, "mode", "", "Assistant mode for the continuation")
	fs.BoolVar(&promptOnly, "prompt-only", false, "Only print the prompt, change nothing")
	return cmd
}

func newFollowupCmd(app *App) *cobra.Command {
	var req service.FollowupRequest

	cmd := &cobra.Command{
		Use:   "followup <id>",
		Short: "Start a follow-up todo that carries this todo's context",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.Continues.Followup(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created follow-up #%d %s\n", t.ID, t.Title)
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&req.Title, "title", "", "Title of the follow-up")
	fs.StringVar(&req.Requirements, "requirements", "", "What the follow-up must deliver")
	fs.BoolVar(&req.IncludePlan, "include-plan", false, "Copy the plan into the follow-up")
	fs.BoolVar(&req.ContinuePlanning, "continue-planning", false, "Keep the follow-up in planning mode")
	return cmd
}

func newChainCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "chain <id>",
		Short: "Show the continuations created from a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			chain, err := app.Continues.Chain(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromContinuations(chain))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatContinuations(chain))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
