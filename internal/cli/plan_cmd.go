package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/plan"
	"github.com/spf13/cobra"
)

func newPlanCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Edit the plan attached to a todo",
	}

	cmd.AddCommand(
		newPlanShowCmd(app),
		newPlanViewCmd(app),
		newPlanPreviewCmd(app),
		newPlanImportCmd(app),
		newPlanExportCmd(app),
		newPlanSetCmd(app),
		newPlanItemCmd(app),
	)

	return cmd
}

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newPlanShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a todo's plan as editable sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			ed, err := app.Plans.OpenEditor(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), ed)
			}
			out := cmd.OutOrStdout()
			if ed.PlanningMode {
				fmt.Fprintln(out, formatter.StyleYellow.Render("planning mode"))
			}
			fmt.Fprint(out, formatter.FormatPlan(ed.Structure))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the editor state as JSON")
	return cmd
}

func newPlanViewCmd(app *App) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "view <id>",
		Short: "Print the stored plan document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			doc, err := app.Plans.View(cmd.Context(), id)
			if err != nil {
				return err
			}
			if !asHTML {
				doc = plan.PlainText(doc)
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.TrimRight(doc, "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Print the full HTML document")
	return cmd
}

func newPlanPreviewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "preview <file|->",
		Short: "Render a plan structure JSON file to HTML without saving",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(cmd, args[0])
			if err != nil {
				return err
			}
			var s plan.Structure
			if err := json.Unmarshal(data, &s); err != nil {
				return fmt.Errorf("parsing plan: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), app.Plans.Preview(s))
			return nil
		},
	}
}

func newPlanImportCmd(app *App) *cobra.Command {
	var asHTML bool

	cmd := &cobra.Command{
		Use:   "import <id> <file|->",
		Short: "Save a plan from an exported JSON file or raw HTML",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			data, err := readInput(cmd, args[1])
			if err != nil {
				return err
			}

			var p plan.Payload = plan.Raw{HTML: string(data)}
			if !asHTML {
				var s plan.Structure
				if err := json.Unmarshal(data, &s); err != nil {
					return fmt.Errorf("parsing plan: %w", err)
				}
				p = plan.Structured{Structure: s}
			}
			if _, err := app.Plans.Save(cmd.Context(), id, p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan saved to #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&asHTML, "html", false, "Treat the input as hand-written HTML")
	return cmd
}

func newPlanExportCmd(app *App) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a plan as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			exp, err := app.Plans.Export(cmd.Context(), id)
			if err != nil {
				return err
			}
			if output == "-" {
				_, err := cmd.OutOrStdout().Write(append(exp.Data, '\n'))
				return err
			}
			if output == "" {
				output = exp.Filename
			}
			if err := os.WriteFile(output, exp.Data, 0o644); err != nil {
				return fmt.Errorf("writing export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported plan to %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: generated name)")
	return cmd
}

func newPlanSetCmd(app *App) *cobra.Command {
	var title, timeline, feedback, notes string

	cmd := &cobra.Command{
		Use:   "set <id>",
		Short: "Set the plan's title and free-text sections",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			fs := cmd.Flags()
			_, err = app.Plans.Edit(cmd.Context(), id, func(s *plan.Structure) error {
				if fs.Changed("title") {
					s.Title = title
				}
				if fs.Changed("timeline") {
					s.Timeline = timeline
				}
				if fs.Changed("feedback") {
					s.UserFeedback = feedback
				}
				if fs.Changed("notes") {
					s.SetNotesText(notes)
				}
				return nil
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan of #%d updated\n", id)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Plan title")
	cmd.Flags().StringVar(&timeline, "timeline", "", "Timeline text")
	cmd.Flags().StringVar(&feedback, "feedback", "", "User feedback")
	cmd.Flags().StringVar(&notes, "notes", "", "Notes, paragraphs separated by blank lines")
	return cmd
}

func newPlanItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Edit list items (goals, requirements, steps, risks)",
	}

	edit := func(cmd *cobra.Command, rawID, rawField string, fn func(*plan.Structure, plan.ListField) error) error {
		id, err := parseID(rawID)
		if err != nil {
			return err
		}
		field, err := plan.ParseListField(rawField)
		if err != nil {
			return err
		}
		t, err := app.Plans.Edit(cmd.Context(), id, func(s *plan.Structure) error { return fn(s, field) })
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), formatter.FormatPlan(plan.Parse(t.PlanHTML)))
		return nil
	}

	add := &cobra.Command{
		Use:   "add <id> <field> <text...>",
		Short: "Append an item",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[2:], " ")
			return edit(cmd, args[0], args[1], func(s *plan.Structure, f plan.ListField) error {
				if err := s.AppendItem(f); err != nil {
					return err
				}
				return s.SetItem(f, len(s.Items(f))-1, text)
			})
		},
	}

	rm := &cobra.Command{
		Use:   "rm <id> <field> <position>",
		Short: "Remove an item by its position",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[2])
			}
			return edit(cmd, args[0], args[1], func(s *plan.Structure, f plan.ListField) error {
				return s.RemoveItem(f, pos)
			})
		},
	}

	move := &cobra.Command{
		Use:   "move <id> <field> <position> <up|down>",
		Short: "Move an item one place",
		Args:  cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			pos, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid position %q", args[2])
			}
			var dir plan.Direction
			switch args[3] {
			case "up":
				dir = plan.Up
			case "down":
				dir = plan.Down
			default:
				return fmt.Errorf("direction must be up or down, got %q", args[3])
			}
			return edit(cmd, args[0], args[1], func(s *plan.Structure, f plan.ListField) error {
				return s.MoveItem(f, pos, dir)
			})
		},
	}

	cmd.AddCommand(add, rm, move)
	return cmd
}
