package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/repository"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

func newTodoCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Aliases: []string{"t"},
		Short:   "Manage todos",
	}

	cmd.AddCommand(
		newTodoAddCmd(app),
		newTodoListCmd(app),
		newTodoShowCmd(app),
		newTodoUpdateCmd(app),
		newTodoSetCmd(app),
		newTodoStatusCmd(app),
		newTodoBulkCmd(app),
		newTodoRemoveCmd(app),
		newTodoNextCmd(app),
		newTodoOutputCmd(app),
		newTodoCompleteCmd(app),
		newTodoCommentCmd(app),
		newTodoCommentsCmd(app),
		newTodoHistoryCmd(app),
		newTodoStatsCmd(app),
	)

	return cmd
}

// todoFlags are the editable todo fields shared by add and update.
type todoFlags struct {
	description, scope, priority, status string
	due, assign, dir, mode, tags, files  string
	estimate                             float64
}

func (f *todoFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.description, "description", "d", "", "Description / prompt for the assistant")
	fs.StringVar(&f.scope, "scope", "", "Scope (frontend, backend, database, ...)")
	fs.StringVarP(&f.priority, "priority", "p", "", "Priority (low, medium, high, critical)")
	fs.StringVar(&f.status, "status", "", "Status")
	fs.StringVar(&f.due, "due", "", "Due date (YYYY-MM-DD, empty to clear)")
	fs.StringVar(&f.assign, "assign", "", "Assignee")
	fs.StringVar(&f.dir, "dir", "", "Working directory")
	fs.StringVar(&f.mode, "mode", "", "Assistant mode (bypass, plan, default)")
	fs.StringVar(&f.tags, "tags", "", "Comma-separated tags")
	fs.StringVar(&f.files, "files", "", "Related files")
	fs.Float64Var(&f.estimate, "estimate", 0, "Estimated hours")
}

// apply copies the flags the user actually set onto in.
func (f *todoFlags) apply(fs *pflag.FlagSet, in *contract.TodoInput) {
	set := func(name string, dst *string, v string) {
		if fs.Changed(name) {
			*dst = v
		}
	}
	set("description", &in.Description, f.description)
	set("due", &in.DueDate, f.due)
	set("assign", &in.AssignedTo, f.assign)
	set("dir", &in.WorkingDirectory, f.dir)
	set("tags", &in.Tags, f.tags)
	set("files", &in.RelatedFiles, f.files)
	if fs.Changed("scope") {
		in.Scope = domain.Scope(f.scope)
	}
	if fs.Changed("priority") {
		in.Priority = domain.Priority(f.priority)
	}
	if fs.Changed("status") {
		in.Status = domain.Status(f.status)
	}
	if fs.Changed("mode") {
		in.AssistantMode = domain.AssistantMode(f.mode)
	}
	if fs.Changed("estimate") {
		h := f.estimate
		in.EstimatedHours = &h
	}
}

func newTodoAddCmd(app *App) *cobra.Command {
	var flags todoFlags

	cmd := &cobra.Command{
		Use:   "add [title...]",
		Short: "Create a todo",
		RunE: func(cmd *cobra.Command, args []string) error {
			in := contract.TodoInput{Title: strings.Join(args, " ")}
			flags.apply(cmd.Flags(), &in)

			if strings.TrimSpace(in.Title) == "" {
				if !app.interactive() {
					return fmt.Errorf("title is required")
				}
				if err := todoForm(&in, app.DirectoryPresets).Run(); err != nil {
					return err
				}
			}

			if strings.TrimSpace(in.WorkingDirectory) == "" {
				in.WorkingDirectory = app.DefaultWorkingDir
			}
			t := &domain.Todo{}
			if err := in.Apply(t); err != nil {
				return err
			}
			if err := app.Todos.Create(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created todo #%d %s (v%s)\n", t.ID, t.Title, t.Version)
			return nil
		},
	}

	flags.register(cmd.Flags())
	return cmd
}

func newTodoListCmd(app *App) *cobra.Command {
	var (
		f      repository.ListFilter
		status string
		scope  string
		prio   string
		parent int64
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			f.Status = domain.Status(status)
			f.Scope = domain.Scope(scope)
			f.Priority = domain.Priority(prio)
			if cmd.Flags().Changed("parent") {
				f.ParentID = &parent
			}

			todos, err := app.Todos.List(cmd.Context(), f)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromTodos(todos, app.now()))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTodoList(todos, app.ScopeColors, app.now()))
			return nil
		},
	}

	fs := cmd.Flags()
	fs.StringVar(&status, "status", "", "Filter by status")
	fs.StringVar(&scope, "scope", "", "Filter by scope")
	fs.StringVar(&prio, "priority", "", "Filter by priority")
	fs.StringVar(&f.AssignedTo, "assign", "", "Filter by assignee")
	fs.StringVar(&f.WorkingDirectory, "dir", "", "Filter by working directory")
	fs.StringVarP(&f.Search, "search", "s", "", "Search title and description")
	fs.StringVar(&f.OrderBy, "order", "", "Order by (created_at, updated_at, priority, due_date, title)")
	fs.BoolVar(&f.Ascending, "asc", false, "Ascending order")
	fs.IntVar(&f.Limit, "limit", 0, "Maximum number of todos")
	fs.IntVar(&f.Offset, "offset", 0, "Skip this many todos")
	fs.Int64Var(&parent, "parent", 0, "Only follow-ups of this todo")
	fs.BoolVar(&asJSON, "json", false, "Print JSON")

	return cmd
}

func newTodoShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show a todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.Todos.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromTodo(t, app.now()))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTodo(t, app.ScopeColors, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newTodoUpdateCmd(app *App) *cobra.Command {
	var (
		flags todoFlags
		title string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update a todo's fields",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.Todos.Get(cmd.Context(), id)
			if err != nil {
				return err
			}

			in := contract.FromTodoInput(t)
			if cmd.Flags().Changed("title") {
				in.Title = title
			}
			flags.apply(cmd.Flags(), &in)
			if err := in.Apply(t); err != nil {
				return err
			}
			if err := app.Todos.Update(cmd.Context(), t); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated todo #%d\n", t.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Title")
	flags.register(cmd.Flags())
	return cmd
}

func newTodoSetCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "set <id> <field> <value>",
		Short: "Quick-edit one field (" + strings.Join(service.QuickEditFields, ", ") + ")",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.Todos.QuickEdit(cmd.Context(), id, args[1], args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated todo #%d %s\n", t.ID, args[1])
			return nil
		},
	}
}

func newTodoStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status <id> <status>",
		Short: "Move a todo to another status",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			t, err := app.Todos.SetStatus(cmd.Context(), id, domain.Status(args[1]))
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", t.ID, formatter.StatusPill(t.Status))
			return nil
		},
	}
}

func newTodoBulkCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "bulk <delete|complete|reset|block> <id>...",
		Short: "Apply an action to several todos",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids, err := parseIDs(args[1:])
			if err != nil {
				return err
			}
			res, err := app.Todos.Bulk(cmd.Context(), domain.BulkAction(args[0]), ids)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d affected", res.Action, len(res.Affected))
			if len(res.Skipped) > 0 {
				fmt.Fprintf(cmd.OutOrStdout(), ", skipped %v", res.Skipped)
			}
			fmt.Fprintln(cmd.OutOrStdout())
			return nil
		},
	}
}

func newTodoRemoveCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"remove"},
		Short:   "Delete a todo with its comments, history and attachments",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				t, err := app.Todos.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				var ok bool
				if err := wizardConfirm(fmt.Sprintf("Delete #%d %s?", t.ID, t.Title), &ok).Run(); err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
			}
			if err := app.Todos.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted todo #%d\n", id)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip confirmation")
	return cmd
}

func newTodoNextCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Claim the next pending todo for the assistant",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Todos.NextForAssistant(cmd.Context())
			if errors.Is(err, repository.ErrNotFound) {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing pending for the assistant.")
				return nil
			}
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromTodo(t, app.now()))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatTodo(t, app.ScopeColors, app.now()))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}

func newTodoOutputCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "output <id> <text...>",
		Short: "Append assistant output to a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := app.Todos.AppendOutput(cmd.Context(), id, strings.Join(args[1:], " ")); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Output appended to #%d\n", id)
			return nil
		},
	}
}

func newTodoCompleteCmd(app *App) *cobra.Command {
	var (
		req   service.CompleteRequest
		hours string
	)

	cmd := &cobra.Command{
		Use:   "complete <id>",
		Short: "Mark a todo done with the assistant's report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if err := validateHours(hours); err != nil {
				return fmt.Errorf("--hours: %w", err)
			}
			if hours != "" {
				h, _ := strconv.ParseFloat(hours, 64)
				req.ActualHours = &h
			}
			t, err := app.Todos.Complete(cmd.Context(), id, req)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "#%d %s\n", t.ID, formatter.StatusPill(t.Status))
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Notes, "notes", "", "Completion notes")
	cmd.Flags().StringVar(&req.Output, "output", "", "Final output")
	cmd.Flags().StringVar(&hours, "hours", "", "Actual hours spent")
	return cmd
}

func newTodoCommentCmd(app *App) *cobra.Command {
	var assistant bool

	cmd := &cobra.Command{
		Use:   "comment <id> <text...>",
		Short: "Add a comment to a todo",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := app.Todos.Comment(cmd.Context(), id, strings.Join(args[1:], " "), assistant)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Comment #%d added to #%d\n", c.ID, id)
			return nil
		},
	}

	cmd.Flags().BoolVar(&assistant, "assistant", false, "Comment on behalf of the assistant")
	return cmd
}

func newTodoCommentsCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "comments <id>",
		Short: "List a todo's comments",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			comments, err := app.Todos.Comments(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatComments(comments))
			return nil
		},
	}
}

func newTodoHistoryCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "history <id>",
		Short: "Show a todo's change history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			entries, err := app.Todos.History(cmd.Context(), id)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatHistory(entries))
			return nil
		},
	}
}

func newTodoStatsCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show todo counters",
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := app.Todos.Stats(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), contract.FromStats(stats))
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStats(stats, app.ScopeColors))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print JSON")
	return cmd
}
