package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/taskdeck/internal/cli/formatter"
	"github.com/alexanderramin/taskdeck/internal/config"
	"github.com/alexanderramin/taskdeck/internal/contract"
	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/alexanderramin/taskdeck/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// huhTheme returns a huh theme using the formatter's Gruvbox palette.
func huhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorGreen)
	t.Focused.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorFg)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.TextInput.Cursor = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Prompt = lipgloss.NewStyle().Foreground(formatter.ColorHeader)
	t.Focused.TextInput.Placeholder = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectSelector = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.SelectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.UnselectedOption = lipgloss.NewStyle().Foreground(formatter.ColorDim)
	t.Blurred.TextInput.Text = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}

func enumOptions[T ~string](values []T) []huh.Option[T] {
	opts := make([]huh.Option[T], 0, len(values))
	for _, v := range values {
		opts = append(opts, huh.NewOption(strings.ReplaceAll(string(v), "_", " "), v))
	}
	return opts
}

// todoForm collects a new todo. The working directory is offered from the
// configured presets when there are any.
func todoForm(in *contract.TodoInput, presets []config.DirectoryPreset) *huh.Form {
	if in.Scope == "" {
		in.Scope = domain.ScopeOther
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}

	var dir huh.Field = huh.NewInput().
		Title("Working directory").
		Placeholder("/var/www/project").
		Value(&in.WorkingDirectory)
	if len(presets) > 0 {
		opts := []huh.Option[string]{huh.NewOption("(default)", "")}
		for _, p := range presets {
			opts = append(opts, huh.NewOption(fmt.Sprintf("%s  %s", p.Name, p.Path), p.Path))
		}
		dir = huh.NewSelect[string]().Title("Working directory").Options(opts...).Value(&in.WorkingDirectory)
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Title").Value(&in.Title).Validate(requiredText),
			huh.NewText().Title("Description").Value(&in.Description),
		),
		huh.NewGroup(
			huh.NewSelect[domain.Scope]().Title("Scope").Options(enumOptions(domain.Scopes)...).Value(&in.Scope),
			huh.NewSelect[domain.Priority]().Title("Priority").Options(enumOptions(domain.Priorities)...).Value(&in.Priority),
			dir,
			huh.NewInput().Title("Due date (YYYY-MM-DD, blank for none)").Placeholder("2026-06-30").
				Value(&in.DueDate).Validate(validateOptionalDate),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

// continueForm asks how a todo should be continued.
func continueForm(req *service.ContinueRequest) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Why continue?").Placeholder("Tests still failing").Value(&req.Reason),
			huh.NewText().Title("Notes for the assistant").Value(&req.Notes),
			huh.NewConfirm().Title("Create a new version?").Affirmative("New todo").Negative("Reopen").Value(&req.CreateNew),
			huh.NewConfirm().Title("Plan first?").Affirmative("Yes").Negative("No").Value(&req.PlanMode),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func wizardConfirm(title string, result *bool) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative("Yes").
				Negative("No").
				Value(result),
		),
	).WithTheme(huhTheme()).WithShowHelp(false)
}

func requiredText(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("required")
	}
	return nil
}

// validateOptionalDate accepts empty or a YYYY-MM-DD date string.
func validateOptionalDate(s string) error {
	if s == "" {
		return nil
	}
	if _, err := time.Parse(contract.DateLayout, s); err != nil {
		return fmt.Errorf("use YYYY-MM-DD format")
	}
	return nil
}

// validateHours accepts empty or a non-negative number of hours.
func validateHours(s string) error {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 {
		return fmt.Errorf("enter a non-negative number")
	}
	return nil
}
