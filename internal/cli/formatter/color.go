package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/taskdeck/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

// Gruvbox-inspired color palette.
var (
	ColorGreen  = lipgloss.Color("#8ec07c")
	ColorYellow = lipgloss.Color("#fabd2f")
	ColorRed    = lipgloss.Color("#fb4934")
	ColorBlue   = lipgloss.Color("#83a598")
	ColorPurple = lipgloss.Color("#d3869b")
	ColorDim    = lipgloss.Color("#928374")
	ColorFg     = lipgloss.Color("#ebdbb2")
	ColorHeader = lipgloss.Color("#fe8019")
)

var (
	StyleGreen  = lipgloss.NewStyle().Foreground(ColorGreen)
	StyleYellow = lipgloss.NewStyle().Foreground(ColorYellow)
	StyleRed    = lipgloss.NewStyle().Foreground(ColorRed)
	StyleBlue   = lipgloss.NewStyle().Foreground(ColorBlue)
	StylePurple = lipgloss.NewStyle().Foreground(ColorPurple)
	StyleDim    = lipgloss.NewStyle().Foreground(ColorDim)
	StyleFg     = lipgloss.NewStyle().Foreground(ColorFg)
	StyleHeader = lipgloss.NewStyle().Foreground(ColorHeader).Bold(true)
	StyleBold   = lipgloss.NewStyle().Foreground(ColorFg).Bold(true)
)

// StatusPill returns a colored indicator such as "● In Progress".
func StatusPill(status domain.Status) string {
	switch status {
	case domain.StatusPending:
		return StyleBlue.Render("○ Pending")
	case domain.StatusInProgress:
		return StyleGreen.Render("● In Progress")
	case domain.StatusBlocked:
		return StyleRed.Render("■ Blocked")
	case domain.StatusCompleted:
		return StyleDim.Render("✔ Completed")
	case domain.StatusCancelled:
		return StyleDim.Render("✖ Cancelled")
	default:
		return StyleDim.Render(string(status))
	}
}

func PriorityLabel(p domain.Priority) string {
	switch p {
	case domain.PriorityCritical:
		return StyleRed.Bold(true).Render("▲ critical")
	case domain.PriorityHigh:
		return StyleYellow.Render("▲ high")
	case domain.PriorityMedium:
		return StyleFg.Render("● medium")
	case domain.PriorityLow:
		return StyleDim.Render("▽ low")
	default:
		return StyleDim.Render(string(p))
	}
}

// ScopeBadge renders a scope in its configured hex colour. An empty colour
// falls back to purple.
func ScopeBadge(scope domain.Scope, hex string) string {
	if scope == "" {
		return StyleDim.Render("--")
	}
	style := StylePurple
	if hex != "" {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color(hex))
	}
	return style.Render(strings.ToUpper(string(scope)))
}

// Header renders a section header with the orange header style and an underline.
func Header(text string) string {
	upper := strings.ToUpper(text)
	line := strings.Repeat("─", lipgloss.Width(upper))
	return fmt.Sprintf("%s\n%s", StyleHeader.Render(upper), StyleDim.Render(line))
}

func Dim(text string) string {
	return StyleDim.Render(text)
}

func Bold(text string) string {
	return StyleBold.Render(text)
}
