package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// boxStyle frames single-todo and plan views.
var boxStyle = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(ColorDim).
	Padding(1, 2)

// RenderBox frames content, with title as an upper-cased header when set.
func RenderBox(title string, content string) string {
	if title == "" {
		return boxStyle.Render(content)
	}
	return boxStyle.Render(StyleHeader.Render(strings.ToUpper(title)) + "\n\n" + content)
}

// RelativeDateFrom describes t relative to now in days, weeks or months.
func RelativeDateFrom(t time.Time, now time.Time) string {
	days := int(math.Round(t.Sub(now).Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// DueLabel renders a due date with urgency colouring. Closed todos are
// never urgent.
func DueLabel(due *time.Time, open bool, now time.Time) string {
	if due == nil {
		return StyleDim.Render("--")
	}
	text := RelativeDateFrom(*due, now)
	if !open {
		return StyleDim.Render(text)
	}
	days := int(math.Round(due.Sub(now).Hours() / 24))
	switch {
	case days <= 2:
		return StyleRed.Render(text)
	case days <= 7:
		return StyleYellow.Render(text)
	}
	return StyleFg.Render(text)
}

// clock is swapped in tests.
var clock = time.Now

// HumanDate names today and yesterday, otherwise prints a short date.
func HumanDate(t time.Time) string {
	now := clock()
	day := func(x time.Time) time.Time {
		y, m, d := x.In(now.Location()).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	}
	today, d := day(now), day(t)
	switch {
	case d.Equal(today):
		return "Today"
	case d.Equal(today.AddDate(0, 0, -1)):
		return "Yesterday"
	}
	return t.Format("Jan 2, 2006")
}

// HumanTimestamp is relative within the last day ("5 minutes ago") and
// falls back to HumanDate beyond it or in the future.
func HumanTimestamp(t time.Time) string {
	now := clock()
	diff := now.Sub(t)
	switch {
	case diff < 0, diff >= 24*time.Hour:
		return HumanDate(t)
	case diff < time.Minute:
		return "Just now"
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FormatHours renders an hour estimate, "--" when unset.
func FormatHours(h *float64) string {
	if h == nil {
		return "--"
	}
	return strconv.FormatFloat(*h, 'f', -1, 64) + "h"
}

// Truncate shortens s to n runes with an ellipsis.
func Truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	r := []rune(s)
	if n <= 1 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
