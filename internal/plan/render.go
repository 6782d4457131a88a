package plan

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// Section headings written by Render. Each one classifies back to its own
// section in Parse.
const (
	headingGoals        = "Goals"
	headingRequirements = "Requirements"
	headingSteps        = "Implementation Steps"
	headingRisks        = "Risks"
	headingNotes        = "Notes"
	headingTimeline     = "Timeline"
	headingFeedback     = "User Feedback"
)

// Render produces the stored HTML for a structure. Empty fields produce no
// section at all, steps carry explicit 1-based numbers, and the output
// depends only on s, so rendering the same structure twice is identical.
func Render(s Structure) string {
	if s.IsEmpty() {
		return ""
	}

	var b strings.Builder
	b.WriteString("<div class=\"structured-plan\">\n")
	if title := strings.TrimSpace(s.Title); title != "" {
		fmt.Fprintf(&b, "<h1 class=\"plan-title\">%s</h1>\n", inlineHTML(title))
	}
	writeList(&b, "goals", headingGoals, "ul", compact(s.Goals))
	writeList(&b, "requirements", headingRequirements, "ul", compact(s.Requirements))
	writeList(&b, "steps", headingSteps, "ol", compact(s.Steps))
	writeList(&b, "risks", headingRisks, "ul", compact(s.Risks))
	writeParagraphs(&b, "notes", headingNotes, compact(s.Notes))
	writeParagraphs(&b, "timeline", headingTimeline, splitParagraphs(s.Timeline))
	writeParagraphs(&b, "feedback", headingFeedback, splitParagraphs(s.UserFeedback))
	b.WriteString("</div>\n")
	return b.String()
}

func writeList(b *strings.Builder, class, heading, tag string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "<section class=\"plan-%s\">\n<h2>%s</h2>\n<%s>\n", class, heading, tag)
	for i, item := range items {
		if tag == "ol" {
			fmt.Fprintf(b, "<li value=\"%d\">%s</li>\n", i+1, inlineHTML(item))
			continue
		}
		fmt.Fprintf(b, "<li>%s</li>\n", inlineHTML(item))
	}
	fmt.Fprintf(b, "</%s>\n</section>\n", tag)
}

func writeParagraphs(b *strings.Builder, class, heading string, paras []string) {
	if len(paras) == 0 {
		return
	}
	fmt.Fprintf(b, "<section class=\"plan-%s\">\n<h2>%s</h2>\n", class, heading)
	for _, p := range paras {
		fmt.Fprintf(b, "<p>%s</p>\n", inlineHTML(p))
	}
	b.WriteString("</section>\n")
}

// inlineHTML escapes text and turns its line breaks into <br>.
func inlineHTML(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	for i, line := range lines {
		lines[i] = html.EscapeString(strings.TrimSpace(line))
	}
	return strings.Join(lines, "<br>")
}

const documentStyle = `body{font-family:-apple-system,BlinkMacSystemFont,"Segoe UI",Roboto,sans-serif;line-height:1.6;max-width:860px;margin:2em auto;padding:0 1em;color:#1d2327}
.structured-plan h1{border-bottom:2px solid #2271b1;padding-bottom:.3em}
.structured-plan h2{color:#2271b1;margin-top:1.5em}
.structured-plan section{margin-bottom:1em}
.plan-steps li{margin-bottom:.4em}
.plan-risks li{color:#b32d2e}
.plan-feedback{background:#f0f6fc;border-left:4px solid #72aee6;padding:.5em 1em}
.plan-empty{color:#787c82;font-style:italic}`

// RenderDocument wraps Render in a standalone page for the preview window.
func RenderDocument(s Structure) string {
	return WrapDocument(s.Title, Render(s))
}

// WrapDocument embeds plan markup in a standalone page titled title.
func WrapDocument(title, body string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Plan"
	}
	if strings.TrimSpace(body) == "" {
		body = "<p class=\"plan-empty\">This plan is empty.</p>\n"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(title))
	fmt.Fprintf(&b, "<style>\n%s\n</style>\n</head>\n<body>\n", documentStyle)
	b.WriteString(body)
	b.WriteString("</body>\n</html>\n")
	return b.String()
}
