package plan

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

type section int

const (
	sectionNone section = iota
	sectionGoals
	sectionRequirements
	sectionSteps
	sectionRisks
	sectionNotes
	sectionTimeline
	sectionFeedback
)

// sectionKeywords is checked in order; the first section with a keyword
// contained in the lower-cased heading wins. Plans written before the
// editor existed use German headings, so both vocabularies are listed.
// Risks come first: "Potenzielle Risiken" contains "ziel".
var sectionKeywords = []struct {
	section  section
	keywords []string
}{
	{sectionRisks, []string{"risk", "risik", "problem", "achtung", "gefahr"}},
	{sectionGoals, []string{"goal", "objective", "ziel"}},
	{sectionRequirements, []string{"requirement", "prerequisite", "anforderung", "voraussetzung"}},
	{sectionSteps, []string{"step", "implementation", "schritt", "umsetzung"}},
	{sectionNotes, []string{"note", "notiz", "wichtig", "hinweis", "anmerkung"}},
	{sectionTimeline, []string{"timeline", "schedule", "zeit"}},
	{sectionFeedback, []string{"feedback", "rückmeldung"}},
}

func classifyHeading(text string) section {
	lower := strings.ToLower(text)
	for _, entry := range sectionKeywords {
		for _, kw := range entry.keywords {
			if strings.Contains(lower, kw) {
				return entry.section
			}
		}
	}
	return sectionNone
}

func (s section) isText() bool {
	return s == sectionNotes || s == sectionTimeline || s == sectionFeedback
}

type blockKind int

const (
	blockHeading blockKind = iota
	blockList
	blockText
)

// block is one flattened piece of the document: a heading, a list or a
// paragraph of text.
type block struct {
	kind    blockKind
	level   int
	ordered bool
	text    string
	items   []string
}

// Parse extracts a Structure from a stored plan document. It never fails:
// markup it cannot make sense of is skipped, and the worst case is an empty
// structure. Empty sections and missing sections both come back empty.
func Parse(src string) (out Structure) {
	defer func() {
		if r := recover(); r != nil {
			out = Empty()
		}
	}()

	if strings.TrimSpace(src) == "" {
		return Empty()
	}
	doc, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return Empty()
	}

	var blocks []block
	collectBlocks(doc, &blocks)
	return assemble(blocks)
}

// textPart is one entry of a text section, kept in document order until
// it is known whether ordered lists are needed as fallback steps.
type textPart struct {
	sec     section
	text    string
	ordered bool
}

func assemble(blocks []block) Structure {
	s := Empty()
	cur := sectionNone
	var (
		sawSteps    bool
		h1Title     string
		h2Title     string
		orphanSteps []string
		parts       []textPart
	)

	for _, b := range blocks {
		switch b.kind {
		case blockHeading:
			text := stripDecoration(b.text)
			if b.level == 1 {
				if h1Title == "" {
					h1Title = text
				}
				cur = sectionNone
				continue
			}
			cur = classifyHeading(text)
			if cur == sectionSteps {
				sawSteps = true
			}
			if cur == sectionNone && b.level == 2 && h2Title == "" {
				h2Title = text
			}

		case blockList:
			items := compact(b.items)
			switch {
			case cur == sectionGoals:
				s.Goals = append(s.Goals, items...)
			case cur == sectionRequirements:
				s.Requirements = append(s.Requirements, items...)
			case cur == sectionSteps:
				s.Steps = append(s.Steps, items...)
			case cur == sectionRisks:
				s.Risks = append(s.Risks, items...)
			default:
				// Ordered lists outside the list sections are step candidates.
				if b.ordered {
					orphanSteps = append(orphanSteps, items...)
				}
				if cur.isText() {
					for _, item := range items {
						parts = append(parts, textPart{sec: cur, text: item, ordered: b.ordered})
					}
				}
			}

		case blockText:
			if b.text != "" && cur.isText() {
				parts = append(parts, textPart{sec: cur, text: b.text})
			}
		}
	}

	fallback := !sawSteps && len(s.Steps) == 0 && len(orphanSteps) > 0
	if fallback {
		s.Steps = orphanSteps
	}
	var timeline, feedback []string
	for _, p := range parts {
		if p.ordered && fallback {
			continue
		}
		switch p.sec {
		case sectionNotes:
			s.Notes = append(s.Notes, p.text)
		case sectionTimeline:
			timeline = append(timeline, p.text)
		case sectionFeedback:
			feedback = append(feedback, p.text)
		}
	}

	s.Title = h1Title
	if s.Title == "" {
		s.Title = h2Title
	}
	s.Timeline = strings.Join(timeline, "\n\n")
	s.UserFeedback = strings.Join(feedback, "\n\n")
	return s
}

// stripDecoration removes the emoji and punctuation that legacy plans put in
// front of headings ("🎯 Ziele", "📝 Notes").
func stripDecoration(s string) string {
	return strings.TrimSpace(strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.IsSymbol(r) || unicode.Is(unicode.Mn, r) ||
			unicode.IsSpace(r) || r == '\u200d'
	}))
}

func collectBlocks(n *html.Node, out *[]block) {
	var run strings.Builder
	flush := func() {
		if text := cleanText(run.String()); text != "" {
			*out = append(*out, block{kind: blockText, text: text})
		}
		run.Reset()
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			if c.Type == html.TextNode {
				writeRaw(&run, c, false)
			}
			continue
		}
		switch c.DataAtom {
		case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
			flush()
			*out = append(*out, block{
				kind:  blockHeading,
				level: int(c.Data[1] - '0'),
				text:  textOf(c, false),
			})
		case atom.P, atom.Pre, atom.Address, atom.Table:
			flush()
			*out = append(*out, block{kind: blockText, text: textOf(c, false)})
		case atom.Ul, atom.Ol:
			flush()
			*out = append(*out, block{
				kind:    blockList,
				ordered: c.DataAtom == atom.Ol,
				items:   listItems(c),
			})
		case atom.Head, atom.Script, atom.Style, atom.Template, atom.Noscript, atom.Hr:
			flush()
		case atom.Html, atom.Body, atom.Div, atom.Section, atom.Article, atom.Main,
			atom.Header, atom.Footer, atom.Aside, atom.Nav, atom.Blockquote,
			atom.Figure, atom.Details, atom.Form, atom.Fieldset:
			flush()
			collectBlocks(c, out)
		default:
			writeRaw(&run, c, false)
		}
	}
	flush()
}

// listItems returns the text of each li of a list. Nested lists contribute
// their items after the item that contains them.
func listItems(list *html.Node) []string {
	var items []string
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		items = append(items, textOf(li, true))
		forEachNestedList(li, func(nested *html.Node) {
			items = append(items, listItems(nested)...)
		})
	}
	return items
}

func forEachNestedList(n *html.Node, fn func(*html.Node)) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		if c.DataAtom == atom.Ul || c.DataAtom == atom.Ol {
			fn(c)
			continue
		}
		forEachNestedList(c, fn)
	}
}

func textOf(n *html.Node, skipLists bool) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeRaw(&b, c, skipLists)
	}
	return cleanText(b.String())
}

// writeRaw appends the text under n. Runs of spaces and tabs are kept as
// written; a whitespace run that crosses a source line break is markup
// indentation and becomes one space. Only <br> produces a line break.
func writeRaw(b *strings.Builder, n *html.Node, skipLists bool) {
	switch n.Type {
	case html.TextNode:
		writeText(b, n.Data)
		return
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			b.WriteByte('\n')
			return
		case atom.Script, atom.Style:
			return
		case atom.Ul, atom.Ol:
			if skipLists {
				return
			}
		}
	case html.CommentNode:
		return
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeRaw(b, c, skipLists)
	}
}

func writeText(b *strings.Builder, s string) {
	for s != "" {
		i := strings.IndexFunc(s, unicode.IsSpace)
		if i < 0 {
			b.WriteString(s)
			return
		}
		b.WriteString(s[:i])
		s = s[i:]
		j := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsSpace(r) })
		if j < 0 {
			j = len(s)
		}
		run := s[:j]
		s = s[j:]
		if !strings.ContainsAny(run, "\n\r\f\v") {
			b.WriteString(run)
			continue
		}
		if prev := b.String(); prev != "" && !unicode.IsSpace(rune(prev[len(prev)-1])) {
			b.WriteByte(' ')
		}
	}
}

// cleanText trims each line; whitespace inside a line is content.
func cleanText(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return strings.Trim(strings.Join(lines, "\n"), "\n")
}
