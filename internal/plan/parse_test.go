package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fullStructure() Structure {
	return Structure{
		Title:        "Migrate billing API",
		Goals:        []string{"Cut latency", "Drop the legacy client", "a  b", "tab\there"},
		Requirements: []string{"Postgres 15", "Feature flag <billing_v2>"},
		Steps:        []string{"Add schema", "Backfill rows", "Switch reads", "Remove old code"},
		Risks:        []string{"Backfill locks the table"},
		Notes:        []string{"Coordinate with ops", "Rollback plan:\nflip the flag"},
		Timeline:     "Week 1: schema\n\nWeek 2: backfill & switch",
		UserFeedback: "Looks good, keep the flag for a week",
	}
}

func assertSameContent(t *testing.T, want, got Structure) {
	t.Helper()
	assert.Equal(t, want.Title, got.Title, "title")
	assert.Equal(t, want.Goals, got.Goals, "goals")
	assert.Equal(t, want.Requirements, got.Requirements, "requirements")
	assert.Equal(t, want.Steps, got.Steps, "steps")
	assert.Equal(t, want.Risks, got.Risks, "risks")
	assert.Equal(t, want.Notes, got.Notes, "notes")
	assert.Equal(t, want.Timeline, got.Timeline, "timeline")
	assert.Equal(t, want.UserFeedback, got.UserFeedback, "user feedback")
}

func TestParse_EmptyInput(t *testing.T) {
	for _, in := range []string{"", "   ", "\n\t"} {
		s := Parse(in)
		assert.Equal(t, "", s.Title)
		assert.Equal(t, []string{}, s.Goals)
		assert.Equal(t, []string{}, s.Requirements)
		assert.Equal(t, []string{}, s.Steps)
		assert.Equal(t, []string{}, s.Risks)
		assert.Equal(t, []string{}, s.Notes)
		assert.Equal(t, "", s.Timeline)
		assert.Equal(t, "", s.UserFeedback)
		assert.Nil(t, s.ExportedAt)
	}
}

func TestParse_RoundTrip(t *testing.T) {
	want := fullStructure()
	got := Parse(Render(want))
	assertSameContent(t, want, got)
}

func TestParse_RoundTripWithoutTitle(t *testing.T) {
	want := fullStructure()
	want.Title = ""
	assertSameContent(t, want, Parse(Render(want)))
}

func TestParse_SkipsBlankItems(t *testing.T) {
	src := `<h2>Goals</h2><ul><li></li><li>  </li><li>Real goal</li><li></li></ul>`
	assert.Equal(t, []string{"Real goal"}, Parse(src).Goals)
}

func TestParse_StepsKeepDocumentOrder(t *testing.T) {
	src := `<h2>Steps</h2><ol><li>c</li><li>a</li></ol><p>between</p><ol><li>b</li></ol>`
	assert.Equal(t, []string{"c", "a", "b"}, Parse(src).Steps)
}

func TestParse_LegacyGermanPlan(t *testing.T) {
	src := `<div class="structured-plan"><div class="plan-header">` +
		`<h1>📋 Newsletter Anmeldung</h1>` +
		`<div class="plan-meta"><span>📅 Erstellt: 2024-05-01 10:00:00</span></div></div>` +
		`<section class="plan-goals"><h2>🎯 Ziele &amp; Objectives</h2><ul><li>Mehr Abonnenten</li></ul></section>` +
		`<section class="plan-requirements"><h2>📌 Anforderungen</h2><ul><li>Double Opt-in</li></ul></section>` +
		`<section class="plan-steps"><h2>🔨 Implementierungsschritte</h2><ol><li>Formular bauen</li><li>API anbinden</li></ol></section>` +
		`<section class="plan-risks"><h2>⚠️ Potenzielle Risiken</h2><ul><li>Spam</li></ul></section>` +
		`<section class="plan-notes"><h2>📝 Wichtige Notizen</h2><p>DSGVO beachten</p></section>` +
		`<section class="user-feedback"><h2>💬 Benutzer-Feedback</h2>` +
		`<div class="feedback-content">Zeile eins<br />Zeile zwei</div></section></div>`

	s := Parse(src)
	assert.Equal(t, "Newsletter Anmeldung", s.Title)
	assert.Equal(t, []string{"Mehr Abonnenten"}, s.Goals)
	assert.Equal(t, []string{"Double Opt-in"}, s.Requirements)
	assert.Equal(t, []string{"Formular bauen", "API anbinden"}, s.Steps)
	assert.Equal(t, []string{"Spam"}, s.Risks)
	assert.Equal(t, []string{"DSGVO beachten"}, s.Notes)
	assert.Equal(t, "Zeile eins\nZeile zwei", s.UserFeedback)
	assert.Equal(t, "", s.Timeline)
}

func TestParse_TitleFallsBackToFirstPlainH2(t *testing.T) {
	src := `<h2>Goals</h2><ul><li>g</li></ul><h2>🚀 Launch page</h2><h2>Other</h2>`
	assert.Equal(t, "Launch page", Parse(src).Title)
}

func TestParse_H1WinsOverEarlierH2(t *testing.T) {
	src := `<h2>Draft</h2><h1>Final title</h1>`
	assert.Equal(t, "Final title", Parse(src).Title)
}

func TestParse_OrderedListFallbackForSteps(t *testing.T) {
	src := `<h1>Plan</h1><p>Intro</p><ol><li>first</li><li>second</li></ol>` +
		`<h3>Risks</h3><ol><li>not a step</li></ol>`
	s := Parse(src)
	assert.Equal(t, []string{"first", "second"}, s.Steps)
	assert.Equal(t, []string{"not a step"}, s.Risks)
}

func TestParse_NoFallbackWhenStepsHeadingExists(t *testing.T) {
	src := `<ol><li>stray</li></ol><h2>Steps</h2><ul></ul>`
	assert.Equal(t, []string{}, Parse(src).Steps)
}

func TestParse_SectionEndsAtNextHeading(t *testing.T) {
	src := `<h2>Goals</h2><ul><li>g1</li></ul><h3>Details</h3><ul><li>not a goal</li></ul>`
	assert.Equal(t, []string{"g1"}, Parse(src).Goals)
}

func TestParse_TextSections(t *testing.T) {
	src := `<h2>Timeline</h2><p>Q1</p><p>Q2</p>` +
		`<h2>Notes</h2><p>one</p><blockquote><p>two</p></blockquote><ul><li>three</li></ul>`
	s := Parse(src)
	assert.Equal(t, "Q1\n\nQ2", s.Timeline)
	assert.Equal(t, []string{"one", "two", "three"}, s.Notes)
}

func TestParse_NestedListsFlatten(t *testing.T) {
	src := `<h2>Requirements</h2><ul><li>outer<ul><li>inner</li></ul></li><li>last</li></ul>`
	assert.Equal(t, []string{"outer", "inner", "last"}, Parse(src).Requirements)
}

func TestParse_ToleratesMalformedMarkup(t *testing.T) {
	src := `<h2>Goals<ul><li>unclosed <b>bold<li>second</ul><p><<<>>>`
	assert.NotPanics(t, func() {
		s := Parse(src)
		assert.NotNil(t, s.Goals)
	})
	assert.NotPanics(t, func() { Parse("<<<<") })
	assert.NotPanics(t, func() { Parse("\x00\xff<h2>") })
}

func TestParse_DecodesEntitiesAndCollapsesWhitespace(t *testing.T) {
	src := "<h2>Risks</h2><ul><li>\n  Data &amp; <em>schema</em>\n  drift </li></ul>"
	assert.Equal(t, []string{"Data & schema drift"}, Parse(src).Risks)
}

func TestParse_KeepsWhitespaceInsideLines(t *testing.T) {
	src := "<h2>Goals</h2><ul><li>a  b</li><li>tab\there</li><li>x <b>y</b>\n   z</li></ul>"
	assert.Equal(t, []string{"a  b", "tab\there", "x y z"}, Parse(src).Goals)
}

func TestParse_OrderedListInTextSection(t *testing.T) {
	src := `<h3>Zeitplan</h3><p>Q1</p><ol><li>s1</li></ol>`
	s := Parse(src)
	assert.Equal(t, "Q1", s.Timeline)
	assert.Equal(t, []string{"s1"}, s.Steps)

	withSteps := `<h2>Steps</h2><ol><li>real</li></ol><h3>Zeitplan</h3><p>Q1</p><ol><li>s1</li></ol>`
	s = Parse(withSteps)
	assert.Equal(t, "Q1\n\ns1", s.Timeline)
	assert.Equal(t, []string{"real"}, s.Steps)
}

func TestClassifyHeading(t *testing.T) {
	cases := map[string]section{
		"Goals":                    sectionGoals,
		"Ziele & Objectives":       sectionGoals,
		"Requirements":             sectionRequirements,
		"Anforderungen":            sectionRequirements,
		"Implementation Steps":     sectionSteps,
		"Implementierungsschritte": sectionSteps,
		"Potenzielle Risiken":      sectionRisks,
		"Known problems":           sectionRisks,
		"Wichtige Notizen":         sectionNotes,
		"Zeitplan":                 sectionTimeline,
		"User Feedback":            sectionFeedback,
		"Background":               sectionNone,
	}
	for heading, want := range cases {
		assert.Equal(t, want, classifyHeading(heading), heading)
	}
}

func TestStripDecoration(t *testing.T) {
	assert.Equal(t, "Risiken", stripDecoration("⚠️ Risiken"))
	assert.Equal(t, "Plan", stripDecoration("📋  Plan"))
	assert.Equal(t, "[FORTSETZUNG] Task", stripDecoration("[FORTSETZUNG] Task"))
}

func TestParse_RawBackupOfRenderedDocument(t *testing.T) {
	s := fullStructure()
	got := Parse(RenderDocument(s))
	require.Equal(t, s.Title, got.Title)
	assertSameContent(t, s, got)
}
