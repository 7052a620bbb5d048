package assembler

import (
	"fmt"
	"strings"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

const (
	// ChartWidth and ChartHeight are the fixed box every chart occupies,
	// whether or not its snapshot exists.
	ChartWidth  = 136.0
	ChartHeight = 85.0

	sectionGap = 6.0
	blockGap   = 3.0
)

type renderFunc func(w *writer, data any)

var renderers = map[SectionKind]renderFunc{
	KindIdentity:        renderIdentity,
	KindOverview:        renderOverview,
	KindInterpretation:  renderInterpretation,
	KindChart:           renderChart,
	KindDistribution:    renderDistribution,
	KindMainStage:       renderMainStage,
	KindSubStageSummary: renderSubStageSummary,
	KindSubStageDetails: renderSubStageDetails,
	KindSWOT:            renderSWOT,
	KindRecommendations: renderRecommendations,
	KindActionPlan:      renderActionPlan,
	KindConclusion:      renderConclusion,
}

// writer wraps the engine with the grouping rules shared by sections.
type writer struct {
	e *layout.Engine
}

// section starts a numbered or plain level 2 heading and keeps it on the
// same page as the first block that follows it.
func (w *writer) section(title string, next float64) {
	w.e.Space(sectionGap)
	w.e.KeepTogether(w.e.HeadingHeight(title, 2) + next)
	w.e.Heading(title, 2)
}

func (w *writer) paragraphs(paras []string) {
	for _, p := range paras {
		w.e.Paragraph(p, layout.BodySize)
	}
}

func (w *writer) firstParagraphHeight(paras []string) float64 {
	for _, p := range paras {
		if h := w.e.ParagraphHeight(p, layout.BodySize); h > 0 {
			return h
		}
	}
	return 0
}

func (w *writer) bulletsHeight(items []string, indent int) float64 {
	var h float64
	for _, it := range items {
		h += w.e.ListItemHeight(it, indent)
	}
	return h
}

func (w *writer) firstBulletHeight(items []string) float64 {
	for _, it := range items {
		if h := w.e.ListItemHeight(it, 0); h > 0 {
			return h
		}
	}
	return 0
}

func (w *writer) bullets(items []string, indent int) {
	for _, it := range items {
		w.e.ListItem(it, indent)
	}
}

func renderIdentity(w *writer, data any) {
	id := data.(Identity)
	w.e.Heading("Employee Assessment Report", 1)
	name := strings.TrimSpace(id.Subject.Name)
	if name == "" {
		name = "Not specified"
	}
	w.e.KeyValue("Employee", name)
	if d := strings.TrimSpace(id.Subject.Department); d != "" {
		w.e.KeyValue("Department", d)
	}
	if !id.GeneratedAt.IsZero() {
		w.e.KeyValue("Generated", id.GeneratedAt.Format("January 2, 2006"))
	}
}

func renderOverview(w *writer, data any) {
	o := data.(*report.Overview)
	w.section("1. Overview", w.firstParagraphHeight(o.Text))
	w.paragraphs(o.Text)
}

func renderInterpretation(w *writer, data any) {
	in := data.(*report.Interpretation)
	w.section("2. Interpretation", w.firstParagraphHeight(in.Text))
	w.paragraphs(in.Text)
}

func renderChart(w *writer, data any) {
	c := data.(Chart)
	title := c.ID.Title()
	w.e.Space(blockGap)
	w.e.KeepTogether(w.e.HeadingHeight(title, 3) + ChartHeight)
	w.e.Heading(title, 3)
	w.e.Image(title, c.PNG, ChartWidth, ChartHeight)
}

func renderDistribution(w *writer, data any) {
	stages := data.([]report.Stage)
	for _, st := range stages {
		w.e.Space(blockGap)
		w.e.KeepTogether(w.stageCardHeight(st))
		w.e.Heading(st.Stage, 3)
		w.scoreRows(st)
		w.e.Paragraph(st.Text, layout.BodySize)
		w.bullets(st.SubStageSummary, 0)
	}
}

func (w *writer) stageCardHeight(st report.Stage) float64 {
	h := w.e.HeadingHeight(st.Stage, 3) + float64(scoreRowCount(st))*layout.KeyValueHeight
	h += w.e.ParagraphHeight(st.Text, layout.BodySize)
	return h + w.bulletsHeight(st.SubStageSummary, 0)
}

func scoreRowCount(st report.Stage) int {
	if strings.TrimSpace(st.Level) == "" {
		return 2
	}
	return 3
}

func (w *writer) scoreRows(st report.Stage) {
	w.e.KeyValue("Score", formatScore(st.Score))
	w.e.KeyValue("Percentage", formatPercent(st.ScorePercentage))
	if strings.TrimSpace(st.Level) != "" {
		w.e.KeyValue("Level", st.Level)
	}
}

func renderMainStage(w *writer, data any) {
	st := data.(report.Stage)
	rows := float64(scoreRowCount(st)+1) * layout.KeyValueHeight
	w.section("3. Main Stage Analysis", rows)
	w.e.KeyValue("Current Stage", st.Stage)
	w.scoreRows(st)
	w.e.Space(blockGap)
	w.e.Paragraph(st.Text, layout.BodySize)
}

func renderSubStageSummary(w *writer, data any) {
	st := data.(report.Stage)
	next := w.firstBulletHeight(st.SubStageSummary)
	if next == 0 {
		// The performance overview chart follows directly.
		next = blockGap + w.e.HeadingHeight(snapshot.PerformanceOverview.Title(), 3) + ChartHeight
	}
	w.section("4. Sub-Stage Analysis", next)
	w.bullets(st.SubStageSummary, 0)
}

func renderSubStageDetails(w *writer, data any) {
	for _, s := range data.([]report.SubStage) {
		w.e.Space(blockGap)
		w.e.KeepTogether(w.subStageHeight(s))
		w.e.Heading(s.SubStage, 3)
		w.e.KeyValue("Score", formatScore(s.SubStageScore))
		w.e.Paragraph(s.SubStageIntro, layout.BodySize)
		w.bullets(s.SubStageDescription, 1)
		w.e.Remark(s.SubStageConclusion)
	}
}

func (w *writer) subStageHeight(s report.SubStage) float64 {
	h := w.e.HeadingHeight(s.SubStage, 3) + layout.KeyValueHeight
	h += w.e.ParagraphHeight(s.SubStageIntro, layout.BodySize)
	h += w.bulletsHeight(s.SubStageDescription, 1)
	return h + w.e.RemarkHeight(s.SubStageConclusion)
}

func renderSWOT(w *writer, data any) {
	sw := data.(*report.SWOT)
	quads := sw.Quadrants()
	w.section("5. SWOT Analysis", w.e.HeadingHeight(quads[0].Name, 3)+w.firstSWOTItemHeight(quads[0].Items))
	for _, q := range quads {
		w.e.KeepTogether(w.e.HeadingHeight(q.Name, 3) + w.firstSWOTItemHeight(q.Items))
		w.e.Heading(q.Name, 3)
		for _, it := range q.Items {
			w.e.KeepTogether(w.swotItemHeight(it))
			w.e.Heading(it.Title, 4)
			w.e.Paragraph(it.Text, layout.BodySize)
			w.note("Why it matters", it.WhyMatters)
			w.note("Action", it.ActionableInsight)
		}
		if len(q.Items) > 0 {
			w.e.Space(blockGap)
		}
	}
}

func (w *writer) firstSWOTItemHeight(items []report.SWOTItem) float64 {
	if len(items) == 0 {
		return 0
	}
	return w.swotItemHeight(items[0])
}

func (w *writer) swotItemHeight(it report.SWOTItem) float64 {
	h := w.e.HeadingHeight(it.Title, 4) + w.e.ParagraphHeight(it.Text, layout.BodySize)
	h += w.e.ParagraphHeight(labelled("Why it matters", it.WhyMatters), layout.SmallSize)
	return h + w.e.ParagraphHeight(labelled("Action", it.ActionableInsight), layout.SmallSize)
}

func (w *writer) note(label, text string) {
	w.e.Paragraph(labelled(label, text), layout.SmallSize)
}

func labelled(label, text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return label + ": " + text
}

func renderRecommendations(w *writer, data any) {
	r := data.(*report.Recommendations)
	next := w.e.ParagraphHeight(r.Intro, layout.BodySize)
	if next == 0 && len(r.Sections) > 0 {
		first := r.Sections[0]
		next = blockGap + w.groupHeight(first.Title, first.Description, first.Recommendations)
	}
	w.section("Recommendations", next)
	w.e.Paragraph(r.Intro, layout.BodySize)
	for _, s := range r.Sections {
		w.group(s.Title, s.Description, s.Recommendations)
	}
}

func renderActionPlan(w *writer, data any) {
	ap := data.(*report.ActionPlan)
	first := ap.Categories[0]
	w.section("Action Plan", blockGap+w.groupHeight(first.Title, first.Description, first.Actions))
	for _, c := range ap.Categories {
		w.group(c.Title, c.Description, c.Actions)
	}
}

// group writes a titled block of items. The heading stays with its
// description, or with the first item when there is none.
func (w *writer) group(title, description string, items []report.Item) {
	w.e.Space(blockGap)
	w.e.KeepTogether(w.groupHeight(title, description, items))
	w.e.Heading(title, 3)
	w.e.Paragraph(description, layout.BodySize)
	w.bullets(itemLines(items), 0)
}

// groupHeight is the heading of a group plus its first block.
func (w *writer) groupHeight(title, description string, items []report.Item) float64 {
	next := w.e.ParagraphHeight(description, layout.BodySize)
	if next == 0 {
		next = w.firstBulletHeight(itemLines(items))
	}
	return w.e.HeadingHeight(title, 3) + next
}

func itemLines(items []report.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		switch {
		case strings.TrimSpace(it.Description) == "":
			out = append(out, it.Title)
		default:
			out = append(out, it.Title+": "+it.Description)
		}
	}
	return out
}

func renderConclusion(w *writer, data any) {
	c := data.(*report.Conclusion)
	w.section("6. Conclusion", w.e.ParagraphHeight(c.Text, layout.BodySize))
	w.e.Paragraph(c.Text, layout.BodySize)
}

func formatScore(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}
