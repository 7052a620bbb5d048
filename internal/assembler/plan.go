package assembler

import (
	"strings"
	"time"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

// SectionKind selects the renderer for a planned section.
type SectionKind string

const (
	KindIdentity        SectionKind = "identity"
	KindOverview        SectionKind = "overview"
	KindInterpretation  SectionKind = "interpretation"
	KindChart           SectionKind = "chart"
	KindDistribution    SectionKind = "distribution"
	KindMainStage       SectionKind = "mainStage"
	KindSubStageSummary SectionKind = "subStageSummary"
	KindSubStageDetails SectionKind = "subStageDetails"
	KindSWOT            SectionKind = "swot"
	KindRecommendations SectionKind = "recommendations"
	KindActionPlan      SectionKind = "actionPlan"
	KindConclusion      SectionKind = "conclusion"
)

// Section is one entry of the document plan. Data holds the typed model
// slice its renderer expects.
type Section struct {
	Kind SectionKind
	Data any
}

// Identity is the title block data.
type Identity struct {
	Subject     report.Subject
	GeneratedAt time.Time
}

// Chart is an embedded chart; PNG is nil when the snapshot is absent.
type Chart struct {
	ID  snapshot.ChartID
	PNG []byte
}

// Input is everything one render needs.
type Input struct {
	Subject     report.Subject
	Model       *report.Model
	Charts      snapshot.Map
	GeneratedAt time.Time
}

// Plan lists the sections to render in document order. Absent or empty
// model parts produce no section; both charts are always planned so a
// placeholder shows when a snapshot is missing.
func Plan(in Input) []Section {
	m := in.Model
	if m == nil {
		m = &report.Model{}
	}
	plan := []Section{{Kind: KindIdentity, Data: Identity{Subject: in.Subject, GeneratedAt: in.GeneratedAt}}}
	add := func(k SectionKind, data any) { plan = append(plan, Section{Kind: k, Data: data}) }

	if m.Overview != nil && hasText(m.Overview.Text) {
		add(KindOverview, m.Overview)
	}
	if m.Interpretation != nil && hasText(m.Interpretation.Text) {
		add(KindInterpretation, m.Interpretation)
	}
	add(KindChart, Chart{ID: snapshot.StageDistribution, PNG: in.Charts.PNG(snapshot.StageDistribution)})
	if m.Interpretation != nil && len(m.Interpretation.Distribution) > 0 {
		add(KindDistribution, m.Interpretation.Distribution)
	}

	main, ok := m.Interpretation.MainStage()
	if ok {
		add(KindMainStage, main)
	}
	if ok && (hasText(main.SubStageSummary) || len(main.SubStageDetails) > 0) {
		add(KindSubStageSummary, main)
	}
	add(KindChart, Chart{ID: snapshot.PerformanceOverview, PNG: in.Charts.PNG(snapshot.PerformanceOverview)})
	if ok && len(main.SubStageDetails) > 0 {
		add(KindSubStageDetails, main.SubStageDetails)
	}

	if m.SWOT != nil {
		add(KindSWOT, m.SWOT)
	}
	if r := m.Recommendations; r != nil && (strings.TrimSpace(r.Intro) != "" || len(r.Sections) > 0) {
		add(KindRecommendations, r)
	}
	if m.ActionPlan != nil && len(m.ActionPlan.Categories) > 0 {
		add(KindActionPlan, m.ActionPlan)
	}
	if m.Conclusion != nil && strings.TrimSpace(m.Conclusion.Text) != "" {
		add(KindConclusion, m.Conclusion)
	}
	return plan
}

// Kinds returns the section kinds of plan, for logging and tests.
func Kinds(plan []Section) []SectionKind {
	out := make([]SectionKind, len(plan))
	for i, s := range plan {
		out[i] = s.Kind
	}
	return out
}

func hasText(paras []string) bool {
	for _, p := range paras {
		if strings.TrimSpace(p) != "" {
			return true
		}
	}
	return false
}
