package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidModel wraps every decode or validation failure.
var ErrInvalidModel = errors.New("invalid report model")

// Decode reads a JSON report model, validates it and reduces any inline
// markdown in narrative fields to plain text.
func Decode(r io.Reader) (*Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return nil, fmt.Errorf("%w: decode json: %w", ErrInvalidModel, err)
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidModel, err)
	}
	normalize(&m)
	return &m, nil
}

// DecodeBytes is Decode over an in-memory payload.
func DecodeBytes(b []byte) (*Model, error) {
	return Decode(bytes.NewReader(b))
}

// Validate reports every structural problem in the model at once.
func (m *Model) Validate() error {
	var errs []error
	if in := m.Interpretation; in != nil {
		for i, st := range in.Distribution {
			if strings.TrimSpace(st.Stage) == "" {
				errs = append(errs, fmt.Errorf("interpretation.distribution[%d].stage is required", i))
			}
			if st.ScorePercentage < 0 || st.ScorePercentage > 100 {
				errs = append(errs, fmt.Errorf("interpretation.distribution[%d].scorePercentage %.2f outside [0, 100]", i, st.ScorePercentage))
			}
			for j, sub := range st.SubStageDetails {
				if strings.TrimSpace(sub.SubStage) == "" {
					errs = append(errs, fmt.Errorf("interpretation.distribution[%d].subStageDetails[%d].subStage is required", i, j))
				}
			}
		}
	}
	if s := m.SWOT; s != nil {
		for _, q := range s.Quadrants() {
			for i, it := range q.Items {
				if strings.TrimSpace(it.Title) == "" {
					errs = append(errs, fmt.Errorf("swot.%s[%d].title is required", strings.ToLower(q.Name), i))
				}
			}
		}
	}
	if rec := m.Recommendations; rec != nil {
		for i, sec := range rec.Sections {
			if strings.TrimSpace(sec.Title) == "" {
				errs = append(errs, fmt.Errorf("recommendations.sections[%d].title is required", i))
			}
			for j, it := range sec.Recommendations {
				if strings.TrimSpace(it.Title) == "" {
					errs = append(errs, fmt.Errorf("recommendations.sections[%d].recommendations[%d].title is required", i, j))
				}
			}
		}
	}
	if ap := m.ActionPlan; ap != nil {
		for i, cat := range ap.Categories {
			if strings.TrimSpace(cat.Title) == "" {
				errs = append(errs, fmt.Errorf("actionPlan.categories[%d].title is required", i))
			}
			for j, it := range cat.Actions {
				if strings.TrimSpace(it.Title) == "" {
					errs = append(errs, fmt.Errorf("actionPlan.categories[%d].actions[%d].title is required", i, j))
				}
			}
		}
	}
	return errors.Join(errs...)
}

func normalize(m *Model) {
	all := func(ss []string) {
		for i := range ss {
			ss[i] = PlainText(ss[i])
		}
	}
	one := func(s *string) { *s = PlainText(*s) }

	if m.Overview != nil {
		all(m.Overview.Text)
	}
	if in := m.Interpretation; in != nil {
		all(in.Text)
		for i := range in.Distribution {
			st := &in.Distribution[i]
			one(&st.Text)
			all(st.SubStageSummary)
			for j := range st.SubStageDetails {
				sub := &st.SubStageDetails[j]
				one(&sub.SubStageIntro)
				all(sub.SubStageDescription)
				one(&sub.SubStageConclusion)
			}
		}
	}
	if s := m.SWOT; s != nil {
		for _, items := range [][]SWOTItem{s.Strengths, s.Weaknesses, s.Opportunities, s.Threats} {
			for i := range items {
				one(&items[i].Title)
				one(&items[i].Text)
				one(&items[i].WhyMatters)
				one(&items[i].ActionableInsight)
			}
		}
	}
	if rec := m.Recommendations; rec != nil {
		one(&rec.Intro)
		for i := range rec.Sections {
			one(&rec.Sections[i].Description)
			for j := range rec.Sections[i].Recommendations {
				one(&rec.Sections[i].Recommendations[j].Description)
			}
		}
	}
	if ap := m.ActionPlan; ap != nil {
		for i := range ap.Categories {
			one(&ap.Categories[i].Description)
			for j := range ap.Categories[i].Actions {
				one(&ap.Categories[i].Actions[j].Description)
			}
		}
	}
	if m.Conclusion != nil {
		one(&m.Conclusion.Text)
	}
}
