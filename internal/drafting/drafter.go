// Package drafting asks a language model to write the narrative report
// model for a set of raw assessment scores.
package drafting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

// ErrInvalidReply is returned when the model never produced a usable report.
var ErrInvalidReply = errors.New("invalid drafting reply")

const maxAttempts = 2

type SubStageScore struct {
	SubStage string  `json:"subStage"`
	Score    float64 `json:"score"`
}

type StageScore struct {
	Stage           string          `json:"stage"`
	Score           float64         `json:"score"`
	ScorePercentage float64         `json:"scorePercentage"`
	SubStages       []SubStageScore `json:"subStages,omitempty"`
}

// Scores is the raw questionnaire outcome for one employee.
type Scores struct {
	Subject report.Subject `json:"subject"`
	Stages  []StageScore   `json:"stages"`
}

func (s Scores) validate() error {
	if len(s.Stages) == 0 {
		return errors.New("at least one stage score is required")
	}
	for i, st := range s.Stages {
		if strings.TrimSpace(st.Stage) == "" {
			return fmt.Errorf("stages[%d].stage is required", i)
		}
		if st.ScorePercentage < 0 || st.ScorePercentage > 100 {
			return fmt.Errorf("stages[%d].scorePercentage %.2f outside [0, 100]", i, st.ScorePercentage)
		}
	}
	return nil
}

type Drafter struct {
	caller LLMCaller
}

func NewDrafter(caller LLMCaller) *Drafter {
	return &Drafter{caller: caller}
}

// Draft returns a validated report model. A reply that does not parse or
// validate is retried once with the failure fed back.
func (d *Drafter) Draft(ctx context.Context, scores Scores) (*report.Model, error) {
	if err := scores.validate(); err != nil {
		return nil, fmt.Errorf("scores: %w", err)
	}
	log := zerolog.Ctx(ctx)
	prompt, err := buildPrompt(scores)
	if err != nil {
		return nil, err
	}

	feedback := ""
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		full := prompt
		if feedback != "" {
			full += "\n\n" + feedback
		}
		raw, err := d.caller.GenerateJSON(ctx, full)
		if err != nil {
			return nil, fmt.Errorf("drafting transport failure: %w", err)
		}
		model, err := parseReply(raw, scores)
		if err == nil {
			log.Debug().Int("attempt", attempt).Msg("report model drafted")
			return model, nil
		}
		lastErr = err
		log.Warn().Err(err).Int("attempt", attempt).Msg("drafting reply rejected")
		feedback = fmt.Sprintf("Your previous response was rejected: %s. Respond with only valid JSON matching the schema.", err)
	}
	return nil, fmt.Errorf("%w: %w", ErrInvalidReply, lastErr)
}

func parseReply(raw string, scores Scores) (*report.Model, error) {
	clean := stripCodeFences(raw)
	if clean == "" {
		return nil, errors.New("empty response")
	}
	model, err := report.DecodeBytes([]byte(clean))
	if err != nil {
		return nil, err
	}
	if err := covers(model, scores); err != nil {
		return nil, err
	}
	return model, nil
}

// covers checks that every scored stage appears in the drafted distribution.
func covers(m *report.Model, scores Scores) error {
	seen := map[string]bool{}
	if m.Interpretation != nil {
		for _, st := range m.Interpretation.Distribution {
			seen[strings.ToLower(strings.TrimSpace(st.Stage))] = true
		}
	}
	var missing []string
	for _, st := range scores.Stages {
		if !seen[strings.ToLower(strings.TrimSpace(st.Stage))] {
			missing = append(missing, st.Stage)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("interpretation.distribution is missing stages: %s", strings.Join(missing, ", "))
	}
	return nil
}

const schemaHint = `{
  "overview": {"text": ["paragraph", "..."]},
  "interpretation": {
    "text": ["paragraph"],
    "distribution": [{
      "stage": "", "score": 0, "scorePercentage": 0, "level": "Low|Medium|High", "text": "",
      "subStageSummary": [""],
      "subStageDetails": [{"subStage": "", "subStageScore": 0, "subStageIntro": "", "subStageDescription": [""], "subStageConclusion": ""}]
    }]
  },
  "swot": {
    "strengths": [{"title": "", "text": "", "whyMatters": "", "actionableInsight": ""}],
    "weaknesses": [], "opportunities": [], "threats": []
  },
  "recommendations": {"intro": "", "sections": [{"id": "", "title": "", "description": "", "recommendations": [{"title": "", "description": ""}]}]},
  "actionPlan": {"categories": [{"id": "", "title": "", "description": "", "actions": [{"title": "", "description": ""}]}]},
  "conclusion": {"text": ""}
}`

func buildPrompt(scores Scores) (string, error) {
	payload, err := json.MarshalIndent(scores, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode scores: %w", err)
	}
	var b strings.Builder
	b.WriteString("Write an employee assessment report from the scores below.\n")
	b.WriteString("Use the stage names and numbers exactly as given. Every stage must appear in interpretation.distribution.\n")
	b.WriteString("Keep paragraphs short and plain. Markdown emphasis is allowed but will be flattened.\n\n")
	b.WriteString("Scores:\n")
	b.Write(payload)
	b.WriteString("\n\nRespond with only valid JSON matching this schema:\n")
	b.WriteString(schemaHint)
	return b.String(), nil
}
