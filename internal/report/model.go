package report

// Model is the assessment result rendered into a report. Every top-level
// section is optional; a nil pointer means the section is absent.
type Model struct {
	Overview        *Overview        `json:"overview,omitempty"`
	Interpretation  *Interpretation  `json:"interpretation,omitempty"`
	SWOT            *SWOT            `json:"swot,omitempty"`
	Recommendations *Recommendations `json:"recommendations,omitempty"`
	ActionPlan      *ActionPlan      `json:"actionPlan,omitempty"`
	Conclusion      *Conclusion      `json:"conclusion,omitempty"`
}

type Overview struct {
	Text []string `json:"text"`
}

type Interpretation struct {
	Text         []string `json:"text"`
	Distribution []Stage  `json:"distribution,omitempty"`
}

type Stage struct {
	Stage           string     `json:"stage"`
	Score           float64    `json:"score"`
	ScorePercentage float64    `json:"scorePercentage"`
	Level           string     `json:"level"`
	Text            string     `json:"text"`
	SubStageSummary []string   `json:"subStageSummary,omitempty"`
	SubStageDetails []SubStage `json:"subStageDetails,omitempty"`
}

type SubStage struct {
	SubStage            string   `json:"subStage"`
	SubStageScore       float64  `json:"subStageScore"`
	SubStageIntro       string   `json:"subStageIntro"`
	SubStageDescription []string `json:"subStageDescription,omitempty"`
	SubStageConclusion  string   `json:"subStageConclusion"`
}

type SWOT struct {
	Strengths     []SWOTItem `json:"strengths"`
	Weaknesses    []SWOTItem `json:"weaknesses"`
	Opportunities []SWOTItem `json:"opportunities"`
	Threats       []SWOTItem `json:"threats"`
}

type SWOTItem struct {
	Title             string `json:"title"`
	Text              string `json:"text"`
	WhyMatters        string `json:"whyMatters"`
	ActionableInsight string `json:"actionableInsight"`
}

// Quadrant is one named SWOT list in display order.
type Quadrant struct {
	Name  string
	Items []SWOTItem
}

// Quadrants returns the four SWOT lists in the fixed report order.
func (s *SWOT) Quadrants() []Quadrant {
	return []Quadrant{
		{Name: "Strengths", Items: s.Strengths},
		{Name: "Weaknesses", Items: s.Weaknesses},
		{Name: "Opportunities", Items: s.Opportunities},
		{Name: "Threats", Items: s.Threats},
	}
}

type Item struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type Recommendations struct {
	Intro    string                  `json:"intro"`
	Sections []RecommendationSection `json:"sections,omitempty"`
}

type RecommendationSection struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Recommendations []Item `json:"recommendations,omitempty"`
}

type ActionPlan struct {
	Categories []ActionCategory `json:"categories,omitempty"`
}

type ActionCategory struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Actions     []Item `json:"actions,omitempty"`
}

type Conclusion struct {
	Text string `json:"text"`
}

// Subject identifies the employee the report is about.
type Subject struct {
	Name       string `json:"name"`
	Department string `json:"department"`
}

// MainStage returns the stage the employee currently sits in: the
// distribution entry with the highest percentage. The first entry wins ties.
func (in *Interpretation) MainStage() (Stage, bool) {
	if in == nil || len(in.Distribution) == 0 {
		return Stage{}, false
	}
	best := 0
	for i, st := range in.Distribution {
		if st.ScorePercentage > in.Distribution[best].ScorePercentage {
			best = i
		}
	}
	return in.Distribution[best], true
}
