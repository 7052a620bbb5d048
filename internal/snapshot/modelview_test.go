package snapshot

import (
	"bytes"
	"context"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

func sampleModel() *report.Model {
	return &report.Model{
		Interpretation: &report.Interpretation{
			Distribution: []report.Stage{
				{Stage: "Honeymoon", ScorePercentage: 22},
				{Stage: "Self-Introspection", ScorePercentage: 41, SubStageDetails: []report.SubStage{
					{SubStage: "Reflection", SubStageScore: 3.5},
					{SubStage: "Adjustment", SubStageScore: 4.25},
				}},
				{Stage: "Soul-Searching", ScorePercentage: 25},
				{Stage: "Steady-State", ScorePercentage: 12},
			},
		},
	}
}

func TestModelViewDrawsBarCharts(t *testing.T) {
	c := NewCapturer(NewModelView(sampleModel()), WithSettleDelay(0))
	m := c.Capture(context.Background(), AllCharts)

	require.Len(t, m, 4)
	assert.Equal(t, []ChartID{StageRelationships, StageProgression}, m.Missing())

	for _, id := range []ChartID{StageDistribution, PerformanceOverview} {
		s, ok := m.Get(id)
		require.True(t, ok, "chart %s", id)
		cfg, err := png.DecodeConfig(bytes.NewReader(s.PNG))
		require.NoError(t, err)
		assert.Equal(t, modelChartWidth*2, cfg.Width)
		assert.Equal(t, modelChartHeight*2, cfg.Height)
	}
}

func TestModelViewIsDeterministic(t *testing.T) {
	c := NewCapturer(NewModelView(sampleModel()), WithSettleDelay(0))
	a := c.Capture(context.Background(), []ChartID{StageDistribution})
	b := c.Capture(context.Background(), []ChartID{StageDistribution})
	assert.Equal(t, a.PNG(StageDistribution), b.PNG(StageDistribution))
}

func TestModelViewWithoutDataReportsMissing(t *testing.T) {
	c := NewCapturer(NewModelView(&report.Model{}), WithSettleDelay(0))
	m := c.Capture(context.Background(), AllCharts)
	assert.Equal(t, AllCharts, m.Missing())

	m = NewCapturer(NewModelView(nil), WithSettleDelay(0)).Capture(context.Background(), AllCharts)
	assert.Equal(t, AllCharts, m.Missing())
}
