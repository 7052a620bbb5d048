package snapshot

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"math"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
)

const (
	modelChartWidth  = 680
	modelChartHeight = 420
)

// ModelView draws charts straight from the report model when no live
// dashboard is available. Only the bar-shaped charts are supported.
type ModelView struct {
	model *report.Model
}

func NewModelView(m *report.Model) *ModelView {
	return &ModelView{model: m}
}

func (v *ModelView) Locate(_ context.Context, id ChartID) (Element, error) {
	var bars []chart.Value
	var max float64
	switch id {
	case StageDistribution:
		bars, max = v.stageBars()
	case PerformanceOverview:
		bars, max = v.subStageBars()
	default:
		return nil, ErrContainerMissing
	}
	if len(bars) == 0 {
		return nil, ErrContainerMissing
	}
	return &modelElement{title: id.Title(), bars: bars, max: max}, nil
}

func (v *ModelView) stageBars() ([]chart.Value, float64) {
	if v.model == nil || v.model.Interpretation == nil {
		return nil, 0
	}
	var bars []chart.Value
	for _, s := range v.model.Interpretation.Distribution {
		bars = append(bars, chart.Value{Label: s.Stage, Value: s.ScorePercentage})
	}
	return bars, 100
}

func (v *ModelView) subStageBars() ([]chart.Value, float64) {
	if v.model == nil {
		return nil, 0
	}
	main, ok := v.model.Interpretation.MainStage()
	if !ok {
		return nil, 0
	}
	var bars []chart.Value
	max := 1.0
	for _, d := range main.SubStageDetails {
		bars = append(bars, chart.Value{Label: d.SubStage, Value: d.SubStageScore})
		max = math.Max(max, d.SubStageScore)
	}
	return bars, math.Ceil(max)
}

type modelElement struct {
	title string
	bars  []chart.Value
	max   float64
}

func (e *modelElement) HasVectorDrawing(context.Context) (bool, error) {
	return len(e.bars) > 0, nil
}

func (e *modelElement) Rasterize(_ context.Context, scale float64, bg color.RGBA) ([]byte, error) {
	fill := drawing.Color{R: bg.R, G: bg.G, B: bg.B, A: 255}
	bars := make([]chart.Value, len(e.bars))
	for i, b := range e.bars {
		b.Style = chart.Style{FillColor: chart.GetDefaultColor(i), StrokeColor: chart.GetDefaultColor(i)}
		bars[i] = b
	}
	w := int(modelChartWidth * scale)
	h := int(modelChartHeight * scale)
	barWidth := w / (2*len(bars) + 1)
	bc := chart.BarChart{
		Title:      e.title,
		Width:      w,
		Height:     h,
		DPI:        chart.DefaultDPI * scale,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		Background: chart.Style{FillColor: fill, Padding: chart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Canvas:     chart.Style{FillColor: fill},
		YAxis: chart.YAxis{
			Range: &chart.ContinuousRange{Min: 0, Max: e.max},
		},
		Bars: bars,
	}
	var buf bytes.Buffer
	if err := bc.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render %s: %w", e.title, err)
	}
	return buf.Bytes(), nil
}
