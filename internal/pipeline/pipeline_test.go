package pipeline

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout/layouttest"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

func sampleModel() *report.Model {
	return &report.Model{
		Overview: &report.Overview{Text: []string{"Summary of the assessment."}},
		Interpretation: &report.Interpretation{Distribution: []report.Stage{
			{Stage: "Honeymoon", ScorePercentage: 30},
			{Stage: "Steady-State", ScorePercentage: 70, SubStageDetails: []report.SubStage{
				{SubStage: "Stability", SubStageScore: 4},
			}},
		}},
	}
}

func recordingAssembler(rec *layouttest.Recorder) *assembler.Assembler {
	return assembler.New(assembler.WithCanvas(func(layout.PageSize, layout.DocumentInfo) layout.Canvas { return rec }))
}

func newTracer() (*tracetest.SpanRecorder, *sdktrace.TracerProvider) {
	sr := tracetest.NewSpanRecorder()
	return sr, sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
}

func spanNames(spans []sdktrace.ReadOnlySpan) []string {
	var out []string
	for _, s := range spans {
		out = append(out, s.Name())
	}
	return out
}

func attr(s sdktrace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, kv := range s.Attributes() {
		if kv.Key == key {
			return kv.Value, true
		}
	}
	return attribute.Value{}, false
}

func TestRunWithoutViewSkipsCapture(t *testing.T) {
	sr, tp := newTracer()
	p := New(recordingAssembler(layouttest.New()), WithTracer(tp.Tracer("test")))

	var stages []string
	res, err := p.RunWithProgress(context.Background(), Request{
		Subject: report.Subject{Name: "Jane Doe"},
		Model:   sampleModel(),
	}, func(stage, _ string) { stages = append(stages, stage) })
	require.NoError(t, err)

	assert.Equal(t, "Employee_Assessment_Report_Jane_Doe.pdf", res.Document.Filename)
	assert.Len(t, res.Charts, 4)
	assert.Equal(t, snapshot.AllCharts, res.Charts.Missing())
	assert.Equal(t, []string{StageAssemble}, res.Metadata.StagesExecuted)
	assert.Equal(t, []string{StageCapture}, res.Metadata.StagesSkipped)
	assert.Equal(t, []string{StageCapture, StageAssemble, StageAssemble}, stages)
	assert.False(t, res.Metadata.CompletedAt.Before(res.Metadata.StartedAt))

	ended := sr.Ended()
	assert.ElementsMatch(t, []string{"report.render", "report.assemble"}, spanNames(ended))
}

func TestRunCapturesFromView(t *testing.T) {
	sr, tp := newTracer()
	rec := layouttest.New()
	m := sampleModel()
	p := New(recordingAssembler(rec),
		WithTracer(tp.Tracer("test")),
		WithCaptureOptions(snapshot.WithSettleDelay(0)),
	)

	res, err := p.Run(context.Background(), Request{Model: m, View: snapshot.NewModelView(m)})
	require.NoError(t, err)

	assert.Equal(t, []string{StageCapture, StageAssemble}, res.Metadata.StagesExecuted)
	assert.Equal(t, []snapshot.ChartID{snapshot.StageRelationships, snapshot.StageProgression}, res.Charts.Missing())
	assert.Empty(t, res.Document.MissingCharts)
	assert.Len(t, rec.OfKind(layouttest.OpImage), 2)

	ended := sr.Ended()
	require.ElementsMatch(t, []string{"report.render", "report.capture", "report.assemble"}, spanNames(ended))
	for _, s := range ended {
		switch s.Name() {
		case "report.capture":
			v, ok := attr(s, "capture.missing")
			require.True(t, ok)
			assert.Equal(t, []string{"chord", "areaBump"}, v.AsStringSlice())
		case "report.render":
			v, ok := attr(s, "report.pages")
			require.True(t, ok)
			assert.Equal(t, int64(res.Document.Pages), v.AsInt64())
		}
	}
}

func TestRunHonoursRequestedCharts(t *testing.T) {
	p := New(recordingAssembler(layouttest.New()))
	res, err := p.Run(context.Background(), Request{Model: sampleModel(), Charts: []snapshot.ChartID{snapshot.StageDistribution}})
	require.NoError(t, err)
	assert.Len(t, res.Charts, 1)
}

func TestRunRequiresModel(t *testing.T) {
	p := New(recordingAssembler(layouttest.New()))
	_, err := p.Run(context.Background(), Request{})
	assert.ErrorIs(t, err, ErrMissingModel)
}

func TestRunWrapsAssembleFailure(t *testing.T) {
	sr, tp := newTracer()
	rec := layouttest.New()
	rec.OutputErr = errors.New("no space left on device")
	p := New(recordingAssembler(rec), WithTracer(tp.Tracer("test")))

	_, err := p.Run(context.Background(), Request{Model: sampleModel()})
	require.Error(t, err)

	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StageAssemble, se.Stage)
	assert.ErrorIs(t, err, assembler.ErrSerialize)
	assert.Contains(t, err.Error(), "assemble: ")

	for _, s := range sr.Ended() {
		assert.Equal(t, codes.Error, s.Status().Code, "span %s", s.Name())
	}
}
