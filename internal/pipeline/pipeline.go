// Package pipeline runs one report render end to end: chart capture
// followed by document assembly.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/assembler"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/report"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

const (
	StageCapture  = "capture"
	StageAssemble = "assemble"

	tracerName = "github.com/Omkesh-Jadhav/chaturVima-sub001/internal/pipeline"
)

var ErrMissingModel = errors.New("report model is required")

type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

type StageProgressFn func(stage, message string)

// Request is one render. A nil View renders every chart as absent.
type Request struct {
	Subject report.Subject
	Model   *report.Model
	View    snapshot.View
	Charts  []snapshot.ChartID
}

type Metadata struct {
	StartedAt      time.Time
	CompletedAt    time.Time
	StagesExecuted []string
	StagesSkipped  []string
}

type Result struct {
	Document *assembler.Document
	Charts   snapshot.Map
	Metadata Metadata
}

type Pipeline struct {
	assembler   *assembler.Assembler
	captureOpts []snapshot.Option
	tracer      trace.Tracer
}

type Option func(*Pipeline)

func WithCaptureOptions(opts ...snapshot.Option) Option {
	return func(p *Pipeline) { p.captureOpts = append(p.captureOpts, opts...) }
}

func WithTracer(t trace.Tracer) Option {
	return func(p *Pipeline) { p.tracer = t }
}

func New(asm *assembler.Assembler, opts ...Option) *Pipeline {
	p := &Pipeline{assembler: asm, tracer: otel.Tracer(tracerName)}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	return p.RunWithProgress(ctx, req, nil)
}

func (p *Pipeline) RunWithProgress(ctx context.Context, req Request, progress StageProgressFn) (Result, error) {
	res := Result{Metadata: Metadata{StartedAt: time.Now()}}
	if req.Model == nil {
		return res, ErrMissingModel
	}
	ids := req.Charts
	if len(ids) == 0 {
		ids = snapshot.AllCharts
	}

	ctx, span := p.tracer.Start(ctx, "report.render")
	defer span.End()

	if req.View == nil {
		res.Charts = snapshot.Absent(ids)
		res.Metadata.StagesSkipped = append(res.Metadata.StagesSkipped, StageCapture)
		emit(progress, StageCapture, "Chart capture skipped: no view")
	} else {
		emit(progress, StageCapture, fmt.Sprintf("Capturing %d charts...", len(ids)))
		started := time.Now()
		res.Charts = p.capture(ctx, req.View, ids)
		res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, StageCapture)
		emit(progress, StageCapture, fmt.Sprintf("Chart capture complete in %s (%d missing)",
			time.Since(started).Round(time.Millisecond), len(res.Charts.Missing())))
	}

	emit(progress, StageAssemble, "Assembling document...")
	started := time.Now()
	doc, err := p.assemble(ctx, req, res.Charts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "assemble failed")
		return res, &StageError{Stage: StageAssemble, Err: err}
	}
	emit(progress, StageAssemble, fmt.Sprintf("Document assembled in %s (%d pages)",
		time.Since(started).Round(time.Millisecond), doc.Pages))
	res.Document = doc
	res.Metadata.StagesExecuted = append(res.Metadata.StagesExecuted, StageAssemble)
	res.Metadata.CompletedAt = time.Now()

	span.SetAttributes(
		attribute.Int("report.pages", doc.Pages),
		attribute.StringSlice("report.missing_charts", chartNames(doc.MissingCharts)),
	)
	return res, nil
}

func (p *Pipeline) capture(ctx context.Context, view snapshot.View, ids []snapshot.ChartID) snapshot.Map {
	ctx, span := p.tracer.Start(ctx, "report.capture")
	defer span.End()

	m := snapshot.NewCapturer(view, p.captureOpts...).Capture(ctx, ids)
	missing := m.Missing()
	span.SetAttributes(
		attribute.Int("capture.requested", len(ids)),
		attribute.StringSlice("capture.missing", chartNames(missing)),
	)
	return m
}

func (p *Pipeline) assemble(ctx context.Context, req Request, charts snapshot.Map) (*assembler.Document, error) {
	ctx, span := p.tracer.Start(ctx, "report.assemble")
	defer span.End()

	doc, err := p.assembler.Render(ctx, assembler.Input{Subject: req.Subject, Model: req.Model, Charts: charts})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(attribute.Int("report.pages", doc.Pages), attribute.Int("report.bytes", len(doc.PDF)))
	return doc, nil
}

func chartNames(ids []snapshot.ChartID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func emit(progress StageProgressFn, stage, message string) {
	if progress != nil {
		progress(stage, message)
	}
}
