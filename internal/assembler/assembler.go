// Package assembler turns a report model and its chart snapshots into a
// finished document. It decides what goes on the page and in which order;
// the layout engine decides where.
package assembler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/snapshot"
)

// ErrSerialize reports that the finished document could not be written.
var ErrSerialize = errors.New("serialize document")

// Document is a rendered report.
type Document struct {
	Filename      string
	PDF           []byte
	Pages         int
	MissingCharts []snapshot.ChartID
}

// CanvasFactory creates the drawing target for one render.
type CanvasFactory func(page layout.PageSize, info layout.DocumentInfo) layout.Canvas

func pdfCanvas(page layout.PageSize, info layout.DocumentInfo) layout.Canvas {
	return layout.NewPDF(page, info)
}

type Assembler struct {
	page      layout.PageSize
	newCanvas CanvasFactory
	now       func() time.Time
}

type Option func(*Assembler)

func WithPageSize(p layout.PageSize) Option {
	return func(a *Assembler) { a.page = p }
}

// WithCanvas replaces the PDF canvas, typically with a recorder in tests.
func WithCanvas(f CanvasFactory) Option {
	return func(a *Assembler) { a.newCanvas = f }
}

func WithClock(now func() time.Time) Option {
	return func(a *Assembler) { a.now = now }
}

func New(opts ...Option) *Assembler {
	a := &Assembler{page: layout.A4, newCanvas: pdfCanvas, now: time.Now}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Render lays out every planned section on a fresh engine and canvas and
// serialises the result. Missing data and missing charts never fail a
// render; only a failure to write the output does.
func (a *Assembler) Render(ctx context.Context, in Input) (*Document, error) {
	log := zerolog.Ctx(ctx)
	if in.GeneratedAt.IsZero() {
		in.GeneratedAt = a.now()
	}

	plan := Plan(in)
	canvas := a.newCanvas(a.page, documentInfo(in))
	e := layout.NewEngine(canvas, a.page, layout.WithLogger(*log))
	w := &writer{e: e}

	var missing []snapshot.ChartID
	for _, s := range plan {
		if c, ok := s.Data.(Chart); ok && len(c.PNG) == 0 {
			missing = append(missing, c.ID)
		}
		render, ok := renderers[s.Kind]
		if !ok {
			log.Warn().Str("section", string(s.Kind)).Msg("no renderer for section")
			continue
		}
		render(w, s.Data)
	}

	canvas.Finish()
	var buf bytes.Buffer
	if err := canvas.Output(&buf); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialize, err)
	}

	doc := &Document{
		Filename:      Filename(in.Subject.Name),
		PDF:           buf.Bytes(),
		Pages:         e.Cursor().PageCount,
		MissingCharts: missing,
	}
	log.Debug().
		Str("filename", doc.Filename).
		Int("sections", len(plan)).
		Int("pages", doc.Pages).
		Int("bytes", len(doc.PDF)).
		Msg("report assembled")
	return doc, nil
}

func documentInfo(in Input) layout.DocumentInfo {
	title := "Employee Assessment Report"
	if name := strings.Join(strings.Fields(in.Subject.Name), " "); name != "" {
		title += " - " + name
	}
	return layout.DocumentInfo{
		Title:   title,
		Author:  in.Subject.Department,
		Subject: "Employee assessment",
		Creator: "chaturvima report renderer",
		Created: in.GeneratedAt,
	}
}
