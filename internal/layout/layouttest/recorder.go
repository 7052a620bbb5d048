// Package layouttest provides a recording layout.Canvas for tests.
package layouttest

import (
	"errors"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/Omkesh-Jadhav/chaturVima-sub001/internal/layout"
)

type OpKind string

const (
	OpText  OpKind = "text"
	OpImage OpKind = "image"
	OpRect  OpKind = "rect"
)

// Op is one recorded drawing call.
type Op struct {
	Kind  OpKind
	Page  int
	X, Y  float64
	W, H  float64
	Text  string
	Style layout.FontStyle
	Size  float64
}

// Recorder implements layout.Canvas. Glyphs are GlyphWidth mm wide per
// point of font size, so measurement is deterministic.
type Recorder struct {
	Ops        []Op
	Pages      int
	GlyphWidth float64
	// FailImages makes every Image call fail.
	FailImages bool
	// OutputErr is returned from Output when set.
	OutputErr error
	Finished  bool

	style layout.FontStyle
	size  float64
}

var _ layout.Canvas = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{GlyphWidth: 0.18, size: layout.BodySize}
}

func (r *Recorder) AddPage() { r.Pages++ }

func (r *Recorder) SetFont(style layout.FontStyle, size float64) {
	r.style = style
	r.size = size
}

func (r *Recorder) SetTextColor(layout.Color) {}

func (r *Recorder) StringWidth(s string) float64 {
	return float64(utf8.RuneCountInString(s)) * r.size * r.GlyphWidth
}

func (r *Recorder) Text(x, y, w, h float64, s string, _ layout.Align) {
	r.Ops = append(r.Ops, Op{Kind: OpText, Page: r.Pages, X: x, Y: y, W: w, H: h, Text: s, Style: r.style, Size: r.size})
}

func (r *Recorder) Image(name string, _ []byte, x, y, w, h float64) error {
	if r.FailImages {
		return errors.New("image rejected")
	}
	r.Ops = append(r.Ops, Op{Kind: OpImage, Page: r.Pages, X: x, Y: y, W: w, H: h, Text: name})
	return nil
}

func (r *Recorder) Rect(x, y, w, h float64, _ layout.Color, _ bool) {
	r.Ops = append(r.Ops, Op{Kind: OpRect, Page: r.Pages, X: x, Y: y, W: w, H: h})
}

func (r *Recorder) Finish() { r.Finished = true }

// Output writes a plain-text dump of the recorded operations.
func (r *Recorder) Output(w io.Writer) error {
	if r.OutputErr != nil {
		return r.OutputErr
	}
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "p%d %s %.2f,%.2f %q\n", op.Page, op.Kind, op.X, op.Y, op.Text); err != nil {
			return err
		}
	}
	return nil
}

// Texts returns every written string in order.
func (r *Recorder) Texts() []string {
	var out []string
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op.Text)
		}
	}
	return out
}

// Find returns the first text op equal to s.
func (r *Recorder) Find(s string) (Op, bool) {
	for _, op := range r.Ops {
		if op.Kind == OpText && op.Text == s {
			return op, true
		}
	}
	return Op{}, false
}

// Index returns the position of the first text op equal to s, or -1.
func (r *Recorder) Index(s string) int {
	for i, op := range r.Ops {
		if op.Kind == OpText && op.Text == s {
			return i
		}
	}
	return -1
}

// OfKind returns all ops of kind k.
func (r *Recorder) OfKind(k OpKind) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == k {
			out = append(out, op)
		}
	}
	return out
}
