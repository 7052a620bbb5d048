package layout

import "io"

type FontStyle string

const (
	Regular FontStyle = ""
	Bold    FontStyle = "B"
	Italic  FontStyle = "I"
)

type Align string

const (
	AlignLeft   Align = "L"
	AlignCenter Align = "C"
	AlignRight  Align = "R"
)

type Color struct {
	R, G, B int
}

// Surface is the drawing backend behind an Engine. Coordinates are in
// millimetres from the top-left corner of the current page.
type Surface interface {
	AddPage()
	SetFont(style FontStyle, size float64)
	SetTextColor(c Color)
	// StringWidth measures s in the current font.
	StringWidth(s string) float64
	// Text writes s in a single-line cell whose top-left corner is (x, y).
	Text(x, y, w, h float64, s string, align Align)
	// Image places a PNG. A failed image leaves the surface usable.
	Image(name string, png []byte, x, y, w, h float64) error
	Rect(x, y, w, h float64, c Color, fill bool)
}

// Canvas is a Surface that can be serialised once layout is complete.
type Canvas interface {
	Surface
	// Finish runs once after the last emission, before Output.
	Finish()
	Output(w io.Writer) error
}
