// Package layout flows report content across fixed-size pages.
//
// An Engine owns a Cursor for the lifetime of one render. Every emission
// first reserves vertical space through the same break decision, so no
// block is written past the bottom margin and images are never split
// across pages. Drawing is delegated to a Surface; layout.PDF renders to
// go-pdf/fpdf and layouttest.Recorder records operations for tests.
package layout

// PageSize describes a page in millimetres.
type PageSize struct {
	Width  float64
	Height float64
	Margin float64
}

// A4 is the default report page with a uniform 20mm margin.
var A4 = PageSize{Width: 210, Height: 297, Margin: 20}

// Cursor is the write position of an Engine. Values handed out by the
// Engine are copies; mutating them has no effect on layout.
type Cursor struct {
	PageWidth  float64
	PageHeight float64
	Margin     float64
	Y          float64
	PageCount  int
}

// UsableWidth is the width between the left and right margins.
func (c Cursor) UsableWidth() float64 { return c.PageWidth - 2*c.Margin }

// UsableHeight is the height between the top and bottom margins.
func (c Cursor) UsableHeight() float64 { return c.PageHeight - 2*c.Margin }

// Bottom is the lowest y a block may reach.
func (c Cursor) Bottom() float64 { return c.PageHeight - c.Margin }

// Remaining is the space left on the current page.
func (c Cursor) Remaining() float64 { return c.Bottom() - c.Y }

// Fresh reports whether nothing has been written on the current page yet.
func (c Cursor) Fresh() bool { return c.Y <= c.Margin }
