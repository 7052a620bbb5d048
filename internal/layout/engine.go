package layout

import (
	"bytes"
	"fmt"
	"image/png"
	"math"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
)

// Engine places blocks on a Surface while tracking the write cursor.
// An Engine serves exactly one render and is not safe for concurrent use.
type Engine struct {
	s      Surface
	cur    Cursor
	log    zerolog.Logger
	images int
}

type Option func(*Engine)

func WithLogger(l zerolog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// NewEngine starts the first page of a new document on s.
func NewEngine(s Surface, page PageSize, opts ...Option) *Engine {
	e := &Engine{
		s:   s,
		cur: Cursor{PageWidth: page.Width, PageHeight: page.Height, Margin: page.Margin},
		log: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.newPage()
	return e
}

// Cursor returns a copy of the current write position.
func (e *Engine) Cursor() Cursor { return e.cur }

func (e *Engine) newPage() {
	e.s.AddPage()
	e.cur.PageCount++
	e.cur.Y = e.cur.Margin
}

// EnsureSpace starts a new page unless h more millimetres fit on the
// current one. A fresh page never breaks again. Requests taller than a
// page are clipped to the usable height and logged.
func (e *Engine) EnsureSpace(h float64) Cursor {
	e.reserve(h, true)
	return e.cur
}

// KeepTogether is EnsureSpace for a group of blocks that may legitimately
// exceed a page; oversized groups are capped without a warning.
func (e *Engine) KeepTogether(h float64) Cursor {
	e.reserve(h, false)
	return e.cur
}

func (e *Engine) reserve(h float64, warn bool) float64 {
	if usable := e.cur.UsableHeight(); h > usable {
		if warn {
			e.log.Warn().
				Float64("requested", h).
				Float64("clipped", usable).
				Int("page", e.cur.PageCount).
				Msg("block taller than one page, clipping")
		}
		h = usable
	}
	if !e.cur.Fresh() && e.cur.Y+h > e.cur.Bottom() {
		e.newPage()
	}
	return h
}

// Space inserts a vertical gap. Gaps at the top of a page are dropped.
func (e *Engine) Space(h float64) Cursor {
	if !e.cur.Fresh() {
		e.cur.Y += h
	}
	return e.cur
}

func (e *Engine) measure(style FontStyle, size float64) func(string) float64 {
	e.s.SetFont(style, size)
	return e.s.StringWidth
}

// Heading writes a level 1-4 heading. It keeps room for one body line
// below so a heading never ends a page.
func (e *Engine) Heading(text string, level int) Cursor {
	hs := headingFor(level)
	lines := Wrap(text, e.cur.UsableWidth(), e.measure(Bold, hs.size))
	if len(lines) == 0 {
		return e.cur
	}
	e.reserve(float64(len(lines))*hs.advance+LineHeight(BodySize), false)
	for _, l := range lines {
		e.s.SetFont(Bold, hs.size)
		e.s.SetTextColor(hs.color)
		e.s.Text(e.cur.Margin, e.cur.Y, e.cur.UsableWidth(), hs.advance, l, AlignLeft)
		e.cur.Y += hs.advance
	}
	return e.cur
}

// HeadingHeight is the space Heading would consume, excluding the
// reserved follow-on line.
func (e *Engine) HeadingHeight(text string, level int) float64 {
	hs := headingFor(level)
	return float64(len(Wrap(text, e.cur.UsableWidth(), e.measure(Bold, hs.size)))) * hs.advance
}

// Paragraph writes wrapped body text. The whole paragraph is reserved up
// front (capped at one page), so its first line always starts with room;
// longer paragraphs continue line by line onto following pages.
func (e *Engine) Paragraph(text string, size float64) Cursor {
	if e.flow(text, textBlock{size: size, style: Regular, color: colorText, x: e.cur.Margin, w: e.cur.UsableWidth()}) > 0 {
		e.cur.Y += ParagraphGap
	}
	return e.cur
}

// ParagraphHeight is the space Paragraph would consume.
func (e *Engine) ParagraphHeight(text string, size float64) float64 {
	n := len(Wrap(text, e.cur.UsableWidth(), e.measure(Regular, size)))
	if n == 0 {
		return 0
	}
	return float64(n)*LineHeight(size) + ParagraphGap
}

// ListItem writes a bulleted, wrapped item indented by indent steps.
func (e *Engine) ListItem(text string, indent int) Cursor {
	blk := e.listBlock(indent)
	bx := blk.x - BulletWidth
	blk.mark = func(y, lh float64, first bool) {
		if first {
			e.s.SetFont(Bold, BodySize)
			e.s.SetTextColor(colorAccent)
			e.s.Text(bx, y, BulletWidth, lh, bullet, AlignLeft)
		}
	}
	if e.flow(text, blk) > 0 {
		e.cur.Y += ListGap
	}
	return e.cur
}

// ListItemHeight is the space ListItem would consume.
func (e *Engine) ListItemHeight(text string, indent int) float64 {
	blk := e.listBlock(indent)
	n := len(Wrap(text, blk.w, e.measure(blk.style, blk.size)))
	if n == 0 {
		return 0
	}
	return float64(n)*LineHeight(blk.size) + ListGap
}

func (e *Engine) listBlock(indent int) textBlock {
	if indent < 0 {
		indent = 0
	}
	offset := float64(indent)*IndentStep + BulletWidth
	return textBlock{
		size:  BodySize,
		style: Regular,
		color: colorText,
		x:     e.cur.Margin + offset,
		w:     e.cur.UsableWidth() - offset,
	}
}

// Remark writes a concluding remark: italic, muted, with a rule on the left.
func (e *Engine) Remark(text string) Cursor {
	rx := e.cur.Margin
	blk := e.remarkBlock()
	blk.mark = func(y, lh float64, _ bool) {
		e.s.Rect(rx, y, 0.8, lh, colorAccent, true)
	}
	if e.flow(text, blk) > 0 {
		e.cur.Y += ParagraphGap
	}
	return e.cur
}

// RemarkHeight is the space Remark would consume.
func (e *Engine) RemarkHeight(text string) float64 {
	blk := e.remarkBlock()
	n := len(Wrap(text, blk.w, e.measure(blk.style, blk.size)))
	if n == 0 {
		return 0
	}
	return float64(n)*LineHeight(blk.size) + ParagraphGap
}

func (e *Engine) remarkBlock() textBlock {
	return textBlock{
		size:  BodySize,
		style: Italic,
		color: colorMuted,
		x:     e.cur.Margin + RemarkIndent,
		w:     e.cur.UsableWidth() - RemarkIndent,
	}
}

// KeyValue writes a single fixed-height row with the label on the left
// and the value right-aligned. A value wider than its half of the row is
// shortened with an ellipsis.
func (e *Engine) KeyValue(label, value string) Cursor {
	e.reserve(KeyValueHeight, false)
	half := e.cur.UsableWidth() / 2
	e.s.SetFont(Bold, SmallSize)
	e.s.SetTextColor(colorMuted)
	e.s.Text(e.cur.Margin, e.cur.Y, half, KeyValueHeight, label, AlignLeft)
	e.s.SetFont(Regular, SmallSize)
	e.s.SetTextColor(colorText)
	e.s.Text(e.cur.Margin+half, e.cur.Y, half, KeyValueHeight, e.fit(value, half), AlignRight)
	e.cur.Y += KeyValueHeight
	return e.cur
}

const ellipsis = "…"

// fit shortens s until it measures at most w in the current font.
func (e *Engine) fit(s string, w float64) string {
	if e.s.StringWidth(s) <= w {
		return s
	}
	runes := []rune(s)
	for n := len(runes) - 1; n > 0; n-- {
		t := strings.TrimRightFunc(string(runes[:n]), unicode.IsSpace) + ellipsis
		if e.s.StringWidth(t) <= w {
			return t
		}
	}
	return ellipsis
}

// Image places png centred in a w×h box as one atomic block. The box is
// always consumed: a missing or unreadable image is replaced by a
// placeholder of the same size so later content does not move.
func (e *Engine) Image(title string, img []byte, w, h float64) Cursor {
	if uw := e.cur.UsableWidth(); w > uw {
		h = h * uw / w
		w = uw
	}
	if clipped := e.reserve(h, true); clipped < h {
		w = w * clipped / h
		h = clipped
	}
	x := e.cur.Margin + (e.cur.UsableWidth()-w)/2
	top := e.cur.Y
	if !e.drawImage(title, img, x, top, w, h) {
		e.placeholder(title, x, top, w, h)
	}
	e.cur.Y = top + h + ImageGap
	return e.cur
}

// Placeholder is the text shown in place of an image that is not available.
func Placeholder(title string) string {
	return fmt.Sprintf("[%s - Chart not captured]", title)
}

func (e *Engine) drawImage(title string, img []byte, x, y, w, h float64) bool {
	if len(img) == 0 {
		return false
	}
	cfg, err := png.DecodeConfig(bytes.NewReader(img))
	if err != nil || cfg.Width == 0 || cfg.Height == 0 {
		e.log.Warn().Err(err).Str("image", title).Msg("unreadable image, using placeholder")
		return false
	}
	scale := math.Min(w/float64(cfg.Width), h/float64(cfg.Height))
	dw, dh := float64(cfg.Width)*scale, float64(cfg.Height)*scale

	e.images++
	name := fmt.Sprintf("image-%d", e.images)
	if err := e.s.Image(name, img, x+(w-dw)/2, y+(h-dh)/2, dw, dh); err != nil {
		e.log.Warn().Err(err).Str("image", title).Msg("image placement failed, using placeholder")
		return false
	}
	return true
}

func (e *Engine) placeholder(title string, x, y, w, h float64) {
	lh := LineHeight(BodySize)
	e.s.Rect(x, y, w, h, colorRule, false)
	e.s.SetFont(Italic, BodySize)
	e.s.SetTextColor(colorMuted)
	e.s.Text(x, y+(h-lh)/2, w, lh, Placeholder(title), AlignCenter)
}

type textBlock struct {
	size  float64
	style FontStyle
	color Color
	x, w  float64
	// mark draws decorations for each line after its position is final.
	mark func(y, lh float64, first bool)
}

func (e *Engine) flow(text string, blk textBlock) int {
	lines := Wrap(text, blk.w, e.measure(blk.style, blk.size))
	if len(lines) == 0 {
		return 0
	}
	lh := LineHeight(blk.size)
	e.reserve(float64(len(lines))*lh, false)
	for i, l := range lines {
		if i > 0 {
			e.reserve(lh, false)
		}
		if blk.mark != nil {
			blk.mark(e.cur.Y, lh, i == 0)
		}
		e.s.SetFont(blk.style, blk.size)
		e.s.SetTextColor(blk.color)
		e.s.Text(blk.x, e.cur.Y, blk.w, lh, l, AlignLeft)
		e.cur.Y += lh
	}
	return len(lines)
}
