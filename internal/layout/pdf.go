package layout

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"
)

const fontFamily = "Helvetica"

// DocumentInfo is written into the PDF metadata.
type DocumentInfo struct {
	Title   string
	Author  string
	Subject string
	Creator string
	Created time.Time
}

// PDF is a Canvas backed by go-pdf/fpdf using the core Helvetica family.
type PDF struct {
	pdf  *fpdf.Fpdf
	tr   func(string) string
	page PageSize
}

func NewPDF(page PageSize, info DocumentInfo) *PDF {
	pdf := fpdf.NewCustom(&fpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "mm",
		Size:           fpdf.SizeType{Wd: page.Width, Ht: page.Height},
	})
	pdf.SetMargins(page.Margin, page.Margin, page.Margin)
	// The Engine decides every page break.
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(info.Title, true)
	pdf.SetAuthor(info.Author, true)
	pdf.SetSubject(info.Subject, true)
	pdf.SetCreator(info.Creator, true)
	if !info.Created.IsZero() {
		pdf.SetCreationDate(info.Created)
	}
	return &PDF{
		pdf:  pdf,
		tr:   pdf.UnicodeTranslatorFromDescriptor(""),
		page: page,
	}
}

func (p *PDF) AddPage() { p.pdf.AddPage() }

func (p *PDF) SetFont(style FontStyle, size float64) {
	p.pdf.SetFont(fontFamily, string(style), size)
}

func (p *PDF) SetTextColor(c Color) { p.pdf.SetTextColor(c.R, c.G, c.B) }

func (p *PDF) StringWidth(s string) float64 { return p.pdf.GetStringWidth(p.tr(s)) }

func (p *PDF) Text(x, y, w, h float64, s string, align Align) {
	p.pdf.SetXY(x, y)
	p.pdf.CellFormat(w, h, p.tr(s), "", 0, string(align), false, 0, "")
}

func (p *PDF) Image(name string, png []byte, x, y, w, h float64) error {
	opts := fpdf.ImageOptions{ImageType: "PNG"}
	info := p.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(png))
	if err := p.pdf.Error(); err != nil {
		// fpdf errors are sticky; a bad chart must not poison the document.
		p.pdf.ClearError()
		return fmt.Errorf("register image %s: %w", name, err)
	}
	if info == nil {
		return errors.New("register image " + name + ": no image info")
	}
	p.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func (p *PDF) Rect(x, y, w, h float64, c Color, fill bool) {
	if fill {
		p.pdf.SetFillColor(c.R, c.G, c.B)
		p.pdf.Rect(x, y, w, h, "F")
		return
	}
	p.pdf.SetDrawColor(c.R, c.G, c.B)
	p.pdf.SetLineWidth(0.3)
	p.pdf.Rect(x, y, w, h, "D")
}

// Finish stamps "Page i of n" into the bottom margin of every page.
func (p *PDF) Finish() {
	total := p.pdf.PageCount()
	for i := 1; i <= total; i++ {
		p.pdf.SetPage(i)
		p.SetFont(Regular, 8)
		p.SetTextColor(colorMuted)
		y := p.page.Height - p.page.Margin/2 - 2.5
		p.pdf.SetXY(p.page.Margin, y)
		p.pdf.CellFormat(p.page.Width-2*p.page.Margin, 5, fmt.Sprintf("Page %d of %d", i, total), "", 0, "C", false, 0, "")
	}
}

func (p *PDF) Output(w io.Writer) error {
	if err := p.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// PageCount is the number of pages added so far.
func (p *PDF) PageCount() int { return p.pdf.PageCount() }
