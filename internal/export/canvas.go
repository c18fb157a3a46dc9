package export

import (
	"io"
	"strings"

	"github.com/go-pdf/fpdf"
)

// Font styles
const (
	Regular = ""
	Bold    = "B"
	Italic  = "I"
)

// Canvas is the drawing surface the plan layout is written to. Coordinates
// are millimetres from the top-left corner of the current page.
type Canvas interface {
	PageSize() (width, height float64)
	AddPage()
	SetPage(n int)
	PageCount() int
	SetFont(style string, size float64)
	SetDrawColor(r, g, b int)
	Line(x1, y1, x2, y2 float64)
	Text(x, y float64, text string)
	CenteredText(y float64, text string)
	SplitText(text string, width float64) []string
}

// PDFCanvas renders onto an A4 portrait PDF document
type PDFCanvas struct {
	pdf       *fpdf.Fpdf
	translate func(string) string
}

// NewPDFCanvas creates an A4 document with its first page added
func NewPDFCanvas() *PDFCanvas {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Your Personalized Fitness Plan", true)
	pdf.SetCreator("AI Fitness Coach", true)
	pdf.SetFont("Helvetica", Regular, 12)
	pdf.AddPage()

	return &PDFCanvas{
		pdf:       pdf,
		translate: pdf.UnicodeTranslatorFromDescriptor(""),
	}
}

func (c *PDFCanvas) PageSize() (float64, float64) {
	w, h := c.pdf.GetPageSize()
	return w, h
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) SetPage(n int) {
	c.pdf.SetPage(n)
}

func (c *PDFCanvas) PageCount() int {
	return c.pdf.PageCount()
}

func (c *PDFCanvas) SetFont(style string, size float64) {
	c.pdf.SetFont("Helvetica", style, size)
}

func (c *PDFCanvas) SetDrawColor(r, g, b int) {
	c.pdf.SetDrawColor(r, g, b)
}

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) Text(x, y float64, text string) {
	c.pdf.Text(x, y, c.translate(text))
}

func (c *PDFCanvas) CenteredText(y float64, text string) {
	text = c.translate(text)
	w, _ := c.pdf.GetPageSize()
	c.pdf.Text((w-c.pdf.GetStringWidth(text))/2, y, text)
}

// SplitText wraps UTF-8 text to width. Lines stay UTF-8 so Text translates
// them exactly once; widths are measured on the translated form because the
// core fonts only carry single-byte metrics.
func (c *PDFCanvas) SplitText(text string, width float64) []string {
	text = strings.TrimRight(text, "\n")
	if text == "" {
		return nil
	}

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		line := ""
		for _, word := range strings.Fields(para) {
			candidate := word
			if line != "" {
				candidate = line + " " + word
			}
			if c.textWidth(candidate) <= width {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			parts := c.breakWord(word, width)
			lines = append(lines, parts[:len(parts)-1]...)
			line = parts[len(parts)-1]
		}
		lines = append(lines, line)
	}
	return lines
}

// breakWord cuts a word wider than width into rune chunks that fit
func (c *PDFCanvas) breakWord(word string, width float64) []string {
	var parts []string
	chunk := ""
	for _, r := range word {
		next := chunk + string(r)
		if chunk != "" && c.textWidth(next) > width {
			parts = append(parts, chunk)
			next = string(r)
		}
		chunk = next
	}
	return append(parts, chunk)
}

func (c *PDFCanvas) textWidth(text string) float64 {
	return c.pdf.GetStringWidth(c.translate(text))
}

// Output writes the finished document
func (c *PDFCanvas) Output(w io.Writer) error {
	return c.pdf.Output(w)
}
