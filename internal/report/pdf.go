package report

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/attendai/attendai/internal/service"
	"github.com/jung-kurt/gofpdf/v2"
	"github.com/rs/zerolog/log"
)

// FileName and MIMEType describe the exported document.
const (
	FileName = "attendance_report.pdf"
	MIMEType = "application/pdf"
)

// UTF-8 fonts so employee names outside Latin-1 keep their letters.
var (
	//go:embed fonts/DejaVuSansCondensed.ttf
	fontRegular []byte
	//go:embed fonts/DejaVuSansCondensed-Bold.ttf
	fontBold []byte
)

const fontFamily = "DejaVu"

const (
	margin   = 72.0 // one inch in points
	cellPadX = 6.0
	cellPadY = 3.0
	leading  = 1.2
)

// DefaultAliases rename title-cased column labels in the PDF header.
var DefaultAliases = map[string]string{
	"Empname": "Employee Name",
	"Vrdate":  "Date",
}

type rgb struct{ r, g, b int }

var (
	skyBlue    = rgb{135, 206, 235}
	whiteSmoke = rgb{245, 245, 245}
	beige      = rgb{245, 245, 220}
	black      = rgb{0, 0, 0}
)

type cellStyle struct {
	fontStyle string
	size      float64
	fill      rgb
	text      rgb
	padBottom float64
}

var (
	headerStyle = cellStyle{fontStyle: "B", size: 12, fill: skyBlue, text: whiteSmoke, padBottom: 10}
	bodyStyle   = cellStyle{fontStyle: "", size: 10, fill: beige, text: black, padBottom: cellPadY}
)

// Layout is the table the renderer draws: a header row plus one row per
// result, or a single placeholder cell when the result is empty.
type Layout struct {
	Header      []string
	Rows        [][]string
	ColWidths   []float64
	Placeholder bool
}

// RowCount counts the header row plus data rows.
func (l Layout) RowCount() int {
	return 1 + len(l.Rows)
}

// Renderer builds attendance PDFs.
type Renderer struct {
	aliases map[string]string
}

// NewRenderer creates a renderer. A nil map uses DefaultAliases.
func NewRenderer(aliases map[string]string) *Renderer {
	if aliases == nil {
		aliases = DefaultAliases
	}
	return &Renderer{aliases: aliases}
}

var defaultRenderer = NewRenderer(nil)

// RenderPDF renders with the default column aliases.
func RenderPDF(question, dates string, rs *service.ResultSet) ([]byte, error) {
	return defaultRenderer.RenderPDF(question, dates, rs)
}

// HeaderLabel title-cases a column name and applies the alias map.
func (r *Renderer) HeaderLabel(col string) string {
	label := Title(col)
	keys := make([]string, 0, len(r.aliases))
	for k := range r.aliases {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		label = strings.ReplaceAll(label, k, r.aliases[k])
	}
	return label
}

// BuildTable lays out the result across width points.
func (r *Renderer) BuildTable(rs *service.ResultSet, width float64) Layout {
	if rs.Empty() {
		return Layout{
			Header:      []string{NoData},
			ColWidths:   []float64{width},
			Placeholder: true,
		}
	}

	l := Layout{
		Header:    make([]string, len(rs.Columns)),
		Rows:      make([][]string, 0, len(rs.Rows)),
		ColWidths: make([]float64, len(rs.Columns)),
	}
	for i, col := range rs.Columns {
		l.Header[i] = r.HeaderLabel(col)
		l.ColWidths[i] = width / float64(len(rs.Columns))
	}
	for _, row := range rs.Rows {
		cells := make([]string, len(rs.Columns))
		for i, col := range rs.Columns {
			cells[i] = FormatValue(row[col])
		}
		l.Rows = append(l.Rows, cells)
	}
	return l
}

// RenderPDF draws the report into an A4 document. A table that cannot be
// drawn is replaced by an error paragraph, so a document is returned unless
// the PDF writer itself fails.
func (r *Renderer) RenderPDF(question, dates string, rs *service.ResultSet) ([]byte, error) {
	pdf, _, _ := r.build(question, dates, rs)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (r *Renderer) build(question, dates string, rs *service.ResultSet) (*gofpdf.Fpdf, *tableWriter, error) {
	pdf := newDocument(question, dates)

	pageW, _ := pdf.GetPageSize()
	tw := &tableWriter{pdf: pdf}
	err := tw.safeWrite(r.BuildTable(rs, pageW-2*margin))
	if err == nil {
		return pdf, tw, nil
	}

	log.Warn().Err(err).Msg("pdf table failed")
	pdf = newDocument(question, dates)
	pdf.SetFont(fontFamily, "", 10)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 10*leading, pdfText("Error while generating table: "+err.Error()), "", "L", false)
	return pdf, nil, err
}

func newDocument(question, dates string) *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, margin)
	pdf.SetTitle("Attendance Report", true)
	pdf.SetCreator("attendai", true)
	pdf.AddUTF8FontFromBytes(fontFamily, "", fontRegular)
	pdf.AddUTF8FontFromBytes(fontFamily, "B", fontBold)

	pdf.AddPage()
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont(fontFamily, "B", 16)
	pdf.MultiCell(0, 16*leading, "Attendance Report", "", "C", false)
	pdf.MultiCell(0, 16*leading, pdfText(question), "", "C", false)
	pdf.Ln(12)
	if dates != "" {
		pdf.SetFont(fontFamily, "", 12)
		pdf.MultiCell(0, 12*leading, pdfText("Dates: "+dates), "", "C", false)
	}
	pdf.Ln(24)
	return pdf
}

// pdfText replaces what the font tables cannot index: invalid UTF-8 and
// runes outside the Basic Multilingual Plane.
func pdfText(s string) string {
	return strings.Map(func(r rune) rune {
		if r > 0xFFFF {
			return '?'
		}
		return r
	}, strings.ToValidUTF8(s, "?"))
}

type tableWriter struct {
	pdf    *gofpdf.Fpdf
	layout Layout
	limit  float64 // lowest y a row may reach
	fresh  int     // body lines that fit under the header on a new page

	headers   int
	rows      int
	bodyLines int
	bottom    float64
}

func (w *tableWriter) safeWrite(l Layout) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("%v", rec)
		}
	}()
	return w.write(l)
}

func (w *tableWriter) write(l Layout) error {
	if len(l.Header) == 0 || len(l.ColWidths) != len(l.Header) {
		return errors.New("result has no columns")
	}
	w.layout = l

	_, pageH := w.pdf.GetPageSize()
	w.limit = pageH - margin

	headerLines := w.wrapRow(l.Header, headerStyle)
	w.fresh = w.capacity(margin+chunkHeight(maxLines(headerLines), headerStyle), bodyStyle)

	if err := w.header(); err != nil {
		return err
	}
	for _, row := range l.Rows {
		if err := w.body(row); err != nil {
			return err
		}
		w.rows++
	}

	if w.pdf.Err() {
		return w.pdf.Error()
	}
	return nil
}

// header draws the column labels, which must fit on the page in one piece.
func (w *tableWriter) header() error {
	lines := w.wrapRow(w.layout.Header, headerStyle)
	n := maxLines(lines)
	if w.capacity(w.pdf.GetY(), headerStyle) < n {
		return errors.New("table header does not fit on a page")
	}
	w.drawChunk(lines, 0, n, headerStyle)
	w.headers++
	return nil
}

// body draws one result row. A row that does not fit in the space left
// starts a new page; a row taller than a whole page is continued over as
// many pages as it needs, each with the header repeated.
func (w *tableWriter) body(cells []string) error {
	lines := w.wrapRow(cells, bodyStyle)
	total := maxLines(lines)

	for start := 0; start < total; {
		left := total - start
		room := w.capacity(w.pdf.GetY(), bodyStyle)
		if room < left && (room < 1 || (start == 0 && left <= w.fresh)) {
			w.pdf.AddPage()
			if err := w.header(); err != nil {
				return err
			}
			if w.capacity(w.pdf.GetY(), bodyStyle) < 1 {
				return errors.New("page too small for a table row")
			}
			continue
		}

		n := min(left, room)
		w.drawChunk(lines, start, n, bodyStyle)
		w.bodyLines += n
		start += n
	}
	return nil
}

// capacity is the number of text lines a row starting at y can hold.
func (w *tableWriter) capacity(y float64, st cellStyle) int {
	avail := w.limit - y - cellPadY - st.padBottom
	return int(math.Floor(avail/(st.size*leading) + 1e-9))
}

func chunkHeight(lines int, st cellStyle) float64 {
	return float64(lines)*st.size*leading + cellPadY + st.padBottom
}

func maxLines(cells [][]string) int {
	n := 1
	for _, c := range cells {
		if len(c) > n {
			n = len(c)
		}
	}
	return n
}

func (w *tableWriter) wrapRow(cells []string, st cellStyle) [][]string {
	out := make([][]string, len(cells))
	for i, c := range cells {
		out[i] = w.wrap(c, w.layout.ColWidths[i], st)
	}
	return out
}

func (w *tableWriter) wrap(text string, width float64, st cellStyle) []string {
	w.pdf.SetFont(fontFamily, st.fontStyle, st.size)
	inner := width - 2*cellPadX
	if inner < 1 {
		inner = 1
	}
	// SplitText measures against width minus the cell margins
	lines := w.pdf.SplitText(pdfText(text), inner+2*w.pdf.GetCellMargin())
	if len(lines) == 0 {
		lines = []string{""}
	}
	return lines
}

// drawChunk draws lines[from:from+n] of every cell as one grid row.
func (w *tableWriter) drawChunk(lines [][]string, from, n int, st cellStyle) {
	lineH := st.size * leading
	h := chunkHeight(n, st)
	x, y := margin, w.pdf.GetY()

	w.pdf.SetFont(fontFamily, st.fontStyle, st.size)
	w.pdf.SetDrawColor(black.r, black.g, black.b)
	w.pdf.SetLineWidth(1)
	for i, cell := range lines {
		cw := w.layout.ColWidths[i]
		w.pdf.SetFillColor(st.fill.r, st.fill.g, st.fill.b)
		w.pdf.Rect(x, y, cw, h, "FD")

		w.pdf.SetTextColor(st.text.r, st.text.g, st.text.b)
		for j := from; j < from+n && j < len(cell); j++ {
			w.pdf.SetXY(x+cellPadX, y+cellPadY+float64(j-from)*lineH)
			w.pdf.CellFormat(cw-2*cellPadX, lineH, cell[j], "", 0, "C", false, 0, "")
		}
		x += cw
	}
	w.pdf.SetXY(margin, y+h)
	if y+h > w.bottom {
		w.bottom = y + h
	}
}
