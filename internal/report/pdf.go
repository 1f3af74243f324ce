package report

import (
	"bytes"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
)

const fontName = "Helvetica"

type PDFGenerator struct{}

func NewPDFGenerator() *PDFGenerator {
	return &PDFGenerator{}
}

func (g *PDFGenerator) Generate(d Dashboard) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(15, 15, 15)
	pdf.AddPage()

	pdf.SetFont(fontName, "B", 14)
	pdf.CellFormat(0, 10, "Field Mesh HQ Situation Report", "", 1, "C", false, 0, "")
	pdf.SetFont(fontName, "", 10)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s UTC", formatDateTime(d.GeneratedAt)), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Summary", "", 1, "L", false, 0, "")
	widths := []float64{70, 30}
	for _, line := range summaryLines(d.Stats) {
		drawTableRow(pdf, []string{line.label, strconv.Itoa(line.value)}, widths, false)
	}
	pdf.Ln(4)

	pdf.SetFont(fontName, "B", 12)
	pdf.CellFormat(0, 8, "Rescue queue", "", 1, "L", false, 0, "")
	if len(d.Queue) == 0 {
		pdf.SetFont(fontName, "", 10)
		pdf.CellFormat(0, 6, "No disaster surveys recorded.", "", 1, "L", false, 0, "")
	} else {
		queueWidths := []float64{12, 18, 38, 38, 16, 16, 16, 26}
		drawTableRow(pdf, []string{"#", "Priority", "Survey", "Location", "Crit.", "Trap.", "Inj.", "Status"}, queueWidths, true)
		for _, r := range d.Queue {
			s := r.Survey
			drawTableRow(pdf, []string{
				strconv.Itoa(r.Rank),
				strconv.Itoa(r.Priority),
				s.SurveyID,
				s.DigiPin,
				strconv.Itoa(s.Critical),
				strconv.Itoa(s.Trapped),
				strconv.Itoa(s.Injured),
				string(s.LocationStatus),
			}, queueWidths, false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawTableRow(pdf *gofpdf.Fpdf, cols []string, widths []float64, header bool) {
	style := ""
	if header {
		style = "B"
	}
	pdf.SetFont(fontName, style, 9)
	for i, col := range cols {
		align := "L"
		if i > 0 && !header {
			align = "R"
		}
		pdf.CellFormat(widths[i], 7, col, "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}
