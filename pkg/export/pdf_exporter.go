package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// TimetableDay groups the printable rows of one weekday.
type TimetableDay struct {
	Day  string
	Rows []map[string]string
}

// PDFExporter renders a weekly timetable into a landscape PDF, one
// day section per page block.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// RenderTimetable creates a PDF document with a title and per-day tables.
func (e *PDFExporter) RenderTimetable(title string, headers []string, days []TimetableDay) ([]byte, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(title), "", 1, "C", false, 0, "")
		pdf.Ln(3)
	}

	colWidth := 277.0 / float64(len(headers))
	for _, day := range days {
		pdf.SetFont("Arial", "B", 12)
		pdf.CellFormat(0, 8, day.Day, "", 1, "L", false, 0, "")

		pdf.SetFont("Arial", "B", 9)
		for _, header := range headers {
			pdf.CellFormat(colWidth, 7, header, "1", 0, "C", false, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Arial", "", 8)
		if len(day.Rows) == 0 {
			pdf.CellFormat(277, 6, "no classes scheduled", "1", 1, "C", false, 0, "")
		}
		for _, row := range day.Rows {
			for _, header := range headers {
				pdf.CellFormat(colWidth, 6, row[header], "1", 0, "", false, 0, "")
			}
			pdf.Ln(-1)
		}
		pdf.Ln(4)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
