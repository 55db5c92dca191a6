package export

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jung-kurt/gofpdf"
)

// PDFExporter renders datasets into a tabular PDF. Wide tables (a full
// week grid) switch to landscape so the day columns stay legible.
type PDFExporter struct{}

// NewPDFExporter constructs a PDF exporter.
func NewPDFExporter() *PDFExporter {
	return &PDFExporter{}
}

// Render creates a PDF document with the dataset title, meta lines and
// table body. The first column is treated as a row label and kept narrow.
func (e *PDFExporter) Render(data Dataset) ([]byte, error) {
	if len(data.Headers) == 0 {
		return nil, fmt.Errorf("pdf requires at least one header")
	}

	orientation := "P"
	pageWidth := 190.0
	if len(data.Headers) > 4 {
		orientation = "L"
		pageWidth = 277.0
	}

	pdf := gofpdf.New(orientation, "mm", "A4", "")
	pdf.SetMargins(10, 15, 10)
	pdf.AddPage()

	if data.Title != "" {
		pdf.SetFont("Arial", "B", 14)
		pdf.CellFormat(0, 10, strings.ToUpper(data.Title), "", 1, "C", false, 0, "")
	}
	if len(data.Meta) > 0 {
		pdf.SetFont("Arial", "", 9)
		for _, line := range data.Meta {
			pdf.CellFormat(0, 5, line, "", 1, "C", false, 0, "")
		}
	}
	pdf.Ln(4)

	labelWidth := pageWidth / float64(len(data.Headers))
	colWidth := labelWidth
	if len(data.Headers) > 1 {
		labelWidth = pageWidth * 0.12
		colWidth = (pageWidth - labelWidth) / float64(len(data.Headers)-1)
	}
	widthFor := func(i int) float64 {
		if i == 0 {
			return labelWidth
		}
		return colWidth
	}

	pdf.SetFont("Arial", "B", 10)
	for i, header := range data.Headers {
		pdf.CellFormat(widthFor(i), 8, header, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 8)
	for _, row := range data.Rows {
		for i, header := range data.Headers {
			pdf.CellFormat(widthFor(i), 7, row[header], "1", 0, "", false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := &bytes.Buffer{}
	if err := pdf.Output(buf); err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
