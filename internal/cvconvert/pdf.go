package cvconvert

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/go-pdf/fpdf"
)

const (
	bodySize    = 11.0
	headingSize = 14.0
	lineHeight  = 5.5
)

func renderPDF(title string, doc []paragraph) ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(title, true)
	pdf.SetCreator("jobportal", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", bodySize)

	// core fonts are cp1252; characters outside it are dropped
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, p := range doc {
		if strings.TrimSpace(p.Text) == "" {
			pdf.Ln(lineHeight)
			continue
		}
		if p.Heading {
			pdf.SetFont("Helvetica", "B", headingSize)
			pdf.MultiCell(0, lineHeight+2, tr(p.Text), "", "L", false)
			pdf.Ln(1)
			continue
		}
		pdf.SetFont("Helvetica", "", bodySize)
		pdf.MultiCell(0, lineHeight, tr(p.Text), "", "L", false)
		pdf.Ln(1.5)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("cvconvert: render pdf: %w", err)
	}
	return buf.Bytes(), nil
}
