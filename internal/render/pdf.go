package render

import (
	"bytes"
	"strings"

	"github.com/jung-kurt/gofpdf"

	"github.com/docgenius/docgenius/internal/record"
)

// RenderPDF renders the Word template with rec's values, then lays the
// resulting paragraph text out as a PDF. Word-to-PDF conversion with
// full fidelity needs a Word installation; this path reproduces the
// document's text content with plain paragraph styling instead, which
// is what callers of the pdf selector get.
func (e *Engine) RenderPDF(tmpl []byte, rec record.Record, openDelim, closeDelim string) ([]byte, error) {
	docx, err := e.RenderDocx(tmpl, rec, openDelim, closeDelim)
	if err != nil {
		return nil, err
	}

	paras, err := paragraphTexts(docx)
	if err != nil {
		return nil, &RenderError{Part: "pdf", Err: err}
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 11)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for _, para := range paras {
		if strings.TrimSpace(para) == "" {
			pdf.Ln(5)
			continue
		}
		pdf.MultiCell(0, 5.5, tr(para), "", "L", false)
		pdf.Ln(2)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, &RenderError{Part: "pdf", Err: err}
	}
	return buf.Bytes(), nil
}
