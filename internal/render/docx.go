// Package render substitutes placeholder values into Word templates
// and encodes the result as DOCX or PDF bytes.
//
// A .docx file is a zip archive of XML parts. The engine rewrites the
// body, header, footer and note parts in memory: for every paragraph it
// joins the text runs, replaces each delimited placeholder, and writes
// the result back, so placeholders split across formatting runs are
// still found. Everything else in the archive passes through untouched.
package render

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/beevik/etree"

	"github.com/docgenius/docgenius/internal/record"
)

const (
	// DefaultOpenDelimiter and DefaultCloseDelimiter form the default
	// placeholder tag syntax, e.g. {{name}}.
	DefaultOpenDelimiter  = "{{"
	DefaultCloseDelimiter = "}}"
)

// substitutable matches the archive parts that carry document text.
var substitutable = regexp.MustCompile(`^word/(document|header\d*|footer\d*|footnotes|endnotes)\.xml$`)

// Engine renders templates. It holds no state and is safe for
// concurrent use.
type Engine struct{}

// New returns a render engine.
func New() *Engine {
	return &Engine{}
}

// RenderDocx substitutes rec's values into the Word template and
// returns the rendered document bytes. openDelim and closeDelim select
// the placeholder tag syntax; empty strings mean the {{ }} default.
// Placeholders with no matching record key are left untouched.
func (e *Engine) RenderDocx(tmpl []byte, rec record.Record, openDelim, closeDelim string) ([]byte, error) {
	if openDelim == "" {
		openDelim = DefaultOpenDelimiter
	}
	if closeDelim == "" {
		closeDelim = DefaultCloseDelimiter
	}

	zr, err := zip.NewReader(bytes.NewReader(tmpl), int64(len(tmpl)))
	if err != nil {
		return nil, &RenderError{Part: "archive", Err: fmt.Errorf("template is not a valid Word document: %w", err)}
	}
	if !hasPart(zr, "word/document.xml") {
		return nil, &RenderError{Part: "archive", Err: fmt.Errorf("template has no word/document.xml part")}
	}

	values := make(map[string]string, len(rec))
	for key, v := range rec {
		values[key] = formatValue(v)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)

	for _, f := range zr.File {
		data, err := readPart(f)
		if err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}

		if substitutable.MatchString(f.Name) {
			data, err = substitutePart(data, values, openDelim, closeDelim)
			if err != nil {
				return nil, &RenderError{Part: f.Name, Err: err}
			}
		}

		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:   f.Name,
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}
		if _, err := w.Write(data); err != nil {
			return nil, &RenderError{Part: f.Name, Err: err}
		}
	}

	if err := zw.Close(); err != nil {
		return nil, &RenderError{Part: "archive", Err: err}
	}
	return out.Bytes(), nil
}

func hasPart(zr *zip.Reader, name string) bool {
	for _, f := range zr.File {
		if f.Name == name {
			return true
		}
	}
	return false
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// substitutePart rewrites one XML part, replacing placeholders in
// every paragraph.
func substitutePart(data []byte, values map[string]string, openDelim, closeDelim string) ([]byte, error) {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalAttrVal: true,
		CanonicalText:    true,
		CanonicalEndTags: true,
	}
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parsing part XML: %w", err)
	}

	for _, p := range doc.FindElements("//w:p") {
		replaceInParagraph(p, values, openDelim, closeDelim)
	}

	return doc.WriteToBytes()
}

// replaceInParagraph joins the paragraph's text runs, applies all
// placeholder substitutions against the joined text, and writes the
// result back into the first text node. Word splits a single visual
// string across multiple runs (spell-check, formatting boundaries), so
// matching per-node would miss split placeholders. The rewritten text
// keeps the first run's formatting; blanked trailing nodes keep the
// paragraph structure valid.
func replaceInParagraph(p *etree.Element, values map[string]string, openDelim, closeDelim string) {
	texts := p.FindElements(".//w:t")
	if len(texts) == 0 {
		return
	}

	var full strings.Builder
	for _, t := range texts {
		full.WriteString(t.Text())
	}

	replaced := full.String()
	for key, val := range values {
		replaced = strings.ReplaceAll(replaced, openDelim+key+closeDelim, val)
	}
	if replaced == full.String() {
		return
	}

	lines := strings.Split(replaced, "\n")

	first := texts[0]
	first.SetText(lines[0])
	first.CreateAttr("xml:space", "preserve")
	for _, t := range texts[1:] {
		t.SetText("")
	}

	// Extra lines become w:br + w:t siblings inside the first run.
	if len(lines) > 1 {
		run := first.Parent()
		if run == nil {
			return
		}
		at := childIndex(run, first) + 1
		for _, line := range lines[1:] {
			run.InsertChildAt(at, etree.NewElement("w:br"))
			at++
			lt := etree.NewElement("w:t")
			lt.SetText(line)
			lt.CreateAttr("xml:space", "preserve")
			run.InsertChildAt(at, lt)
			at++
		}
	}
}

func childIndex(parent, child *etree.Element) int {
	for i, c := range parent.Child {
		if c == child {
			return i
		}
	}
	return len(parent.Child) - 1
}

// paragraphTexts extracts the visible paragraph text of a rendered
// document, in body order. Used by the PDF output path.
func paragraphTexts(docx []byte) ([]string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return nil, err
	}

	var body []byte
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			if body, err = readPart(f); err != nil {
				return nil, err
			}
			break
		}
	}
	if body == nil {
		return nil, fmt.Errorf("document has no word/document.xml part")
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(body); err != nil {
		return nil, err
	}

	var paras []string
	for _, p := range doc.FindElements("//w:p") {
		var sb strings.Builder
		for _, t := range p.FindElements(".//w:t") {
			sb.WriteString(t.Text())
		}
		paras = append(paras, sb.String())
	}
	return paras, nil
}
