// Package export writes rendered documents to disk for batch (CLI)
// usage: one output file per record, with sanitized, collision-free
// names. The HTTP service never touches this package; it streams a
// single document back instead.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/docgenius/docgenius/internal/record"
	"github.com/docgenius/docgenius/internal/render"
)

// Supported output formats.
const (
	FormatDocx     = "docx"
	FormatPDF      = "pdf"
	FormatMarkdown = "md"
)

// Options controls a batch export run.
type Options struct {
	// OutputDir receives the generated files; created if missing.
	OutputDir string

	// Format is docx, pdf, or md.
	Format string

	// FilenameKey optionally names a record field whose value becomes
	// the output file's base name. Empty means sequential naming.
	FilenameKey string

	// OpenDelim and CloseDelim select the placeholder tag syntax;
	// empty means the {{ }} default. Ignored for md.
	OpenDelim  string
	CloseDelim string
}

// WriteBatch renders every record in the batch and writes one file per
// record, in batch order. tmpl may be nil for the md format, which
// needs no template. It returns the written paths in order.
func WriteBatch(engine *render.Engine, tmpl []byte, batch record.Batch, opts Options) ([]string, error) {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	var paths []string
	for i, rec := range batch {
		var (
			data []byte
			err  error
		)
		switch opts.Format {
		case FormatDocx:
			data, err = engine.RenderDocx(tmpl, rec, opts.OpenDelim, opts.CloseDelim)
		case FormatPDF:
			data, err = engine.RenderPDF(tmpl, rec, opts.OpenDelim, opts.CloseDelim)
		case FormatMarkdown:
			data, err = Markdown(rec)
		default:
			return paths, fmt.Errorf("unsupported output format %q", opts.Format)
		}
		if err != nil {
			return paths, fmt.Errorf("record %d: %w", i+1, err)
		}

		path := availablePath(opts.OutputDir, baseName(rec, opts.FilenameKey, i, len(batch)), opts.Format)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return paths, fmt.Errorf("writing %s: %w", path, err)
		}
		paths = append(paths, path)
	}

	return paths, nil
}

// baseName picks the output base name for one record: the value of the
// filename key when set and present, otherwise generated_output with a
// sequence number when the batch has more than one record.
func baseName(rec record.Record, key string, idx, total int) string {
	if key != "" {
		if v, ok := rec[key]; ok {
			if s := SanitizeFilename(fmt.Sprintf("%v", v)); s != "" {
				return s
			}
		}
	}
	if total > 1 {
		return fmt.Sprintf("generated_output_%d", idx+1)
	}
	return "generated_output"
}

// availablePath returns dir/base.ext, appending _1, _2, ... until the
// name does not collide with an existing file.
func availablePath(dir, base, ext string) string {
	path := filepath.Join(dir, base+"."+ext)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s_%d.%s", base, counter, ext))
	}
}

// SanitizeFilename strips path separators and characters that are
// unsafe in filenames across platforms, collapsing runs of them to a
// single underscore.
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)

	var sb strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '-', r == '.', r == ' ':
			sb.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				sb.WriteByte('_')
				lastUnderscore = true
			}
		}
	}

	return strings.Trim(sb.String(), "._ ")
}
