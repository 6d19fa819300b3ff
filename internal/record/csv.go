package record

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"
)

// hasCSVSuffix reports whether path names a delimited file we accept.
// Matching is case-insensitive and purely suffix-based.
func hasCSVSuffix(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), ".csv")
}

// readCSV reads a delimited file into a Batch. The first row is the
// header naming the fields; every following row maps header names to
// that row's cells positionally. Cell values stay opaque text: if a
// caller packs JSON into a cell, decoding it is the caller's business.
func readCSV(path string) (Batch, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(newUTF8Sanitizer(newBOMSkipper(f)))
	// Spreadsheet exports routinely produce ragged rows; tolerate them
	// and pad or truncate against the header below.
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return Batch{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading header of %s: %w", path, err)
	}
	for i, h := range header {
		header[i] = cleanCell(h)
	}

	batch := Batch{}
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}

		rec := make(Record, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(row) {
				rec[name] = cleanCell(row[i])
			} else {
				rec[name] = ""
			}
		}
		batch = append(batch, rec)
	}

	return batch, nil
}

// cleanCell trims whitespace and unwraps the Excel formula-string
// artifact ="value" that spreadsheet exports add to preserve leading
// zeros.
func cleanCell(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, `="`) && strings.HasSuffix(s, `"`) && len(s) >= 3 {
		s = s[2 : len(s)-1]
	}
	return s
}
