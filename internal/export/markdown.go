package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/docgenius/docgenius/internal/record"
)

// Markdown renders one record as a standalone markdown document: YAML
// front matter carrying the record's scalar fields, followed by one
// section per field. Nested values stay out of the front matter and
// are JSON-encoded in the body.
func Markdown(rec record.Record) ([]byte, error) {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf bytes.Buffer

	front := make(map[string]any)
	for _, k := range keys {
		if isScalar(rec[k]) {
			front[k] = rec[k]
		}
	}
	if len(front) > 0 {
		fm, err := yaml.Marshal(front)
		if err != nil {
			return nil, fmt.Errorf("encoding front matter: %w", err)
		}
		buf.WriteString("---\n")
		buf.Write(fm)
		buf.WriteString("---\n\n")
	}

	for _, k := range keys {
		buf.WriteString("## ")
		buf.WriteString(k)
		buf.WriteString("\n\n")
		buf.WriteString(markdownValue(rec[k]))
		buf.WriteString("\n\n")
	}

	return buf.Bytes(), nil
}

func isScalar(v any) bool {
	switch v.(type) {
	case nil, string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

func markdownValue(v any) string {
	if isScalar(v) {
		return fmt.Sprintf("%v", v)
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return "```json\n" + string(b) + "\n```"
}
