package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// formatValue renders a placeholder value as the text substituted into
// the document. Strings pass through untouched, numbers and booleans
// are formatted plainly, string lists become one line per element, and
// any other nested structure is JSON-encoded. Nested structure packed
// into CSV cells stays opaque text by contract; this formatting only
// applies to values that arrive already structured (JSON bodies).
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		// JSON numbers decode to float64; keep integral values clean.
		return strconv.FormatFloat(val, 'f', -1, 64)
	case []string:
		return strings.Join(val, "\n")
	case []any:
		if lines, ok := stringLines(val); ok {
			return strings.Join(lines, "\n")
		}
		return jsonFallback(val)
	default:
		return jsonFallback(val)
	}
}

// stringLines converts a []any whose elements are all strings.
func stringLines(vals []any) ([]string, bool) {
	lines := make([]string, len(vals))
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			return nil, false
		}
		lines[i] = s
	}
	return lines, true
}

func jsonFallback(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
