// Package record normalizes the three supported placeholder input
// shapes into one uniform record batch.
//
// Callers may hand the generator a single record, a list of records, or
// the path to a CSV file. Downstream code (the render engine, the batch
// exporters) only ever sees a Batch, so it never branches on input
// shape. A Batch is built fresh per request, consumed and discarded;
// nothing is cached or persisted.
package record

import (
	"fmt"
)

// Record maps placeholder names to values for a single document.
// Values are text, numbers, or nested structures as decoded from JSON;
// CSV cells always arrive as text.
type Record map[string]any

// Batch is an ordered sequence of Records. Order is significant: it
// determines output document order when one batch produces many files.
type Batch []Record

// UnsupportedInputError reports an input that is neither a record, a
// list of records, nor a path to a recognized delimited file. This is
// always a caller bug and is never retried.
type UnsupportedInputError struct {
	Value any
}

func (e *UnsupportedInputError) Error() string {
	return fmt.Sprintf("unsupported input type %T: input must be a record, a list of records, or a path to a .csv file", e.Value)
}

type sourceKind int

const (
	kindRecord sourceKind = iota
	kindList
	kindCSV
)

// Source is the tagged union of the three input shapes. Construct one
// with FromRecord, FromList, or FromCSV; the zero value behaves like an
// empty single record.
type Source struct {
	kind   sourceKind
	record Record
	list   Batch
	path   string
}

// FromRecord wraps a single record.
func FromRecord(r Record) Source {
	return Source{kind: kindRecord, record: r}
}

// FromList wraps an ordered list of records.
func FromList(l []Record) Source {
	return Source{kind: kindList, list: l}
}

// FromCSV wraps a filesystem path to a delimited file. The file is not
// touched until Normalize is called.
func FromCSV(path string) Source {
	return Source{kind: kindCSV, path: path}
}

// Normalize flattens the source into a Batch.
//
//   - A single record yields a one-element batch.
//   - A list is returned as-is; an empty list yields an empty batch.
//   - A CSV path is read: the header row names the fields and each
//     following row becomes one Record, in file order. A header-only
//     file yields an empty batch. Detection is purely by the
//     case-insensitive ".csv" suffix, never by sniffing content, so a
//     mis-named file fails instead of silently guessing.
func (s Source) Normalize() (Batch, error) {
	switch s.kind {
	case kindRecord:
		return Batch{s.record}, nil
	case kindList:
		return s.list, nil
	case kindCSV:
		if !hasCSVSuffix(s.path) {
			return nil, &UnsupportedInputError{Value: s.path}
		}
		return readCSV(s.path)
	default:
		return nil, &UnsupportedInputError{Value: s}
	}
}

// NormalizeValue is the dynamic boundary adapter for inputs that arrive
// as decoded JSON (or flag values), where the shape is only known at
// runtime. It dispatches to the matching Source constructor and
// normalizes. Anything that is not a mapping, a sequence of mappings,
// or a .csv path fails with an UnsupportedInputError naming the
// offending type.
func NormalizeValue(v any) (Batch, error) {
	switch in := v.(type) {
	case Record:
		return FromRecord(in).Normalize()
	case map[string]any:
		return FromRecord(Record(in)).Normalize()
	case Batch:
		return FromList(in).Normalize()
	case []Record:
		return FromList(in).Normalize()
	case []map[string]any:
		list := make(Batch, len(in))
		for i, m := range in {
			list[i] = Record(m)
		}
		return FromList(list).Normalize()
	case []any:
		list := make(Batch, 0, len(in))
		for _, el := range in {
			m, ok := el.(map[string]any)
			if !ok {
				return nil, &UnsupportedInputError{Value: el}
			}
			list = append(list, Record(m))
		}
		return FromList(list).Normalize()
	case string:
		if !hasCSVSuffix(in) {
			return nil, &UnsupportedInputError{Value: in}
		}
		return FromCSV(in).Normalize()
	default:
		return nil, &UnsupportedInputError{Value: v}
	}
}
