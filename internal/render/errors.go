package render

import "fmt"

// RenderError reports a template or placeholder set the engine could
// not process (malformed archive, broken XML part, unencodable value).
// It is surfaced to the caller verbatim and never retried.
type RenderError struct {
	Part string // archive part or stage that failed
	Err  error
}

func (e *RenderError) Error() string {
	if e.Part == "" {
		return fmt.Sprintf("render failed: %v", e.Err)
	}
	return fmt.Sprintf("render failed in %s: %v", e.Part, e.Err)
}

func (e *RenderError) Unwrap() error {
	return e.Err
}
