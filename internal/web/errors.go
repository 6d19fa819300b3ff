package web

// errors.go converts the generator's error taxonomy into client
// responses. Every failure surfaces as HTTP 400 with a JSON body of
// the form {"detail": "<message>"}, which is what existing callers of
// the create-document endpoint parse. The technical error and a
// classification code are logged with the request ID for correlation;
// nothing is retried or persisted.

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docgenius/docgenius/internal/logging"
	"github.com/docgenius/docgenius/internal/record"
	"github.com/docgenius/docgenius/internal/render"
	"github.com/docgenius/docgenius/internal/template"
)

// detailResponse is the wire shape of every error response.
type detailResponse struct {
	Detail string `json:"detail"`
}

// badRequestError marks request-shape problems (malformed JSON,
// missing or invalid fields) that belong to no taxonomy type.
type badRequestError string

func (e badRequestError) Error() string { return string(e) }

func errBadRequest(msg string) error { return badRequestError(msg) }

// errorCode classifies an error for logging and support reference.
//
//	INPUT001  - unsupported input shape (caller bug, never retried)
//	FETCH001  - template could not be retrieved from its location
//	RENDER001 - the engine rejected the template or placeholder data
//	REQ001    - malformed request
//	ERR000    - anything else
func errorCode(err error) string {
	var (
		unsupported *record.UnsupportedInputError
		fetchErr    *template.FetchError
		renderErr   *render.RenderError
		reqErr      badRequestError
	)
	switch {
	case errors.As(err, &unsupported):
		return "INPUT001"
	case errors.As(err, &fetchErr):
		return "FETCH001"
	case errors.As(err, &renderErr):
		return "RENDER001"
	case errors.As(err, &reqErr):
		return "REQ001"
	default:
		return "ERR000"
	}
}

// respondError logs the technical error and writes the client-visible
// 400 response carrying the underlying message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	logger := logging.FromContext(r.Context())
	logger.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"code", errorCode(err),
		"error", err.Error(),
	)

	writeDetail(w, http.StatusBadRequest, err.Error())
}

// writeDetail writes a JSON {"detail": ...} response with the given
// status.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(detailResponse{Detail: detail})
}
