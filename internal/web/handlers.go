package web

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"github.com/docgenius/docgenius/internal/logging"
	"github.com/docgenius/docgenius/internal/record"
	"github.com/docgenius/docgenius/internal/render"
)

// Media types for the two output formats.
const (
	mediaTypePDF  = "application/pdf"
	mediaTypeDocx = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// createDocumentRequest is the JSON body of POST /create-document.
type createDocumentRequest struct {
	TemplateURL      string        `json:"template_url"`
	Placeholders     record.Record `json:"placeholders"`
	OpeningDelimiter string        `json:"opening_delimiter"`
	ClosingDelimiter string        `json:"closing_delimiter"`
	OutputExtension  string        `json:"output_extension"`
}

// handleHealth reports service liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

// handleCreateDocument fetches the template named in the request,
// substitutes the placeholder values, and streams the rendered
// document back.
//
// The response media type is chosen solely from the requested
// output_extension, never from sniffing what the engine produced.
// Existing callers rely on this, so it stays a declared contract even
// though a caller could in principle lie about the format it wants.
func (s *Server) handleCreateDocument(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest

	body := http.MaxBytesReader(w, r.Body, s.cfg.Server.MaxBodySize)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		s.respondError(w, r, errBadRequest("invalid JSON body: "+err.Error()))
		return
	}

	if req.TemplateURL == "" {
		s.respondError(w, r, errBadRequest("template_url is required"))
		return
	}
	if req.OpeningDelimiter == "" {
		req.OpeningDelimiter = render.DefaultOpenDelimiter
	}
	if req.ClosingDelimiter == "" {
		req.ClosingDelimiter = render.DefaultCloseDelimiter
	}
	if req.OutputExtension == "" {
		req.OutputExtension = s.cfg.Render.DefaultExtension
	}
	if req.OutputExtension != "docx" && req.OutputExtension != "pdf" {
		s.respondError(w, r, errBadRequest("output_extension must be \"docx\" or \"pdf\""))
		return
	}

	// One batch per request, consumed immediately and discarded. The
	// HTTP contract carries a single mapping; the normalizer keeps the
	// downstream path shape-agnostic all the same.
	batch, err := record.FromRecord(req.Placeholders).Normalize()
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	rec := batch[0]

	docID := uuid.NewString()
	logger := logging.WithFields(r.Context(),
		"document_id", docID,
		"output_extension", req.OutputExtension,
	)

	tmpl, err := s.fetcher.Fetch(r.Context(), req.TemplateURL)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	logger.Debug("template fetched", "bytes", len(tmpl))

	var (
		out       []byte
		mediaType string
	)
	if req.OutputExtension == "pdf" {
		out, err = s.engine.RenderPDF(tmpl, rec, req.OpeningDelimiter, req.ClosingDelimiter)
		mediaType = mediaTypePDF
	} else {
		out, err = s.engine.RenderDocx(tmpl, rec, req.OpeningDelimiter, req.ClosingDelimiter)
		mediaType = mediaTypeDocx
	}
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("document rendered", "bytes", len(out), "placeholders", len(rec))

	w.Header().Set("Content-Type", mediaType)
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}
