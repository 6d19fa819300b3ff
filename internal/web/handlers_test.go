package web

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/docgenius/docgenius/internal/config"
)

const testContentTypesXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
</Types>`

const testRelsXML = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
</Relationships>`

// buildTemplate assembles a minimal in-memory .docx whose body holds a
// single paragraph with the given text.
func buildTemplate(t *testing.T, paragraph string) []byte {
	t.Helper()

	documentXML := `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` +
		`<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		`<w:p><w:r><w:t>` + paragraph + `</w:t></w:r></w:p>` +
		`</w:body></w:document>`

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	parts := []struct{ name, body string }{
		{"[Content_Types].xml", testContentTypesXML},
		{"_rels/.rels", testRelsXML},
		{"word/document.xml", documentXML},
	}
	for _, part := range parts {
		w, err := zw.Create(part.name)
		if err != nil {
			t.Fatalf("creating part %s: %v", part.name, err)
		}
		if _, err := w.Write([]byte(part.body)); err != nil {
			t.Fatalf("writing part %s: %v", part.name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("closing fixture archive: %v", err)
	}
	return buf.Bytes()
}

func newTestServer(t *testing.T) *Server {
	t.Helper()

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("loading default config: %v", err)
	}
	cfg.Rate.Enabled = false
	return NewServer(cfg)
}

// templateHost serves the given docx bytes on every path.
func templateHost(t *testing.T, tmpl []byte) *httptest.Server {
	t.Helper()

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(tmpl)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func postCreateDocument(t *testing.T, srv *Server, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/create-document", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)
	return rr
}

func decodeDetail(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()

	var resp struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("error body is not JSON: %v (body: %s)", err, rr.Body.String())
	}
	return resp.Detail
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `"ok"`) {
		t.Errorf("body = %q, want ok status", rr.Body.String())
	}
}

func TestCreateDocumentDocx(t *testing.T) {
	srv := newTestServer(t)
	ts := templateHost(t, buildTemplate(t, "Dear {{name}},"))

	rr := postCreateDocument(t, srv, `{
		"template_url": "`+ts.URL+`/template.docx",
		"placeholders": {"name": "Acme Corp"}
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != mediaTypeDocx {
		t.Errorf("Content-Type = %q, want %q", got, mediaTypeDocx)
	}

	out := rr.Body.Bytes()
	zr, err := zip.NewReader(bytes.NewReader(out), int64(len(out)))
	if err != nil {
		t.Fatalf("response is not a zip archive: %v", err)
	}
	var docXML string
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			rc, err := f.Open()
			if err != nil {
				t.Fatalf("opening document part: %v", err)
			}
			data, err := io.ReadAll(rc)
			rc.Close()
			if err != nil {
				t.Fatalf("reading document part: %v", err)
			}
			docXML = string(data)
		}
	}
	if !strings.Contains(docXML, "Dear Acme Corp,") {
		t.Errorf("document part does not contain substituted text: %s", docXML)
	}
	if strings.Contains(docXML, "{{name}}") {
		t.Error("placeholder tag survived substitution")
	}
}

func TestCreateDocumentPDF(t *testing.T) {
	srv := newTestServer(t)
	ts := templateHost(t, buildTemplate(t, "Invoice for {{client}}"))

	rr := postCreateDocument(t, srv, `{
		"template_url": "`+ts.URL+`/template.docx",
		"placeholders": {"client": "Globex"},
		"output_extension": "pdf"
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != mediaTypePDF {
		t.Errorf("Content-Type = %q, want %q", got, mediaTypePDF)
	}
	if !bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")) {
		t.Error("response body does not start with the PDF magic number")
	}
}

func TestCreateDocumentCustomDelimiters(t *testing.T) {
	srv := newTestServer(t)
	ts := templateHost(t, buildTemplate(t, "Hello &lt;&lt;name&gt;&gt;"))

	rr := postCreateDocument(t, srv, `{
		"template_url": "`+ts.URL+`/template.docx",
		"placeholders": {"name": "World"},
		"opening_delimiter": "<<",
		"closing_delimiter": ">>"
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
}

func TestCreateDocumentErrors(t *testing.T) {
	srv := newTestServer(t)
	ts := templateHost(t, buildTemplate(t, "{{x}}"))

	tests := []struct {
		name string
		body string
	}{
		{
			name: "invalid JSON",
			body: `{"template_url": `,
		},
		{
			name: "missing template_url",
			body: `{"placeholders": {"a": "b"}}`,
		},
		{
			name: "bad output_extension",
			body: `{"template_url": "` + ts.URL + `/t.docx", "placeholders": {}, "output_extension": "odt"}`,
		},
		{
			name: "unreachable template host",
			body: `{"template_url": "http://127.0.0.1:1/t.docx", "placeholders": {}}`,
		},
		{
			name: "unsupported template_url scheme",
			body: `{"template_url": "ftp://example.com/t.docx", "placeholders": {}}`,
		},
		{
			name: "template is not a docx archive",
			body: "", // filled below
		},
	}

	plain := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("this is not a zip"))
	}))
	t.Cleanup(plain.Close)
	tests[len(tests)-1].body = `{"template_url": "` + plain.URL + `/t.docx", "placeholders": {}}`

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := postCreateDocument(t, srv, tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400 (body: %s)", rr.Code, rr.Body.String())
			}
			if detail := decodeDetail(t, rr); detail == "" {
				t.Error("error detail is empty")
			}
		})
	}
}

func TestCreateDocumentDefaultExtension(t *testing.T) {
	srv := newTestServer(t)
	ts := templateHost(t, buildTemplate(t, "plain text"))

	rr := postCreateDocument(t, srv, `{
		"template_url": "`+ts.URL+`/template.docx",
		"placeholders": {}
	}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("Content-Type"); got != mediaTypeDocx {
		t.Errorf("Content-Type = %q, want default docx media type %q", got, mediaTypeDocx)
	}
}

func TestSecurityHeaders(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	srv.Router().ServeHTTP(rr, req)

	if got := rr.Header().Get("X-Content-Type-Options"); got != "nosniff" {
		t.Errorf("X-Content-Type-Options = %q, want nosniff", got)
	}
}

func TestRateLimiter(t *testing.T) {
	rl := newRateLimiter(2, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Error("first request should be allowed")
	}
	if !rl.allow("10.0.0.1") {
		t.Error("second request should be allowed")
	}
	if rl.allow("10.0.0.1") {
		t.Error("third request should be rejected")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("different IP should have its own bucket")
	}
}
