package template

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestFetch_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("template-bytes"))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0)
	body, err := f.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(body) != "template-bytes" {
		t.Errorf("body = %q, want %q", body, "template-bytes")
	}
}

func TestFetch_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "missing", http.StatusNotFound)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
}

func TestFetch_UnreachableHost(t *testing.T) {
	f := NewFetcher(500*time.Millisecond, 0)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/template.docx")

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
}

func TestFetch_RejectsNonHTTPScheme(t *testing.T) {
	f := NewFetcher(time.Second, 0)
	for _, raw := range []string{"ftp://host/t.docx", "file:///etc/passwd", "not a url at all\x7f"} {
		_, err := f.Fetch(context.Background(), raw)
		var fetchErr *FetchError
		if !errors.As(err, &fetchErr) {
			t.Errorf("Fetch(%q) error = %v, want FetchError", raw, err)
		}
	}
}

func TestFetch_SizeCap(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 1024)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
}

func TestFetch_EmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	f := NewFetcher(5*time.Second, 0)
	_, err := f.Fetch(context.Background(), srv.URL)

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("error = %v, want FetchError", err)
	}
}
