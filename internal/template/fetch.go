// Package template retrieves document templates from caller-supplied
// locations. Retrieval is the only network I/O in the system; the
// bytes it returns are handed straight to the render engine and never
// cached.
package template

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
)

// FetchError reports a template that could not be retrieved from its
// location. It is surfaced to the caller and never retried.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetching template from %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// Fetcher downloads templates over HTTP with a bounded timeout and
// response size.
type Fetcher struct {
	client  *resty.Client
	maxSize int64
}

// NewFetcher creates a Fetcher. maxSize caps the accepted template size
// in bytes; zero means no cap.
func NewFetcher(timeout time.Duration, maxSize int64) *Fetcher {
	client := resty.New().
		SetTimeout(timeout).
		SetRedirectPolicy(resty.FlexibleRedirectPolicy(5))

	return &Fetcher{
		client:  client,
		maxSize: maxSize,
	}
}

// Fetch downloads the template at rawURL and returns its bytes.
// Only http and https locations are accepted. Any transport failure,
// non-2xx status, or oversized response yields a *FetchError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unsupported scheme %q", u.Scheme)}
	}

	resp, err := f.client.R().SetContext(ctx).Get(rawURL)
	if err != nil {
		return nil, &FetchError{URL: rawURL, Err: err}
	}
	if !resp.IsSuccess() {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("unexpected status %d", resp.StatusCode())}
	}

	body := resp.Body()
	if f.maxSize > 0 && int64(len(body)) > f.maxSize {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("template size %d exceeds limit %d", len(body), f.maxSize)}
	}
	if len(body) == 0 {
		return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("empty response body")}
	}

	return body, nil
}
