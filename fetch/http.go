package fetch

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"

	"github.com/cjolowicz/cutty-sub001/internal/atomicfile"
)

// HTTPFetcherError is returned when a download over HTTP fails, either in
// transport or with a non-2xx status.
type HTTPFetcherError struct {
	Err        error
	URL        string
	StatusCode int
}

func (e *HTTPFetcherError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot download %s: %s", e.URL, e.Err)
	}

	return fmt.Sprintf("cannot download %s: %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPFetcherError) Unwrap() error {
	return e.Err
}

// HTTPFetcher downloads files with GET requests. Every fetch downloads the
// file again.
type HTTPFetcher struct {
	client  *http.Client
	headers http.Header
}

var _ SchemeFetcher = (*HTTPFetcher)(nil)

// NewHTTPFetcher returns an HTTPFetcher using http.DefaultClient.
func NewHTTPFetcher() *HTTPFetcher {
	return &HTTPFetcher{client: http.DefaultClient, headers: http.Header{}}
}

func (*HTTPFetcher) Schemes() []string {
	return []string{"http", "https"}
}

// WithHTTPClient returns a copy of the fetcher using the given client.
func (f *HTTPFetcher) WithHTTPClient(client *http.Client) *HTTPFetcher {
	if client == nil {
		return f
	}

	fetcher := *f
	fetcher.client = client

	return &fetcher
}

// WithHeader returns a copy of the fetcher sending the given headers in
// addition to any set before.
func (f *HTTPFetcher) WithHeader(headers http.Header) *HTTPFetcher {
	if headers == nil {
		return f
	}

	fetcher := *f
	fetcher.headers = f.headers.Clone()

	for k, vs := range headers {
		for _, v := range vs {
			fetcher.headers.Add(k, v)
		}
	}

	return &fetcher
}

// Fetch downloads u to the file dest.
func (f *HTTPFetcher) Fetch(ctx context.Context, u *url.URL, dest, _ string) error {
	target := *u
	target.Fragment = ""

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return &HTTPFetcherError{URL: u.Redacted(), Err: err}
	}

	req.Header = f.headers.Clone()

	resp, err := f.client.Do(req)
	if err != nil {
		return &HTTPFetcherError{URL: u.Redacted(), Err: err}
	}

	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &HTTPFetcherError{URL: u.Redacted(), StatusCode: resp.StatusCode}
	}

	if err := clearDir(dest); err != nil {
		return &HTTPFetcherError{URL: u.Redacted(), StatusCode: resp.StatusCode, Err: err}
	}

	if err := atomicfile.Write(dest, resp.Body, 0o644); err != nil {
		return &HTTPFetcherError{URL: u.Redacted(), StatusCode: resp.StatusCode, Err: err}
	}

	return nil
}

// clearDir removes dest if it is a directory, which a file can't replace.
func clearDir(dest string) error {
	if fi, err := os.Lstat(dest); err == nil && fi.IsDir() {
		return os.RemoveAll(dest)
	}

	return nil
}
