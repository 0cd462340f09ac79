package ingest

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/cinedata/moviedash/internal/dataset"
)

// RemoteAdapter fetches a URL expected to resolve to CSV content and parses
// it into a row-set. Any network failure, non-2xx status or non-CSV payload
// is a FetchError; there are no retries, the user re-triggers the fetch.
type RemoteAdapter struct {
	client *http.Client
	url    string
}

func NewRemoteAdapter(client *http.Client, rawURL string) *RemoteAdapter {
	if client == nil {
		client = http.DefaultClient
	}
	return &RemoteAdapter{client: client, url: rawURL}
}

func (a *RemoteAdapter) Name() string { return "remote" }

func (a *RemoteAdapter) Produce(ctx context.Context) (dataset.RowSet, error) {
	target := strings.TrimSpace(a.url)
	u, err := url.Parse(target)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return dataset.RowSet{}, &FetchError{URL: target, Err: fmt.Errorf("not an absolute http(s) url")}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return dataset.RowSet{}, &FetchError{URL: target, Err: err}
	}
	req.Header.Set("Accept", "text/csv, text/plain")

	resp, err := a.client.Do(req)
	if err != nil {
		return dataset.RowSet{}, &FetchError{URL: target, Err: err}
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode/100 != 2 {
		return dataset.RowSet{}, &FetchError{URL: target, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}
	if ct := resp.Header.Get("Content-Type"); !csvContentType(ct) {
		return dataset.RowSet{}, &FetchError{URL: target, Err: fmt.Errorf("unexpected content type %q", ct)}
	}

	rs, err := readCSV(resp.Body)
	if err != nil {
		return dataset.RowSet{}, &FetchError{URL: target, Err: err}
	}
	return rs, nil
}

// csvContentType accepts the media types remote spreadsheet exports actually
// send for CSV: text/csv, plain text, and the generic octet-stream.
func csvContentType(ct string) bool {
	if strings.TrimSpace(ct) == "" {
		return true
	}
	mt, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch mt {
	case "text/csv", "application/csv", "text/plain", "application/octet-stream":
		return true
	default:
		return false
	}
}
