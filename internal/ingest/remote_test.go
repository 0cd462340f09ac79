package ingest_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cinedata/moviedash/internal/ingest"
)

func TestRemoteAdapter(t *testing.T) {
	t.Run("fetches and parses csv", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("title,revenue\nHeat,187\n"))
		}))
		defer srv.Close()

		rs, err := ingest.NewRemoteAdapter(srv.Client(), srv.URL).Produce(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rs.Len() != 1 || rs.Records[0]["title"] != "Heat" {
			t.Fatalf("unexpected row-set: %#v", rs)
		}
	})

	t.Run("non-2xx status", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.NotFound(w, r)
		}))
		defer srv.Close()

		_, err := ingest.NewRemoteAdapter(srv.Client(), srv.URL).Produce(context.Background())
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})

	t.Run("html content type", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html>nope</html>"))
		}))
		defer srv.Close()

		_, err := ingest.NewRemoteAdapter(srv.Client(), srv.URL).Produce(context.Background())
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})

	t.Run("malformed csv body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "text/csv")
			_, _ = w.Write([]byte("title,revenue\n\"Heat,187\n"))
		}))
		defer srv.Close()

		_, err := ingest.NewRemoteAdapter(srv.Client(), srv.URL).Produce(context.Background())
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})

	t.Run("unreachable host", func(t *testing.T) {
		_, err := ingest.NewRemoteAdapter(nil, "http://127.0.0.1:1/never.csv").Produce(context.Background())
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})

	t.Run("relative url", func(t *testing.T) {
		_, err := ingest.NewRemoteAdapter(nil, "movies.csv").Produce(context.Background())
		var fe *ingest.FetchError
		if !errors.As(err, &fe) {
			t.Fatalf("expected FetchError, got %v", err)
		}
	})
}
