package server

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinedata/moviedash/internal/app"
	"github.com/cinedata/moviedash/internal/assistant"
	"github.com/cinedata/moviedash/internal/dataset"
	"github.com/cinedata/moviedash/internal/logger"
	"github.com/cinedata/moviedash/internal/store"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type memStore struct {
	cols    []string
	rows    []dataset.Record
	appends int
}

func (s *memStore) ListTables(ctx context.Context) ([]string, error) {
	return []string{"ratings"}, nil
}

func (s *memStore) Query(ctx context.Context, table string, limit int) (dataset.RowSet, error) {
	n := len(s.rows)
	if limit < n {
		n = limit
	}
	return dataset.RowSet{Columns: s.cols, Records: s.rows[:n]}, nil
}

func (s *memStore) Append(ctx context.Context, table string, rs dataset.RowSet) error {
	s.appends++
	if len(s.cols) == 0 {
		s.cols = rs.Columns
	}
	s.rows = append(s.rows, rs.Records...)
	return nil
}

type stubVision struct{ response string }

func (s stubVision) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return s.response, nil
}

func newTestRouter(st *memStore, gen assistant.Generator, vision stubVision) *gin.Engine {
	cache := store.NewCache(st, "ratings")
	asst := assistant.New(gen, 20)
	a := app.New(logger.Nop(), st, cache, asst, app.Options{FetchLimit: 100})
	h := NewHandlers(a, vision, time.Second, logger.Nop())
	return NewRouter(h)
}

type okGen struct{}

func (okGen) Generate(ctx context.Context, prompt string) (string, error) { return "answer", nil }

func TestIngestManualRoute(t *testing.T) {
	t.Run("appends and reports count", func(t *testing.T) {
		st := &memStore{}
		r := newTestRouter(st, okGen{}, stubVision{})

		body := `{"title":"Heat","revenue":187,"score":7.9}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/ingest/manual", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp ingestResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("bad body: %v", err)
		}
		if resp.Appended != 1 || resp.Adapter != "manual" {
			t.Fatalf("unexpected response: %+v", resp)
		}
		if st.appends != 1 {
			t.Fatalf("append invoked %d times", st.appends)
		}
	})

	t.Run("empty title is 422 and writes nothing", func(t *testing.T) {
		st := &memStore{}
		r := newTestRouter(st, okGen{}, stubVision{})

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/ingest/manual", strings.NewReader(`{"title":""}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusUnprocessableEntity {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "validation_error") {
			t.Fatalf("expected validation_error code, got %s", w.Body.String())
		}
		if st.appends != 0 {
			t.Fatalf("append invoked on validation failure")
		}
	})
}

func TestIngestFileRoute(t *testing.T) {
	st := &memStore{}
	r := newTestRouter(st, okGen{}, stubVision{})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", "movies.csv")
	if err != nil {
		t.Fatalf("form: %v", err)
	}
	_, _ = fw.Write([]byte("Title,Revenue,Vote_Average\nHeat,187,7.9\nAlien,104,8.1\nRan,41,8.2\n"))
	_ = mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/file", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ingestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Appended != 3 {
		t.Fatalf("expected 3 appended, got %+v", resp)
	}
}

func TestIngestVisionRoute(t *testing.T) {
	st := &memStore{}
	r := newTestRouter(st, okGen{}, stubVision{response: `[{"title":"A","revenue":100,"score":5}]`})

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, _ := mw.CreateFormFile("image", "chart.png")
	_, _ = fw.Write([]byte{0x89, 0x50, 0x4e, 0x47})
	_ = mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/vision", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var resp ingestResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Appended != 1 || resp.Adapter != "vision" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestDashboardRoute(t *testing.T) {
	st := &memStore{
		cols: []string{"title", "vote_average", "revenue"},
		rows: []dataset.Record{{"title": "Heat", "vote_average": 7.9, "revenue": 187.0}},
	}
	r := newTestRouter(st, okGen{}, stubVision{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	var d app.Dashboard
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("bad body: %v", err)
	}
	if d.TotalRows != 1 || d.Roles["score"] != "vote_average" {
		t.Fatalf("unexpected dashboard: %+v", d)
	}
}

func TestDatasetRouteLimitValidation(t *testing.T) {
	r := newTestRouter(&memStore{}, okGen{}, stubVision{})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/dataset?limit=zero", nil))
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestChatRoute(t *testing.T) {
	t.Run("answers with session id", func(t *testing.T) {
		r := newTestRouter(&memStore{}, okGen{}, stubVision{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		var resp chatResponse
		_ = json.Unmarshal(w.Body.Bytes(), &resp)
		if resp.Answer != "answer" || resp.SessionID == "" {
			t.Fatalf("unexpected response: %+v", resp)
		}

		// History is visible under the returned session id.
		w2 := httptest.NewRecorder()
		r.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/api/chat/"+resp.SessionID, nil))
		if w2.Code != http.StatusOK || !strings.Contains(w2.Body.String(), "hi") {
			t.Fatalf("history missing: %s", w2.Body.String())
		}

		// Ending the session drops its history.
		w3 := httptest.NewRecorder()
		r.ServeHTTP(w3, httptest.NewRequest(http.MethodDelete, "/api/chat/"+resp.SessionID, nil))
		if w3.Code != http.StatusNoContent {
			t.Fatalf("end session status = %d", w3.Code)
		}
		w4 := httptest.NewRecorder()
		r.ServeHTTP(w4, httptest.NewRequest(http.MethodGet, "/api/chat/"+resp.SessionID, nil))
		if strings.Contains(w4.Body.String(), "hi") {
			t.Fatalf("history survived end: %s", w4.Body.String())
		}
	})

	t.Run("disabled assistant is 503", func(t *testing.T) {
		r := newTestRouter(&memStore{}, assistant.Disabled{}, stubVision{})
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"question":"hi"}`))
		req.Header.Set("Content-Type", "application/json")
		r.ServeHTTP(w, req)

		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "assistant_disabled") {
			t.Fatalf("expected assistant_disabled code: %s", w.Body.String())
		}
	})
}

func TestExportRoute(t *testing.T) {
	st := &memStore{
		cols: []string{"title", "revenue"},
		rows: []dataset.Record{{"title": "Heat", "revenue": 187.0}},
	}
	r := newTestRouter(st, okGen{}, stubVision{})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if got := w.Body.String(); got != "title,revenue\nHeat,187\n" {
		t.Fatalf("unexpected csv: %q", got)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/csv") {
		t.Fatalf("unexpected content type: %q", ct)
	}
}
