package server

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/cinedata/moviedash/internal/app"
	"github.com/cinedata/moviedash/internal/ingest"
	"github.com/cinedata/moviedash/internal/logger"
)

// maxUploadBytes bounds file and image uploads.
const maxUploadBytes = 32 << 20

// Handlers exposes the dashboard API over the app layer.
type Handlers struct {
	app    *app.App
	vision ingest.VisionModel
	log    *logger.Logger

	fetchClient *http.Client
}

func NewHandlers(a *app.App, vision ingest.VisionModel, requestTimeout time.Duration, log *logger.Logger) *Handlers {
	if requestTimeout <= 0 {
		requestTimeout = 30 * time.Second
	}
	return &Handlers{
		app:    a,
		vision: vision,
		log:    log.With("component", "http"),
		fetchClient: &http.Client{
			Timeout: requestTimeout,
		},
	}
}

func (h *Handlers) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

type ingestResponse struct {
	Adapter  string `json:"adapter"`
	Appended int    `json:"appended"`
}

func (h *Handlers) ingest(c *gin.Context, adapter ingest.Adapter) {
	n, err := h.app.Ingest(c.Request.Context(), adapter)
	if err != nil {
		h.log.Warn("ingest failed", "adapter", adapter.Name(), "error", err)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingestResponse{Adapter: adapter.Name(), Appended: n})
}

// IngestFile accepts a multipart upload under the "file" field.
func (h *Handlers) IngestFile(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		respondError(c, &ingest.ParseError{Err: err})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, &ingest.ParseError{Filename: fh.Filename, Err: err})
		return
	}
	defer func() {
		_ = f.Close()
	}()

	h.ingest(c, ingest.NewFileAdapter(fh.Filename, io.LimitReader(f, maxUploadBytes)))
}

type manualRequest struct {
	Title   string  `json:"title"`
	Revenue float64 `json:"revenue"`
	Score   float64 `json:"score"`
}

func (h *Handlers) IngestManual(c *gin.Context) {
	var req manualRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &ingest.ValidationError{Field: "body", Reason: "not a valid json form"})
		return
	}
	h.ingest(c, ingest.NewManualAdapter(ingest.ManualEntry{
		Title:   req.Title,
		Revenue: req.Revenue,
		Score:   req.Score,
	}))
}

type remoteRequest struct {
	URL string `json:"url"`
}

func (h *Handlers) IngestRemote(c *gin.Context) {
	var req remoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &ingest.ValidationError{Field: "url", Reason: "missing"})
		return
	}
	h.ingest(c, ingest.NewRemoteAdapter(h.fetchClient, req.URL))
}

// IngestVision accepts a multipart image under the "image" field.
func (h *Handlers) IngestVision(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		respondError(c, &ingest.ExtractionError{Err: err})
		return
	}
	f, err := fh.Open()
	if err != nil {
		respondError(c, &ingest.ExtractionError{Err: err})
		return
	}
	defer func() {
		_ = f.Close()
	}()
	img, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		respondError(c, &ingest.ExtractionError{Err: err})
		return
	}

	h.ingest(c, ingest.NewVisionAdapter(h.vision, img, fh.Header.Get("Content-Type")))
}

type datasetResponse struct {
	Table     string            `json:"table"`
	Limit     int               `json:"limit"`
	FetchedAt time.Time         `json:"fetched_at"`
	Columns   []string          `json:"columns"`
	Rows      []map[string]any  `json:"rows"`
	Roles     map[string]string `json:"roles"`
}

func (h *Handlers) Dataset(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			respondError(c, &ingest.ValidationError{Field: "limit", Reason: "must be a positive integer"})
			return
		}
		limit = n
	}

	snap, roles, err := h.app.Window(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := datasetResponse{
		Table:     snap.Table,
		Limit:     snap.Limit,
		FetchedAt: snap.FetchedAt,
		Columns:   snap.Data.Columns,
		Rows:      make([]map[string]any, snap.Data.Len()),
		Roles:     make(map[string]string, len(roles)),
	}
	for i, rec := range snap.Data.Records {
		resp.Rows[i] = map[string]any(rec)
	}
	for role, col := range roles {
		resp.Roles[string(role)] = col
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handlers) Dashboard(c *gin.Context) {
	d, err := h.app.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *Handlers) Export(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="dataset.csv"`)
	if err := h.app.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		// Headers may already be out; log and drop the connection state as-is.
		h.log.Warn("export failed", "error", err)
		c.Status(http.StatusServiceUnavailable)
	}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Question  string `json:"question"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Answer    string `json:"answer"`
}

func (h *Handlers) Chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, &ingest.ValidationError{Field: "question", Reason: "missing"})
		return
	}

	answer, session, err := h.app.Ask(c.Request.Context(), req.SessionID, req.Question)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, chatResponse{SessionID: session, Answer: answer})
}

func (h *Handlers) ChatHistory(c *gin.Context) {
	session := c.Param("session")
	c.JSON(http.StatusOK, gin.H{
		"session_id": session,
		"turns":      h.app.ChatHistory(session),
	})
}

// ChatEnd drops the session's history. Ending an unknown session is a no-op.
func (h *Handlers) ChatEnd(c *gin.Context) {
	h.app.EndChat(c.Param("session"))
	c.Status(http.StatusNoContent)
}
