package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cinedata/moviedash/internal/dataset"
)

// VisionModel is the slice of the AI endpoint the vision adapter consumes:
// one image plus an instruction in, free text out.
type VisionModel interface {
	GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error)
}

// visionInstruction is the fixed extraction instruction. The endpoint is
// asked for bare JSON, but the response is still treated as adversarial
// input: fencing is stripped and the shape is checked before use.
const visionInstruction = `Extract every movie visible in this image into a JSON array.
Each element must be an object with exactly these keys:
- title (string)
- revenue (number)
- score (number)

Return ONLY the JSON array, no prose and no markdown fencing.`

// VisionAdapter sends an image to the vision endpoint and parses the
// response into a row-set with columns title, revenue, score.
type VisionAdapter struct {
	model    VisionModel
	image    []byte
	mimeType string
}

func NewVisionAdapter(model VisionModel, image []byte, mimeType string) *VisionAdapter {
	return &VisionAdapter{model: model, image: image, mimeType: mimeType}
}

func (a *VisionAdapter) Name() string { return "vision" }

func (a *VisionAdapter) Produce(ctx context.Context) (dataset.RowSet, error) {
	if len(a.image) == 0 {
		return dataset.RowSet{}, &ExtractionError{Err: fmt.Errorf("empty image")}
	}

	text, err := a.model.GenerateVision(ctx, visionInstruction, a.image, a.mimeType)
	if err != nil {
		return dataset.RowSet{}, &ExtractionError{Err: err}
	}

	rows, err := parseVisionResponse(text)
	if err != nil {
		return dataset.RowSet{}, &ExtractionError{Err: err}
	}

	rs := dataset.RowSet{Columns: []string{"title", "revenue", "score"}}
	for _, r := range rows {
		rs.Records = append(rs.Records, dataset.Record{
			"title":   strings.TrimSpace(*r.Title),
			"revenue": *r.Revenue,
			"score":   *r.Score,
		})
	}
	return rs, nil
}

type visionRow struct {
	Title   *string  `json:"title"`
	Revenue *float64 `json:"revenue"`
	Score   *float64 `json:"score"`
}

func parseVisionResponse(text string) ([]visionRow, error) {
	body := StripFences(text)
	if body == "" {
		return nil, fmt.Errorf("empty response")
	}

	var rows []visionRow
	if err := json.Unmarshal([]byte(body), &rows); err != nil {
		return nil, fmt.Errorf("response is not a json array: %w", err)
	}
	for i, r := range rows {
		if r.Title == nil || strings.TrimSpace(*r.Title) == "" {
			return nil, fmt.Errorf("element %d: missing title", i)
		}
		if r.Revenue == nil {
			return nil, fmt.Errorf("element %d: missing revenue", i)
		}
		if r.Score == nil {
			return nil, fmt.Errorf("element %d: missing score", i)
		}
	}
	return rows, nil
}

// StripFences removes a surrounding markdown code fence (``` or ```json)
// from model output, if present. Anything else is returned trimmed.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop a language tag like "json" on the fence line.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	} else {
		s = strings.TrimSpace(s)
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
