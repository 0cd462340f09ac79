package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/cinedata/moviedash/internal/assistant"
	"github.com/cinedata/moviedash/internal/ingest"
	"github.com/cinedata/moviedash/internal/store"
	"github.com/cinedata/moviedash/internal/util"
)

type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

type errorEnvelope struct {
	Error apiError `json:"error"`
}

// respondError maps the pipeline's error kinds onto HTTP statuses and a
// stable machine-readable code, so a client can distinguish "no data" from
// "failed to load". Messages pass through the secret redactor: upstream
// errors sometimes echo credentials.
func respondError(c *gin.Context, err error) {
	status, code := classify(err)
	c.JSON(status, errorEnvelope{Error: apiError{
		Message: util.RedactSecrets(err.Error()),
		Code:    code,
	}})
}

func classify(err error) (int, string) {
	var (
		parseErr      *ingest.ParseError
		validationErr *ingest.ValidationError
		fetchErr      *ingest.FetchError
		extractErr    *ingest.ExtractionError
		loadErr       *store.LoadError
		storeErr      *store.StoreError
		asstErr       *assistant.AssistantError
	)
	switch {
	// Disabled wins over any wrapping kind: a vision ingest without an API
	// key is "assistant disabled", not a malformed extraction.
	case errors.Is(err, assistant.ErrDisabled):
		return http.StatusServiceUnavailable, "assistant_disabled"
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity, "validation_error"
	case errors.As(err, &parseErr):
		return http.StatusBadRequest, "parse_error"
	case errors.As(err, &extractErr):
		return http.StatusBadRequest, "extraction_error"
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway, "fetch_error"
	case errors.As(err, &loadErr):
		return http.StatusServiceUnavailable, "load_error"
	case errors.As(err, &storeErr):
		return http.StatusServiceUnavailable, "store_error"
	case errors.As(err, &asstErr):
		return http.StatusBadGateway, "assistant_error"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
