package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// Generator is the AI text boundary: one prompt in, one text response out.
// No streaming, no function calling.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Config holds the Gemini client settings.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the Gemini API base URL. Useful for proxies/testing.
	BaseURL string

	// RateLimitRPS bounds outgoing calls across text and vision. <=0 disables.
	RateLimitRPS float64

	// RequestTimeout bounds each call; a timeout surfaces as an error, never
	// a hang. <=0 falls back to 30s.
	RequestTimeout time.Duration
}

// Client calls the hosted Gemini endpoints for both the conversational
// feature and the vision-extraction adapter.
type Client struct {
	client  *genai.Client
	model   string
	limiter *rate.Limiter
	timeout time.Duration
}

func NewClient(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if strings.TrimSpace(cfg.Model) == "" {
		return nil, fmt.Errorf("model name is required")
	}

	cc := &genai.ClientConfig{
		APIKey:  strings.TrimSpace(cfg.APIKey),
		Backend: genai.BackendGeminiAPI,
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		cc.HTTPOptions.BaseURL = strings.TrimSpace(cfg.BaseURL)
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, err
	}

	var limiter *rate.Limiter
	if cfg.RateLimitRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), 1)
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client:  client,
		model:   strings.TrimSpace(cfg.Model),
		limiter: limiter,
		timeout: timeout,
	}, nil
}

// Generate sends one prompt to the text endpoint and returns its response
// unmodified. Endpoint failure or an empty response is an AssistantError.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	text, err := c.generate(ctx, genai.Text(prompt))
	if err != nil {
		return "", &AssistantError{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		return "", &AssistantError{Err: fmt.Errorf("empty response from model")}
	}
	return text, nil
}

// GenerateVision sends a prompt plus one inline image to the vision
// endpoint. The caller owns interpreting (and distrusting) the response.
func (c *Client) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	if strings.TrimSpace(mimeType) == "" {
		mimeType = "image/png"
	}
	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromText(prompt),
			genai.NewPartFromBytes(image, mimeType),
		}, genai.RoleUser),
	}
	return c.generate(ctx, contents)
}

func (c *Client) generate(ctx context.Context, contents []*genai.Content) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.Models.GenerateContent(
		callCtx,
		c.model,
		contents,
		&genai.GenerateContentConfig{CandidateCount: 1},
	)
	if err != nil {
		return "", classifyErr(err)
	}
	return resp.Text(), nil
}

// classifyErr keeps upstream API errors readable without leaking the raw
// response payload into user-facing messages.
func classifyErr(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("model endpoint returned %d %s", apiErr.Code, apiErr.Status)
	}
	return err
}

// Disabled is the Generator used when no API key is configured: every call
// fails with ErrDisabled while the rest of the dashboard stays usable.
type Disabled struct{}

func (Disabled) Generate(ctx context.Context, prompt string) (string, error) {
	return "", &AssistantError{Err: ErrDisabled}
}

func (Disabled) GenerateVision(ctx context.Context, prompt string, image []byte, mimeType string) (string, error) {
	return "", ErrDisabled
}
