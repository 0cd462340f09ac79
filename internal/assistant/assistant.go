// Package assistant implements the conversational feature: it composes a
// bounded sample of the loaded dataset with the user's question into one
// prompt, forwards it to the hosted text endpoint, and keeps per-session
// chat history.
package assistant

import (
	"context"
	"strings"
	"time"

	"github.com/cinedata/moviedash/internal/dataset"
)

// Assistant binds a Generator to session history and the prompt builder.
type Assistant struct {
	gen        Generator
	history    *History
	sampleSize int
}

func New(gen Generator, sampleSize int) *Assistant {
	return &Assistant{
		gen:        gen,
		history:    NewHistory(),
		sampleSize: sampleSize,
	}
}

// History exposes the session store (for the history endpoint).
func (a *Assistant) History() *History { return a.history }

// Ask answers a free-text question against the given snapshot. The user
// turn is always recorded; on endpoint failure or empty response the
// assistant turn is recorded as failed and an AssistantError is returned.
// Failures are inline and non-fatal: history survives and the user may retry.
func (a *Assistant) Ask(ctx context.Context, session, question string, snap dataset.RowSet, roles dataset.RoleMapping) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", &AssistantError{Err: errEmptyQuestion}
	}

	a.history.Append(session, Turn{Speaker: SpeakerUser, Text: question, At: time.Now()})

	prompt := BuildPrompt(snap, roles, question, a.sampleSize)
	answer, err := a.gen.Generate(ctx, prompt)
	if err != nil {
		a.history.Append(session, Turn{Speaker: SpeakerAssistant, Text: err.Error(), Failed: true, At: time.Now()})
		return "", err
	}

	a.history.Append(session, Turn{Speaker: SpeakerAssistant, Text: answer, At: time.Now()})
	return answer, nil
}
