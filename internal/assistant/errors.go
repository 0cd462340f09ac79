package assistant

import (
	"errors"
	"fmt"
)

// ErrDisabled marks the degraded state entered when no API key is
// configured at startup. Chat turns fail with it; nothing else does.
var ErrDisabled = errors.New("assistant is disabled: no API key configured")

var errEmptyQuestion = errors.New("question must not be empty")

// AssistantError reports a failed or empty AI text call. Non-fatal to the
// session: the failed turn is recorded and history is preserved.
type AssistantError struct {
	Err error
}

func (e *AssistantError) Error() string {
	if e == nil {
		return "assistant error"
	}
	return fmt.Sprintf("assistant: %v", e.Err)
}

func (e *AssistantError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}
