package assistant

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Speaker identifies who produced a conversation turn.
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// Turn is one (speaker, text) pair of a session's chat history. Failed
// marks assistant turns whose endpoint call did not produce an answer.
type Turn struct {
	Speaker Speaker   `json:"speaker"`
	Text    string    `json:"text"`
	Failed  bool      `json:"failed,omitempty"`
	At      time.Time `json:"at"`
}

// History holds per-session conversation turns. Sessions only grow by
// append and are dropped as a whole when they end; the dataset snapshot is
// deliberately NOT part of this state, all sessions share the cache.
type History struct {
	mu       sync.Mutex
	sessions map[string][]Turn
}

func NewHistory() *History {
	return &History{sessions: make(map[string][]Turn)}
}

// NewSessionID mints a fresh session identifier.
func NewSessionID() string {
	return uuid.NewString()
}

func (h *History) Append(session string, turn Turn) {
	h.mu.Lock()
	h.sessions[session] = append(h.sessions[session], turn)
	h.mu.Unlock()
}

// Turns returns a copy of the session's history in order.
func (h *History) Turns(session string) []Turn {
	h.mu.Lock()
	defer h.mu.Unlock()
	turns := h.sessions[session]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// End drops the session's history.
func (h *History) End(session string) {
	h.mu.Lock()
	delete(h.sessions, session)
	h.mu.Unlock()
}
