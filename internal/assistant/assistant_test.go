package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cinedata/moviedash/internal/dataset"
)

// stubGenerator records the prompt it received and answers from a script.
type stubGenerator struct {
	answer string
	err    error
	prompt string
}

func (s *stubGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	s.prompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func snapshotFixture() (dataset.RowSet, dataset.RoleMapping) {
	rs := dataset.RowSet{
		Columns: []string{"title", "vote_average", "revenue"},
		Records: []dataset.Record{
			{"title": "Heat", "vote_average": 7.9, "revenue": 187.0},
			{"title": "Alien", "vote_average": 8.1, "revenue": 104.0},
			{"title": "Junk", "vote_average": 2.0, "revenue": 1.0},
		},
	}
	return rs, dataset.ResolveRoles(rs, nil)
}

func TestBuildPrompt(t *testing.T) {
	rs, roles := snapshotFixture()

	t.Run("top-n by score, question verbatim", func(t *testing.T) {
		got := BuildPrompt(rs, roles, "which movie rated best?", 2)
		lines := strings.Split(got, "\n")

		var dataLines []string
		for _, l := range lines {
			if strings.HasPrefix(l, "Heat,") || strings.HasPrefix(l, "Alien,") || strings.HasPrefix(l, "Junk,") {
				dataLines = append(dataLines, l)
			}
		}
		if len(dataLines) != 2 {
			t.Fatalf("expected 2 sample rows, got %d: %#v", len(dataLines), dataLines)
		}
		if !strings.HasPrefix(dataLines[0], "Alien,") || !strings.HasPrefix(dataLines[1], "Heat,") {
			t.Fatalf("expected score-descending sample, got %#v", dataLines)
		}
		if !strings.Contains(got, "Question: which movie rated best?") {
			t.Fatalf("question not verbatim in prompt:\n%s", got)
		}
	})

	t.Run("deterministic", func(t *testing.T) {
		a := BuildPrompt(rs, roles, "q", 2)
		b := BuildPrompt(rs, roles, "q", 2)
		if a != b {
			t.Fatalf("prompt not deterministic")
		}
	})

	t.Run("unresolved score falls back to prefix order", func(t *testing.T) {
		rsNoScore := dataset.RowSet{
			Columns: []string{"title"},
			Records: []dataset.Record{{"title": "Heat"}, {"title": "Alien"}},
		}
		got := BuildPrompt(rsNoScore, dataset.ResolveRoles(rsNoScore, nil), "q", 1)
		if !strings.Contains(got, "Heat\n") || strings.Contains(got, "Alien\n") {
			t.Fatalf("expected first-record sample, got:\n%s", got)
		}
	})
}

func TestAsk(t *testing.T) {
	rs, roles := snapshotFixture()

	t.Run("answers and records turns", func(t *testing.T) {
		gen := &stubGenerator{answer: "Alien has the best rating."}
		a := New(gen, 20)
		session := NewSessionID()

		answer, err := a.Ask(context.Background(), session, "best movie?", rs, roles)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if answer != "Alien has the best rating." {
			t.Fatalf("answer modified: %q", answer)
		}
		turns := a.History().Turns(session)
		if len(turns) != 2 || turns[0].Speaker != SpeakerUser || turns[1].Speaker != SpeakerAssistant {
			t.Fatalf("unexpected turns: %#v", turns)
		}
		if !strings.Contains(gen.prompt, "best movie?") {
			t.Fatalf("prompt missing question:\n%s", gen.prompt)
		}
	})

	t.Run("failure marks turn failed, history preserved", func(t *testing.T) {
		gen := &stubGenerator{err: &AssistantError{Err: errors.New("boom")}}
		a := New(gen, 20)
		session := NewSessionID()

		_, err := a.Ask(context.Background(), session, "best movie?", rs, roles)
		var ae *AssistantError
		if !errors.As(err, &ae) {
			t.Fatalf("expected AssistantError, got %v", err)
		}
		turns := a.History().Turns(session)
		if len(turns) != 2 {
			t.Fatalf("history lost on failure: %#v", turns)
		}
		if !turns[1].Failed {
			t.Fatalf("assistant turn not marked failed: %#v", turns[1])
		}

		// Retry on the same session keeps accumulating.
		gen.err = nil
		gen.answer = "ok"
		if _, err := a.Ask(context.Background(), session, "retry?", rs, roles); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got := len(a.History().Turns(session)); got != 4 {
			t.Fatalf("expected 4 turns after retry, got %d", got)
		}
	})

	t.Run("disabled generator", func(t *testing.T) {
		a := New(Disabled{}, 20)
		_, err := a.Ask(context.Background(), NewSessionID(), "hi?", rs, roles)
		if !errors.Is(err, ErrDisabled) {
			t.Fatalf("expected ErrDisabled, got %v", err)
		}
	})

	t.Run("empty question", func(t *testing.T) {
		a := New(&stubGenerator{answer: "x"}, 20)
		_, err := a.Ask(context.Background(), NewSessionID(), "  ", rs, roles)
		var ae *AssistantError
		if !errors.As(err, &ae) {
			t.Fatalf("expected AssistantError, got %v", err)
		}
	})

	t.Run("end drops session", func(t *testing.T) {
		a := New(&stubGenerator{answer: "x"}, 20)
		s := NewSessionID()
		if _, err := a.Ask(context.Background(), s, "q", rs, roles); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		a.History().End(s)
		if got := a.History().Turns(s); len(got) != 0 {
			t.Fatalf("expected empty history after End, got %#v", got)
		}
	})
}
