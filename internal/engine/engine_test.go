package engine

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/conversation"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/tatianab/llmserver/internal/storage"
)

func turnJSON(narration string) string {
	return fmt.Sprintf(`{"narration":%q,"image":{"top":"a","bottom":"b","prompt":"c"},"actions":[{"description":"1"},{"description":"2"},{"description":"3"},{"description":"4"}]}`, narration)
}

func newEngine(t *testing.T, replies ...string) (*Engine, *conversation.Manager, *provider.MockClient) {
	t.Helper()
	ctx := context.Background()
	m, err := conversation.NewManager(ctx, storage.NewMemoryStore())
	if err != nil {
		t.Fatalf("NewManager: %v", err)
	}
	client := provider.NewMockClient("mock", replies...)
	registry := provider.NewRegistry()
	registry.Register(client)
	if err := m.CreateContext(ctx, "c1", "mock", "mock-small", isekaiPrompt, nil); err != nil {
		t.Fatalf("CreateContext: %v", err)
	}
	return NewEngine(m, registry), m, client
}

func TestParseTurn(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		narration string
		wantErr   bool
	}{
		{"strict", turnJSON("x"), "x", false},
		{"prefix and suffix", "prefix " + turnJSON("x") + " suffix", "x", false},
		{"code fence", "```json\n" + turnJSON("fenced") + "\n```", "fenced", false},
		{"no braces", "the dragon wins", "", true},
		{"unbalanced", `{"narration": "x"`, "", true},
		{"reversed braces", `} nothing {`, "", true},
		{"empty narration", `{"narration": "", "actions": []}`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			turn, err := ParseTurn(tt.input)
			if tt.wantErr {
				if !apperr.Is(err, apperr.KindMalformedGameResponse) {
					t.Fatalf("ParseTurn(%q) error = %v, want MalformedGameResponse", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseTurn(%q): %v", tt.input, err)
			}
			if turn.Narration != tt.narration {
				t.Errorf("narration = %q, want %q", turn.Narration, tt.narration)
			}
		})
	}
}

func TestParseTurnFields(t *testing.T) {
	turn, err := ParseTurn("prefix " + turnJSON("x") + " suffix")
	if err != nil {
		t.Fatalf("ParseTurn: %v", err)
	}
	want := models.Turn{
		Narration: "x",
		Image:     models.Image{Top: "a", Bottom: "b", Prompt: "c"},
		Actions:   []models.Action{{Description: "1"}, {Description: "2"}, {Description: "3"}, {Description: "4"}},
	}
	if !reflect.DeepEqual(turn, want) {
		t.Errorf("turn = %+v, want %+v", turn, want)
	}
}

func TestStartGame(t *testing.T) {
	ctx := context.Background()
	e, m, client := newEngine(t, turnJSON("opening"))

	turn, err := e.StartGame(ctx, "c1")
	if err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	if turn.Narration != "opening" {
		t.Errorf("narration = %q", turn.Narration)
	}
	state, ok := e.State("c1")
	if !ok || len(state.History) != 1 || state.Current.Narration != "opening" {
		t.Fatalf("state = %+v", state)
	}

	c, _ := m.GetContext("c1")
	if len(c.History) != 3 || c.History[1].Content != startGamePrompt {
		t.Errorf("context history = %v", c.History)
	}
	if calls := client.Calls(); len(calls) != 1 || calls[0].History[0].Content != isekaiPrompt {
		t.Errorf("provider calls = %v", calls)
	}
}

func TestStartGameErrors(t *testing.T) {
	ctx := context.Background()
	e, m, _ := newEngine(t, "not json")

	if _, err := e.StartGame(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing context: got %v, want NotFound", err)
	}
	if _, err := e.StartGame(ctx, "c1"); !apperr.Is(err, apperr.KindMalformedGameResponse) {
		t.Errorf("bad reply: got %v, want MalformedGameResponse", err)
	}
	if _, ok := e.State("c1"); ok {
		t.Errorf("failed start must not create a game")
	}

	_ = m.CreateContext(ctx, "orphan", "nobody", "m", "sys", nil)
	if _, err := e.StartGame(ctx, "orphan"); !apperr.Is(err, apperr.KindUnknownService) {
		t.Errorf("unregistered service: got %v, want UnknownService", err)
	}
}

func TestStartGameReplacesExisting(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("first"), turnJSON("turn"), turnJSON("second"))

	_, _ = e.StartGame(ctx, "c1")
	_, _ = e.ProcessTurn(ctx, "c1", "look")
	if _, err := e.StartGame(ctx, "c1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	state, _ := e.State("c1")
	if len(state.History) != 1 || state.Current.Narration != "second" {
		t.Errorf("state = %+v", state)
	}
}

func TestProcessTurn(t *testing.T) {
	ctx := context.Background()
	e, m, _ := newEngine(t, turnJSON("opening"), "prefix "+turnJSON("x")+" suffix")

	if _, err := e.StartGame(ctx, "c1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	turn, err := e.ProcessTurn(ctx, "c1", "open the door")
	if err != nil {
		t.Fatalf("ProcessTurn: %v", err)
	}
	if turn.Narration != "x" {
		t.Errorf("narration = %q", turn.Narration)
	}
	state, _ := e.State("c1")
	if len(state.History) != 2 || state.Current.Narration != "x" {
		t.Errorf("state = %+v", state)
	}

	c, _ := m.GetContext("c1")
	if !strings.Contains(c.History[3].Content, "The player takes the following action: open the door") {
		t.Errorf("turn instruction = %q", c.History[3].Content)
	}
}

func TestProcessTurnWithoutGame(t *testing.T) {
	e, _, client := newEngine(t, turnJSON("x"))

	for _, action := range []string{"look", "", "   "} {
		_, err := e.ProcessTurn(context.Background(), "c1", action)
		if !apperr.Is(err, apperr.KindNotFound) {
			t.Fatalf("ProcessTurn(%q) = %v, want NotFound", action, err)
		}
	}
	if _, ok := e.State("c1"); ok {
		t.Errorf("ProcessTurn created a game")
	}
	if len(e.ActiveGames()) != 0 {
		t.Errorf("active games = %v", e.ActiveGames())
	}
	if len(client.Calls()) != 0 {
		t.Errorf("provider must not be called")
	}
}

func TestProcessTurnMalformedKeepsState(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("opening"), `{"narration": "broken"`)

	if _, err := e.StartGame(ctx, "c1"); err != nil {
		t.Fatalf("StartGame: %v", err)
	}
	before, _ := e.State("c1")

	_, err := e.ProcessTurn(ctx, "c1", "jump")
	if !apperr.Is(err, apperr.KindMalformedGameResponse) {
		t.Fatalf("got %v, want MalformedGameResponse", err)
	}
	after, _ := e.State("c1")
	if !reflect.DeepEqual(before, after) {
		t.Errorf("state changed: %+v", after)
	}
}

func TestProcessTurnEmptyAction(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("opening"))
	_, _ = e.StartGame(ctx, "c1")
	if _, err := e.ProcessTurn(ctx, "c1", "  "); !apperr.Is(err, apperr.KindInvalidInput) {
		t.Errorf("got %v, want InvalidInput", err)
	}
}

func TestEndGame(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("opening"))
	_, _ = e.StartGame(ctx, "c1")

	if got := e.ActiveGames(); !reflect.DeepEqual(got, []string{"c1"}) {
		t.Errorf("ActiveGames = %v", got)
	}
	e.EndGame(ctx, "c1")
	if _, ok := e.State("c1"); ok {
		t.Errorf("game still active")
	}
	e.EndGame(ctx, "c1")
	e.EndGame(ctx, "never-started")
}

func TestRollback(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("t0"), turnJSON("t1"), turnJSON("t2"))
	_, _ = e.StartGame(ctx, "c1")
	_, _ = e.ProcessTurn(ctx, "c1", "a")
	_, _ = e.ProcessTurn(ctx, "c1", "b")

	for _, steps := range []int{0, -1, 3, 4} {
		if _, err := e.Rollback("c1", steps); !apperr.Is(err, apperr.KindInvalidRollback) {
			t.Errorf("Rollback(%d) = %v, want InvalidRollback", steps, err)
		}
	}
	state, _ := e.State("c1")
	if len(state.History) != 3 {
		t.Fatalf("failed rollbacks changed history: %d entries", len(state.History))
	}

	turn, err := e.Rollback("c1", 2)
	if err != nil {
		t.Fatalf("Rollback: %v", err)
	}
	if turn.Narration != "t0" {
		t.Errorf("current = %q, want t0", turn.Narration)
	}
	state, _ = e.State("c1")
	if len(state.History) != 1 || state.Current.Narration != "t0" {
		t.Errorf("state = %+v", state)
	}

	if _, err := e.Rollback("missing", 1); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing game: got %v", err)
	}
}

func TestStateIsACopy(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(t, turnJSON("opening"))
	_, _ = e.StartGame(ctx, "c1")

	state, _ := e.State("c1")
	state.History = nil
	state.Current.Actions[0].Description = "changed"

	fresh, _ := e.State("c1")
	if len(fresh.History) != 1 || fresh.Current.Actions[0].Description != "1" {
		t.Errorf("State leaked internal state: %+v", fresh)
	}
}

func TestScenarioPrompt(t *testing.T) {
	p, ok := ScenarioPrompt("isekai")
	if !ok || !strings.Contains(p, "game master") {
		t.Errorf("isekai scenario missing")
	}
	if _, ok := ScenarioPrompt("noir"); ok {
		t.Errorf("unexpected scenario")
	}
}
