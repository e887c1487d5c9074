package tui

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/config"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/tatianab/llmserver/internal/storage"
	"github.com/tatianab/llmserver/internal/svc"
)

func turnJSON(narration string) string {
	return fmt.Sprintf(`{"narration":%q,"image":{"top":"top caption","bottom":"b","prompt":"c"},"actions":[{"description":"look"},{"description":"run away"},{"description":"talk"},{"description":"wait"}]}`, narration)
}

func newServices(t *testing.T, replies ...string) *svc.ServiceContext {
	t.Helper()
	registry := provider.NewRegistry()
	registry.Register(provider.NewMockClient("mock", replies...))
	svcCtx, err := svc.NewServiceContextWith(context.Background(), config.Config{}, storage.NewMemoryStore(), registry)
	if err != nil {
		t.Fatalf("NewServiceContextWith: %v", err)
	}
	return svcCtx
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"list_contexts", []string{"list_contexts"}},
		{"  send_prompt  c1   hello there ", []string{"send_prompt", "c1", "hello", "there"}},
		{`create_context c1 mock m "You are a pirate."`, []string{"create_context", "c1", "mock", "m", "You are a pirate."}},
		{`game_turn 'my game' "say \"hi\""`, []string{"game_turn", "my game", `say "hi"`}},
		{`x ""`, []string{"x", ""}},
	}
	for _, tt := range tests {
		got, err := splitArgs(tt.in)
		if err != nil {
			t.Errorf("splitArgs(%q): %v", tt.in, err)
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("splitArgs(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := splitArgs(`say "oops`); err == nil {
		t.Error("unterminated quote: expected error")
	}
}

func TestConsoleContexts(t *testing.T) {
	ctx := context.Background()
	c := NewConsole(newServices(t, "Ahoy!"))

	run := func(line string) Result {
		t.Helper()
		r, err := c.Execute(ctx, line)
		if err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		return r
	}

	if r := run("list_contexts"); r.Output != "No contexts." {
		t.Errorf("empty list = %q", r.Output)
	}
	run(`create_context pirate mock mock-small "You are a pirate."`)
	if r := run("list_contexts"); !strings.Contains(r.Output, "pirate (mock:mock-small) You are a pirate.") {
		t.Errorf("list = %q", r.Output)
	}
	if r := run("send_prompt pirate hello"); r.Output != "Assistant: Ahoy!" {
		t.Errorf("send_prompt = %q", r.Output)
	}
	run("copy_context pirate parrot 0")
	if r := run("list_models mock"); r.Output != "mock-small\nmock-large" {
		t.Errorf("list_models = %q", r.Output)
	}
	if r := run("model_info mock nope"); !strings.Contains(r.Output, "nope") {
		t.Errorf("model_info = %q", r.Output)
	}
	run("delete_context parrot")
	if r := run("list_contexts"); strings.Contains(r.Output, "parrot") {
		t.Errorf("parrot still listed: %q", r.Output)
	}
}

func TestConsoleErrors(t *testing.T) {
	ctx := context.Background()
	c := NewConsole(newServices(t))

	tests := []struct {
		line string
		kind apperr.Kind
	}{
		{"frobnicate", apperr.KindInvalidInput},
		{"create_context only_name", apperr.KindInvalidInput},
		{"create_context c nope m", apperr.KindUnknownService},
		{"send_prompt missing hi", apperr.KindNotFound},
		{"delete_context missing", apperr.KindNotFound},
		{"copy_context a b many", apperr.KindInvalidInput},
		{"list_models nope", apperr.KindUnknownService},
		{"game_state missing", apperr.KindNotFound},
		{"execute_plugin nope", apperr.KindPluginNotFound},
		{`say "oops`, apperr.KindInvalidInput},
	}
	for _, tt := range tests {
		_, err := c.Execute(ctx, tt.line)
		if !apperr.Is(err, tt.kind) {
			t.Errorf("%s: got %v, want kind %v", tt.line, err, tt.kind)
		}
	}
}

func TestConsoleGame(t *testing.T) {
	ctx := context.Background()
	c := NewConsole(newServices(t, turnJSON("You wake up."), turnJSON("You look around.")))

	if _, err := c.Execute(ctx, "create_game g mock mock-small"); err != nil {
		t.Fatal(err)
	}
	r, err := c.Execute(ctx, "start_game g")
	if err != nil {
		t.Fatal(err)
	}
	if r.Game != "g" || r.Turn == nil || r.Turn.Narration != "You wake up." {
		t.Fatalf("start_game = %+v", r)
	}
	if !strings.Contains(r.Output, "1. look") {
		t.Errorf("output lacks actions: %q", r.Output)
	}

	if r, err = c.Execute(ctx, "game_turn g look"); err != nil {
		t.Fatal(err)
	}
	if r.Turn.Narration != "You look around." {
		t.Errorf("game_turn = %q", r.Turn.Narration)
	}
	if r, _ = c.Execute(ctx, "list_games"); r.Output != "g" {
		t.Errorf("list_games = %q", r.Output)
	}
	if r, _ = c.Execute(ctx, "game_state g"); !strings.HasPrefix(r.Output, "Turn 2") {
		t.Errorf("game_state = %q", r.Output)
	}
	if r, err = c.Execute(ctx, "rollback g"); err != nil || r.Turn.Narration != "You wake up." {
		t.Errorf("rollback = %+v, %v", r, err)
	}
	if _, err = c.Execute(ctx, "rollback g 1"); !apperr.Is(err, apperr.KindInvalidRollback) {
		t.Errorf("rollback past start: got %v", err)
	}
	if r, _ = c.Execute(ctx, "end_game g"); !r.Ended || r.Game != "g" {
		t.Errorf("end_game = %+v", r)
	}
	if r, _ = c.Execute(ctx, "list_games"); r.Output != "No active games." {
		t.Errorf("list_games after end = %q", r.Output)
	}
}

func TestConsolePlugins(t *testing.T) {
	ctx := context.Background()
	c := NewConsole(newServices(t))

	r, err := c.Execute(ctx, "list_plugins")
	if err != nil {
		t.Fatal(err)
	}
	if r.Output != "dice\nexample_plugin" {
		t.Errorf("list_plugins = %q", r.Output)
	}
	r, err = c.Execute(ctx, "execute_plugin example_plugin one color=red")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(r.Output, "one") || !strings.Contains(r.Output, "color:red") {
		t.Errorf("execute_plugin = %q", r.Output)
	}
}

func press(t *testing.T, m model, line string) (model, tea.Cmd) {
	t.Helper()
	m.textInput.SetValue(line)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return next.(model), cmd
}

func TestModelRunsCommands(t *testing.T) {
	m := newModel(context.Background(), newServices(t, turnJSON("You wake up.")))
	next, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	m = next.(model)

	m, cmd := press(t, m, "create_game g mock mock-small")
	if m.state != stateRunning || cmd == nil {
		t.Fatalf("state = %v, cmd = %v", m.state, cmd)
	}
	if m.textInput.Value() != "" {
		t.Errorf("input not reset: %q", m.textInput.Value())
	}
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.state != stateReady || !strings.Contains(m.log, "Context created: g") {
		t.Errorf("log = %q", m.log)
	}
	if !strings.Contains(m.View(), "g (mock)") {
		t.Error("panel does not list the new context")
	}

	m, cmd = press(t, m, "start_game g")
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.game != "g" || m.turn == nil {
		t.Fatalf("game not focused: %q %v", m.game, m.turn)
	}
	if got := m.expand("2"); got != `game_turn "g" "run away"` {
		t.Errorf("expand(2) = %q", got)
	}
	if got := m.expand("9"); got != "9" {
		t.Errorf("expand(9) = %q", got)
	}

	m, cmd = press(t, m, "end_game g")
	next, _ = m.Update(cmd())
	m = next.(model)
	if m.turn != nil {
		t.Error("game still focused after end_game")
	}
}

func TestModelErrorsAndQuit(t *testing.T) {
	m := newModel(context.Background(), newServices(t))

	m, cmd := press(t, m, "bogus")
	next, _ := m.Update(cmd())
	m = next.(model)
	if !strings.Contains(m.log, "Error: ") {
		t.Errorf("log = %q", m.log)
	}

	m, cmd = press(t, m, "exit")
	_, cmd = m.Update(cmd())
	if cmd == nil {
		t.Fatal("exit: expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("exit: expected tea.QuitMsg")
	}
}
