// Package engine runs the turn-based game played on top of a context.
package engine

import (
	"bytes"
	"context"
	_ "embed"
	"sort"
	"strings"
	"sync"
	"text/template"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/conversation"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/provider"
	"github.com/zeromicro/go-zero/core/logx"
)

//go:embed prompts/start_game.txt
var startGamePrompt string

//go:embed prompts/process_turn.txt
var processTurnPrompt string

//go:embed prompts/isekai.txt
var isekaiPrompt string

var processTurnTmpl = template.Must(template.New("process_turn").Parse(processTurnPrompt))

// Scenarios maps a scenario name to the system prompt that sets up its game master.
var Scenarios = map[string]string{
	"isekai": isekaiPrompt,
}

// ScenarioPrompt returns the system prompt of the named scenario.
func ScenarioPrompt(name string) (string, bool) {
	p, ok := Scenarios[name]
	return p, ok
}

// Engine keeps at most one game per context. Turns go through the
// conversation manager, so the context history records every instruction
// and reply.
type Engine struct {
	manager  *conversation.Manager
	registry *provider.Registry

	mu    sync.Mutex
	games map[string]*GameState
}

func NewEngine(manager *conversation.Manager, registry *provider.Registry) *Engine {
	return &Engine{
		manager:  manager,
		registry: registry,
		games:    make(map[string]*GameState),
	}
}

// StartGame opens a new game on the named context, replacing any game
// already running there.
func (e *Engine) StartGame(ctx context.Context, name string) (models.Turn, error) {
	turn, err := e.generate(ctx, "start game", name, startGamePrompt)
	if err != nil {
		return models.Turn{}, err
	}

	e.mu.Lock()
	e.games[name] = NewGameState(name, turn)
	e.mu.Unlock()

	logx.WithContext(ctx).Infof("Started new game for context: %s", name)
	return turn, nil
}

// ProcessTurn plays action in the running game. A reply that cannot be
// parsed leaves the game state as it was.
func (e *Engine) ProcessTurn(ctx context.Context, name, action string) (models.Turn, error) {
	const op = "process turn"
	e.mu.Lock()
	state, ok := e.games[name]
	e.mu.Unlock()
	if !ok {
		return models.Turn{}, noGame(op, name)
	}

	action = strings.TrimSpace(action)
	if action == "" {
		return models.Turn{}, apperr.New(apperr.KindInvalidInput, op, "action is required")
	}

	var buf bytes.Buffer
	if err := processTurnTmpl.Execute(&buf, struct{ Action string }{Action: action}); err != nil {
		return models.Turn{}, apperr.Wrap(apperr.KindInternal, op, err)
	}
	turn, err := e.generate(ctx, op, name, buf.String())
	if err != nil {
		return models.Turn{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.games[name] != state {
		return models.Turn{}, noGame(op, name)
	}
	state.Update(turn)
	logx.WithContext(ctx).Infof("Processed turn for game in context: %s", name)
	return turn, nil
}

// EndGame drops the game of the named context. Ending a game that does not
// exist only logs.
func (e *Engine) EndGame(ctx context.Context, name string) {
	e.mu.Lock()
	_, ok := e.games[name]
	delete(e.games, name)
	e.mu.Unlock()

	if ok {
		logx.WithContext(ctx).Infof("Ended game for context: %s", name)
		return
	}
	logx.WithContext(ctx).Infof("Attempted to end non-existent game for context: %s", name)
}

// State returns a copy of the named game.
func (e *Engine) State(name string) (*GameState, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.games[name]
	if !ok {
		return nil, false
	}
	return state.Clone(), true
}

// ActiveGames lists the contexts with a running game, sorted.
func (e *Engine) ActiveGames() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	names := make([]string, 0, len(e.games))
	for name := range e.games {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Rollback discards the last steps turns of the named game and returns the
// turn that is current afterwards.
func (e *Engine) Rollback(name string, steps int) (models.Turn, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	state, ok := e.games[name]
	if !ok {
		return models.Turn{}, noGame("rollback", name)
	}
	if err := state.Rollback(steps); err != nil {
		return models.Turn{}, err
	}
	return cloneTurn(state.Current), nil
}

// generate sends prompt on the named context and parses the reply.
func (e *Engine) generate(ctx context.Context, op, name, prompt string) (models.Turn, error) {
	c, ok := e.manager.GetContext(name)
	if !ok {
		return models.Turn{}, apperr.New(apperr.KindNotFound, op, "context '%s' does not exist", name)
	}
	client, err := e.registry.Get(c.Service)
	if err != nil {
		return models.Turn{}, err
	}

	reply, err := e.manager.SendPrompt(ctx, name, prompt, client)
	if err != nil {
		return models.Turn{}, err
	}
	turn, err := ParseTurn(reply)
	if err != nil {
		logx.WithContext(ctx).Errorf("Error parsing game response for %s: %v", name, err)
		return models.Turn{}, err
	}
	return turn, nil
}

func noGame(op, name string) error {
	return apperr.New(apperr.KindNotFound, op, "no active game for context: %s", name)
}
