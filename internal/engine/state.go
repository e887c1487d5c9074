package engine

import (
	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/models"
)

// GameState is the turn history of one game. History is never empty and
// Current is always its last entry.
type GameState struct {
	ContextName string        `json:"context_name"`
	Current     models.Turn   `json:"current_state"`
	History     []models.Turn `json:"history"`
}

func NewGameState(contextName string, seed models.Turn) *GameState {
	return &GameState{
		ContextName: contextName,
		Current:     seed,
		History:     []models.Turn{seed},
	}
}

// Update records turn as the new current state.
func (s *GameState) Update(turn models.Turn) {
	s.History = append(s.History, turn)
	s.Current = turn
}

// Rollback discards the last steps turns. The seed turn always remains.
func (s *GameState) Rollback(steps int) error {
	if steps < 1 || steps >= len(s.History) {
		return apperr.New(apperr.KindInvalidRollback, "rollback", "cannot roll back %d steps of %d", steps, len(s.History))
	}
	s.History = s.History[:len(s.History)-steps]
	s.Current = s.History[len(s.History)-1]
	return nil
}

// Clone returns a copy that shares no slices with s.
func (s *GameState) Clone() *GameState {
	out := *s
	out.History = make([]models.Turn, len(s.History))
	for i, t := range s.History {
		out.History[i] = cloneTurn(t)
	}
	out.Current = cloneTurn(s.Current)
	return &out
}

func cloneTurn(t models.Turn) models.Turn {
	t.Actions = append([]models.Action(nil), t.Actions...)
	return t
}
