package logic

import (
	"github.com/gorilla/websocket"
	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/engine"
	"github.com/tatianab/llmserver/internal/models"
	"github.com/tatianab/llmserver/internal/types"
)

const (
	FrameStart    = "start"
	FrameTurn     = "turn"
	FrameRollback = "rollback"
	FrameState    = "state"
	FrameEnd      = "end"
	FrameEnded    = "ended"
	FrameError    = "error"
)

// HandleGameSocket plays a game on contextName over conn until the client
// ends the game or disconnects.
func (l *Logic) HandleGameSocket(conn *websocket.Conn, contextName string) {
	for {
		var in types.GameFrame
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				l.Errorf("game socket for %s closed: %v", contextName, err)
			}
			return
		}

		out := l.GameFrame(contextName, in)
		if err := conn.WriteJSON(out); err != nil {
			l.Errorf("writing game frame for %s: %v", contextName, err)
			return
		}
		if out.Type == FrameEnded {
			return
		}
	}
}

// GameFrame answers one client frame.
func (l *Logic) GameFrame(contextName string, in types.GameFrame) types.GameFrame {
	var (
		turn models.Turn
		err  error
	)
	switch in.Type {
	case FrameStart:
		var resp *types.StartGameResp
		if resp, err = l.StartGame(contextName); err == nil {
			turn = resp.InitialState
		}
	case FrameTurn:
		var resp *types.GameTurnResp
		if resp, err = l.GameTurn(&types.GameTurnReq{ContextName: contextName, UserInput: in.Action}); err == nil {
			turn = resp.GameResponse
		}
	case FrameRollback:
		steps := in.Steps
		if steps == 0 {
			steps = 1
		}
		var resp *types.GameTurnResp
		if resp, err = l.Rollback(&types.RollbackReq{ContextName: contextName, Steps: steps}); err == nil {
			turn = resp.GameResponse
		}
	case FrameState:
		var state *engine.GameState
		if state, err = l.GameState(contextName); err == nil {
			turn = state.Current
		}
	case FrameEnd:
		l.EndGame(contextName)
		return types.GameFrame{Type: FrameEnded}
	default:
		err = apperr.New(apperr.KindInvalidInput, "game frame", "unknown frame type %q", in.Type)
	}

	if err != nil {
		return types.GameFrame{Type: FrameError, Error: err.Error()}
	}
	return types.GameFrame{Type: FrameTurn, Turn: &turn}
}
