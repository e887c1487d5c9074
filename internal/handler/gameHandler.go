package handler

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/logic"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
	"github.com/zeromicro/go-zero/core/logx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

func StartGameHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ContextNameReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.StartGame(req.ContextName)
		respond(r.Context(), w, resp, err)
	}
}

func GameTurnHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GameTurnReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.GameTurn(&req)
		respond(r.Context(), w, resp, err)
	}
}

func EndGameHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ContextNameReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.EndGame(req.ContextName))
	}
}

func GameStateHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GameStateReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.GameState(req.ContextName)
		respond(r.Context(), w, resp, err)
	}
}

func ListGamesHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.ListGames())
	}
}

func RollbackHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.RollbackReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.Rollback(&req)
		respond(r.Context(), w, resp, err)
	}
}

// GameSocketHandler upgrades to a websocket and plays the game of the
// context named by the context_name query parameter.
func GameSocketHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.GameStateReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}
		if _, ok := svcCtx.Manager.GetContext(req.ContextName); !ok {
			writeError(r.Context(), w, apperr.New(apperr.KindNotFound, "game socket", "context '%s' does not exist", req.ContextName))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.WithContext(r.Context()).Errorf("WebSocket upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		l := logic.NewLogic(r.Context(), svcCtx)
		l.HandleGameSocket(conn, req.ContextName)
	}
}
