package handler

import (
	"net/http"

	"github.com/tatianab/llmserver/internal/middleware"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/zeromicro/go-zero/rest"
)

// Routes lists every endpoint of the API.
func Routes(svcCtx *svc.ServiceContext) []rest.Route {
	return []rest.Route{
		{Method: http.MethodPost, Path: "/create_context", Handler: CreateContextHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/list_contexts", Handler: ListContextsHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/delete_context", Handler: DeleteContextHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/copy_context", Handler: CopyContextHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/send_prompt", Handler: SendPromptHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/list_models", Handler: ListModelsHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/model_info", Handler: ModelInfoHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/start_game", Handler: StartGameHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/game_turn", Handler: GameTurnHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/end_game", Handler: EndGameHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/rollback", Handler: RollbackHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/game_state", Handler: GameStateHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/list_games", Handler: ListGamesHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/game_ws", Handler: GameSocketHandler(svcCtx)},
		{Method: http.MethodPost, Path: "/execute_plugin", Handler: ExecutePluginHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/list_plugins", Handler: ListPluginsHandler(svcCtx)},
		{Method: http.MethodGet, Path: "/healthz", Handler: HealthHandler(svcCtx)},
	}
}

func RegisterHandlers(server *rest.Server, svcCtx *svc.ServiceContext) {
	server.Use(middleware.RequestID)
	server.AddRoutes(Routes(svcCtx))
}
