package handler

import (
	"errors"
	"net/http"

	"github.com/tatianab/llmserver/internal/logic"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
	"github.com/zeromicro/go-zero/core/jsonx"
	"github.com/zeromicro/go-zero/rest/httpx"
)

// ExecutePluginHandler decodes the body with jsonx because httpx.Parse
// cannot fill the free-form args list.
func ExecutePluginHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ExecutePluginReq
		if err := jsonx.UnmarshalFromReader(r.Body, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}
		if req.PluginName == "" {
			badRequest(r.Context(), w, errors.New("field \"plugin_name\" is not set"))
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.ExecutePlugin(&req)
		respond(r.Context(), w, resp, err)
	}
}

func ListPluginsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.ListPlugins())
	}
}
