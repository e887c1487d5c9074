package handler

import (
	"net/http"

	"github.com/tatianab/llmserver/internal/logic"
	"github.com/tatianab/llmserver/internal/svc"
	"github.com/tatianab/llmserver/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

func CreateContextHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CreateContextReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.CreateContext(&req)
		respond(r.Context(), w, resp, err)
	}
}

func ListContextsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.ListContexts())
	}
}

func DeleteContextHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.DeleteContextReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.DeleteContext(req.Name)
		respond(r.Context(), w, resp, err)
	}
}

func CopyContextHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.CopyContextReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.CopyContext(&req)
		respond(r.Context(), w, resp, err)
	}
}

func SendPromptHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.SendPromptReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.SendPrompt(&req)
		respond(r.Context(), w, resp, err)
	}
}

func ListModelsHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ListModelsReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.ListModels(req.Service)
		respond(r.Context(), w, resp, err)
	}
}

func ModelInfoHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req types.ModelInfoReq
		if err := httpx.Parse(r, &req); err != nil {
			badRequest(r.Context(), w, err)
			return
		}

		l := logic.NewLogic(r.Context(), svcCtx)
		resp, err := l.ModelInfo(req.Service, req.Model)
		respond(r.Context(), w, resp, err)
	}
}

func HealthHandler(svcCtx *svc.ServiceContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		l := logic.NewLogic(r.Context(), svcCtx)
		httpx.OkJsonCtx(r.Context(), w, l.Health())
	}
}
