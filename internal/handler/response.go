package handler

import (
	"context"
	"net/http"

	"github.com/tatianab/llmserver/internal/apperr"
	"github.com/tatianab/llmserver/internal/types"
	"github.com/zeromicro/go-zero/rest/httpx"
)

var statusByKind = map[apperr.Kind]int{
	apperr.KindNotFound:              http.StatusNotFound,
	apperr.KindPluginNotFound:        http.StatusNotFound,
	apperr.KindAlreadyExists:         http.StatusConflict,
	apperr.KindInvalidInput:          http.StatusBadRequest,
	apperr.KindUnknownService:        http.StatusBadRequest,
	apperr.KindInvalidRollback:       http.StatusBadRequest,
	apperr.KindProvider:              http.StatusBadGateway,
	apperr.KindMalformedGameResponse: http.StatusBadGateway,
}

// StatusOf maps a failure kind to an HTTP status.
func StatusOf(err error) int {
	if status, ok := statusByKind[apperr.KindOf(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func writeError(ctx context.Context, w http.ResponseWriter, err error) {
	httpx.WriteJsonCtx(ctx, w, StatusOf(err), types.ErrorResp{
		Error:   apperr.KindOf(err).String(),
		Message: err.Error(),
	})
}

func badRequest(ctx context.Context, w http.ResponseWriter, err error) {
	writeError(ctx, w, apperr.Wrap(apperr.KindInvalidInput, "parse request", err))
}

func respond(ctx context.Context, w http.ResponseWriter, resp any, err error) {
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	httpx.OkJsonCtx(ctx, w, resp)
}
