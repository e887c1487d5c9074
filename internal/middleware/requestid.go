package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logx"
)

const HeaderRequestID = "X-Request-ID"

// RequestID tags every request with an id, reusing the caller's when given,
// and adds it to the log fields of the request context.
func RequestID(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		ctx := logx.ContextWithFields(r.Context(), logx.Field("request_id", id))
		next(w, r.WithContext(ctx))
	}
}
