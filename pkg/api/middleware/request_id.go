package middleware

import (
	"net/http"
	"sync/atomic"

	"github.com/mpetrov/chatgpt-tui-client/pkg/logger"
)

var requestCounter atomic.Int64

// RequestID stamps each request with a process-local sequence number. The log
// handler prints it with every record written under the request's context.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logger.ContextWithRequestID(r.Context(), requestCounter.Add(1))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
