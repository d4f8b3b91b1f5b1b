package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/example/f4y/internal/handler"
	"github.com/example/f4y/internal/logging"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				log := logging.FromContext(r.Context())
				log.Error("panic recovered", "error", err, "stack", string(debug.Stack()))
				handler.RespondError(w, http.StatusInternalServerError, "internal", "an unexpected error occurred")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
