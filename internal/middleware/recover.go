package middleware

import (
	"net/http"
	"runtime/debug"

	"glow/pkg/logger"
	"glow/pkg/utils"
)

// Recover turns a panic in any handler into a server/internal_error reply.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := wrap(w)
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logger.LogError("panic serving %s %s: %v\n%s", r.Method, r.URL.Path, rec, debug.Stack())
			if !ww.wroteHeader {
				utils.WriteError(ww, http.StatusInternalServerError, utils.ErrServerInternal, "Có lỗi xảy ra, vui lòng thử lại sau!")
			}
		}()
		next.ServeHTTP(ww, r)
	})
}
