package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/fatih/color"

	"glow/pkg/logger"
)

type statusWriter struct {
	http.ResponseWriter
	statusCode  int
	length      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.statusCode = code
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	w.wroteHeader = true
	w.length += len(b)
	return w.ResponseWriter.Write(b)
}

// Flush keeps streaming responses working through the wrapper.
func (w *statusWriter) Flush() {
	if f, ok := w.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (w *statusWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func wrap(w http.ResponseWriter) *statusWriter {
	if sw, ok := w.(*statusWriter); ok {
		return sw
	}
	return &statusWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

var (
	methodColors = map[string]func(a ...interface{}) string{
		http.MethodGet:    color.New(color.FgHiCyan, color.Bold).SprintFunc(),
		http.MethodPost:   color.New(color.FgHiGreen, color.Bold).SprintFunc(),
		http.MethodPut:    color.New(color.FgHiYellow, color.Bold).SprintFunc(),
		http.MethodDelete: color.New(color.FgHiRed, color.Bold).SprintFunc(),
	}
	cDefault = color.New(color.FgWhite, color.Bold).SprintFunc()

	c200 = color.New(color.FgGreen, color.Bold).SprintFunc()
	c400 = color.New(color.FgYellow, color.Bold).SprintFunc()
	c500 = color.New(color.FgRed, color.Bold).SprintFunc()

	cDim  = color.New(color.FgHiBlack).SprintFunc()
	cPath = color.New(color.FgWhite).SprintFunc()
)

// Logger prints one colored line per request. Static assets and /metrics
// scrapes are skipped.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrap(w)
		next.ServeHTTP(ww, r)

		if quiet(r.URL.Path) {
			return
		}

		code := ww.statusCode
		status := c200(code)
		switch {
		case code >= 500:
			status = c500(code)
		case code >= 400:
			status = c400(code)
		}

		paint, ok := methodColors[r.Method]
		if !ok {
			paint = cDefault
		}

		logger.LogRequest(fmt.Sprintf("%s %s %s %s %s",
			paint(fmt.Sprintf("%-8s", "["+r.Method+"]")),
			cPath(r.URL.Path),
			status,
			cDim("|"),
			cDim(time.Since(start).Round(time.Microsecond).String()),
		))
	})
}

func quiet(path string) bool {
	return path == "/metrics" || len(path) >= 8 && path[:8] == "/static/"
}
