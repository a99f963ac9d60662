package api

import (
	"log/slog"
	"net/http"
	"runtime/debug"
	"time"
)

// instrument оборачивает служебные маршруты: паника отдаётся как 500,
// каждый запрос пишется в лог на уровне Debug.
func instrument(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		defer func() {
			if p := recover(); p != nil {
				logger.Error("panic in http handler",
					"path", r.URL.Path,
					"error", p,
					"stack", string(debug.Stack()),
				)
				if !sr.wrote {
					http.Error(sr, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}

			logger.Debug("http request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", sr.status,
				"duration", time.Since(start),
			)
		}()

		next.ServeHTTP(sr, r)
	})
}

// statusRecorder запоминает отданный статус.
type statusRecorder struct {
	http.ResponseWriter
	status int
	wrote  bool
}

func (sr *statusRecorder) WriteHeader(code int) {
	if sr.wrote {
		return
	}
	sr.status, sr.wrote = code, true
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	if !sr.wrote {
		sr.WriteHeader(http.StatusOK)
	}
	return sr.ResponseWriter.Write(b)
}
