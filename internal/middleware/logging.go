package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

// RequestLogger assigns a request ID and logs one line per request once the
// handler returns.
func RequestLogger(log *zap.SugaredLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqID := strings.TrimSpace(r.Header.Get(requestIDHeader))
			if reqID == "" {
				reqID = uuid.NewString()
			}
			w.Header().Set(requestIDHeader, reqID)

			rd := &requestData{requestID: reqID}
			ctx := context.WithValue(r.Context(), requestDataKey, rd)
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r.WithContext(ctx))

			path := r.URL.Path
			if route := mux.CurrentRoute(r); route != nil {
				if tmpl, err := route.GetPathTemplate(); err == nil {
					path = tmpl
				}
			}

			fields := []interface{}{
				"method", strings.ToUpper(r.Method),
				"path", path,
				"status", rec.status,
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", reqID,
			}
			if rd.userID != 0 {
				fields = append(fields, "user_id", rd.userID)
			}

			switch {
			case rec.status >= 500:
				log.Errorw("HTTP request", fields...)
			case rec.status >= 400:
				log.Warnw("HTTP request", fields...)
			default:
				log.Infow("HTTP request", fields...)
			}
		})
	}
}
