package http

import (
	"bufio"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"quiz-engine/internal/app"
)

// NewRouter mounts the REST views, the attempt websocket and the health check.
func NewRouter(service *app.QuizService, catalog *app.CatalogService, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	rest := NewRESTHandler(service, catalog, logger)
	ws := NewWSHandler(service, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /categories", rest.Categories)
	mux.HandleFunc("GET /quizzes", rest.Quizzes)
	mux.HandleFunc("GET /quizzes/{id}", rest.Quiz)
	mux.HandleFunc("GET /quizzes/{id}/results", rest.QuizResults)
	mux.HandleFunc("GET /results/{id}", rest.Result)
	mux.HandleFunc("GET /ws", ws.ServeWS)
	return accessLog(logger, mux)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// Hijack passes the connection through for the websocket upgrade.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("hijack not supported")
	}
	r.status = http.StatusSwitchingProtocols
	return h.Hijack()
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

func accessLog(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.DebugContext(r.Context(), "http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
		)
	})
}
