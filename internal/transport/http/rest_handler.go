package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"quiz-engine/internal/app"
	"quiz-engine/internal/domain"
	"quiz-engine/internal/grading"
)

// RESTHandler serves the read-only catalog and result views.
type RESTHandler struct {
	service *app.QuizService
	catalog *app.CatalogService
	log     *slog.Logger
}

func NewRESTHandler(service *app.QuizService, catalog *app.CatalogService, logger *slog.Logger) *RESTHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RESTHandler{service: service, catalog: catalog, log: logger}
}

func (h *RESTHandler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.catalog.Categories(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Quizzes lists quizzes, filtered by ?category=, ?difficulty= and ?q=.
func (h *RESTHandler) Quizzes(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	quizzes, err := h.catalog.Quizzes(r.Context(), app.Filter{
		CategoryID: q.Get("category"),
		Difficulty: domain.Difficulty(q.Get("difficulty")),
		Search:     q.Get("q"),
	})
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quizzes)
}

func (h *RESTHandler) Quiz(w http.ResponseWriter, r *http.Request) {
	quiz, err := h.service.Quiz(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, quiz)
}

// QuizResults lists past results of one quiz, newest first.
func (h *RESTHandler) QuizResults(w http.ResponseWriter, r *http.Request) {
	results, err := h.service.Results(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (h *RESTHandler) Result(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.Result(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, resultPayload{Result: result, Summary: grading.Summarize(result)})
}

func (h *RESTHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrQuizNotFound), errors.Is(err, domain.ErrResultNotFound):
		status = http.StatusNotFound
	default:
		h.log.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "err", err)
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
