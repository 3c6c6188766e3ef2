package notify

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const maxPayloadBytes = 64 * 1024

// NewHandler serves POST /push for local delivery of payloads and
// GET /healthz.
func NewHandler(router Router, logger *slog.Logger) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "notify")

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, "ok\n")
	})
	r.Post("/push", func(w http.ResponseWriter, req *http.Request) {
		data, err := io.ReadAll(io.LimitReader(req.Body, maxPayloadBytes))
		if err != nil {
			http.Error(w, "read payload", http.StatusBadRequest)
			return
		}
		route, err := Dispatch(req.Context(), data, router)
		if err != nil {
			status := http.StatusInternalServerError
			if route.Type == "" {
				status = http.StatusBadRequest
			}
			logger.Warn("push not delivered",
				"request_id", middleware.GetReqID(req.Context()),
				"error", err,
			)
			http.Error(w, err.Error(), status)
			return
		}
		logger.Info("push delivered", "type", string(route.Type), "article_id", route.ArticleID)
		writeJSON(w, http.StatusAccepted, route)
	})
	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
