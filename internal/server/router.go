package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/mgpai22/momentnav/internal/logging"
)

// NewRouter mounts the API under /api plus the health endpoints
func NewRouter(h *Handler, events http.Handler) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", health)
	r.Get("/health/ready", health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/search", h.Search)
		r.Get("/shows", h.Shows)
		r.Get("/links", h.Links)

		r.Get("/timeline", h.TimelineState)
		r.Get("/timeline/search", h.TimelineSearch)
		r.Post("/timeline/refresh", h.TimelineRefresh)
		r.Post("/focus", h.Focus)

		r.Post("/play", h.Play)
		r.Post("/push", h.Push)

		if events != nil {
			r.Get("/events", events.ServeHTTP)
		}
	})

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func requestLogger(logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()
			next.ServeHTTP(ww, r)
			logger.Debugw("HTTP request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
