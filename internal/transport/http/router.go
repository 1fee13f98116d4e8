package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"arquiz-service/internal/app"
	"arquiz-service/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter mounts the REST API and the game websocket.
func NewRouter(service *app.GameService, ws *WSHandler, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Length"},
		MaxAge:         300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/ws", ws.ServeWS)

	r.Route("/api/players/{playerID}", func(pr chi.Router) {
		pr.Get("/state", stateHandler(service))
		pr.Get("/save", loadHandler(service))
		pr.Post("/save", saveHandler(service))
		pr.Get("/leaderboard", leaderboardHandler(service))
	})
	return r
}

func stateHandler(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := service.Snapshot(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, snap)
	}
}

func loadHandler(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := service.Load(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func saveHandler(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		data, err := service.Save(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, data)
	}
}

func leaderboardHandler(service *app.GameService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lb, err := service.GameOver(r.Context(), chi.URLParam(r, "playerID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, lb)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrSaveNotFound),
		errors.Is(err, domain.ErrContentNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrGameInProgress):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInitials),
		errors.Is(err, domain.ErrInvalidContent):
		status = http.StatusBadRequest
	default:
		log.Printf("request failed: %v", err)
	}
	writeJSON(w, status, errorPayload{Message: err.Error()})
}
