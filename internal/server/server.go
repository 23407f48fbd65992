package server

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rbasoalto/terrabot/internal/poller"
	"github.com/rbasoalto/terrabot/internal/storage"
)

// GameStore is the record surface exposed over HTTP
type GameStore interface {
	GetAllGames() ([]*storage.Game, error)
	GetGame(gameID string) (*storage.Game, error)
	CreateGame(g *storage.Game) error
	DeleteGame(gameID string) error
}

// GamePoller triggers poll cycles
type GamePoller interface {
	PollAll(ctx context.Context) *poller.CycleResult
	PollGame(ctx context.Context, gameID string, force bool) (int, error)
}

// Server exposes the registration API and the poll trigger surface
type Server struct {
	store      GameStore
	poller     GamePoller
	adminToken string
}

// New creates the HTTP server
func New(store GameStore, p GamePoller, adminToken string) *Server {
	return &Server{
		store:      store,
		poller:     p,
		adminToken: adminToken,
	}
}

// Router creates and configures the HTTP router
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/games", s.handleListGames)
		r.Get("/games/{id}", s.handleGetGame)
		r.Post("/run", s.handleRun)

		// Mutations and targeted polls require the admin token
		r.Group(func(r chi.Router) {
			r.Use(s.requireAdmin)
			r.Post("/games", s.handleCreateGame)
			r.Delete("/games/{id}", s.handleDeleteGame)
			r.Post("/games/{id}/poll", s.handlePollGame)
		})
	})

	return r
}

// requireAdmin gates a route on the configured admin token
func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if subtle.ConstantTimeCompare([]byte(token), []byte(s.adminToken)) != 1 {
			writeJSON(w, http.StatusUnauthorized, statusResponse{Status: "Authorization Required"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusResponse struct {
	Status   string `json:"status"`
	NumGames *int   `json:"num_games,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *Server) handleListGames(w http.ResponseWriter, r *http.Request) {
	games, err := s.store.GetAllGames()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	if games == nil {
		games = []*storage.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}

func (s *Server) handleGetGame(w http.ResponseWriter, r *http.Request) {
	game, err := s.store.GetGame(chi.URLParam(r, "id"))
	if errors.Is(err, storage.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, game)
}

func (s *Server) handleCreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		GameID     string `json:"game_id"`
		WebhookURL string `json:"webhook_url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
		return
	}
	if req.GameID == "" || req.WebhookURL == "" {
		writeError(w, http.StatusBadRequest, errors.New("game_id and webhook_url are required"))
		return
	}

	game := &storage.Game{GameID: req.GameID, WebhookURL: req.WebhookURL}
	if err := s.store.CreateGame(game); err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	slog.Info("Game registered", "game", game.GameID)
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *Server) handleDeleteGame(w http.ResponseWriter, r *http.Request) {
	gameID := chi.URLParam(r, "id")
	err := s.store.DeleteGame(gameID)
	if errors.Is(err, storage.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}

	slog.Info("Game deleted", "game", gameID)
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK"})
}

func (s *Server) handlePollGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ForceUpdate bool `json:"force_update"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, errors.New("invalid request body"))
			return
		}
	}

	n, err := s.poller.PollGame(r.Context(), chi.URLParam(r, "id"), req.ForceUpdate)
	if errors.Is(err, storage.ErrGameNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	if err != nil {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK", NumGames: &n})
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	result := s.poller.PollAll(r.Context())
	writeJSON(w, http.StatusOK, statusResponse{Status: "OK", NumGames: &result.GamesNotified})
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

// writeError writes a JSON error response
func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"status": "error", "error": err.Error()})
}
