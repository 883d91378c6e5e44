package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"coinche/internal/ports"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const defaultHistoryLimit = 20

// MatchHistory lists recorded matches, newest first.
type MatchHistory interface {
	RecentMatches(ctx context.Context, limit int) ([]ports.MatchRecord, error)
}

// Server bundles what the HTTP routes need. History may be nil.
type Server struct {
	Hub      *Hub
	Sessions *SessionIssuer
	History  MatchHistory
	Origins  []string
	Logger   *zap.Logger
}

// Router serves /health, /api/session, /api/rooms, /api/matches and /ws.
func (s *Server) Router() http.Handler {
	if s.Logger == nil {
		s.Logger = zap.NewNop()
	}
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(s.Origins),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
	})

	r.Post("/api/session", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Name string `json:"name"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, 1024)).Decode(&req)
		}
		token, id, err := s.Sessions.Issue(req.Name)
		if err != nil {
			s.Logger.Error("issue session", zap.Error(err))
			http.Error(w, "sessions unavailable", http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"token": token, "userId": id.UserID, "name": id.Name})
	})

	r.Get("/api/rooms", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, s.Hub.Rooms())
	})

	r.Get("/api/matches", func(w http.ResponseWriter, r *http.Request) {
		if s.History == nil {
			http.Error(w, "match history disabled", http.StatusNotFound)
			return
		}
		limit := defaultHistoryLimit
		if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 && v <= 100 {
			limit = v
		}
		matches, err := s.History.RecentMatches(r.Context(), limit)
		if err != nil {
			s.Logger.Error("list matches", zap.Error(err))
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, matches)
	})

	r.Get("/ws", func(w http.ResponseWriter, r *http.Request) {
		id, err := s.Sessions.Verify(r.URL.Query().Get("token"))
		if err != nil {
			http.Error(w, "invalid session", http.StatusUnauthorized)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			s.Logger.Warn("ws upgrade", zap.Error(err))
			return
		}
		client := newClient(s.Hub, id, conn, s.Logger)
		s.Logger.Debug("ws connected", zap.String("user", id.UserID), zap.String("name", id.Name))
		go client.writePump()
		client.readPump()
	})

	return r
}

// originChecker allows every origin when the allowlist is empty.
func originChecker(allow []string) func(*http.Request) bool {
	if len(allow) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]bool, len(allow))
	for _, o := range allow {
		set[o] = true
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || set[origin]
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
