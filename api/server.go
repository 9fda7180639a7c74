package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/gorilla/mux"

	"github.com/sketchsync/sketchboard/board/config"
	"github.com/sketchsync/sketchboard/board/service"
	"github.com/sketchsync/sketchboard/transport/websocket"
)

// Server represents the HTTP server: REST API, websocket upgrade endpoint,
// and the static drawing client.
type Server struct {
	service   service.BoardService
	hub       *websocket.Hub
	cookies   *SessionCookies
	staticDir string
	router    *mux.Router
}

// NewServer creates a new API server.
func NewServer(boardService service.BoardService, hub *websocket.Hub, cfg *config.Config) *Server {
	s := &Server{
		service:   boardService,
		hub:       hub,
		cookies:   NewSessionCookies(cfg.CookieName, cfg.CookieMaxAge),
		staticDir: cfg.StaticDir,
		router:    mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", s.handleHealth).Methods("GET")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")
	api.HandleFunc("/sessions/{id}/clear", s.handleClear).Methods("POST")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Browser entry points: "/" assigns a session and redirects, the
	// session page pins the cookie and serves the drawing client.
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/session/{id}", s.handleSessionPage).Methods("GET")

	// Static files
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir(s.staticDir)))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// Browser Handlers

// handleRoot sends the visitor to their session page, minting a session id
// when the cookie does not carry one yet.
func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	sessionID := s.cookies.Ensure(w, r, GenerateSessionID)
	http.Redirect(w, r, "/session/"+sessionID, http.StatusFound)
}

// handleSessionPage pins the URL's session id into the cookie and serves
// the drawing client. Visiting a shared link is how a second user lands in
// the same room.
func (s *Server) handleSessionPage(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s.cookies.Persist(w, vars["id"])
	http.ServeFile(w, r, filepath.Join(s.staticDir, "index.html"))
}

// Session Handlers

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	history, err := s.service.History(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"sessionId": sessionID,
		"history":   history,
	})
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	result, err := s.service.Clear(r.Context(), sessionID)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Unlike a socket-originated clear, a REST clear has no connection to
	// exclude, so every client of the session is told.
	if s.hub != nil {
		s.hub.BroadcastEvent(sessionID, websocket.FrameClear, nil)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	sessionID := vars["id"]

	err := s.service.DeleteSession(r.Context(), sessionID)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			respondError(w, http.StatusNotFound, err.Error())
			return
		}
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	s.hub.ServeWS(w, r)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
