package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/wricardo/askouija/game/apperr"
	"github.com/wricardo/askouija/game/service"
	"github.com/wricardo/askouija/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.OuijaService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server. hub may be nil.
func NewServer(svc service.OuijaService, hub *websocket.Hub) *Server {
	s := &Server{
		service: svc,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Boards
	api.HandleFunc("/boards", s.handleAsk).Methods("POST")
	api.HandleFunc("/boards", s.handleListBoards).Methods("GET")
	api.HandleFunc("/boards/{channel}", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/boards/{channel}", s.handleDeleteBoard).Methods("DELETE")

	// Spelling
	api.HandleFunc("/boards/{channel}/letters", s.handleTell).Methods("POST")
	api.HandleFunc("/boards/{channel}/hints", s.handleHints).Methods("GET")
	api.HandleFunc("/boards/{channel}/goodbye", s.handleGoodbye).Methods("POST")

	// Dictionaries
	api.HandleFunc("/dictionaries", s.handleListDictionaries).Methods("GET")

	api.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
}

// Handle mounts an extra handler, such as the MCP endpoint, on the router
func (s *Server) Handle(path string, h http.Handler) {
	s.router.Handle(path, h)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	status := apperr.StatusOf(err)
	if status >= http.StatusInternalServerError {
		log.Error().Err(err).Msg("request failed")
	}
	respondJSON(w, status, map[string]string{
		"error": apperr.MessageOf(err),
		"code":  string(apperr.CodeOf(err)),
	})
}

// decodeBody decodes a JSON body; an empty body leaves v untouched
func decodeBody(r *http.Request, v any) error {
	if r.Body == nil {
		return nil
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return apperr.NewInvalidRequest("Invalid request body")
	}
	return nil
}

func (s *Server) broadcast(channelID, event string, data any) {
	if s.hub != nil {
		s.hub.Broadcast(channelID, event, data)
	}
}

// Board Handlers

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ChannelID  string `json:"channel_id"`
		Question   string `json:"question"`
		Dictionary string `json:"dictionary,omitempty"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	info, err := s.service.Ask(r.Context(), req.ChannelID, req.Question, req.Dictionary)
	if err != nil {
		respondError(w, err)
		return
	}

	s.broadcast(info.ChannelID, websocket.EventBoardOpened, info)
	respondJSON(w, http.StatusCreated, info)
}

func (s *Server) handleListBoards(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	opts := service.ListOptions{
		Sort:  query.Get("sort"),  // "created" (default), "updated"
		Order: query.Get("order"), // "asc" (default), "desc"
	}
	if opts.Sort != "updated" {
		opts.Sort = "created"
	}
	if opts.Order != "desc" {
		opts.Order = "asc"
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}

	boards, err := s.service.ListBoards(r.Context(), opts)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"count":  len(boards),
		"boards": boards,
		"sort":   opts.Sort,
		"order":  opts.Order,
	})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel"]

	info, err := s.service.GetBoard(r.Context(), channelID)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, info)
}

func (s *Server) handleDeleteBoard(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel"]

	if err := s.service.DeleteBoard(r.Context(), channelID); err != nil {
		respondError(w, err)
		return
	}

	s.broadcast(channelID, websocket.EventBoardDeleted, nil)
	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Board for channel %s deleted", channelID),
	})
}

// Spelling Handlers

func (s *Server) handleTell(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel"]

	var req struct {
		Letter string `json:"letter"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := s.service.Tell(r.Context(), channelID, req.Letter)
	if err != nil {
		respondError(w, err)
		return
	}

	if result.Accepted {
		s.broadcast(channelID, websocket.EventLetter, result)
	}
	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleHints(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel"]
	partial := r.URL.Query().Get("partial")

	letters, err := s.service.Hints(r.Context(), channelID, partial)
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"channel_id": channelID,
		"partial":    partial,
		"letters":    letters,
	})
}

func (s *Server) handleGoodbye(w http.ResponseWriter, r *http.Request) {
	channelID := mux.Vars(r)["channel"]

	result, err := s.service.Goodbye(r.Context(), channelID)
	if err != nil {
		respondError(w, err)
		return
	}

	if result.Done {
		s.broadcast(channelID, websocket.EventGoodbye, result)
	}
	respondJSON(w, http.StatusOK, result)
}

// Dictionary Handlers

func (s *Server) handleListDictionaries(w http.ResponseWriter, r *http.Request) {
	dicts, err := s.service.ListDictionaries(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dicts)
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	channelID := r.URL.Query().Get("channel")
	if channelID == "" {
		respondError(w, apperr.NewInvalidRequest("channel parameter required"))
		return
	}
	if s.hub == nil {
		respondError(w, apperr.NewNotFound("websocket updates are disabled", nil))
		return
	}

	s.hub.ServeWS(w, r, channelID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
