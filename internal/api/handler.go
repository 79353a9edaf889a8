package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/vcnotifier/vc-notifier/internal/biz/domain"
	"github.com/vcnotifier/vc-notifier/internal/biz/usecase"
)

// Server provides a local HTTP API over presence and subscriptions, used by vc-mcp
type Server struct {
	queryUC *usecase.QueryUsecase
	subUC   *usecase.SubscriptionUsecase

	server *http.Server
	port   int
}

// SubscriptionsResponse lists a guild's subscribers
type SubscriptionsResponse struct {
	GuildID     string   `json:"guild_id"`
	Subscribers []string `json:"subscribers"`
}

// SubscriptionResult reports the outcome of a subscribe or unsubscribe
type SubscriptionResult struct {
	Success bool `json:"success"`
	Changed bool `json:"changed"` // false when already (un)subscribed
}

// NewServer creates a new API server
func NewServer(queryUC *usecase.QueryUsecase, subUC *usecase.SubscriptionUsecase, port int) *Server {
	return &Server{
		queryUC: queryUC,
		subUC:   subUC,
		port:    port,
	}
}

// Handler returns the API routes
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Presence
	mux.HandleFunc("/api/presence", s.handlePresence)

	// Subscriptions
	mux.HandleFunc("/api/subscriptions/", s.handleSubscriptions)

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	return mux
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:    fmt.Sprintf("127.0.0.1:%d", s.port),
		Handler: s.Handler(),
	}

	fmt.Printf("[API] Starting HTTP server on port %d\n", s.port)
	return s.server.ListenAndServe()
}

// Stop stops the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

// ============ Presence Handlers ============

func (s *Server) handlePresence(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.writeJSON(w, s.queryUC.Presence())
}

// ============ Subscription Handlers ============

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	// Parse path: /api/subscriptions/{guild_id} or /api/subscriptions/{guild_id}/{username}
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/subscriptions/"), "/")
	parts := strings.SplitN(path, "/", 2)
	guildID := parts[0]
	if guildID == "" {
		http.Error(w, "guild_id is required", http.StatusBadRequest)
		return
	}

	if len(parts) == 2 {
		s.handleSubscriptionItem(w, r, guildID, parts[1])
		return
	}

	ctx := r.Context()

	switch r.Method {
	case http.MethodGet:
		subs, err := s.subUC.Subscribers(ctx, guildID)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, SubscriptionsResponse{GuildID: guildID, Subscribers: subs})

	case http.MethodPost:
		var req struct {
			Username string `json:"username"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		added, err := s.subUC.Subscribe(ctx, guildID, req.Username)
		if err != nil {
			s.writeError(w, err)
			return
		}
		s.writeJSON(w, SubscriptionResult{Success: true, Changed: added})

	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleSubscriptionItem(w http.ResponseWriter, r *http.Request, guildID, username string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	removed, err := s.subUC.Unsubscribe(r.Context(), guildID, username)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, SubscriptionResult{Success: true, Changed: removed})
}

// ============ Helpers ============

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, domain.ErrInvalidUsername) {
		status = http.StatusBadRequest
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
