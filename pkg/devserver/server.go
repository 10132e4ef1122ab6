// Package devserver is a local stand-in for the Menudata chat backend. It
// serves the same /api/chat and /api/feedback contract from a small built-in
// menu corpus so the client can be exercised without the hosted service.
package devserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/killallgit/menudata/pkg/chat"
	"github.com/killallgit/menudata/pkg/config"
	"github.com/killallgit/menudata/pkg/logger"
	"github.com/killallgit/menudata/pkg/vectorstore"
	"github.com/tmc/langchaingo/llms"
)

const (
	shutdownTimeout     = 5 * time.Second
	defaultFeedbackFile = "feedback.json"
)

type chatPayload struct {
	Message string         `json:"message"`
	History []HistoryEntry `json:"history"`
}

type chatReply struct {
	Response string         `json:"response"`
	Sources  []chat.Source  `json:"sources"`
	History  []HistoryEntry `json:"history"`
}

type feedbackPayload struct {
	Query    *string       `json:"query"`
	Response *string       `json:"response"`
	Type     chat.Feedback `json:"type"`
}

// Server serves the chat API
type Server struct {
	addr      string
	responder *Responder
	feedback  *FeedbackLog
	limiter   *limiterPool
	metrics   *metrics
	router    *mux.Router
	log       *logger.Logger
}

// New assembles a server around an already built model and retriever
func New(cfg config.DevServerConfig, model llms.Model, retriever *Retriever) *Server {
	if cfg.FeedbackFile == "" {
		cfg.FeedbackFile = defaultFeedbackFile
	}

	s := &Server{
		addr:      cfg.Addr,
		responder: NewResponder(model, retriever, cfg.HistoryWindow),
		feedback:  NewFeedbackLog(config.ResolvePath(cfg.FeedbackFile)),
		limiter:   newLimiterPool(cfg.RateLimit.RPS, cfg.RateLimit.Burst),
		metrics:   newMetrics(),
		log:       logger.WithComponent("devserver"),
	}
	s.router = s.routes()
	return s
}

// NewFromConfig builds the embedder, indexes the menu corpus and creates the model
func NewFromConfig(ctx context.Context, cfg config.DevServerConfig) (*Server, error) {
	embedder, err := vectorstore.NewEmbedder(cfg.Embedder.Provider, cfg.Embedder.Model, cfg.Embedder.URL)
	if err != nil {
		return nil, err
	}

	collection, err := LoadCorpus(ctx, embedder, MenuCorpus())
	if err != nil {
		return nil, err
	}

	model, err := NewModel(cfg.LLM)
	if err != nil {
		return nil, err
	}

	return New(cfg, model, NewRetriever(collection, cfg.TopK, cfg.RelevanceThreshold)), nil
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	// API routes stay on the root router so a wrong method yields 405 rather than 404
	r.Handle("/api/chat", s.rateLimit(s.metrics.instrument("chat", s.handleChat))).Methods(http.MethodPost)
	r.Handle("/api/feedback", s.rateLimit(s.metrics.instrument("feedback", s.handleFeedback))).Methods(http.MethodPost)
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})
	return r
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("development backend listening on %s", s.addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("devserver failed: %w", err)
	case <-ctx.Done():
		s.log.Info("shutting down development backend")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var payload chatPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.log.Warn("invalid chat payload: %v", err)
		writeError(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if strings.TrimSpace(payload.Message) == "" {
		writeError(w, http.StatusBadRequest, "message is required")
		return
	}

	reply, sources := s.responder.Respond(r.Context(), payload.Message, payload.History)

	history := make([]HistoryEntry, 0, len(payload.History)+2)
	history = append(history, payload.History...)
	history = append(history,
		HistoryEntry{Role: string(chat.RoleUser), Content: payload.Message},
		HistoryEntry{Role: string(chat.RoleAssistant), Content: reply},
	)

	writeJSON(w, http.StatusOK, chatReply{Response: reply, Sources: sources, History: history})
}

func (s *Server) handleFeedback(w http.ResponseWriter, r *http.Request) {
	var payload feedbackPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		s.log.Error("invalid feedback payload: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if payload.Query == nil || payload.Response == nil {
		s.log.Error("feedback payload missing query or response")
		writeError(w, http.StatusInternalServerError, "query and response are required")
		return
	}

	entry := FeedbackEntry{Query: *payload.Query, Response: *payload.Response, Feedback: payload.Type}
	if err := s.feedback.Append(entry); err != nil {
		s.log.Error("failed to save feedback: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.metrics.recordFeedback(string(payload.Type))
	s.log.Info("Feedback saved: %s for %q", payload.Type, entry.Query)
	writeJSON(w, http.StatusOK, map[string]string{"status": "success"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
