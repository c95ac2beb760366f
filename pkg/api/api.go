package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/rs/cors"

	"github.com/TradecrewAI/tradecrew/pkg/assistant"
	"github.com/TradecrewAI/tradecrew/pkg/db"
	"github.com/TradecrewAI/tradecrew/pkg/knowledge"
	"github.com/TradecrewAI/tradecrew/pkg/mailroom"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

// Server holds the services the HTTP handlers delegate to.
type Server struct {
	logger    *log.Logger
	triage    *triage.Service
	assistant *assistant.Service
	knowledge *knowledge.Service
	mail      *mailroom.Processor
	store     *db.Store
}

func NewServer(logger *log.Logger, triageService *triage.Service, assistantService *assistant.Service, knowledgeService *knowledge.Service, mail *mailroom.Processor, store *db.Store) *Server {
	return &Server{
		logger:    logger,
		triage:    triageService,
		assistant: assistantService,
		knowledge: knowledgeService,
		mail:      mail,
		store:     store,
	}
}

// Router builds the chi router with CORS for the dashboard frontend.
func (s *Server) Router() *chi.Mux {
	router := chi.NewRouter()
	router.Use(cors.New(cors.Options{
		AllowCredentials: true,
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", "Accept"},
	}).Handler)

	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.Route("/api", func(r chi.Router) {
		r.Use(middleware.AllowContentType("application/json"))

		r.Post("/emails/analyze", s.handleAnalyzeEmail)
		r.Post("/emails/analyze/batch", s.handleAnalyzeBatch)
		r.Post("/emails/sync", s.handleSyncGmail)
		r.Get("/analyses", s.handleListAnalyses)
		r.Get("/analyses/{emailID}", s.handleGetAnalysis)
		r.Get("/brief", s.handleMorningBrief)

		r.Post("/chat/sessions", s.handleCreateSession)
		r.Get("/chat/sessions", s.handleListSessions)
		r.Delete("/chat/sessions/{sessionID}", s.handleDeleteSession)
		r.Get("/chat/sessions/{sessionID}/messages", s.handleGetMessages)
		r.Post("/chat/sessions/{sessionID}/messages", s.handleSendMessage)

		r.Post("/tasks", s.handleCreateTask)
		r.Get("/tasks", s.handleListTasks)
		r.Patch("/tasks/{taskID}/status", s.handleUpdateTaskStatus)

		r.Get("/knowledge", s.handleListKnowledge)
	})

	return router
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("Failed to encode response", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, err error) {
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}
