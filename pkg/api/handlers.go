package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/pkg/errors"

	"github.com/TradecrewAI/tradecrew/pkg/db"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

var errMissingUserParam = errors.New("userId query parameter is required")

func (s *Server) handleAnalyzeEmail(w http.ResponseWriter, r *http.Request) {
	var raw triage.RawEmail
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}

	analysis, err := s.triage.AnalyzeEmail(r.Context(), raw)
	if err != nil {
		if errors.Is(err, triage.ErrMissingUserID) || errors.Is(err, triage.ErrMissingEmailID) {
			s.writeError(w, http.StatusBadRequest, err)
			return
		}
		s.logger.Error("Email analysis failed", "emailId", raw.EmailID, "error", err)
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, analysis)
}

type batchRequest struct {
	Emails []triage.RawEmail `json:"emails"`
}

type batchResponse struct {
	Analyses []*triage.EmailAnalysis `json:"analyses"`
	Summary  triage.BatchSummary     `json:"summary"`
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}

	analyses := s.triage.AnalyzeEmails(r.Context(), req.Emails)
	s.writeJSON(w, http.StatusOK, batchResponse{
		Analyses: analyses,
		Summary:  triage.SummarizeBatch(analyses),
	})
}

type syncRequest struct {
	UserID     string `json:"userId"`
	Token      string `json:"token"`
	MaxResults int    `json:"maxResults"`
	PageToken  string `json:"pageToken"`
}

type syncResponse struct {
	Analyses      []*triage.EmailAnalysis `json:"analyses"`
	Summary       triage.BatchSummary     `json:"summary"`
	NextPageToken string                  `json:"nextPageToken,omitempty"`
}

// handleSyncGmail pulls one page of inbox messages through the Gmail API
// and runs the batch through triage. The caller passes the bearer token;
// OAuth flows live in the frontend.
func (s *Server) handleSyncGmail(w http.ResponseWriter, r *http.Request) {
	var req syncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	if req.UserID == "" || req.Token == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("userId and token are required"))
		return
	}

	emails, next, err := s.mail.Sync(r.Context(), req.Token, req.UserID, req.MaxResults, req.PageToken)
	if err != nil {
		s.logger.Error("Gmail sync failed", "userId", req.UserID, "error", err)
		s.writeError(w, http.StatusBadGateway, err)
		return
	}

	analyses := s.triage.AnalyzeEmails(r.Context(), emails)
	s.writeJSON(w, http.StatusOK, syncResponse{
		Analyses:      analyses,
		Summary:       triage.SummarizeBatch(analyses),
		NextPageToken: next,
	})
}

func (s *Server) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, errMissingUserParam)
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	analyses, err := s.triage.GetRecentAnalyses(r.Context(), userID, limit)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, analyses)
}

func (s *Server) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	emailID := chi.URLParam(r, "emailID")

	analysis, err := s.triage.GetAnalysisByEmailID(r.Context(), emailID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if analysis == nil {
		s.writeError(w, http.StatusNotFound, errors.Errorf("no analysis for email %s", emailID))
		return
	}
	s.writeJSON(w, http.StatusOK, analysis)
}

func (s *Server) handleMorningBrief(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, errMissingUserParam)
		return
	}

	brief, err := s.triage.GenerateMorningBrief(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, brief)
}

type createSessionRequest struct {
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	if req.UserID == "" {
		s.writeError(w, http.StatusBadRequest, errMissingUserParam)
		return
	}
	if req.Name == "" {
		req.Name = "New chat"
	}

	session, err := s.assistant.CreateSession(r.Context(), req.UserID, req.Name)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, errMissingUserParam)
		return
	}

	sessions, err := s.assistant.ListSessions(r.Context(), userID)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, sessions)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.DeleteSession(r.Context(), chi.URLParam(r, "sessionID")); err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMessages(w http.ResponseWriter, r *http.Request) {
	messages, err := s.assistant.GetMessages(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, messages)
}

type sendMessageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleSendMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	if req.Message == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("message is required"))
		return
	}

	reply, err := s.assistant.SendMessage(r.Context(), chi.URLParam(r, "sessionID"), req.Message)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, reply)
}

type createTaskRequest struct {
	UserID  string     `json:"userId"`
	Title   string     `json:"title"`
	DueDate *time.Time `json:"dueDate,omitempty"`
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var req createTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	if req.UserID == "" || req.Title == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("userId and title are required"))
		return
	}

	task, err := s.store.CreateTask(r.Context(), db.CreateTaskInput{
		UserID:  req.UserID,
		Title:   req.Title,
		DueDate: req.DueDate,
	})
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("userId")
	if userID == "" {
		s.writeError(w, http.StatusBadRequest, errMissingUserParam)
		return
	}

	tasks, err := s.store.GetTasks(r.Context(), userID, r.URL.Query().Get("status"))
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, tasks)
}

type updateTaskStatusRequest struct {
	Status string `json:"status"`
}

func (s *Server) handleUpdateTaskStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTaskStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, errors.Wrap(err, "invalid payload"))
		return
	}
	if req.Status != triage.TaskStatusPending && req.Status != triage.TaskStatusDone {
		s.writeError(w, http.StatusBadRequest, errors.Errorf("unknown status %q", req.Status))
		return
	}

	ok, err := s.store.UpdateTaskStatus(r.Context(), chi.URLParam(r, "taskID"), req.Status)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	if !ok {
		s.writeError(w, http.StatusNotFound, errors.New("task not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListKnowledge(w http.ResponseWriter, r *http.Request) {
	trade := r.URL.Query().Get("trade")
	if trade == "" {
		s.writeError(w, http.StatusBadRequest, errors.New("trade query parameter is required"))
		return
	}

	items, err := s.knowledge.ItemsByTrade(r.Context(), trade)
	if err != nil {
		s.writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.writeJSON(w, http.StatusOK, items)
}
