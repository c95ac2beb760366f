package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/openai/openai-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradecrewAI/tradecrew/pkg/assistant"
	"github.com/TradecrewAI/tradecrew/pkg/assistant/repository"
	"github.com/TradecrewAI/tradecrew/pkg/db"
	"github.com/TradecrewAI/tradecrew/pkg/knowledge"
	"github.com/TradecrewAI/tradecrew/pkg/mailroom"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

type cannedCompletions struct {
	reply string
}

func (c *cannedCompletions) Completions(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, model string) (openai.ChatCompletionMessage, error) {
	return openai.ChatCompletionMessage{Role: "assistant", Content: c.reply}, nil
}

func newTestServer(t *testing.T) (*Server, *db.Store) {
	t.Helper()

	store, err := db.NewStore(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	logger := log.New(io.Discard)
	triageService := triage.NewService(logger, store, store, nil)
	assistantService := assistant.NewService(logger, &cannedCompletions{reply: "done"},
		repository.NewRepository(logger, store.DB()), nil, "gpt-4.1-mini")
	knowledgeService := knowledge.NewService(logger, store)
	processor, err := mailroom.NewProcessor(logger)
	require.NoError(t, err)

	return NewServer(logger, triageService, assistantService, knowledgeService, processor, store), store
}

func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeEmailEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/emails/analyze", triage.RawEmail{
		UserID:     "user-1",
		EmailID:    "email-1",
		Subject:    "URGENT: Gas leak emergency at job site",
		From:       "site@worksafe.com.au",
		Snippet:    "Emergency situation requires immediate attention.",
		ReceivedAt: time.Now(),
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var analysis triage.EmailAnalysis
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &analysis))
	assert.Equal(t, triage.CategoryUrgent, analysis.Category)
	assert.GreaterOrEqual(t, analysis.UrgencyScore, 70)
	assert.True(t, analysis.ActionRequired)
}

func TestAnalyzeEmailEndpoint_Validation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/emails/analyze", triage.RawEmail{
		EmailID: "email-1",
		Subject: "no user id",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/emails/analyze", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	rec = httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeEmailEndpoint_RejectsWrongContentType(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/emails/analyze",
		bytes.NewReader([]byte("subject=urgent")))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	server.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestSyncEndpoint_RequiresUserAndToken(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/emails/sync", syncRequest{UserID: "user-1"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodPost, "/api/emails/sync", syncRequest{Token: "tok"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeBatchEndpoint_SummaryCounts(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/emails/analyze/batch", batchRequest{
		Emails: []triage.RawEmail{
			{UserID: "u", EmailID: "e1", Subject: "URGENT gas leak", ReceivedAt: time.Now()},
			{UserID: "u", EmailID: "e2", Subject: "Invoice attached", From: "a@b.com.au"},
			{UserID: "u", EmailID: "e3", Subject: "You've WON", Snippet: "click here now"},
			{UserID: "", EmailID: "e4", Subject: "invalid, skipped"},
		},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp batchResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	// The invalid email is skipped, not fatal.
	assert.Len(t, resp.Analyses, 3)
	assert.Equal(t, 3, resp.Summary.Total)
	assert.Equal(t, 1, resp.Summary.UrgentCount)
	assert.Equal(t, 1, resp.Summary.CategoryCounts[triage.CategorySpam])
}

func TestGetAnalysisEndpoint_NotFound(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/analyses/unknown-email", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListAnalysesEndpoint_RequiresUser(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/analyses", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/analyses?userId=user-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMorningBriefEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	_, err := store.CreateTask(context.Background(), db.CreateTaskInput{UserID: "user-1", Title: "Order parts"})
	require.NoError(t, err)

	rec := doRequest(t, server, http.MethodGet, "/api/brief?userId=user-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var brief triage.Brief
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &brief))
	assert.Contains(t, brief.Summary, "No urgent items")
}

func TestChatEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/chat/sessions", createSessionRequest{
		UserID: "user-1",
		Name:   "Quoting help",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var session assistant.Session
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &session))

	rec = doRequest(t, server, http.MethodPost,
		fmt.Sprintf("/api/chat/sessions/%s/messages", session.ID),
		sendMessageRequest{Message: "How do I chase this invoice?"})
	require.Equal(t, http.StatusOK, rec.Code)

	var reply assistant.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reply))
	assert.Equal(t, "done", reply.Text)

	rec = doRequest(t, server, http.MethodGet,
		fmt.Sprintf("/api/chat/sessions/%s/messages", session.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var messages []assistant.Message
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &messages))
	assert.Len(t, messages, 2)
}

func TestTaskEndpoints(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/api/tasks", createTaskRequest{
		UserID: "user-1",
		Title:  "Lodge the BAS",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var task db.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))

	rec = doRequest(t, server, http.MethodPatch,
		fmt.Sprintf("/api/tasks/%s/status", task.ID),
		updateTaskStatusRequest{Status: triage.TaskStatusDone})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, server, http.MethodGet, "/api/tasks?userId=user-1&status=done", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var tasks []db.Task
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tasks))
	assert.Len(t, tasks, 1)
}

func TestKnowledgeEndpoint_RequiresTrade(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/api/knowledge", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
