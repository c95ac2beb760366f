package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})
	return store
}

func sampleAnalysis(userID, emailID string) *triage.EmailAnalysis {
	sentiment := "negative"
	return &triage.EmailAnalysis{
		EmailID:           emailID,
		UserID:            userID,
		Priority:          triage.PriorityUrgent,
		Category:          triage.CategoryUrgent,
		UrgencyScore:      85,
		BusinessRelevance: 60,
		Sentiment:         &sentiment,
		ActionRequired:    true,
		Keywords:          []string{"gas leak", "urgent", "emergency"},
		SuggestedActions:  []string{"Respond immediately"},
		Reasoning:         "Matched 3 urgent keywords (gas leak, urgent, emergency)",
	}
}

func TestCreateAnalysis_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateAnalysis(ctx, sampleAnalysis("user-1", "email-1"))
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.False(t, created.AnalyzedAt.IsZero())
	assert.False(t, created.NotificationSent)

	got, err := store.GetAnalysisByEmailID(ctx, "email-1")
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, triage.CategoryUrgent, got.Category)
	assert.Equal(t, triage.PriorityUrgent, got.Priority)
	assert.Equal(t, 85, got.UrgencyScore)
	assert.Equal(t, 60, got.BusinessRelevance)
	require.NotNil(t, got.Sentiment)
	assert.Equal(t, "negative", *got.Sentiment)
	assert.Equal(t, []string{"gas leak", "urgent", "emergency"}, got.Keywords)
	assert.Equal(t, []string{"Respond immediately"}, got.SuggestedActions)
	assert.Contains(t, got.Reasoning, "urgent keywords")
}

func TestCreateAnalysis_DuplicateEmailFails(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateAnalysis(ctx, sampleAnalysis("user-1", "email-1"))
	require.NoError(t, err)

	_, err = store.CreateAnalysis(ctx, sampleAnalysis("user-1", "email-1"))
	assert.Error(t, err, "re-analyzing the same email must not overwrite stored scores")

	// Same email id for a different user is a different analysis.
	_, err = store.CreateAnalysis(ctx, sampleAnalysis("user-2", "email-1"))
	assert.NoError(t, err)
}

func TestGetAnalysisByEmailID_MissingReturnsNil(t *testing.T) {
	store := newTestStore(t)

	got, err := store.GetAnalysisByEmailID(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListAnalyses_FiltersAndLimit(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	urgent := sampleAnalysis("user-1", "email-1")

	standard := sampleAnalysis("user-1", "email-2")
	standard.Category = triage.CategoryStandard
	standard.Priority = triage.PriorityHigh

	other := sampleAnalysis("user-2", "email-3")

	for _, a := range []*triage.EmailAnalysis{urgent, standard, other} {
		_, err := store.CreateAnalysis(ctx, a)
		require.NoError(t, err)
	}

	all, err := store.ListAnalyses(ctx, triage.AnalysisFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	urgentOnly, err := store.ListAnalyses(ctx, triage.AnalysisFilter{
		UserID:   "user-1",
		Category: triage.CategoryUrgent,
	})
	require.NoError(t, err)
	require.Len(t, urgentOnly, 1)
	assert.Equal(t, "email-1", urgentOnly[0].EmailID)

	limited, err := store.ListAnalyses(ctx, triage.AnalysisFilter{UserID: "user-1", Limit: 1})
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	none, err := store.ListAnalyses(ctx, triage.AnalysisFilter{
		UserID:        "user-1",
		AnalyzedAfter: time.Now().UTC().Add(time.Hour),
	})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCountAnalyses(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.CreateAnalysis(ctx, sampleAnalysis("user-1", "email-1"))
	require.NoError(t, err)

	standard := sampleAnalysis("user-1", "email-2")
	standard.Category = triage.CategoryStandard
	_, err = store.CreateAnalysis(ctx, standard)
	require.NoError(t, err)

	count, err := store.CountAnalyses(ctx, triage.AnalysisFilter{
		UserID:   "user-1",
		Category: triage.CategoryUrgent,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	total, err := store.CountAnalyses(ctx, triage.AnalysisFilter{UserID: "user-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
}

func TestMarkNotificationSent_FlipsOnlyTheFlag(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	created, err := store.CreateAnalysis(ctx, sampleAnalysis("user-1", "email-1"))
	require.NoError(t, err)

	require.NoError(t, store.MarkNotificationSent(ctx, created.ID))

	got, err := store.GetAnalysisByEmailID(ctx, "email-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.NotificationSent)
	assert.Equal(t, created.UrgencyScore, got.UrgencyScore)
	assert.Equal(t, created.Keywords, got.Keywords)
}

func TestListUserIDs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for _, pair := range [][2]string{{"beta", "e1"}, {"alpha", "e2"}, {"beta", "e3"}} {
		_, err := store.CreateAnalysis(ctx, sampleAnalysis(pair[0], pair[1]))
		require.NoError(t, err)
	}

	userIDs, err := store.ListUserIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, userIDs)
}

func TestTasks_CRUDAndCount(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	task, err := store.CreateTask(ctx, CreateTaskInput{UserID: "user-1", Title: "Chase the Smiths quote"})
	require.NoError(t, err)
	assert.Equal(t, triage.TaskStatusPending, task.Status)

	_, err = store.CreateTask(ctx, CreateTaskInput{UserID: "user-1", Title: "Order switchboard parts"})
	require.NoError(t, err)

	pending, err := store.CountTasks(ctx, triage.TaskFilter{UserID: "user-1", Status: triage.TaskStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 2, pending)

	ok, err := store.UpdateTaskStatus(ctx, task.ID, triage.TaskStatusDone)
	require.NoError(t, err)
	assert.True(t, ok)

	pending, err = store.CountTasks(ctx, triage.TaskFilter{UserID: "user-1", Status: triage.TaskStatusPending})
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	tasks, err := store.GetTasks(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, tasks, 2)

	require.NoError(t, store.DeleteTask(ctx, task.ID))
	tasks, err = store.GetTasks(ctx, "user-1", "")
	require.NoError(t, err)
	assert.Len(t, tasks, 1)
}

func TestKnowledge_UpsertAndList(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	item, err := store.UpsertKnowledgeItem(ctx, KnowledgeItem{
		Trade:   "plumbing",
		Topic:   "backflow testing",
		Content: "Annual backflow prevention testing is required for registered devices.",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)

	// Upserting the same (trade, topic) refreshes the content.
	_, err = store.UpsertKnowledgeItem(ctx, KnowledgeItem{
		Trade:   "plumbing",
		Topic:   "backflow testing",
		Content: "Updated guidance.",
	})
	require.NoError(t, err)

	items, err := store.ListKnowledgeByTrade(ctx, "plumbing")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Updated guidance.", items[0].Content)

	_, err = store.UpsertKnowledgeItem(ctx, KnowledgeItem{
		Trade:   "electrical",
		Topic:   "test and tag",
		Content: "Test and tag intervals depend on the work environment.",
	})
	require.NoError(t, err)

	all, err := store.ListKnowledge(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
