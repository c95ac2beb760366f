package knowledge

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TradecrewAI/tradecrew/pkg/db"
)

type fakeKnowledgeStore struct {
	items     []*db.KnowledgeItem
	listCalls int
}

func (f *fakeKnowledgeStore) ListKnowledgeByTrade(ctx context.Context, trade string) ([]*db.KnowledgeItem, error) {
	f.listCalls++
	var out []*db.KnowledgeItem
	for _, item := range f.items {
		if item.Trade == trade {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeKnowledgeStore) ListKnowledge(ctx context.Context) ([]*db.KnowledgeItem, error) {
	f.listCalls++
	return f.items, nil
}

func (f *fakeKnowledgeStore) UpsertKnowledgeItem(ctx context.Context, item db.KnowledgeItem) (*db.KnowledgeItem, error) {
	f.items = append(f.items, &item)
	return &item, nil
}

func seedItems() []*db.KnowledgeItem {
	return []*db.KnowledgeItem{
		{ID: "1", Trade: "plumbing", Topic: "backflow testing", Content: "Test registered devices annually."},
		{ID: "2", Trade: "electrical", Topic: "test and tag", Content: "Intervals depend on the environment."},
	}
}

func TestItemsByTrade_ServedFromCache(t *testing.T) {
	store := &fakeKnowledgeStore{items: seedItems()}
	svc := NewService(log.New(io.Discard), store)

	first, err := svc.ItemsByTrade(context.Background(), "plumbing")
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, store.listCalls)

	// Second read within the TTL does not hit the store.
	second, err := svc.ItemsByTrade(context.Background(), "plumbing")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.listCalls)
}

func TestUpsertItem_InvalidatesCache(t *testing.T) {
	store := &fakeKnowledgeStore{items: seedItems()}
	svc := NewService(log.New(io.Discard), store)

	_, err := svc.ItemsByTrade(context.Background(), "plumbing")
	require.NoError(t, err)
	require.Equal(t, 1, store.listCalls)

	_, err = svc.UpsertItem(context.Background(), db.KnowledgeItem{
		Trade: "plumbing", Topic: "hot water tempering", Content: "Tempering valves cap delivery at 50C.",
	})
	require.NoError(t, err)

	items, err := svc.ItemsByTrade(context.Background(), "plumbing")
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 2, store.listCalls)
}

func TestDailyTip_RotatesByDay(t *testing.T) {
	store := &fakeKnowledgeStore{items: seedItems()}
	svc := NewService(log.New(io.Discard), store)

	svc.now = func() time.Time { return time.Date(2025, 1, 2, 7, 0, 0, 0, time.UTC) }
	day2, err := svc.DailyTip(context.Background())
	require.NoError(t, err)
	assert.Contains(t, day2, "backflow testing")

	svc.now = func() time.Time { return time.Date(2025, 1, 3, 7, 0, 0, 0, time.UTC) }
	day3, err := svc.DailyTip(context.Background())
	require.NoError(t, err)
	assert.Contains(t, day3, "test and tag")
}

func TestDailyTip_EmptyStore(t *testing.T) {
	svc := NewService(log.New(io.Discard), &fakeKnowledgeStore{})
	_, err := svc.DailyTip(context.Background())
	assert.Error(t, err)
}
