package knowledge

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	gocache "github.com/patrickmn/go-cache"

	"github.com/TradecrewAI/tradecrew/pkg/db"
)

// Store is the persistence surface the knowledge service reads through.
type Store interface {
	ListKnowledgeByTrade(ctx context.Context, trade string) ([]*db.KnowledgeItem, error)
	ListKnowledge(ctx context.Context) ([]*db.KnowledgeItem, error)
	UpsertKnowledgeItem(ctx context.Context, item db.KnowledgeItem) (*db.KnowledgeItem, error)
}

const (
	cacheTTL      = 30 * time.Minute
	cacheSweep    = 10 * time.Minute
	allItemsKey   = "knowledge:all"
	tradeKeyModel = "knowledge:trade:%s"
)

// Service serves industry knowledge with a staleness-bounded cache in
// front of the store. The crawler feeding the store is a separate system.
type Service struct {
	store  Store
	cache  *gocache.Cache
	logger *log.Logger
	now    func() time.Time
}

func NewService(logger *log.Logger, store Store) *Service {
	return &Service{
		store:  store,
		cache:  gocache.New(cacheTTL, cacheSweep),
		logger: logger,
		now:    time.Now,
	}
}

// ItemsByTrade returns the stored knowledge for one trade, served from
// cache while fresh.
func (s *Service) ItemsByTrade(ctx context.Context, trade string) ([]*db.KnowledgeItem, error) {
	key := fmt.Sprintf(tradeKeyModel, trade)
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]*db.KnowledgeItem), nil
	}

	items, err := s.store.ListKnowledgeByTrade(ctx, trade)
	if err != nil {
		return nil, err
	}
	s.cache.SetDefault(key, items)
	return items, nil
}

// UpsertItem writes through to the store and invalidates the affected
// cache entries.
func (s *Service) UpsertItem(ctx context.Context, item db.KnowledgeItem) (*db.KnowledgeItem, error) {
	stored, err := s.store.UpsertKnowledgeItem(ctx, item)
	if err != nil {
		return nil, err
	}
	s.cache.Delete(fmt.Sprintf(tradeKeyModel, item.Trade))
	s.cache.Delete(allItemsKey)
	return stored, nil
}

// DailyTip picks one knowledge item for today's morning brief. The
// rotation is by day of year so every user sees the same tip on the same
// day and the sequence covers the whole corpus.
func (s *Service) DailyTip(ctx context.Context) (string, error) {
	var items []*db.KnowledgeItem
	if cached, ok := s.cache.Get(allItemsKey); ok {
		items = cached.([]*db.KnowledgeItem)
	} else {
		var err error
		items, err = s.store.ListKnowledge(ctx)
		if err != nil {
			return "", err
		}
		s.cache.SetDefault(allItemsKey, items)
	}

	if len(items) == 0 {
		return "", fmt.Errorf("no industry knowledge stored")
	}

	item := items[s.now().YearDay()%len(items)]
	return fmt.Sprintf("%s: %s", item.Topic, item.Content), nil
}
