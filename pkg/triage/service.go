package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Service runs the triage pipeline over inbound emails and talks to the
// persistence collaborators. It holds no per-email state; every analysis
// is a pure function of the input plus the clock.
type Service struct {
	store    AnalysisStore
	tasks    TaskCounter
	insights InsightProvider
	logger   *log.Logger
	now      func() time.Time
}

const defaultRecentLimit = 50

func NewService(logger *log.Logger, store AnalysisStore, tasks TaskCounter, insights InsightProvider) *Service {
	return &Service{
		store:    store,
		tasks:    tasks,
		insights: insights,
		logger:   logger,
		now:      time.Now,
	}
}

// AnalyzeEmail scores, categorizes and persists a single email. A storage
// failure is returned to the caller unmodified so callers can match on
// the collaborator's own error values.
func (s *Service) AnalyzeEmail(ctx context.Context, raw RawEmail) (*EmailAnalysis, error) {
	if raw.UserID == "" {
		return nil, errors.Wrapf(ErrMissingUserID, "email %q", raw.EmailID)
	}
	if raw.EmailID == "" {
		return nil, errors.Wrap(ErrMissingEmailID, "analyze email")
	}

	body := raw.BodyPreview
	if body == "" {
		body = raw.Snippet
	}

	now := s.now()
	urgency := ScoreUrgency(raw.Subject, body, raw.ReceivedAt, now)
	relevance := ScoreBusinessRelevance(raw.From, raw.Subject, body)
	keywords := CollectKeywords(raw.Subject, body)
	category, priority := Categorize(urgency, relevance, raw.Subject, body, keywords)
	actionRequired, suggested := RecommendActions(category, priority, keywords)

	analysis := &EmailAnalysis{
		EmailID:           raw.EmailID,
		UserID:            raw.UserID,
		Priority:          priority,
		Category:          category,
		UrgencyScore:      urgency,
		BusinessRelevance: relevance,
		Sentiment:         ScoreSentiment(raw.Subject, body),
		ActionRequired:    actionRequired,
		Keywords:          keywords,
		SuggestedActions:  suggested,
		Reasoning:         buildReasoning(category, urgency, relevance, raw.Subject, body),
	}

	stored, err := s.store.CreateAnalysis(ctx, analysis)
	if err != nil {
		return nil, err
	}
	return stored, nil
}

// AnalyzeEmails triages a batch. Each email is handled independently: a
// failure is logged and that email is skipped, and the remaining results
// come back in input order. The batch itself never fails.
func (s *Service) AnalyzeEmails(ctx context.Context, raws []RawEmail) []*EmailAnalysis {
	results := make([]*EmailAnalysis, 0, len(raws))
	for _, raw := range raws {
		analysis, err := s.AnalyzeEmail(ctx, raw)
		if err != nil {
			s.logger.Error(fmt.Sprintf("Failed to analyze email %s:", raw.EmailID), "error", err)
			continue
		}
		results = append(results, analysis)
	}
	return results
}

// GetRecentAnalyses returns the newest analyses for a user. A non-positive
// limit falls back to the default of 50.
func (s *Service) GetRecentAnalyses(ctx context.Context, userID string, limit int) ([]*EmailAnalysis, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	return s.store.ListAnalyses(ctx, AnalysisFilter{UserID: userID, Limit: limit})
}

// GetAnalysisByEmailID returns the analysis for the email, or nil when
// the email has not been analyzed.
func (s *Service) GetAnalysisByEmailID(ctx context.Context, emailID string) (*EmailAnalysis, error) {
	return s.store.GetAnalysisByEmailID(ctx, emailID)
}

// SummarizeBatch aggregates the counts API consumers display next to a
// batch-analysis response.
func SummarizeBatch(analyses []*EmailAnalysis) BatchSummary {
	return BatchSummary{
		Total: len(analyses),
		UrgentCount: lo.CountBy(analyses, func(a *EmailAnalysis) bool {
			return a.Category == CategoryUrgent
		}),
		HighPriorityCount: lo.CountBy(analyses, func(a *EmailAnalysis) bool {
			return a.Priority == PriorityUrgent || a.Priority == PriorityHigh
		}),
		ActionRequiredCount: lo.CountBy(analyses, func(a *EmailAnalysis) bool {
			return a.ActionRequired
		}),
		CategoryCounts: lo.CountValuesBy(analyses, func(a *EmailAnalysis) Category {
			return a.Category
		}),
	}
}
