package triage

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
)

const (
	urgentSectionHeading   = "🔴 Urgent Items"
	insightsSectionHeading = "📊 Business Insights"
	tasksSectionHeading    = "📋 Pending Tasks"
)

// GenerateMorningBrief builds the daily digest for a user. The count
// queries are independent and run concurrently; if any of them fails the
// whole brief fails, there is no partial brief.
func (s *Service) GenerateMorningBrief(ctx context.Context, userID string) (*Brief, error) {
	now := s.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	var urgentCount, analyzedToday, pendingTasks int

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		urgentCount, err = s.store.CountAnalyses(gctx, AnalysisFilter{
			UserID:        userID,
			Category:      CategoryUrgent,
			AnalyzedAfter: startOfDay,
		})
		return err
	})
	g.Go(func() error {
		var err error
		analyzedToday, err = s.store.CountAnalyses(gctx, AnalysisFilter{
			UserID:        userID,
			AnalyzedAfter: startOfDay,
		})
		return err
	})
	g.Go(func() error {
		var err error
		pendingTasks, err = s.tasks.CountTasks(gctx, TaskFilter{
			UserID: userID,
			Status: TaskStatusPending,
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "building morning brief")
	}

	sections := make([]Section, 0, 3)

	if urgentCount > 0 {
		items := []string{
			fmt.Sprintf("%d urgent emails need your attention", urgentCount),
		}
		if snippet := s.latestUrgentSnippet(ctx, userID, startOfDay); snippet != "" {
			items = append(items, "Most recent: "+snippet)
		}
		sections = append(sections, Section{
			Heading:  urgentSectionHeading,
			Items:    items,
			Priority: PriorityHigh,
		})
	}

	if pendingTasks > 0 {
		sections = append(sections, Section{
			Heading:  tasksSectionHeading,
			Items:    []string{fmt.Sprintf("%d tasks are waiting to be done", pendingTasks)},
			Priority: PriorityMedium,
		})
	}

	insights := []string{
		fmt.Sprintf("%d emails triaged since midnight", analyzedToday),
		"Aim to answer high-priority email within 24 hours",
	}
	if s.insights != nil {
		tip, err := s.insights.DailyTip(ctx)
		if err != nil {
			s.logger.Warn("Skipping industry tip in brief", "error", err)
		} else if tip != "" {
			insights = append(insights, "Tip: "+tip)
		}
	}
	sections = append(sections, Section{
		Heading:  insightsSectionHeading,
		Items:    insights,
		Priority: PriorityLow,
	})

	summary := fmt.Sprintf("No urgent items this morning. %d tasks pending.", pendingTasks)
	if urgentCount > 0 {
		summary = fmt.Sprintf("%d urgent items need attention. %d tasks pending.", urgentCount, pendingTasks)
	}

	return &Brief{
		Title:       "Morning Brief for " + now.Format("Monday, 2 January"),
		Sections:    sections,
		Summary:     summary,
		GeneratedAt: now,
	}, nil
}

// latestUrgentSnippet pulls the reasoning line of the newest urgent
// analysis as the representative item shown in the urgent section. A
// lookup failure only costs the snippet, not the brief.
func (s *Service) latestUrgentSnippet(ctx context.Context, userID string, since time.Time) string {
	urgent, err := s.store.ListAnalyses(ctx, AnalysisFilter{
		UserID:        userID,
		Category:      CategoryUrgent,
		AnalyzedAfter: since,
		Limit:         1,
	})
	if err != nil {
		s.logger.Warn("Could not load a representative urgent email", "error", err)
		return ""
	}
	if len(urgent) == 0 {
		return ""
	}
	return urgent[0].Reasoning
}
