package triage

import "context"

// AnalysisStore is the persistence collaborator for email analyses. The
// SQLite store in pkg/db implements it; tests use in-package fakes.
type AnalysisStore interface {
	// CreateAnalysis persists the analysis and returns the stored record
	// with its assigned id and AnalyzedAt timestamp.
	CreateAnalysis(ctx context.Context, analysis *EmailAnalysis) (*EmailAnalysis, error)

	// GetAnalysisByEmailID returns the most recent analysis for the email,
	// or nil when none exists.
	GetAnalysisByEmailID(ctx context.Context, emailID string) (*EmailAnalysis, error)

	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*EmailAnalysis, error)
	CountAnalyses(ctx context.Context, filter AnalysisFilter) (int, error)
}

// TaskCounter is the task collaborator consumed by the morning brief.
type TaskCounter interface {
	CountTasks(ctx context.Context, filter TaskFilter) (int, error)
}

// InsightProvider supplies the optional industry tip shown in the morning
// brief. A nil provider simply omits the tip.
type InsightProvider interface {
	DailyTip(ctx context.Context) (string, error)
}
