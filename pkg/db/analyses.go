package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

var (
	_ triage.AnalysisStore = (*Store)(nil)
	_ triage.TaskCounter   = (*Store)(nil)
)

// analysisRow mirrors the email_analyses table. Keyword and action slices
// are JSON text only at this boundary; everything above works with the
// structured triage.EmailAnalysis.
type analysisRow struct {
	ID                string    `db:"id"`
	EmailID           string    `db:"email_id"`
	UserID            string    `db:"user_id"`
	Priority          string    `db:"priority"`
	Category          string    `db:"category"`
	UrgencyScore      int       `db:"urgency_score"`
	BusinessRelevance int       `db:"business_relevance"`
	Sentiment         *string   `db:"sentiment"`
	ActionRequired    bool      `db:"action_required"`
	Keywords          *string   `db:"keywords"`
	SuggestedActions  *string   `db:"suggested_actions"`
	Reasoning         string    `db:"reasoning"`
	NotificationSent  bool      `db:"notification_sent"`
	AnalyzedAt        time.Time `db:"analyzed_at"`
}

func (r *analysisRow) toModel() (*triage.EmailAnalysis, error) {
	analysis := &triage.EmailAnalysis{
		ID:                r.ID,
		EmailID:           r.EmailID,
		UserID:            r.UserID,
		Priority:          triage.Priority(r.Priority),
		Category:          triage.Category(r.Category),
		UrgencyScore:      r.UrgencyScore,
		BusinessRelevance: r.BusinessRelevance,
		Sentiment:         r.Sentiment,
		ActionRequired:    r.ActionRequired,
		Keywords:          []string{},
		SuggestedActions:  []string{},
		Reasoning:         r.Reasoning,
		NotificationSent:  r.NotificationSent,
		AnalyzedAt:        r.AnalyzedAt,
	}
	if r.Keywords != nil {
		if err := json.Unmarshal([]byte(*r.Keywords), &analysis.Keywords); err != nil {
			return nil, err
		}
	}
	if r.SuggestedActions != nil {
		if err := json.Unmarshal([]byte(*r.SuggestedActions), &analysis.SuggestedActions); err != nil {
			return nil, err
		}
	}
	return analysis, nil
}

const analysisColumns = `id, email_id, user_id, priority, category, urgency_score,
	business_relevance, sentiment, action_required, keywords, suggested_actions,
	reasoning, notification_sent, analyzed_at`

// CreateAnalysis persists a new analysis, assigning its id and the
// analyzed_at timestamp. (user_id, email_id) is unique; re-analyzing the
// same email fails rather than silently overwriting the stored scores.
func (s *Store) CreateAnalysis(ctx context.Context, analysis *triage.EmailAnalysis) (*triage.EmailAnalysis, error) {
	keywordsJSON, err := json.Marshal(analysis.Keywords)
	if err != nil {
		return nil, err
	}
	actionsJSON, err := json.Marshal(analysis.SuggestedActions)
	if err != nil {
		return nil, err
	}

	id := uuid.New().String()
	analyzedAt := time.Now().UTC()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO email_analyses (`+analysisColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, FALSE, ?)
	`, id, analysis.EmailID, analysis.UserID, string(analysis.Priority), string(analysis.Category),
		analysis.UrgencyScore, analysis.BusinessRelevance, analysis.Sentiment, analysis.ActionRequired,
		string(keywordsJSON), string(actionsJSON), analysis.Reasoning, analyzedAt)
	if err != nil {
		return nil, err
	}

	stored := *analysis
	stored.ID = id
	stored.NotificationSent = false
	stored.AnalyzedAt = analyzedAt
	return &stored, nil
}

// GetAnalysisByEmailID retrieves the analysis for an email, or nil when
// the email has not been analyzed.
func (s *Store) GetAnalysisByEmailID(ctx context.Context, emailID string) (*triage.EmailAnalysis, error) {
	var row analysisRow
	err := s.db.GetContext(ctx, &row, `
		SELECT `+analysisColumns+`
		FROM email_analyses
		WHERE email_id = ?
		ORDER BY analyzed_at DESC
		LIMIT 1
	`, emailID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return row.toModel()
}

// ListAnalyses retrieves analyses matching the filter, newest first.
func (s *Store) ListAnalyses(ctx context.Context, filter triage.AnalysisFilter) ([]*triage.EmailAnalysis, error) {
	where, args := analysisWhere(filter)

	query := `SELECT ` + analysisColumns + ` FROM email_analyses` + where + ` ORDER BY analyzed_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	var rows []analysisRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}

	analyses := make([]*triage.EmailAnalysis, 0, len(rows))
	for i := range rows {
		analysis, err := rows[i].toModel()
		if err != nil {
			return nil, err
		}
		analyses = append(analyses, analysis)
	}
	return analyses, nil
}

// CountAnalyses counts analyses matching the filter.
func (s *Store) CountAnalyses(ctx context.Context, filter triage.AnalysisFilter) (int, error) {
	where, args := analysisWhere(filter)

	var count int
	err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM email_analyses`+where, args...)
	return count, err
}

func analysisWhere(filter triage.AnalysisFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.UserID != "" {
		conds = append(conds, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.Category != "" {
		conds = append(conds, "category = ?")
		args = append(args, string(filter.Category))
	}
	if filter.Priority != "" {
		conds = append(conds, "priority = ?")
		args = append(args, string(filter.Priority))
	}
	if !filter.AnalyzedAfter.IsZero() {
		conds = append(conds, "analyzed_at >= ?")
		args = append(args, filter.AnalyzedAfter.UTC())
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// MarkNotificationSent flips the bookkeeping flag owned by the
// notification service. Scoring fields are never updated after creation.
func (s *Store) MarkNotificationSent(ctx context.Context, analysisID string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE email_analyses SET notification_sent = TRUE WHERE id = ?
	`, analysisID)
	return err
}

// ListUserIDs returns every user with at least one analysis. The brief
// scheduler iterates this set each morning.
func (s *Store) ListUserIDs(ctx context.Context) ([]string, error) {
	var userIDs []string
	err := s.db.SelectContext(ctx, &userIDs, `
		SELECT DISTINCT user_id FROM email_analyses ORDER BY user_id
	`)
	if err != nil {
		return nil, err
	}
	return userIDs, nil
}
