package notify

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/nats-io/nats.go"

	"github.com/TradecrewAI/tradecrew/pkg/helpers"
	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

const (
	UrgentEmailSubject  = "notifications.urgent-email"
	MorningBriefSubject = "notifications.morning-brief"
)

// AnalysisMarker flips the notification bookkeeping flag on a stored
// analysis. It is the only mutation the notification side is allowed.
type AnalysisMarker interface {
	MarkNotificationSent(ctx context.Context, analysisID string) error
}

// Service publishes triage events over NATS for the push-delivery layer
// to pick up.
type Service struct {
	nc     *nats.Conn
	store  AnalysisMarker
	logger *log.Logger
}

func NewService(logger *log.Logger, nc *nats.Conn, store AnalysisMarker) *Service {
	return &Service{
		nc:     nc,
		store:  store,
		logger: logger,
	}
}

type urgentEmailEvent struct {
	UserID   string   `json:"userId"`
	EmailID  string   `json:"emailId"`
	Priority string   `json:"priority"`
	Keywords []string `json:"keywords"`
	Reason   string   `json:"reason"`
}

// AlertUrgent publishes an alert for an urgent analysis and marks it
// notified. Non-urgent or already-notified analyses are ignored.
func (s *Service) AlertUrgent(ctx context.Context, analysis *triage.EmailAnalysis) error {
	if analysis.Category != triage.CategoryUrgent || analysis.NotificationSent {
		return nil
	}

	err := helpers.NatsPublish(s.nc, UrgentEmailSubject, urgentEmailEvent{
		UserID:   analysis.UserID,
		EmailID:  analysis.EmailID,
		Priority: string(analysis.Priority),
		Keywords: analysis.Keywords,
		Reason:   analysis.Reasoning,
	})
	if err != nil {
		return err
	}

	return s.store.MarkNotificationSent(ctx, analysis.ID)
}

type briefEvent struct {
	UserID string        `json:"userId"`
	Brief  *triage.Brief `json:"brief"`
}

// DeliverBrief publishes a generated morning brief for delivery.
func (s *Service) DeliverBrief(ctx context.Context, userID string, brief *triage.Brief) error {
	return helpers.NatsPublish(s.nc, MorningBriefSubject, briefEvent{
		UserID: userID,
		Brief:  brief,
	})
}
