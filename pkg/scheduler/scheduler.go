package scheduler

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
	"github.com/robfig/cron/v3"

	"github.com/TradecrewAI/tradecrew/pkg/triage"
)

type BriefGenerator interface {
	GenerateMorningBrief(ctx context.Context, userID string) (*triage.Brief, error)
}

type BriefDeliverer interface {
	DeliverBrief(ctx context.Context, userID string, brief *triage.Brief) error
}

type UserLister interface {
	ListUserIDs(ctx context.Context) ([]string, error)
}

// Service generates and delivers the morning brief for every known user
// on a cron schedule. One user's failure never blocks the others.
type Service struct {
	cron      *cron.Cron
	logger    *log.Logger
	briefs    BriefGenerator
	deliverer BriefDeliverer
	users     UserLister
}

const runTimeout = 2 * time.Minute

func NewService(logger *log.Logger, briefs BriefGenerator, deliverer BriefDeliverer, users UserLister) *Service {
	return &Service{
		cron:      cron.New(),
		logger:    logger,
		briefs:    briefs,
		deliverer: deliverer,
		users:     users,
	}
}

// Start registers the brief job with the given cron spec and starts the
// scheduler.
func (s *Service) Start(spec string) error {
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return err
	}
	s.cron.Start()
	s.logger.Info("Morning brief scheduler started", "spec", spec)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (s *Service) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
}

func (s *Service) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	userIDs, err := s.users.ListUserIDs(ctx)
	if err != nil {
		s.logger.Error("Could not list users for morning briefs", "error", err)
		return
	}

	for _, userID := range userIDs {
		brief, err := s.briefs.GenerateMorningBrief(ctx, userID)
		if err != nil {
			s.logger.Error("Morning brief generation failed", "userId", userID, "error", err)
			continue
		}
		if err := s.deliverer.DeliverBrief(ctx, userID, brief); err != nil {
			s.logger.Error("Morning brief delivery failed", "userId", userID, "error", err)
			continue
		}
		s.logger.Info("Morning brief delivered", "userId", userID, "sections", len(brief.Sections))
	}
}
