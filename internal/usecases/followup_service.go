package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

// FollowupService finds leads that went quiet after outreach and flags them.
// It is meant to run on a schedule, not per request.
type FollowupService struct {
	leads        interfaces.LeadStore
	interactions interfaces.InteractionStore
	notifier     interfaces.Notifier
	staleAfter   time.Duration
	log          *slog.Logger
}

func NewFollowupService(
	leads interfaces.LeadStore,
	interactions interfaces.InteractionStore,
	notifier interfaces.Notifier,
	staleAfter time.Duration,
	log *slog.Logger,
) *FollowupService {
	return &FollowupService{
		leads:        leads,
		interactions: interactions,
		notifier:     notifier,
		staleAfter:   staleAfter,
		log:          log.With("component", "followup"),
	}
}

// Run scans for leads sitting in OUTREACH with no recorded activity since
// the cutoff and records a followup_due interaction for each. The recorded
// interaction counts as activity, so a lead is flagged once per quiet
// period rather than on every tick.
func (s *FollowupService) Run(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.staleAfter)
	leads, err := s.leads.ListNeedingFollowup(ctx, entities.StageOutreach, cutoff)
	if err != nil {
		return fmt.Errorf("list stale leads: %w", err)
	}
	if len(leads) == 0 {
		s.log.Debug("no follow-ups due")
		return nil
	}

	var flagged []string
	for _, lead := range leads {
		interaction := &entities.Interaction{
			LeadID:  lead.ID,
			Kind:    entities.InteractionFollowUp,
			Content: fmt.Sprintf("no activity since %s", lead.UpdatedAt.UTC().Format("2006-01-02")),
		}
		if err := s.interactions.Create(ctx, interaction); err != nil {
			s.log.Error("record follow-up failed", "lead_id", lead.ID, "error", err)
			continue
		}
		flagged = append(flagged, lead.FullName())
	}

	if len(flagged) > 0 && s.notifier != nil {
		text := fmt.Sprintf("%d lead(s) need a follow-up: %s", len(flagged), strings.Join(flagged, ", "))
		if err := s.notifier.Notify(ctx, text); err != nil {
			s.log.Warn("follow-up notification failed", "error", err)
		}
	}

	s.log.Info("follow-up scan complete", "due", len(flagged))
	return nil
}
