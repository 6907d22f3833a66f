package usecases

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"leadflow/internal/entities"
	"leadflow/internal/interfaces"
)

// stageOrder is the canonical pipeline order used for board columns.
var stageOrder = []string{
	entities.StageNew,
	entities.StageQualified,
	entities.StageOutreach,
	entities.StageReplied,
	entities.StageMeetingScheduled,
	entities.StageWon,
	entities.StageLost,
}

// stageTransitions is the adjacency table: which stages a lead may move to
// from each stage. WON is terminal; LOST can be recycled back to NEW.
var stageTransitions = map[string][]string{
	entities.StageNew:              {entities.StageQualified, entities.StageLost},
	entities.StageQualified:        {entities.StageOutreach, entities.StageLost},
	entities.StageOutreach:         {entities.StageReplied, entities.StageLost},
	entities.StageReplied:          {entities.StageMeetingScheduled, entities.StageLost},
	entities.StageMeetingScheduled: {entities.StageWon, entities.StageLost},
	entities.StageWon:              {},
	entities.StageLost:             {entities.StageNew},
}

// notifyStages are the transitions worth pinging the team chat about.
var notifyStages = map[string]bool{
	entities.StageReplied:          true,
	entities.StageMeetingScheduled: true,
	entities.StageWon:              true,
}

// StageInfo describes one stage and its allowed next stages.
type StageInfo struct {
	Stage string   `json:"stage"`
	Next  []string `json:"next"`
}

// BoardColumn is one stage's slice of the board view.
type BoardColumn struct {
	Stage string          `json:"stage"`
	Count int             `json:"count"`
	Leads []entities.Lead `json:"leads"`
}

const boardColumnLimit = 20

type PipelineService struct {
	leads        interfaces.LeadStore
	interactions interfaces.InteractionStore
	notifier     interfaces.Notifier // nil when notifications are not configured
	log          *slog.Logger
}

func NewPipelineService(
	leads interfaces.LeadStore,
	interactions interfaces.InteractionStore,
	notifier interfaces.Notifier,
	log *slog.Logger,
) *PipelineService {
	return &PipelineService{
		leads:        leads,
		interactions: interactions,
		notifier:     notifier,
		log:          log.With("component", "pipeline"),
	}
}

// Transition moves a lead to an adjacent stage, records a stage_change
// interaction and notifies the team chat on the stages worth celebrating.
func (s *PipelineService) Transition(ctx context.Context, leadID int, toStage, note string) (*entities.Lead, error) {
	if _, known := stageTransitions[toStage]; !known {
		return nil, ErrUnknownStage
	}

	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(stageTransitions[lead.Stage], toStage) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, lead.Stage, toStage)
	}

	if err := s.leads.UpdateStage(ctx, lead.ID, toStage); err != nil {
		return nil, err
	}

	content := fmt.Sprintf("%s -> %s", lead.Stage, toStage)
	if note != "" {
		content += ": " + note
	}
	interaction := &entities.Interaction{
		LeadID:  lead.ID,
		Kind:    entities.InteractionStageChange,
		Content: content,
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, err
	}

	s.log.Info("stage transition",
		"lead_id", lead.ID,
		"from", lead.Stage,
		"to", toStage)

	if s.notifier != nil && notifyStages[toStage] {
		text := fmt.Sprintf("%s is now %s", lead.FullName(), toStage)
		if err := s.notifier.Notify(ctx, text); err != nil {
			s.log.Warn("stage notification failed", "lead_id", lead.ID, "error", err)
		}
	}

	lead.Stage = toStage
	return lead, nil
}

// Board returns leads grouped by stage, one column per stage in pipeline
// order, each column capped and sorted by score.
func (s *PipelineService) Board(ctx context.Context) ([]BoardColumn, error) {
	counts, err := s.leads.CountByStage(ctx)
	if err != nil {
		return nil, err
	}

	board := make([]BoardColumn, 0, len(stageOrder))
	for _, stage := range stageOrder {
		leads, err := s.leads.ListByStage(ctx, stage, boardColumnLimit)
		if err != nil {
			return nil, err
		}
		board = append(board, BoardColumn{
			Stage: stage,
			Count: counts[stage],
			Leads: leads,
		})
	}
	return board, nil
}

// Stages describes the pipeline: every stage and where it may go next.
func (s *PipelineService) Stages() []StageInfo {
	infos := make([]StageInfo, 0, len(stageOrder))
	for _, stage := range stageOrder {
		next := stageTransitions[stage]
		infos = append(infos, StageInfo{
			Stage: stage,
			Next:  append([]string{}, next...),
		})
	}
	return infos
}
