// Package interfaces declares the ports between the service layer and its
// adapters: storage, the LLM client and the outbound message channels.
// Repositories and infrastructure clients implement these; usecases and
// handlers consume them.
package interfaces

import (
	"context"
	"encoding/json"
	"time"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
)

// ChatCompleter is the slice of the Grok client the services depend on.
type ChatCompleter interface {
	Complete(ctx context.Context, messages []grok.Message, opts grok.Options) (*grok.Completion, error)
	CompleteJSON(ctx context.Context, messages []grok.Message, opts grok.Options) (*grok.Completion, json.RawMessage, error)
	Model() string
}

// Messenger delivers one outbound message on a single channel.
type Messenger interface {
	SendText(ctx context.Context, to, content string) error
}

// Notifier pushes operational notifications (stage changes, follow-ups)
// to the configured team chat.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// SendGate throttles outbound sends per lead.
type SendGate interface {
	Allow(leadID int) bool
}

type CompanyStore interface {
	Create(ctx context.Context, c *entities.Company) error
	GetByID(ctx context.Context, id int) (*entities.Company, error)
	List(ctx context.Context, limit, offset int) ([]entities.Company, error)
	Update(ctx context.Context, c *entities.Company) error
	Delete(ctx context.Context, id int) error
}

type LeadStore interface {
	Create(ctx context.Context, l *entities.Lead) error
	GetByID(ctx context.Context, id int) (*entities.Lead, error)
	List(ctx context.Context, stage string, limit, offset int) ([]entities.Lead, error)
	Update(ctx context.Context, l *entities.Lead) error
	UpdateScore(ctx context.Context, id, score int, reason string) error
	UpdateStage(ctx context.Context, id int, stage string) error
	Delete(ctx context.Context, id int) error
	CountByStage(ctx context.Context) (map[string]int, error)
	ListByStage(ctx context.Context, stage string, limit int) ([]entities.Lead, error)
	// ListNeedingFollowup returns leads sitting in stage with no interaction
	// recorded after cutoff.
	ListNeedingFollowup(ctx context.Context, stage string, cutoff time.Time) ([]entities.Lead, error)
}

type ProfileStore interface {
	Create(ctx context.Context, p *entities.ScoringProfile) error
	GetByID(ctx context.Context, id int) (*entities.ScoringProfile, error)
	GetDefault(ctx context.Context) (*entities.ScoringProfile, error)
	List(ctx context.Context) ([]entities.ScoringProfile, error)
	Update(ctx context.Context, p *entities.ScoringProfile) error
	Delete(ctx context.Context, id int) error
}

type TemplateStore interface {
	Create(ctx context.Context, t *entities.MessageTemplate) error
	GetByID(ctx context.Context, id int) (*entities.MessageTemplate, error)
	List(ctx context.Context, channel string) ([]entities.MessageTemplate, error)
	Update(ctx context.Context, t *entities.MessageTemplate) error
	Delete(ctx context.Context, id int) error
}

type InteractionStore interface {
	Create(ctx context.Context, i *entities.Interaction) error
	ListByLead(ctx context.Context, leadID, limit int) ([]entities.Interaction, error)
}

type MessageStore interface {
	Create(ctx context.Context, m *entities.Message) error
	GetByID(ctx context.Context, id int) (*entities.Message, error)
	ListByLead(ctx context.Context, leadID, limit int) ([]entities.Message, error)
	MarkStatus(ctx context.Context, id int, status string, sentAt *time.Time) error
}

type EvalStore interface {
	CreateCase(ctx context.Context, c *entities.EvalCase) error
	GetCase(ctx context.Context, id int) (*entities.EvalCase, error)
	ListCases(ctx context.Context, kind string) ([]entities.EvalCase, error)
	DeleteCase(ctx context.Context, id int) error

	CreateRun(ctx context.Context, r *entities.EvalRun) error
	FinishRun(ctx context.Context, r *entities.EvalRun) error
	GetRun(ctx context.Context, id string) (*entities.EvalRun, error)
	ListRuns(ctx context.Context, limit int) ([]entities.EvalRun, error)
}

type UserStore interface {
	Create(ctx context.Context, u *entities.User) error
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	GetByID(ctx context.Context, id int) (*entities.User, error)
	List(ctx context.Context) ([]entities.User, error)
	SetActive(ctx context.Context, id int, active bool) error
}

type StatsStore interface {
	DashboardStats(ctx context.Context) (*entities.DashboardStats, error)
	AdminStats(ctx context.Context) (*entities.AdminStats, error)
}

// LeadSearcher runs the filtered search behind GET /search.
type LeadSearcher interface {
	SearchLeads(ctx context.Context, f entities.LeadFilter) ([]entities.LeadSearchHit, int, error)
	SearchCompanies(ctx context.Context, f entities.CompanyFilter) ([]entities.Company, int, error)
}
