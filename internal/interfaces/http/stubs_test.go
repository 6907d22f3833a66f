package http

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/repository"
)

// In-memory stores backing the route tests. Each keeps just enough
// behavior to drive the handlers; repository semantics (ErrNotFound,
// defaulted stage) are mirrored where handlers depend on them.

type memUsers struct {
	mu     sync.Mutex
	users  map[string]*entities.User
	nextID int
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[string]*entities.User{}}
}

func (s *memUsers) Create(_ context.Context, u *entities.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *memUsers) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *memUsers) GetByID(_ context.Context, id int) (*entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memUsers) List(_ context.Context) ([]entities.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.User{}
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *memUsers) SetActive(_ context.Context, id int, active bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u.IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

type memCompanies struct {
	companies map[int]*entities.Company
	nextID    int
}

func newMemCompanies() *memCompanies {
	return &memCompanies{companies: map[int]*entities.Company{}}
}

func (s *memCompanies) Create(_ context.Context, c *entities.Company) error {
	s.nextID++
	c.ID = s.nextID
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *memCompanies) GetByID(_ context.Context, id int) (*entities.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *memCompanies) List(_ context.Context, _, _ int) ([]entities.Company, error) {
	out := []entities.Company{}
	for _, c := range s.companies {
		out = append(out, *c)
	}
	return out, nil
}

func (s *memCompanies) Update(_ context.Context, c *entities.Company) error {
	if _, ok := s.companies[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *memCompanies) Delete(_ context.Context, id int) error {
	if _, ok := s.companies[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.companies, id)
	return nil
}

type memLeads struct {
	leads  map[int]*entities.Lead
	nextID int
}

func newMemLeads() *memLeads {
	return &memLeads{leads: map[int]*entities.Lead{}}
}

func (s *memLeads) Create(_ context.Context, l *entities.Lead) error {
	if l.Stage == "" {
		l.Stage = entities.StageNew
	}
	s.nextID++
	l.ID = s.nextID
	cp := *l
	s.leads[l.ID] = &cp
	return nil
}

func (s *memLeads) GetByID(_ context.Context, id int) (*entities.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *memLeads) List(_ context.Context, stage string, _, _ int) ([]entities.Lead, error) {
	out := []entities.Lead{}
	for _, l := range s.leads {
		if stage == "" || l.Stage == stage {
			out = append(out, *l)
		}
	}
	return out, nil
}

// Update mirrors the repository: stage and score columns only move through
// UpdateStage and UpdateScore.
func (s *memLeads) Update(_ context.Context, l *entities.Lead) error {
	existing, ok := s.leads[l.ID]
	if !ok {
		return repository.ErrNotFound
	}
	cp := *l
	cp.Stage = existing.Stage
	cp.Score = existing.Score
	cp.ScoreReason = existing.ScoreReason
	s.leads[l.ID] = &cp
	return nil
}

func (s *memLeads) UpdateScore(_ context.Context, id, score int, reason string) error {
	l, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Score = score
	l.ScoreReason = reason
	return nil
}

func (s *memLeads) UpdateStage(_ context.Context, id int, stage string) error {
	l, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Stage = stage
	return nil
}

func (s *memLeads) Delete(_ context.Context, id int) error {
	if _, ok := s.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *memLeads) CountByStage(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, l := range s.leads {
		counts[l.Stage]++
	}
	return counts, nil
}

func (s *memLeads) ListByStage(_ context.Context, stage string, limit int) ([]entities.Lead, error) {
	out := []entities.Lead{}
	for _, l := range s.leads {
		if l.Stage == stage && len(out) < limit {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *memLeads) ListNeedingFollowup(context.Context, string, time.Time) ([]entities.Lead, error) {
	return nil, nil
}

type memProfiles struct {
	profiles map[int]*entities.ScoringProfile
	nextID   int
}

func newMemProfiles() *memProfiles {
	return &memProfiles{profiles: map[int]*entities.ScoringProfile{}}
}

func (s *memProfiles) Create(_ context.Context, p *entities.ScoringProfile) error {
	s.nextID++
	p.ID = s.nextID
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *memProfiles) GetByID(_ context.Context, id int) (*entities.ScoringProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *memProfiles) GetDefault(ctx context.Context) (*entities.ScoringProfile, error) {
	for id, p := range s.profiles {
		if p.IsDefault {
			return s.GetByID(ctx, id)
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memProfiles) List(_ context.Context) ([]entities.ScoringProfile, error) {
	out := []entities.ScoringProfile{}
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *memProfiles) Update(_ context.Context, p *entities.ScoringProfile) error {
	if _, ok := s.profiles[p.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *memProfiles) Delete(_ context.Context, id int) error {
	if _, ok := s.profiles[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.profiles, id)
	return nil
}

type memTemplates struct {
	templates map[int]*entities.MessageTemplate
	nextID    int
}

func newMemTemplates() *memTemplates {
	return &memTemplates{templates: map[int]*entities.MessageTemplate{}}
}

func (s *memTemplates) Create(_ context.Context, t *entities.MessageTemplate) error {
	s.nextID++
	t.ID = s.nextID
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *memTemplates) GetByID(_ context.Context, id int) (*entities.MessageTemplate, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *memTemplates) List(_ context.Context, channel string) ([]entities.MessageTemplate, error) {
	out := []entities.MessageTemplate{}
	for _, t := range s.templates {
		if channel == "" || t.Channel == channel {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *memTemplates) Update(_ context.Context, t *entities.MessageTemplate) error {
	if _, ok := s.templates[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *memTemplates) Delete(_ context.Context, id int) error {
	if _, ok := s.templates[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.templates, id)
	return nil
}

type memInteractions struct {
	interactions []entities.Interaction
}

func (s *memInteractions) Create(_ context.Context, i *entities.Interaction) error {
	i.ID = len(s.interactions) + 1
	s.interactions = append(s.interactions, *i)
	return nil
}

func (s *memInteractions) ListByLead(_ context.Context, leadID, _ int) ([]entities.Interaction, error) {
	out := []entities.Interaction{}
	for _, i := range s.interactions {
		if i.LeadID == leadID {
			out = append(out, i)
		}
	}
	return out, nil
}

type memMessages struct {
	messages map[int]*entities.Message
	nextID   int
}

func newMemMessages() *memMessages {
	return &memMessages{messages: map[int]*entities.Message{}}
}

func (s *memMessages) Create(_ context.Context, m *entities.Message) error {
	s.nextID++
	m.ID = s.nextID
	m.CreatedAt = time.Now()
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *memMessages) GetByID(_ context.Context, id int) (*entities.Message, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *memMessages) ListByLead(_ context.Context, leadID, _ int) ([]entities.Message, error) {
	out := []entities.Message{}
	for _, m := range s.messages {
		if m.LeadID == leadID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *memMessages) MarkStatus(_ context.Context, id int, status string, sentAt *time.Time) error {
	m, ok := s.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	m.SentAt = sentAt
	return nil
}

type memEvals struct {
	mu     sync.Mutex
	cases  []entities.EvalCase
	runs   map[string]*entities.EvalRun
	nextID int
}

func newMemEvals() *memEvals {
	return &memEvals{runs: map[string]*entities.EvalRun{}}
}

func (s *memEvals) CreateCase(_ context.Context, c *entities.EvalCase) error {
	s.nextID++
	c.ID = s.nextID
	s.cases = append(s.cases, *c)
	return nil
}

func (s *memEvals) GetCase(_ context.Context, id int) (*entities.EvalCase, error) {
	for _, c := range s.cases {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *memEvals) ListCases(_ context.Context, kind string) ([]entities.EvalCase, error) {
	out := []entities.EvalCase{}
	for _, c := range s.cases {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memEvals) DeleteCase(_ context.Context, id int) error {
	for i, c := range s.cases {
		if c.ID == id {
			s.cases = append(s.cases[:i], s.cases[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (s *memEvals) CreateRun(_ context.Context, r *entities.EvalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
	return nil
}

func (s *memEvals) FinishRun(_ context.Context, r *entities.EvalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.runs[r.ID] = &cp
	return nil
}

func (s *memEvals) GetRun(_ context.Context, id string) (*entities.EvalRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.runs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *memEvals) ListRuns(_ context.Context, _ int) ([]entities.EvalRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []entities.EvalRun{}
	for _, r := range s.runs {
		out = append(out, *r)
	}
	return out, nil
}

type memStats struct {
	dashboard entities.DashboardStats
	admin     entities.AdminStats
}

func (s *memStats) DashboardStats(context.Context) (*entities.DashboardStats, error) {
	cp := s.dashboard
	return &cp, nil
}

func (s *memStats) AdminStats(context.Context) (*entities.AdminStats, error) {
	cp := s.admin
	return &cp, nil
}

type memSearch struct {
	hits       []entities.LeadSearchHit
	companies  []entities.Company
	leadFilter entities.LeadFilter
}

func (s *memSearch) SearchLeads(_ context.Context, f entities.LeadFilter) ([]entities.LeadSearchHit, int, error) {
	s.leadFilter = f
	return s.hits, len(s.hits), nil
}

func (s *memSearch) SearchCompanies(_ context.Context, f entities.CompanyFilter) ([]entities.Company, int, error) {
	return s.companies, len(s.companies), nil
}

// stubCompleter returns canned model output for the score/draft/eval routes.
type stubCompleter struct {
	content string
	raw     json.RawMessage
}

func (s *stubCompleter) Complete(context.Context, []grok.Message, grok.Options) (*grok.Completion, error) {
	return &grok.Completion{Content: s.content, Model: "grok-test"}, nil
}

func (s *stubCompleter) CompleteJSON(context.Context, []grok.Message, grok.Options) (*grok.Completion, json.RawMessage, error) {
	return &grok.Completion{Content: string(s.raw), Model: "grok-test"}, s.raw, nil
}

func (s *stubCompleter) Model() string { return "grok-test" }

type allowGate struct{}

func (allowGate) Allow(int) bool { return true }
