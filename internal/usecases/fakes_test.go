package usecases

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"sync"
	"time"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/repository"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeCompleter plays back canned model output and records what it was
// asked. Safe for the eval runner's concurrent calls.
type fakeCompleter struct {
	mu       sync.Mutex
	model    string
	content  string
	raw      json.RawMessage
	err      error
	messages [][]grok.Message
	opts     []grok.Options
}

func (f *fakeCompleter) record(messages []grok.Message, o grok.Options) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, messages)
	f.opts = append(f.opts, o)
}

func (f *fakeCompleter) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func (f *fakeCompleter) Complete(_ context.Context, messages []grok.Message, o grok.Options) (*grok.Completion, error) {
	f.record(messages, o)
	if f.err != nil {
		return nil, f.err
	}
	return &grok.Completion{Content: f.content, Model: f.Model()}, nil
}

func (f *fakeCompleter) CompleteJSON(_ context.Context, messages []grok.Message, o grok.Options) (*grok.Completion, json.RawMessage, error) {
	f.record(messages, o)
	if f.err != nil {
		return nil, nil, f.err
	}
	return &grok.Completion{Content: string(f.raw), Model: f.Model()}, f.raw, nil
}

func (f *fakeCompleter) Model() string {
	if f.model == "" {
		return "grok-test"
	}
	return f.model
}

// scoreUpdate and stageUpdate capture lead mutations for assertions.
type scoreUpdate struct {
	id     int
	score  int
	reason string
}

type stageUpdate struct {
	id    int
	stage string
}

type fakeLeadStore struct {
	leads        map[int]*entities.Lead
	stale        []entities.Lead // returned from ListNeedingFollowup
	scoreUpdates []scoreUpdate
	stageUpdates []stageUpdate
}

func newFakeLeadStore(leads ...*entities.Lead) *fakeLeadStore {
	s := &fakeLeadStore{leads: map[int]*entities.Lead{}}
	for _, l := range leads {
		s.leads[l.ID] = l
	}
	return s
}

func (s *fakeLeadStore) Create(_ context.Context, l *entities.Lead) error {
	l.ID = len(s.leads) + 1
	if l.Stage == "" {
		l.Stage = entities.StageNew
	}
	cp := *l
	s.leads[l.ID] = &cp
	return nil
}

func (s *fakeLeadStore) GetByID(_ context.Context, id int) (*entities.Lead, error) {
	l, ok := s.leads[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *l
	return &cp, nil
}

func (s *fakeLeadStore) List(_ context.Context, stage string, _, _ int) ([]entities.Lead, error) {
	var out []entities.Lead
	for _, l := range s.leads {
		if stage == "" || l.Stage == stage {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeLeadStore) Update(_ context.Context, l *entities.Lead) error {
	if _, ok := s.leads[l.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *l
	s.leads[l.ID] = &cp
	return nil
}

func (s *fakeLeadStore) UpdateScore(_ context.Context, id, score int, reason string) error {
	l, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Score = score
	l.ScoreReason = reason
	s.scoreUpdates = append(s.scoreUpdates, scoreUpdate{id: id, score: score, reason: reason})
	return nil
}

func (s *fakeLeadStore) UpdateStage(_ context.Context, id int, stage string) error {
	l, ok := s.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	l.Stage = stage
	s.stageUpdates = append(s.stageUpdates, stageUpdate{id: id, stage: stage})
	return nil
}

func (s *fakeLeadStore) Delete(_ context.Context, id int) error {
	if _, ok := s.leads[id]; !ok {
		return repository.ErrNotFound
	}
	delete(s.leads, id)
	return nil
}

func (s *fakeLeadStore) CountByStage(_ context.Context) (map[string]int, error) {
	counts := map[string]int{}
	for _, l := range s.leads {
		counts[l.Stage]++
	}
	return counts, nil
}

func (s *fakeLeadStore) ListByStage(_ context.Context, stage string, limit int) ([]entities.Lead, error) {
	var out []entities.Lead
	for _, l := range s.leads {
		if l.Stage == stage && len(out) < limit {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (s *fakeLeadStore) ListNeedingFollowup(_ context.Context, _ string, _ time.Time) ([]entities.Lead, error) {
	return s.stale, nil
}

type fakeCompanyStore struct {
	companies map[int]*entities.Company
}

func newFakeCompanyStore(companies ...*entities.Company) *fakeCompanyStore {
	s := &fakeCompanyStore{companies: map[int]*entities.Company{}}
	for _, c := range companies {
		s.companies[c.ID] = c
	}
	return s
}

func (s *fakeCompanyStore) Create(_ context.Context, c *entities.Company) error {
	c.ID = len(s.companies) + 1
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *fakeCompanyStore) GetByID(_ context.Context, id int) (*entities.Company, error) {
	c, ok := s.companies[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (s *fakeCompanyStore) List(_ context.Context, _, _ int) ([]entities.Company, error) {
	var out []entities.Company
	for _, c := range s.companies {
		out = append(out, *c)
	}
	return out, nil
}

func (s *fakeCompanyStore) Update(_ context.Context, c *entities.Company) error {
	if _, ok := s.companies[c.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *c
	s.companies[c.ID] = &cp
	return nil
}

func (s *fakeCompanyStore) Delete(_ context.Context, id int) error {
	delete(s.companies, id)
	return nil
}

type fakeProfileStore struct {
	profiles   map[int]*entities.ScoringProfile
	defaultID  int
	defaultErr error
}

func (s *fakeProfileStore) Create(_ context.Context, p *entities.ScoringProfile) error {
	p.ID = len(s.profiles) + 1
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *fakeProfileStore) GetByID(_ context.Context, id int) (*entities.ScoringProfile, error) {
	p, ok := s.profiles[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeProfileStore) GetDefault(_ context.Context) (*entities.ScoringProfile, error) {
	if s.defaultErr != nil {
		return nil, s.defaultErr
	}
	return s.GetByID(context.Background(), s.defaultID)
}

func (s *fakeProfileStore) List(_ context.Context) ([]entities.ScoringProfile, error) {
	var out []entities.ScoringProfile
	for _, p := range s.profiles {
		out = append(out, *p)
	}
	return out, nil
}

func (s *fakeProfileStore) Update(_ context.Context, p *entities.ScoringProfile) error {
	cp := *p
	s.profiles[p.ID] = &cp
	return nil
}

func (s *fakeProfileStore) Delete(_ context.Context, id int) error {
	delete(s.profiles, id)
	return nil
}

type fakeTemplateStore struct {
	templates map[int]*entities.MessageTemplate
}

func (s *fakeTemplateStore) Create(_ context.Context, t *entities.MessageTemplate) error {
	t.ID = len(s.templates) + 1
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *fakeTemplateStore) GetByID(_ context.Context, id int) (*entities.MessageTemplate, error) {
	t, ok := s.templates[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (s *fakeTemplateStore) List(_ context.Context, channel string) ([]entities.MessageTemplate, error) {
	var out []entities.MessageTemplate
	for _, t := range s.templates {
		if channel == "" || t.Channel == channel {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (s *fakeTemplateStore) Update(_ context.Context, t *entities.MessageTemplate) error {
	cp := *t
	s.templates[t.ID] = &cp
	return nil
}

func (s *fakeTemplateStore) Delete(_ context.Context, id int) error {
	delete(s.templates, id)
	return nil
}

// statusChange captures MarkStatus calls.
type statusChange struct {
	id     int
	status string
	sentAt *time.Time
}

type fakeMessageStore struct {
	messages map[int]*entities.Message
	marks    []statusChange
}

func newFakeMessageStore(messages ...*entities.Message) *fakeMessageStore {
	s := &fakeMessageStore{messages: map[int]*entities.Message{}}
	for _, m := range messages {
		s.messages[m.ID] = m
	}
	return s
}

func (s *fakeMessageStore) Create(_ context.Context, m *entities.Message) error {
	m.ID = len(s.messages) + 1
	m.CreatedAt = time.Now()
	cp := *m
	s.messages[m.ID] = &cp
	return nil
}

func (s *fakeMessageStore) GetByID(_ context.Context, id int) (*entities.Message, error) {
	m, ok := s.messages[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeMessageStore) ListByLead(_ context.Context, leadID, _ int) ([]entities.Message, error) {
	var out []entities.Message
	for _, m := range s.messages {
		if m.LeadID == leadID {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (s *fakeMessageStore) MarkStatus(_ context.Context, id int, status string, sentAt *time.Time) error {
	m, ok := s.messages[id]
	if !ok {
		return repository.ErrNotFound
	}
	m.Status = status
	m.SentAt = sentAt
	s.marks = append(s.marks, statusChange{id: id, status: status, sentAt: sentAt})
	return nil
}

type fakeInteractionStore struct {
	created []entities.Interaction
}

func (s *fakeInteractionStore) Create(_ context.Context, i *entities.Interaction) error {
	i.ID = len(s.created) + 1
	s.created = append(s.created, *i)
	return nil
}

func (s *fakeInteractionStore) ListByLead(_ context.Context, leadID, _ int) ([]entities.Interaction, error) {
	var out []entities.Interaction
	for _, i := range s.created {
		if i.LeadID == leadID {
			out = append(out, i)
		}
	}
	return out, nil
}

// kinds lists the recorded interaction kinds in order.
func (s *fakeInteractionStore) kinds() []string {
	out := make([]string, 0, len(s.created))
	for _, i := range s.created {
		out = append(out, i.Kind)
	}
	return out
}

type fakeEvalStore struct {
	mu       sync.Mutex
	cases    []entities.EvalCase
	created  *entities.EvalRun
	finished *entities.EvalRun
}

func (s *fakeEvalStore) CreateCase(_ context.Context, c *entities.EvalCase) error {
	c.ID = len(s.cases) + 1
	s.cases = append(s.cases, *c)
	return nil
}

func (s *fakeEvalStore) GetCase(_ context.Context, id int) (*entities.EvalCase, error) {
	for _, c := range s.cases {
		if c.ID == id {
			cp := c
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeEvalStore) ListCases(_ context.Context, kind string) ([]entities.EvalCase, error) {
	var out []entities.EvalCase
	for _, c := range s.cases {
		if kind == "" || c.Kind == kind {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *fakeEvalStore) DeleteCase(_ context.Context, _ int) error { return nil }

func (s *fakeEvalStore) CreateRun(_ context.Context, r *entities.EvalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.created = &cp
	return nil
}

func (s *fakeEvalStore) FinishRun(_ context.Context, r *entities.EvalRun) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *r
	s.finished = &cp
	return nil
}

func (s *fakeEvalStore) GetRun(_ context.Context, _ string) (*entities.EvalRun, error) {
	return s.finished, nil
}

func (s *fakeEvalStore) ListRuns(_ context.Context, _ int) ([]entities.EvalRun, error) {
	return nil, nil
}

type fakeUserStore struct {
	users  map[string]*entities.User
	nextID int
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*entities.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, u *entities.User) error {
	if _, ok := s.users[u.Username]; ok {
		return repository.ErrDuplicate
	}
	s.nextID++
	u.ID = s.nextID
	cp := *u
	s.users[u.Username] = &cp
	return nil
}

func (s *fakeUserStore) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	u, ok := s.users[username]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id int) (*entities.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *fakeUserStore) List(_ context.Context) ([]entities.User, error) {
	var out []entities.User
	for _, u := range s.users {
		out = append(out, *u)
	}
	return out, nil
}

func (s *fakeUserStore) SetActive(_ context.Context, id int, active bool) error {
	for _, u := range s.users {
		if u.ID == id {
			u.IsActive = active
			return nil
		}
	}
	return repository.ErrNotFound
}

type fakeMessenger struct {
	err   error
	sends []sentText
}

type sentText struct {
	to      string
	content string
}

func (m *fakeMessenger) SendText(_ context.Context, to, content string) error {
	if m.err != nil {
		return m.err
	}
	m.sends = append(m.sends, sentText{to: to, content: content})
	return nil
}

type fakeNotifier struct {
	err   error
	texts []string
}

func (n *fakeNotifier) Notify(_ context.Context, text string) error {
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

type fakeGate struct {
	deny bool
}

func (g *fakeGate) Allow(int) bool { return !g.deny }
