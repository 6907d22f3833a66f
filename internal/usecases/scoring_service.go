package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"strings"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/interfaces"
)

// ScoreResult is what POST /leads/:id/score returns.
type ScoreResult struct {
	LeadID    int                `json:"lead_id"`
	Score     int                `json:"score"`
	Reasoning string             `json:"reasoning"`
	Factors   map[string]float64 `json:"factors,omitempty"`
	Qualified bool               `json:"qualified"`
	Profile   string             `json:"profile"`
	Model     string             `json:"model"`
}

// modelVerdict is the JSON shape the model is asked to produce.
type modelVerdict struct {
	Score     float64            `json:"score"`
	Factors   map[string]float64 `json:"factors"`
	Reasoning string             `json:"reasoning"`
}

type ScoringService struct {
	llm          interfaces.ChatCompleter
	leads        interfaces.LeadStore
	companies    interfaces.CompanyStore
	profiles     interfaces.ProfileStore
	interactions interfaces.InteractionStore
	log          *slog.Logger
}

func NewScoringService(
	llm interfaces.ChatCompleter,
	leads interfaces.LeadStore,
	companies interfaces.CompanyStore,
	profiles interfaces.ProfileStore,
	interactions interfaces.InteractionStore,
	log *slog.Logger,
) *ScoringService {
	return &ScoringService{
		llm:          llm,
		leads:        leads,
		companies:    companies,
		profiles:     profiles,
		interactions: interactions,
		log:          log.With("component", "scoring"),
	}
}

// ScoreLead asks the model to grade a lead, applies the profile's weights
// and rules on top, persists the result and records a score interaction.
// Model and parse failures propagate to the caller as typed grok errors.
func (s *ScoringService) ScoreLead(ctx context.Context, leadID int, profileID *int) (*ScoreResult, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	company, err := s.companies.GetByID(ctx, lead.CompanyID)
	if err != nil {
		return nil, err
	}

	var profile *entities.ScoringProfile
	if profileID != nil {
		profile, err = s.profiles.GetByID(ctx, *profileID)
	} else {
		profile, err = s.profiles.GetDefault(ctx)
	}
	if err != nil {
		return nil, err
	}

	temp := 0.2
	_, raw, err := s.llm.CompleteJSON(ctx, scoringPrompt(lead, company, profile), grok.Options{
		Temperature: &temp,
		MaxTokens:   512,
		JSONMode:    true,
	})
	if err != nil {
		return nil, err
	}

	var verdict modelVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return nil, fmt.Errorf("decode model verdict: %w", err)
	}

	score := weightedScore(verdict, profile.Weights)
	score += float64(ruleAdjustment(lead, company, profile.Rules, s.log))
	final := clampScore(score)

	if err := s.leads.UpdateScore(ctx, lead.ID, final, verdict.Reasoning); err != nil {
		return nil, err
	}
	interaction := &entities.Interaction{
		LeadID:  lead.ID,
		Kind:    entities.InteractionScore,
		Content: fmt.Sprintf("scored %d using profile %q", final, profile.Name),
	}
	if err := s.interactions.Create(ctx, interaction); err != nil {
		return nil, err
	}

	s.log.Info("lead scored",
		"lead_id", lead.ID,
		"score", final,
		"profile", profile.Name,
		"qualified", final >= profile.QualifyThreshold)

	return &ScoreResult{
		LeadID:    lead.ID,
		Score:     final,
		Reasoning: verdict.Reasoning,
		Factors:   verdict.Factors,
		Qualified: final >= profile.QualifyThreshold,
		Profile:   profile.Name,
		Model:     s.llm.Model(),
	}, nil
}

func scoringPrompt(lead *entities.Lead, company *entities.Company, profile *entities.ScoringProfile) []grok.Message {
	factors := make([]string, 0, len(profile.Weights))
	for name := range profile.Weights {
		factors = append(factors, name)
	}
	sort.Strings(factors)

	system := "You are a sales development analyst. Score how promising a lead is " +
		"on a 0-100 scale. Respond with a JSON object: " +
		`{"score": <0-100>, "factors": {<factor>: <0-100>, ...}, "reasoning": "<short explanation>"}.`
	if len(factors) > 0 {
		system += " Grade these factors individually: " + strings.Join(factors, ", ") + "."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Lead: %s\n", lead.FullName())
	fmt.Fprintf(&b, "Title: %s\n", lead.Title)
	fmt.Fprintf(&b, "Source: %s\n", lead.Source)
	if lead.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", lead.Notes)
	}
	fmt.Fprintf(&b, "Company: %s\n", company.Name)
	fmt.Fprintf(&b, "Industry: %s\n", company.Industry)
	fmt.Fprintf(&b, "Company size: %s\n", company.Size)
	if company.Description != "" {
		fmt.Fprintf(&b, "Company description: %s\n", company.Description)
	}

	return []grok.Message{
		{Role: "system", Content: system},
		{Role: "user", Content: b.String()},
	}
}

// weightedScore combines per-factor grades into one number using the
// profile weights: sum(factor*weight)/sum(weights). Factors the model
// skipped contribute nothing; with no usable factors the model's overall
// score stands.
func weightedScore(v modelVerdict, weights map[string]float64) float64 {
	var sum, weightSum float64
	for name, weight := range weights {
		if weight <= 0 {
			continue
		}
		grade, ok := v.Factors[name]
		if !ok {
			continue
		}
		sum += grade * weight
		weightSum += weight
	}
	if weightSum == 0 {
		return v.Score
	}
	return sum / weightSum
}

// ruleAdjustment sums the points of every matching profile rule.
func ruleAdjustment(lead *entities.Lead, company *entities.Company, rules []entities.ScoringRule, log *slog.Logger) int {
	total := 0
	for _, rule := range rules {
		value, ok := ruleField(lead, company, rule.Field)
		if !ok {
			log.Warn("scoring rule references unknown field", "field", rule.Field)
			continue
		}
		if ruleMatches(rule, value) {
			total += rule.Points
		}
	}
	return total
}

func ruleField(lead *entities.Lead, company *entities.Company, field string) (string, bool) {
	switch field {
	case "first_name":
		return lead.FirstName, true
	case "last_name":
		return lead.LastName, true
	case "email":
		return lead.Email, true
	case "title":
		return lead.Title, true
	case "source":
		return lead.Source, true
	case "notes":
		return lead.Notes, true
	case "company", "company_name":
		return company.Name, true
	case "industry":
		return company.Industry, true
	case "size", "company_size":
		return company.Size, true
	case "domain":
		return company.Domain, true
	case "description":
		return company.Description, true
	default:
		return "", false
	}
}

// ruleMatches compares case-insensitively. Unknown ops never match.
func ruleMatches(rule entities.ScoringRule, value string) bool {
	v := strings.ToLower(value)
	needle := strings.ToLower(rule.Value)
	switch rule.Op {
	case "contains":
		return strings.Contains(v, needle)
	case "not_contains":
		return !strings.Contains(v, needle)
	case "equals":
		return v == needle
	case "prefix":
		return strings.HasPrefix(v, needle)
	case "suffix":
		return strings.HasSuffix(v, needle)
	default:
		return false
	}
}

func clampScore(score float64) int {
	n := int(math.Round(score))
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
