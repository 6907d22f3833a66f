package usecases

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"leadflow/internal/entities"
)

func scoringFixture(raw string) (*ScoringService, *fakeCompleter, *fakeLeadStore, *fakeInteractionStore) {
	llm := &fakeCompleter{raw: json.RawMessage(raw)}
	leads := newFakeLeadStore(&entities.Lead{
		ID:        1,
		CompanyID: 1,
		FirstName: "Ada",
		LastName:  "Tan",
		Title:     "VP of Engineering",
		Email:     "ada@acme.example",
		Stage:     entities.StageNew,
	})
	companies := newFakeCompanyStore(&entities.Company{
		ID:       1,
		Name:     "Acme",
		Industry: "fintech",
		Size:     "51-200",
	})
	profiles := &fakeProfileStore{
		profiles: map[int]*entities.ScoringProfile{
			1: {
				ID:   1,
				Name: "Default",
				Weights: map[string]float64{
					"fit":       2,
					"authority": 1,
				},
				Rules: []entities.ScoringRule{
					{Field: "title", Op: "contains", Value: "vp", Points: 10},
				},
				QualifyThreshold: 70,
				IsDefault:        true,
			},
		},
		defaultID: 1,
	}
	interactions := &fakeInteractionStore{}
	svc := NewScoringService(llm, leads, companies, profiles, interactions, testLogger())
	return svc, llm, leads, interactions
}

func TestScoreLeadCombinesWeightsAndRules(t *testing.T) {
	svc, llm, leads, interactions := scoringFixture(
		`{"score": 90, "factors": {"fit": 80, "authority": 60}, "reasoning": "strong fit"}`)

	res, err := svc.ScoreLead(context.Background(), 1, nil)
	require.NoError(t, err)

	// (80*2 + 60*1) / 3 = 73.33, +10 for the title rule, rounded.
	require.Equal(t, 83, res.Score)
	require.True(t, res.Qualified)
	require.Equal(t, "strong fit", res.Reasoning)
	require.Equal(t, "Default", res.Profile)
	require.Equal(t, "grok-test", res.Model)

	require.Len(t, leads.scoreUpdates, 1)
	require.Equal(t, scoreUpdate{id: 1, score: 83, reason: "strong fit"}, leads.scoreUpdates[0])

	require.Equal(t, []string{entities.InteractionScore}, interactions.kinds())
	require.Equal(t, `scored 83 using profile "Default"`, interactions.created[0].Content)

	require.Equal(t, 1, llm.calls())
	opts := llm.opts[0]
	require.NotNil(t, opts.Temperature)
	require.Equal(t, 0.2, *opts.Temperature)
	require.Equal(t, 512, opts.MaxTokens)
	require.True(t, opts.JSONMode)
}

func TestScoreLeadFallsBackToModelScoreWithoutWeights(t *testing.T) {
	svc, _, leads, _ := scoringFixture(`{"score": 55, "factors": {}, "reasoning": "meh"}`)
	svc.profiles.(*fakeProfileStore).profiles[1].Weights = nil
	svc.profiles.(*fakeProfileStore).profiles[1].Rules = nil

	res, err := svc.ScoreLead(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Equal(t, 55, res.Score)
	require.False(t, res.Qualified)
	require.Equal(t, 55, leads.leads[1].Score)
}

func TestScoreLeadClampsAboveHundred(t *testing.T) {
	svc, _, _, _ := scoringFixture(`{"score": 98, "factors": {"fit": 98, "authority": 98}, "reasoning": "perfect"}`)
	svc.profiles.(*fakeProfileStore).profiles[1].Rules = []entities.ScoringRule{
		{Field: "title", Op: "contains", Value: "vp", Points: 50},
	}

	res, err := svc.ScoreLead(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Equal(t, 100, res.Score)
}

func TestScoreLeadClampsBelowZero(t *testing.T) {
	svc, _, _, _ := scoringFixture(`{"score": 5, "factors": {"fit": 5, "authority": 5}, "reasoning": "poor"}`)
	svc.profiles.(*fakeProfileStore).profiles[1].Rules = []entities.ScoringRule{
		{Field: "title", Op: "contains", Value: "vp", Points: -60},
	}

	res, err := svc.ScoreLead(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
}

func TestScoreLeadUsesRequestedProfile(t *testing.T) {
	svc, _, _, _ := scoringFixture(`{"score": 40, "factors": {}, "reasoning": "ok"}`)
	store := svc.profiles.(*fakeProfileStore)
	store.profiles[2] = &entities.ScoringProfile{ID: 2, Name: "Strict", QualifyThreshold: 90}

	id := 2
	res, err := svc.ScoreLead(context.Background(), 1, &id)
	require.NoError(t, err)
	require.Equal(t, "Strict", res.Profile)
	require.False(t, res.Qualified)
}

func TestScoreLeadModelErrorLeavesLeadUntouched(t *testing.T) {
	svc, llm, leads, interactions := scoringFixture(`{}`)
	llm.err = errors.New("upstream down")

	_, err := svc.ScoreLead(context.Background(), 1, nil)
	require.ErrorContains(t, err, "upstream down")
	require.Empty(t, leads.scoreUpdates)
	require.Empty(t, interactions.created)
}

func TestScoreLeadSkipsFactorsTheModelOmitted(t *testing.T) {
	// Only "fit" comes back; "authority" must not drag the average down.
	svc, _, _, _ := scoringFixture(`{"score": 10, "factors": {"fit": 90}, "reasoning": "partial"}`)
	svc.profiles.(*fakeProfileStore).profiles[1].Rules = nil

	res, err := svc.ScoreLead(context.Background(), 1, nil)
	require.NoError(t, err)
	require.Equal(t, 90, res.Score)
}

func TestRuleMatches(t *testing.T) {
	cases := []struct {
		name  string
		op    string
		value string
		input string
		want  bool
	}{
		{"contains hit", "contains", "VP", "svp of sales", true},
		{"contains miss", "contains", "cto", "vp of sales", false},
		{"not_contains hit", "not_contains", "intern", "vp of sales", true},
		{"not_contains miss", "not_contains", "sales", "vp of sales", false},
		{"equals case-insensitive", "equals", "Fintech", "fintech", true},
		{"prefix", "prefix", "vp", "VP of Engineering", true},
		{"suffix", "suffix", "engineering", "VP of Engineering", true},
		{"unknown op never matches", "regex", ".*", "anything", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rule := entities.ScoringRule{Op: tc.op, Value: tc.value}
			require.Equal(t, tc.want, ruleMatches(rule, tc.input))
		})
	}
}

func TestRuleAdjustmentIgnoresUnknownFields(t *testing.T) {
	lead := &entities.Lead{Title: "VP of Sales"}
	company := &entities.Company{Industry: "fintech"}
	rules := []entities.ScoringRule{
		{Field: "title", Op: "contains", Value: "vp", Points: 10},
		{Field: "favorite_color", Op: "equals", Value: "blue", Points: 99},
		{Field: "industry", Op: "equals", Value: "fintech", Points: 5},
	}
	require.Equal(t, 15, ruleAdjustment(lead, company, rules, testLogger()))
}

func TestWeightedScoreIgnoresNonPositiveWeights(t *testing.T) {
	v := modelVerdict{Score: 50, Factors: map[string]float64{"fit": 80, "noise": 10}}
	weights := map[string]float64{"fit": 1, "noise": 0, "absent": 3}
	require.Equal(t, 80.0, weightedScore(v, weights))
}

func TestClampScoreRounds(t *testing.T) {
	require.Equal(t, 73, clampScore(73.4))
	require.Equal(t, 74, clampScore(73.5))
	require.Equal(t, 0, clampScore(-3))
	require.Equal(t, 100, clampScore(140))
}
