package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"leadflow/internal/entities"
	"leadflow/internal/infrastructure/grok"
	"leadflow/internal/interfaces"
)

// evalConcurrency bounds how many cases hit the model at once.
const evalConcurrency = 4

// defaultPassThreshold applies when a case's criteria set none.
const defaultPassThreshold = 70

// storedOutputLimit caps the model output kept in the per-case results.
const storedOutputLimit = 2000

// EvalService runs stored eval cases against the live model and grades the
// outputs with the case criteria. Grades are plain arithmetic over the
// checks; a case with no checks passes vacuously at 100.
type EvalService struct {
	llm   interfaces.ChatCompleter
	store interfaces.EvalStore
	log   *slog.Logger
}

func NewEvalService(llm interfaces.ChatCompleter, store interfaces.EvalStore, log *slog.Logger) *EvalService {
	return &EvalService{
		llm:   llm,
		store: store,
		log:   log.With("component", "eval"),
	}
}

// Run executes every case (optionally restricted to one kind) with bounded
// concurrency, grades each output, and persists the aggregated run. The run
// row is written up front with status running so list views see it while
// cases are still in flight.
func (s *EvalService) Run(ctx context.Context, kind string) (*entities.EvalRun, error) {
	cases, err := s.store.ListCases(ctx, kind)
	if err != nil {
		return nil, err
	}
	if len(cases) == 0 {
		return nil, ErrNoEvalCases
	}

	run := &entities.EvalRun{
		ID:        uuid.NewString(),
		Status:    entities.EvalRunRunning,
		Model:     s.llm.Model(),
		Kind:      kind,
		CaseCount: len(cases),
		StartedAt: time.Now().UTC(),
	}
	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, err
	}

	s.log.Info("eval run started",
		"run_id", run.ID,
		"kind", kind,
		"cases", len(cases))

	results := make([]entities.EvalResult, len(cases))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(evalConcurrency)
	for i, c := range cases {
		i, c := i, c
		g.Go(func() error {
			results[i] = s.runCase(gctx, c)
			return nil
		})
	}
	// Workers never return errors; per-case failures live in the results.
	_ = g.Wait()

	run.Results = results
	var scoreSum int
	for _, res := range results {
		if res.Passed {
			run.Passed++
		} else {
			run.Failed++
		}
		scoreSum += res.Score
	}
	run.AvgScore = math.Round(float64(scoreSum)/float64(len(results))*10) / 10
	run.Status = entities.EvalRunCompleted
	if ctx.Err() != nil {
		run.Status = entities.EvalRunFailed
	}
	now := time.Now().UTC()
	run.FinishedAt = &now

	// Persist the verdicts even when the request context died mid-run.
	finishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	if err := s.store.FinishRun(finishCtx, run); err != nil {
		return nil, err
	}

	s.log.Info("eval run finished",
		"run_id", run.ID,
		"status", run.Status,
		"passed", run.Passed,
		"failed", run.Failed,
		"avg_score", run.AvgScore)
	return run, nil
}

// evalTemperature and evalSeed pin the model down so reruns of the same
// case set are comparable.
var (
	evalTemperature = 0.0
	evalSeed        = 42
)

func (s *EvalService) runCase(ctx context.Context, c entities.EvalCase) entities.EvalResult {
	res := entities.EvalResult{CaseID: c.ID, CaseName: c.Name}

	messages := make([]grok.Message, 0, 2)
	if c.Input.System != "" {
		messages = append(messages, grok.Message{Role: "system", Content: c.Input.System})
	}
	messages = append(messages, grok.Message{Role: "user", Content: c.Input.Prompt})

	start := time.Now()
	comp, err := s.llm.Complete(ctx, messages, grok.Options{
		Temperature: &evalTemperature,
		MaxTokens:   1024,
		JSONMode:    c.Input.JSONMode,
		Seed:        &evalSeed,
	})
	res.LatencyMS = time.Since(start).Milliseconds()
	if err != nil {
		res.Error = err.Error()
		res.Failures = []string{"model call failed"}
		s.log.Warn("eval case errored", "case", c.Name, "error", err)
		return res
	}

	output := comp.Content
	res.Score, res.Failures = gradeOutput(output, c.Criteria)

	threshold := c.Criteria.PassThreshold
	if threshold <= 0 {
		threshold = defaultPassThreshold
	}
	res.Passed = res.Score >= threshold

	if len(output) > storedOutputLimit {
		output = output[:storedOutputLimit]
	}
	res.Output = output

	s.log.Debug("eval case graded",
		"case", c.Name,
		"score", res.Score,
		"passed", res.Passed,
		"latency_ms", res.LatencyMS)
	return res
}

// gradeOutput scores an output 0-100 as the share of criteria checks that
// pass, and describes every failed check.
func gradeOutput(output string, c entities.EvalCriteria) (int, []string) {
	type check struct {
		ok   bool
		desc string
	}
	lower := strings.ToLower(output)

	checks := []check{}
	for _, p := range c.RequiredPhrases {
		checks = append(checks, check{
			ok:   strings.Contains(lower, strings.ToLower(p)),
			desc: fmt.Sprintf("missing required phrase %q", p),
		})
	}
	for _, p := range c.ForbiddenPhrases {
		checks = append(checks, check{
			ok:   !strings.Contains(lower, strings.ToLower(p)),
			desc: fmt.Sprintf("contains forbidden phrase %q", p),
		})
	}
	if c.MaxLength > 0 {
		checks = append(checks, check{
			ok:   len(output) <= c.MaxLength,
			desc: fmt.Sprintf("output length %d exceeds max %d", len(output), c.MaxLength),
		})
	}
	if c.ExpectJSON {
		var obj map[string]any
		err := json.Unmarshal([]byte(strings.TrimSpace(output)), &obj)
		checks = append(checks, check{
			ok:   err == nil,
			desc: "output is not a JSON object",
		})
	}
	if c.MinScore != nil || c.MaxScore != nil {
		score, ok := numericScore(output)
		if !ok {
			checks = append(checks, check{ok: false, desc: "no numeric score field in output"})
		} else {
			if c.MinScore != nil {
				checks = append(checks, check{
					ok:   score >= *c.MinScore,
					desc: fmt.Sprintf("score %d below minimum %d", score, *c.MinScore),
				})
			}
			if c.MaxScore != nil {
				checks = append(checks, check{
					ok:   score <= *c.MaxScore,
					desc: fmt.Sprintf("score %d above maximum %d", score, *c.MaxScore),
				})
			}
		}
	}

	if len(checks) == 0 {
		return 100, nil
	}

	passed := 0
	var failures []string
	for _, ch := range checks {
		if ch.ok {
			passed++
		} else {
			failures = append(failures, ch.desc)
		}
	}
	return int(math.Round(float64(passed) / float64(len(checks)) * 100)), failures
}

var evalScoreRe = regexp.MustCompile(`(?i)"?score"?\s*[:=]\s*(-?\d+(?:\.\d+)?)`)

// numericScore reads the "score" field out of a JSON output, falling back
// to a regex scan when the output is not valid JSON.
func numericScore(output string) (int, bool) {
	var obj map[string]any
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &obj); err == nil {
		if f, ok := obj["score"].(float64); ok {
			return int(math.Round(f)), true
		}
	}
	m := evalScoreRe.FindStringSubmatch(output)
	if m == nil {
		return 0, false
	}
	f, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}
	return int(math.Round(f)), true
}
