package entities

import "time"

// Eval case kinds.
const (
	EvalKindScoring  = "scoring"
	EvalKindOutreach = "outreach"
)

// Eval run statuses.
const (
	EvalRunRunning   = "running"
	EvalRunCompleted = "completed"
	EvalRunFailed    = "failed"
)

// EvalInput is the prompt payload sent to the model for one case.
type EvalInput struct {
	System   string `json:"system,omitempty"`
	Prompt   string `json:"prompt"`
	JSONMode bool   `json:"json_mode,omitempty"`
}

// EvalCriteria is the grading rubric stored alongside a case.
type EvalCriteria struct {
	RequiredPhrases  []string `json:"required_phrases,omitempty"`
	ForbiddenPhrases []string `json:"forbidden_phrases,omitempty"`
	MaxLength        int      `json:"max_length,omitempty"`
	ExpectJSON       bool     `json:"expect_json,omitempty"`
	MinScore         *int     `json:"min_score,omitempty"` // bounds on a numeric "score" field in the output
	MaxScore         *int     `json:"max_score,omitempty"`
	PassThreshold    int      `json:"pass_threshold,omitempty"` // grade needed to pass, default 70
}

type EvalCase struct {
	ID        int          `json:"id"`
	Name      string       `json:"name"`
	Kind      string       `json:"kind"`
	Input     EvalInput    `json:"input"`
	Criteria  EvalCriteria `json:"criteria"`
	CreatedAt time.Time    `json:"created_at"`
}

// EvalResult is the graded outcome of one case within a run.
type EvalResult struct {
	CaseID    int      `json:"case_id"`
	CaseName  string   `json:"case_name"`
	Passed    bool     `json:"passed"`
	Score     int      `json:"score"`
	Failures  []string `json:"failures,omitempty"` // descriptions of failed checks
	Output    string   `json:"output,omitempty"`
	Error     string   `json:"error,omitempty"`
	LatencyMS int64    `json:"latency_ms"`
}

type EvalRun struct {
	ID         string       `json:"id"`
	Status     string       `json:"status"`
	Model      string       `json:"model"`
	Kind       string       `json:"kind,omitempty"` // optional case-kind filter
	CaseCount  int          `json:"case_count"`
	Passed     int          `json:"passed"`
	Failed     int          `json:"failed"`
	AvgScore   float64      `json:"avg_score"`
	Results    []EvalResult `json:"results"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt *time.Time   `json:"finished_at,omitempty"`
}
