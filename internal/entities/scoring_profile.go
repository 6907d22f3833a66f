package entities

import "time"

// ScoringRule is one string-matching adjustment applied after the model score.
type ScoringRule struct {
	Field  string `json:"field"` // lead/company attribute name, e.g. "title"
	Op     string `json:"op"`    // contains|not_contains|equals|prefix|suffix
	Value  string `json:"value"`
	Points int    `json:"points"` // added to the score when the rule matches
}

type ScoringProfile struct {
	ID               int                `json:"id"`
	Name             string             `json:"name"`
	Weights          map[string]float64 `json:"weights"` // factor name -> multiplier
	Rules            []ScoringRule      `json:"rules"`
	QualifyThreshold int                `json:"qualify_threshold"`
	IsDefault        bool               `json:"is_default"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}
