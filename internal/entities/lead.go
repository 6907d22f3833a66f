package entities

import "time"

// Pipeline stages a lead moves through.
const (
	StageNew              = "NEW"
	StageQualified        = "QUALIFIED"
	StageOutreach         = "OUTREACH"
	StageReplied          = "REPLIED"
	StageMeetingScheduled = "MEETING_SCHEDULED"
	StageWon              = "WON"
	StageLost             = "LOST"
)

type Lead struct {
	ID          int       `json:"id"`
	CompanyID   int       `json:"company_id"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	Title       string    `json:"title"`
	LinkedinURL string    `json:"linkedin_url"`
	Source      string    `json:"source"` // e.g. "webinar", "cold_list", "referral"
	Stage       string    `json:"stage"`
	Score       int       `json:"score"`
	ScoreReason string    `json:"score_reason"`
	Notes       string    `json:"notes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// FullName joins first and last name for prompts and rendered templates.
func (l *Lead) FullName() string {
	if l.FirstName == "" {
		return l.LastName
	}
	if l.LastName == "" {
		return l.FirstName
	}
	return l.FirstName + " " + l.LastName
}
