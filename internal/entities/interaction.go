package entities

import "time"

// Interaction kinds recorded against a lead.
const (
	InteractionNote        = "note"
	InteractionCall        = "call"
	InteractionEmailOpen   = "email_open"
	InteractionReply       = "reply"
	InteractionMeeting     = "meeting"
	InteractionStageChange = "stage_change"
	InteractionScore       = "score"
	InteractionMessageSent = "message_sent"
	InteractionFollowUp    = "followup_due"
)

type Interaction struct {
	ID         int       `json:"id"`
	LeadID     int       `json:"lead_id"`
	Kind       string    `json:"kind"`
	Content    string    `json:"content"`
	OccurredAt time.Time `json:"occurred_at"`
	CreatedAt  time.Time `json:"created_at"`
}
