package entities

import "time"

// Message directions.
const (
	DirectionOutbound = "outbound"
	DirectionInbound  = "inbound"
)

// Outreach channels.
const (
	ChannelEmail    = "email"
	ChannelLinkedin = "linkedin"
	ChannelTelegram = "telegram"
	ChannelWhatsApp = "whatsapp"
)

// Message statuses.
const (
	MessageDraft    = "draft"
	MessageQueued   = "queued"
	MessageSent     = "sent"
	MessageFailed   = "failed"
	MessageReceived = "received"
)

type Message struct {
	ID          int        `json:"id"`
	LeadID      int        `json:"lead_id"`
	TemplateID  *int       `json:"template_id,omitempty"`
	Direction   string     `json:"direction"`
	Channel     string     `json:"channel"`
	Status      string     `json:"status"`
	Subject     string     `json:"subject"`
	Body        string     `json:"body"`
	PIIRedacted bool       `json:"pii_redacted"` // draft contained contact data that was masked
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}
