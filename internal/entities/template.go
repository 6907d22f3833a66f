package entities

import "time"

type MessageTemplate struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Channel   string    `json:"channel"` // email|linkedin|telegram|whatsapp
	Subject   string    `json:"subject"`
	Body      string    `json:"body"` // may contain {{first_name}} style placeholders
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
