package entities

import "time"

type Company struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Domain      string    `json:"domain"`
	Industry    string    `json:"industry"`
	Size        string    `json:"size"` // headcount bracket, e.g. "11-50"
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
