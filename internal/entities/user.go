package entities

import "time"

type User struct {
	ID           int       `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`      // user|admin
	IsActive     bool      `json:"is_active"` // account enabled
	CreatedAt    time.Time `json:"created_at"`
}
