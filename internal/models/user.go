package models

import "time"

// DefaultAvatar is used when a user is created without one.
const DefaultAvatar = "👤"

// User is a local profile. The PIN is never serialized.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Avatar    string    `json:"avatar"`
	PIN       string    `json:"-"`
	HasPIN    bool      `json:"has_pin"`
	CreatedAt time.Time `json:"created_at"`
}
