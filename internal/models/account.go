package models

import "time"

type User struct {
	ID             string    `json:"id"`
	Email          string    `json:"email"`
	HashedPassword string    `json:"-"`
	FullName       string    `json:"full_name"`
	DOB            string    `json:"dob"`
	Phone          string    `json:"phone"`
	CreatedAt      time.Time `json:"created_at"`
}

// HistoryItem is one saved generation. FullJSON holds the serialized
// StartupPack exactly as it was returned to the user.
type HistoryItem struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Idea      string    `json:"idea"`
	Summary   string    `json:"summary"`
	FullJSON  string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
