package domain

import "time"

// User represents a registered account.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Identity is the claim bundle carried by access and refresh tokens.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Identity returns the token identity of the user.
func (u User) Identity() Identity {
	return Identity{Name: u.Name, Email: u.Email}
}
