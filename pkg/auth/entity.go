package auth

import (
	"time"

	"github.com/google/uuid"
)

// User is a domain entity representing a registered account.
type User struct {
	ID           uuid.UUID
	Email        string
	PasswordHash string
	Name         string
	PhotoURL     string
	CreatedAt    time.Time
}

// Profile is the public view of a user; it never carries credentials.
type Profile struct {
	Email    string
	Name     string
	PhotoURL string
}

func (u User) Profile() Profile {
	return Profile{Email: u.Email, Name: u.Name, PhotoURL: u.PhotoURL}
}
