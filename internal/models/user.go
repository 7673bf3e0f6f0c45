package models

import "time"

type User struct {
	ID               int64
	Email            string
	Name             string
	PasswordHash     string
	IsVerified       bool
	VerificationCode string
	CreatedAt        time.Time
	VerifiedAt       *time.Time
}

// Profile is the part of a user that may leave the service.
type Profile struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	IsVerified bool      `json:"is_verified"`
	CreatedAt  time.Time `json:"created_at"`
}

func (u User) Profile() Profile {
	return Profile{
		ID:         u.ID,
		Name:       u.Name,
		Email:      u.Email,
		IsVerified: u.IsVerified,
		CreatedAt:  u.CreatedAt,
	}
}
