package domain

import "time"

// User is an account able to own and be assigned tasks. Email is unique.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// UserSummary is the minimal user projection embedded in task views.
type UserSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Summary projects the user down to the fields task views expose.
func (u User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name}
}

// UserRef is the id+email projection returned by the user listing endpoint.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
