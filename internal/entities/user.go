package entities

import (
	"time"
)

// User is the persisted account record. The password is stored only as a
// bcrypt hash and is never serialized to JSON.
type User struct {
	ID           string    `gorm:"primaryKey;size:36" json:"id"`
	Username     string    `gorm:"uniqueIndex;size:64" json:"username"`
	PasswordHash string    `gorm:"size:128" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// PublicUser is the representation returned by the HTTP API.
type PublicUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Public returns the user's API representation.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
	}
}
