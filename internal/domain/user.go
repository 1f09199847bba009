package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a profile that can own and join pools.
type User struct {
	ID        uuid.UUID
	Name      string
	Email     string
	AvatarURL string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewUser(name, email, avatarURL string) *User {
	now := time.Now().UTC()
	return &User{
		ID:        uuid.New(),
		Name:      name,
		Email:     email,
		AvatarURL: avatarURL,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
