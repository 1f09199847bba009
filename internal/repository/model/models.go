package model

import (
	"time"

	"github.com/google/uuid"
)

// Rows mirror the tables created by the embedded migrations; constraints
// and indexes live there.

type Pool struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Title     string     `gorm:"size:255;not null"`
	Code      string     `gorm:"size:16;not null"`
	OwnerID   *uuid.UUID `gorm:"type:uuid"`
	Owner     *User      `gorm:"foreignKey:OwnerID"`
	CreatedAt time.Time  `gorm:"not null"`
}

type Participant struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	PoolID    uuid.UUID `gorm:"type:uuid;not null"`
	UserID    uuid.UUID `gorm:"type:uuid;not null"`
	User      *User     `gorm:"foreignKey:UserID"`
	CreatedAt time.Time `gorm:"not null"`
}

type User struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Name      string    `gorm:"size:255;not null"`
	Email     *string   `gorm:"size:255"`
	AvatarURL *string   `gorm:"type:text"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}
