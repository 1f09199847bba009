package domain

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Pool is a betting pool that users join through its invite code.
// OwnerID stays nil until the first authenticated user claims it and is
// never changed afterwards.
type Pool struct {
	ID        uuid.UUID
	Title     string
	Code      string
	OwnerID   *uuid.UUID
	CreatedAt time.Time
}

// NewPool builds a pool for the given identity. An authenticated creator
// becomes the owner and is expected to be stored as the first participant.
func NewPool(title, code string, identity Identity) *Pool {
	pool := &Pool{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(title),
		Code:      code,
		CreatedAt: time.Now().UTC(),
	}
	if userID, ok := identity.UserID(); ok {
		pool.OwnerID = &userID
	}
	return pool
}

// HasOwner reports whether the ownership has already been claimed.
func (p *Pool) HasOwner() bool {
	return p != nil && p.OwnerID != nil
}

// Participant links a user to a pool. One row per (pool, user) pair.
type Participant struct {
	ID        uuid.UUID
	PoolID    uuid.UUID
	UserID    uuid.UUID
	CreatedAt time.Time
}

func NewParticipant(poolID, userID uuid.UUID) *Participant {
	return &Participant{
		ID:        uuid.New(),
		PoolID:    poolID,
		UserID:    userID,
		CreatedAt: time.Now().UTC(),
	}
}

// UserSummary is the owner projection returned with a pool.
type UserSummary struct {
	ID   uuid.UUID
	Name string
}

// ParticipantPreview is one entry of the capped participant list.
type ParticipantPreview struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	AvatarURL *string
}

// PoolDetails is a pool enriched for list and detail responses.
type PoolDetails struct {
	Pool
	Owner            *UserSummary
	Participants     []ParticipantPreview
	ParticipantCount int64
}

// JoinOutcome describes what a successful join changed.
type JoinOutcome struct {
	Pool             *Pool
	Participant      *Participant
	OwnershipClaimed bool
}
