package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
)

var (
	ErrPoolNotFound    = errors.New("pool not found")
	ErrPoolCodeExists  = errors.New("pool code already exists")
	ErrAlreadyJoined   = errors.New("user already joined pool")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user with email already exists")
)

type PoolRepository interface {
	// Create stores the pool and, when it has an owner, the owner's
	// participant row in the same transaction. A duplicate code yields
	// ErrPoolCodeExists.
	Create(ctx context.Context, pool *domain.Pool) error
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.PoolDetails, error)
	ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.PoolDetails, error)
	// Join atomically adds userID to the pool identified by code and claims
	// ownership if the pool has none.
	Join(ctx context.Context, code string, userID uuid.UUID) (*domain.JoinOutcome, error)
}

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	Count(ctx context.Context) (int64, error)
}
