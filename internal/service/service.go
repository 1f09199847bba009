package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
)

var (
	ErrPoolNotFound    = errors.New("pool not found")
	ErrAlreadyJoined   = errors.New("already joined this pool")
	ErrInvalidTitle    = errors.New("pool title is required")
	ErrInvalidCode     = errors.New("pool code is required")
	ErrCodeExhausted   = errors.New("could not generate a unique pool code")
	ErrInvalidName     = errors.New("user name is required")
	ErrUserNotFound    = errors.New("user not found")
	ErrUserEmailExists = errors.New("user with email already exists")
)

type PoolInteractor interface {
	CreatePool(ctx context.Context, title string, identity domain.Identity) (*domain.Pool, error)
	JoinPool(ctx context.Context, code string, userID uuid.UUID) (*domain.JoinOutcome, error)
	ListUserPools(ctx context.Context, userID uuid.UUID) ([]*domain.PoolDetails, error)
	GetPool(ctx context.Context, id uuid.UUID) (*domain.PoolDetails, error)
	CountPools(ctx context.Context) (int64, error)
}

type UserInteractor interface {
	CreateUser(ctx context.Context, name, email, avatarURL string) (*domain.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error)
	CountUsers(ctx context.Context) (int64, error)
}
