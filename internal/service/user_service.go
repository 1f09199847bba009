package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
	"github.com/immxrtalbeast/bolao/internal/repository"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
)

type UserService struct {
	users repository.UserRepository
	log   *slog.Logger
}

func NewUserService(users repository.UserRepository, log *slog.Logger) *UserService {
	if log == nil {
		log = slog.Default()
	}
	return &UserService{users: users, log: log}
}

func (s *UserService) CreateUser(ctx context.Context, name, email, avatarURL string) (*domain.User, error) {
	const op = "service.user.create"
	log := s.log.With(slog.String("op", op))

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidName
	}

	user := domain.NewUser(name, strings.ToLower(strings.TrimSpace(email)), strings.TrimSpace(avatarURL))
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserEmailExists) {
			return nil, ErrUserEmailExists
		}
		log.Error("failed to create user", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("user created", slog.String("user_id", user.ID.String()))
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const op = "service.user.get"

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("failed to get user",
			slog.String("op", op),
			slog.String("user_id", id.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return user, nil
}

func (s *UserService) CountUsers(ctx context.Context) (int64, error) {
	const op = "service.user.count"

	count, err := s.users.Count(ctx)
	if err != nil {
		s.log.Error("failed to count users", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
