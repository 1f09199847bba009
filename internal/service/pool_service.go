package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
	"github.com/immxrtalbeast/bolao/internal/metrics"
	"github.com/immxrtalbeast/bolao/internal/repository"
	"github.com/immxrtalbeast/bolao/lib/logger/sl"
)

const defaultCodeAttempts = 5

type PoolOptions struct {
	CodeLength   int
	CodeAttempts int
}

type PoolService struct {
	pools    repository.PoolRepository
	log      *slog.Logger
	metrics  metrics.Recorder
	opts     PoolOptions
	generate func(length int) string
}

func NewPoolService(pools repository.PoolRepository, log *slog.Logger, rec metrics.Recorder, opts PoolOptions) *PoolService {
	if log == nil {
		log = slog.Default()
	}
	if rec == nil {
		rec = metrics.Nop{}
	}
	if opts.CodeLength <= 0 {
		opts.CodeLength = domain.DefaultCodeLength
	}
	if opts.CodeAttempts <= 0 {
		opts.CodeAttempts = defaultCodeAttempts
	}
	return &PoolService{
		pools:    pools,
		log:      log,
		metrics:  rec,
		opts:     opts,
		generate: domain.GenerateCode,
	}
}

// CreatePool stores a new pool under a freshly generated code. An
// authenticated identity becomes owner and first participant; an anonymous
// one leaves the pool unowned. Duplicate codes are regenerated up to
// CodeAttempts times.
func (s *PoolService) CreatePool(ctx context.Context, title string, identity domain.Identity) (*domain.Pool, error) {
	const op = "service.pool.create"
	log := s.log.With(
		slog.String("op", op),
		slog.String("identity", identity.String()),
	)

	if strings.TrimSpace(title) == "" {
		return nil, ErrInvalidTitle
	}

	for attempt := 1; attempt <= s.opts.CodeAttempts; attempt++ {
		pool := domain.NewPool(title, s.generate(s.opts.CodeLength), identity)

		err := s.pools.Create(ctx, pool)
		if errors.Is(err, repository.ErrPoolCodeExists) {
			s.metrics.CodeCollision()
			log.Warn("pool code collision, regenerating",
				slog.String("code", pool.Code),
				slog.Int("attempt", attempt),
			)
			continue
		}
		if err != nil {
			log.Error("failed to create pool", sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		kind := metrics.PoolKindAnonymous
		if pool.HasOwner() {
			kind = metrics.PoolKindOwned
		}
		s.metrics.PoolCreated(kind)

		log.Info("pool created",
			slog.String("pool_id", pool.ID.String()),
			slog.String("code", pool.Code),
			slog.String("kind", kind),
		)
		return pool, nil
	}

	log.Error("pool code attempts exhausted", slog.Int("attempts", s.opts.CodeAttempts))
	return nil, ErrCodeExhausted
}

// JoinPool adds the user to the pool identified by code. The first user to
// join an unowned pool becomes its owner.
func (s *PoolService) JoinPool(ctx context.Context, code string, userID uuid.UUID) (*domain.JoinOutcome, error) {
	const op = "service.pool.join"
	code = domain.NormalizeCode(code)
	log := s.log.With(
		slog.String("op", op),
		slog.String("code", code),
		slog.String("user_id", userID.String()),
	)

	if code == "" {
		return nil, ErrInvalidCode
	}

	outcome, err := s.pools.Join(ctx, code, userID)
	switch {
	case errors.Is(err, repository.ErrPoolNotFound):
		s.metrics.PoolJoin(metrics.JoinResultNotFound)
		log.Info("join rejected: pool not found")
		return nil, ErrPoolNotFound
	case errors.Is(err, repository.ErrAlreadyJoined):
		s.metrics.PoolJoin(metrics.JoinResultAlreadyJoined)
		log.Info("join rejected: already joined")
		return nil, ErrAlreadyJoined
	case err != nil:
		s.metrics.PoolJoin(metrics.JoinResultError)
		log.Error("failed to join pool", sl.Err(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.metrics.PoolJoin(metrics.JoinResultJoined)
	log.Info("user joined pool",
		slog.String("pool_id", outcome.Pool.ID.String()),
		slog.Bool("ownership_claimed", outcome.OwnershipClaimed),
	)
	return outcome, nil
}

func (s *PoolService) ListUserPools(ctx context.Context, userID uuid.UUID) ([]*domain.PoolDetails, error) {
	const op = "service.pool.list"

	pools, err := s.pools.ListByParticipant(ctx, userID)
	if err != nil {
		s.log.Error("failed to list pools",
			slog.String("op", op),
			slog.String("user_id", userID.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pools, nil
}

func (s *PoolService) GetPool(ctx context.Context, id uuid.UUID) (*domain.PoolDetails, error) {
	const op = "service.pool.get"

	pool, err := s.pools.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrPoolNotFound) {
			return nil, ErrPoolNotFound
		}
		s.log.Error("failed to get pool",
			slog.String("op", op),
			slog.String("pool_id", id.String()),
			sl.Err(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return pool, nil
}

func (s *PoolService) CountPools(ctx context.Context) (int64, error) {
	const op = "service.pool.count"

	count, err := s.pools.Count(ctx)
	if err != nil {
		s.log.Error("failed to count pools", slog.String("op", op), sl.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return count, nil
}
