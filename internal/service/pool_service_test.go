package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
	"github.com/immxrtalbeast/bolao/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type recordedMetrics struct {
	created    map[string]int
	joins      map[string]int
	collisions int
}

func newRecordedMetrics() *recordedMetrics {
	return &recordedMetrics{created: map[string]int{}, joins: map[string]int{}}
}

func (m *recordedMetrics) PoolCreated(kind string)                        { m.created[kind]++ }
func (m *recordedMetrics) PoolJoin(result string)                         { m.joins[result]++ }
func (m *recordedMetrics) CodeCollision()                                 { m.collisions++ }
func (m *recordedMetrics) HTTPRequest(string, string, int, time.Duration) {}

func newPoolService(t *testing.T) (*PoolService, *repository.InMemoryPoolRepository, *recordedMetrics) {
	t.Helper()
	repo := repository.NewInMemoryPoolRepository(nil, 4)
	rec := newRecordedMetrics()
	return NewPoolService(repo, discardLogger(), rec, PoolOptions{}), repo, rec
}

func TestPoolService_CreatePool_Anonymous(t *testing.T) {
	svc, repo, rec := newPoolService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	require.NoError(t, err)

	assert.Len(t, pool.Code, 6)
	assert.Equal(t, strings.ToUpper(pool.Code), pool.Code)
	assert.Nil(t, pool.OwnerID)

	details, err := repo.GetByID(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(0), details.ParticipantCount)
	assert.Equal(t, 1, rec.created["anonymous"])
}

func TestPoolService_CreatePool_Authenticated(t *testing.T) {
	svc, repo, rec := newPoolService(t)
	ctx := context.Background()
	userID := uuid.New()

	pool, err := svc.CreatePool(ctx, "World Cup", domain.Authenticated(userID))
	require.NoError(t, err)
	require.NotNil(t, pool.OwnerID)
	assert.Equal(t, userID, *pool.OwnerID)

	details, err := repo.GetByID(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), details.ParticipantCount)
	require.Len(t, details.Participants, 1)
	assert.Equal(t, userID, details.Participants[0].UserID)
	assert.Equal(t, 1, rec.created["owned"])
}

func TestPoolService_CreatePool_IncrementsCount(t *testing.T) {
	svc, _, _ := newPoolService(t)
	ctx := context.Background()

	before, err := svc.CountPools(ctx)
	require.NoError(t, err)

	_, err = svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	require.NoError(t, err)

	after, err := svc.CountPools(ctx)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}

func TestPoolService_CreatePool_RejectsBlankTitle(t *testing.T) {
	svc, _, _ := newPoolService(t)

	_, err := svc.CreatePool(context.Background(), "   ", domain.Anonymous())
	assert.ErrorIs(t, err, ErrInvalidTitle)
}

func TestPoolService_CreatePool_RetriesOnCodeCollision(t *testing.T) {
	svc, repo, rec := newPoolService(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.NewPool("taken", "TAKEN1", domain.Anonymous())))

	codes := []string{"TAKEN1", "TAKEN1", "FRESH1"}
	svc.generate = func(int) string {
		code := codes[0]
		codes = codes[1:]
		return code
	}

	pool, err := svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	require.NoError(t, err)
	assert.Equal(t, "FRESH1", pool.Code)
	assert.Equal(t, 2, rec.collisions)
}

func TestPoolService_CreatePool_GivesUpAfterAttempts(t *testing.T) {
	repo := repository.NewInMemoryPoolRepository(nil, 4)
	svc := NewPoolService(repo, discardLogger(), nil, PoolOptions{CodeAttempts: 3})
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, domain.NewPool("taken", "TAKEN1", domain.Anonymous())))

	calls := 0
	svc.generate = func(int) string {
		calls++
		return "TAKEN1"
	}

	_, err := svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	assert.ErrorIs(t, err, ErrCodeExhausted)
	assert.Equal(t, 3, calls)
}

func TestPoolService_JoinPool_UnknownCode(t *testing.T) {
	svc, _, rec := newPoolService(t)

	_, err := svc.JoinPool(context.Background(), "NOPE00", uuid.New())
	assert.ErrorIs(t, err, ErrPoolNotFound)
	assert.Equal(t, 1, rec.joins["not_found"])
}

func TestPoolService_JoinPool_FirstJoinerBecomesOwner(t *testing.T) {
	svc, repo, _ := newPoolService(t)
	ctx := context.Background()

	pool, err := svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	require.NoError(t, err)

	first, second := uuid.New(), uuid.New()

	outcome, err := svc.JoinPool(ctx, strings.ToLower(pool.Code), first)
	require.NoError(t, err)
	assert.True(t, outcome.OwnershipClaimed)

	outcome, err = svc.JoinPool(ctx, pool.Code, second)
	require.NoError(t, err)
	assert.False(t, outcome.OwnershipClaimed)

	details, err := repo.GetByID(ctx, pool.ID)
	require.NoError(t, err)
	require.NotNil(t, details.OwnerID)
	assert.Equal(t, first, *details.OwnerID)
	assert.Equal(t, int64(2), details.ParticipantCount)
}

func TestPoolService_JoinPool_AlreadyJoined(t *testing.T) {
	svc, repo, rec := newPoolService(t)
	ctx := context.Background()
	userID := uuid.New()

	pool, err := svc.CreatePool(ctx, "World Cup", domain.Authenticated(userID))
	require.NoError(t, err)

	_, err = svc.JoinPool(ctx, pool.Code, userID)
	assert.ErrorIs(t, err, ErrAlreadyJoined)
	assert.Equal(t, 1, rec.joins["already_joined"])

	details, err := repo.GetByID(ctx, pool.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), details.ParticipantCount)
}

func TestPoolService_JoinPool_BlankCode(t *testing.T) {
	svc, _, _ := newPoolService(t)

	_, err := svc.JoinPool(context.Background(), "  ", uuid.New())
	assert.ErrorIs(t, err, ErrInvalidCode)
}

func TestPoolService_ListUserPools_OnlyMemberPools(t *testing.T) {
	svc, _, _ := newPoolService(t)
	ctx := context.Background()
	member := uuid.New()

	mine, err := svc.CreatePool(ctx, "mine", domain.Authenticated(member))
	require.NoError(t, err)
	joined, err := svc.CreatePool(ctx, "joined", domain.Anonymous())
	require.NoError(t, err)
	_, err = svc.CreatePool(ctx, "someone else's", domain.Authenticated(uuid.New()))
	require.NoError(t, err)

	_, err = svc.JoinPool(ctx, joined.Code, member)
	require.NoError(t, err)

	pools, err := svc.ListUserPools(ctx, member)
	require.NoError(t, err)

	ids := make([]uuid.UUID, 0, len(pools))
	for _, p := range pools {
		ids = append(ids, p.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{mine.ID, joined.ID}, ids)
}

func TestPoolService_GetPool_NotFound(t *testing.T) {
	svc, _, _ := newPoolService(t)

	_, err := svc.GetPool(context.Background(), uuid.New())
	assert.ErrorIs(t, err, ErrPoolNotFound)
}

type failingPoolRepository struct {
	repository.PoolRepository
	err error
}

func (r failingPoolRepository) Join(context.Context, string, uuid.UUID) (*domain.JoinOutcome, error) {
	return nil, r.err
}

func (r failingPoolRepository) Create(context.Context, *domain.Pool) error {
	return r.err
}

func TestPoolService_StorageErrorsPropagate(t *testing.T) {
	boom := errors.New("connection reset")
	svc := NewPoolService(failingPoolRepository{err: boom}, discardLogger(), nil, PoolOptions{})
	ctx := context.Background()

	_, err := svc.JoinPool(ctx, "AB12CD", uuid.New())
	assert.ErrorIs(t, err, boom)

	_, err = svc.CreatePool(ctx, "World Cup", domain.Anonymous())
	assert.ErrorIs(t, err, boom)
}
