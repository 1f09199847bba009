package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
)

type participantKey struct {
	poolID uuid.UUID
	userID uuid.UUID
}

// InMemoryPoolRepository keeps pools in process memory. It resolves owner
// names and avatars through the user repository it is given.
type InMemoryPoolRepository struct {
	mu           sync.RWMutex
	pools        map[uuid.UUID]*domain.Pool
	codes        map[string]uuid.UUID
	participants map[uuid.UUID][]*domain.Participant
	members      map[participantKey]struct{}
	users        *InMemoryUserRepository
	previewSize  int
}

func NewInMemoryPoolRepository(users *InMemoryUserRepository, previewSize int) *InMemoryPoolRepository {
	if previewSize <= 0 {
		previewSize = defaultPreviewSize
	}
	if users == nil {
		users = NewInMemoryUserRepository()
	}
	return &InMemoryPoolRepository{
		pools:        make(map[uuid.UUID]*domain.Pool),
		codes:        make(map[string]uuid.UUID),
		participants: make(map[uuid.UUID][]*domain.Participant),
		members:      make(map[participantKey]struct{}),
		users:        users,
		previewSize:  previewSize,
	}
}

func (r *InMemoryPoolRepository) Create(ctx context.Context, pool *domain.Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.codes[pool.Code]; ok {
		return ErrPoolCodeExists
	}

	stored := clonePool(pool)
	r.pools[stored.ID] = stored
	r.codes[stored.Code] = stored.ID

	if stored.OwnerID != nil {
		r.addParticipantLocked(domain.NewParticipant(stored.ID, *stored.OwnerID))
	}
	return nil
}

func (r *InMemoryPoolRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.pools)), nil
}

func (r *InMemoryPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PoolDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	pool, ok := r.pools[id]
	if !ok {
		return nil, ErrPoolNotFound
	}

	return r.detailsLocked(pool), nil
}

func (r *InMemoryPoolRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.PoolDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*domain.PoolDetails, 0)
	for _, pool := range r.pools {
		if _, ok := r.members[participantKey{poolID: pool.ID, userID: userID}]; !ok {
			continue
		}
		result = append(result, r.detailsLocked(pool))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *InMemoryPoolRepository) Join(ctx context.Context, code string, userID uuid.UUID) (*domain.JoinOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	poolID, ok := r.codes[code]
	if !ok {
		return nil, ErrPoolNotFound
	}
	pool := r.pools[poolID]

	if _, ok := r.members[participantKey{poolID: poolID, userID: userID}]; ok {
		return nil, ErrAlreadyJoined
	}

	claimed := false
	if pool.OwnerID == nil {
		owner := userID
		pool.OwnerID = &owner
		claimed = true
	}

	participant := domain.NewParticipant(poolID, userID)
	r.addParticipantLocked(participant)

	return &domain.JoinOutcome{
		Pool:             clonePool(pool),
		Participant:      participant,
		OwnershipClaimed: claimed,
	}, nil
}

func (r *InMemoryPoolRepository) addParticipantLocked(p *domain.Participant) {
	r.participants[p.PoolID] = append(r.participants[p.PoolID], p)
	r.members[participantKey{poolID: p.PoolID, userID: p.UserID}] = struct{}{}
}

func (r *InMemoryPoolRepository) detailsLocked(pool *domain.Pool) *domain.PoolDetails {
	participants := r.participants[pool.ID]

	limit := len(participants)
	if limit > r.previewSize {
		limit = r.previewSize
	}

	previews := make([]domain.ParticipantPreview, 0, limit)
	for _, p := range participants[:limit] {
		preview := domain.ParticipantPreview{ID: p.ID, UserID: p.UserID}
		if user, ok := r.users.lookup(p.UserID); ok && user.AvatarURL != "" {
			avatar := user.AvatarURL
			preview.AvatarURL = &avatar
		}
		previews = append(previews, preview)
	}

	details := &domain.PoolDetails{
		Pool:             *clonePool(pool),
		Participants:     previews,
		ParticipantCount: int64(len(participants)),
	}
	if pool.OwnerID != nil {
		if owner, ok := r.users.lookup(*pool.OwnerID); ok {
			details.Owner = &domain.UserSummary{ID: owner.ID, Name: owner.Name}
		}
	}
	return details
}

func clonePool(pool *domain.Pool) *domain.Pool {
	cp := *pool
	if pool.OwnerID != nil {
		id := *pool.OwnerID
		cp.OwnerID = &id
	}
	return &cp
}

type InMemoryUserRepository struct {
	mu     sync.RWMutex
	users  map[uuid.UUID]*domain.User
	emails map[string]uuid.UUID
}

func NewInMemoryUserRepository() *InMemoryUserRepository {
	return &InMemoryUserRepository{
		users:  make(map[uuid.UUID]*domain.User),
		emails: make(map[string]uuid.UUID),
	}
}

func (r *InMemoryUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if user.Email != "" {
		if _, ok := r.emails[user.Email]; ok {
			return ErrUserEmailExists
		}
		r.emails[user.Email] = user.ID
	}

	cp := *user
	r.users[user.ID] = &cp
	return nil
}

func (r *InMemoryUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	user, ok := r.lookup(id)
	if !ok {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (r *InMemoryUserRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return int64(len(r.users)), nil
}

func (r *InMemoryUserRepository) lookup(id uuid.UUID) (*domain.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[id]
	if !ok {
		return nil, false
	}
	cp := *user
	return &cp, true
}
