package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
	"github.com/immxrtalbeast/bolao/internal/repository/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultPreviewSize = 4

type PostgresPoolRepository struct {
	db          *gorm.DB
	previewSize int
}

func NewPostgresPoolRepository(db *gorm.DB, previewSize int) *PostgresPoolRepository {
	if previewSize <= 0 {
		previewSize = defaultPreviewSize
	}
	return &PostgresPoolRepository{db: db, previewSize: previewSize}
}

func (r *PostgresPoolRepository) Create(ctx context.Context, pool *domain.Pool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if pool == nil {
		return errors.New("pool is nil")
	}

	poolModel := toModelPool(pool)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(poolModel).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrPoolCodeExists
			}
			return err
		}

		if pool.OwnerID == nil {
			return nil
		}

		participant := domain.NewParticipant(pool.ID, *pool.OwnerID)
		return tx.Omit(clause.Associations).Create(toModelParticipant(participant)).Error
	})
}

func (r *PostgresPoolRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Pool{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *PostgresPoolRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.PoolDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var pool model.Pool
	err := r.db.WithContext(ctx).Preload("Owner").First(&pool, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, err
	}

	details, err := r.enrich(ctx, []model.Pool{pool})
	if err != nil {
		return nil, err
	}
	return details[0], nil
}

func (r *PostgresPoolRepository) ListByParticipant(ctx context.Context, userID uuid.UUID) ([]*domain.PoolDetails, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	joined := r.db.Model(&model.Participant{}).Select("pool_id").Where("user_id = ?", userID)

	var pools []model.Pool
	err := r.db.WithContext(ctx).
		Preload("Owner").
		Where("id IN (?)", joined).
		Order("created_at DESC").
		Find(&pools).Error
	if err != nil {
		return nil, err
	}

	return r.enrich(ctx, pools)
}

func (r *PostgresPoolRepository) Join(ctx context.Context, code string, userID uuid.UUID) (*domain.JoinOutcome, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var outcome *domain.JoinOutcome

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// the row lock serialises concurrent joins of the same pool
		var pool model.Pool
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pool, "code = ?", code).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPoolNotFound
			}
			return err
		}

		var joined int64
		err = tx.Model(&model.Participant{}).
			Where("pool_id = ? AND user_id = ?", pool.ID, userID).
			Count(&joined).Error
		if err != nil {
			return err
		}
		if joined > 0 {
			return ErrAlreadyJoined
		}

		claimed := false
		if pool.OwnerID == nil {
			res := tx.Model(&model.Pool{}).
				Where("id = ? AND owner_id IS NULL", pool.ID).
				Update("owner_id", userID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 1 {
				claimed = true
				pool.OwnerID = &userID
			}
		}

		participant := domain.NewParticipant(pool.ID, userID)
		if err := tx.Omit(clause.Associations).Create(toModelParticipant(participant)).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadyJoined
			}
			return err
		}

		outcome = &domain.JoinOutcome{
			Pool:             toDomainPool(&pool),
			Participant:      participant,
			OwnershipClaimed: claimed,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return outcome, nil
}

type participantCount struct {
	PoolID uuid.UUID
	Total  int64
}

// enrich attaches the capped participant preview and the total participant
// count to every pool using one query each.
func (r *PostgresPoolRepository) enrich(ctx context.Context, pools []model.Pool) ([]*domain.PoolDetails, error) {
	result := make([]*domain.PoolDetails, 0, len(pools))
	if len(pools) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(pools))
	for i := range pools {
		ids = append(ids, pools[i].ID)
	}

	ranked := r.db.Model(&model.Participant{}).
		Select("participants.*, ROW_NUMBER() OVER (PARTITION BY pool_id ORDER BY created_at, id) AS position").
		Where("pool_id IN ?", ids)

	var previews []model.Participant
	err := r.db.WithContext(ctx).
		Table("(?) AS participants", ranked).
		Where("position <= ?", r.previewSize).
		Order("pool_id, position").
		Preload("User").
		Find(&previews).Error
	if err != nil {
		return nil, err
	}

	var counts []participantCount
	err = r.db.WithContext(ctx).
		Model(&model.Participant{}).
		Select("pool_id, COUNT(*) AS total").
		Where("pool_id IN ?", ids).
		Group("pool_id").
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}

	previewsByPool := make(map[uuid.UUID][]domain.ParticipantPreview, len(pools))
	for i := range previews {
		p := previews[i]
		preview := domain.ParticipantPreview{ID: p.ID, UserID: p.UserID}
		if p.User != nil {
			preview.AvatarURL = p.User.AvatarURL
		}
		previewsByPool[p.PoolID] = append(previewsByPool[p.PoolID], preview)
	}

	countsByPool := make(map[uuid.UUID]int64, len(counts))
	for _, c := range counts {
		countsByPool[c.PoolID] = c.Total
	}

	for i := range pools {
		pool := &pools[i]
		details := &domain.PoolDetails{
			Pool:             *toDomainPool(pool),
			Participants:     previewsByPool[pool.ID],
			ParticipantCount: countsByPool[pool.ID],
		}
		if details.Participants == nil {
			details.Participants = []domain.ParticipantPreview{}
		}
		if pool.Owner != nil {
			details.Owner = &domain.UserSummary{ID: pool.Owner.ID, Name: pool.Owner.Name}
		}
		result = append(result, details)
	}

	return result, nil
}

type PostgresUserRepository struct {
	db *gorm.DB
}

func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if user == nil {
		return errors.New("user is nil")
	}

	userModel := toModelUser(user)

	if err := r.db.WithContext(ctx).Create(userModel).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserEmailExists
		}
		return err
	}
	return nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var user model.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return toDomainUser(&user), nil
}

func (r *PostgresUserRepository) Count(ctx context.Context) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&model.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toModelPool(pool *domain.Pool) *model.Pool {
	var ownerID *uuid.UUID
	if pool.OwnerID != nil {
		id := *pool.OwnerID
		ownerID = &id
	}
	return &model.Pool{
		ID:        pool.ID,
		Title:     pool.Title,
		Code:      pool.Code,
		OwnerID:   ownerID,
		CreatedAt: pool.CreatedAt.UTC(),
	}
}

func toDomainPool(pool *model.Pool) *domain.Pool {
	var ownerID *uuid.UUID
	if pool.OwnerID != nil {
		id := *pool.OwnerID
		ownerID = &id
	}
	return &domain.Pool{
		ID:        pool.ID,
		Title:     pool.Title,
		Code:      pool.Code,
		OwnerID:   ownerID,
		CreatedAt: pool.CreatedAt.UTC(),
	}
}

func toModelParticipant(p *domain.Participant) *model.Participant {
	return &model.Participant{
		ID:        p.ID,
		PoolID:    p.PoolID,
		UserID:    p.UserID,
		CreatedAt: p.CreatedAt.UTC(),
	}
}

func toModelUser(user *domain.User) *model.User {
	return &model.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     optionalString(user.Email),
		AvatarURL: optionalString(user.AvatarURL),
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

func toDomainUser(user *model.User) *domain.User {
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     derefString(user.Email),
		AvatarURL: derefString(user.AvatarURL),
		CreatedAt: user.CreatedAt.UTC(),
		UpdatedAt: user.UpdatedAt.UTC(),
	}
}

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
