package converter

import (
	"time"

	"github.com/google/uuid"
	"github.com/immxrtalbeast/bolao/internal/domain"
)

type PoolResponse struct {
	ID               uuid.UUID             `json:"id"`
	Title            string                `json:"title"`
	Code             string                `json:"code"`
	CreatedAt        time.Time             `json:"createdAt"`
	OwnerID          *uuid.UUID            `json:"ownerId"`
	Owner            *OwnerResponse        `json:"owner"`
	Participants     []ParticipantResponse `json:"participants"`
	ParticipantCount int64                 `json:"participantCount"`
}

type OwnerResponse struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

type ParticipantResponse struct {
	ID   uuid.UUID               `json:"id"`
	User ParticipantUserResponse `json:"user"`
}

type ParticipantUserResponse struct {
	AvatarURL *string `json:"avatarUrl"`
}

func PoolToApi(p *domain.PoolDetails) *PoolResponse {
	if p == nil {
		return nil
	}

	participants := make([]ParticipantResponse, 0, len(p.Participants))
	for _, participant := range p.Participants {
		participants = append(participants, ParticipantResponse{
			ID:   participant.ID,
			User: ParticipantUserResponse{AvatarURL: participant.AvatarURL},
		})
	}

	resp := &PoolResponse{
		ID:               p.ID,
		Title:            p.Title,
		Code:             p.Code,
		CreatedAt:        p.CreatedAt,
		OwnerID:          p.OwnerID,
		Participants:     participants,
		ParticipantCount: p.ParticipantCount,
	}
	if p.Owner != nil {
		resp.Owner = &OwnerResponse{ID: p.Owner.ID, Name: p.Owner.Name}
	}
	return resp
}

func PoolsToApi(pools []*domain.PoolDetails) []*PoolResponse {
	result := make([]*PoolResponse, 0, len(pools))
	for _, p := range pools {
		result = append(result, PoolToApi(p))
	}
	return result
}
