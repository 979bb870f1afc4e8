package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
)

// PersonalityService persists and serves completed MBTI assessments. Scoring
// happens on the client; this service only validates the computed type code.
type PersonalityService struct {
	results ports.ResultRepository
	log     zerolog.Logger
}

func NewPersonalityService(results ports.ResultRepository, log zerolog.Logger) *PersonalityService {
	return &PersonalityService{
		results: results,
		log:     log.With().Str("component", "personality").Logger(),
	}
}

func (s *PersonalityService) SaveResult(ctx context.Context, in ports.SaveResultInput) (*domain.PersonalityResult, error) {
	if in.UserID == "" || !domain.IsValidMbtiType(in.MbtiType) || in.StaticDescription == "" {
		return nil, domain.NewFault(domain.FaultValidation, "invalid personality result", nil)
	}

	result := &domain.PersonalityResult{
		ID:                uuid.NewString(),
		UserID:            in.UserID,
		MbtiType:          in.MbtiType,
		AIDescription:     in.AIDescription,
		StaticDescription: in.StaticDescription,
		CreatedAt:         time.Now().UTC(),
	}

	if err := s.results.Insert(ctx, result); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", in.UserID).Str("mbti_type", in.MbtiType).Msg("personality result saved")
	return result, nil
}

// GetResult returns one result, scoped to its owner.
func (s *PersonalityService) GetResult(ctx context.Context, userID, resultID string) (*domain.PersonalityResult, error) {
	result, err := s.results.FindByID(ctx, resultID)
	if err != nil {
		return nil, err
	}
	if result.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return result, nil
}

func (s *PersonalityService) ListResults(ctx context.Context, userID string) ([]*domain.PersonalityResult, error) {
	return s.results.ListByUser(ctx, userID)
}
