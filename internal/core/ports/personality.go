package ports

import (
	"context"

	"github.com/persome/account-system/internal/core/domain"
)

// ResultRepository defines persistence for personality results.
type ResultRepository interface {
	Insert(ctx context.Context, result *domain.PersonalityResult) error
	FindByID(ctx context.Context, id string) (*domain.PersonalityResult, error)
	ListByUser(ctx context.Context, userID string) ([]*domain.PersonalityResult, error)
}

// SaveResultInput carries a completed assessment. The MBTI type arrives
// already computed; scoring happens on the client.
type SaveResultInput struct {
	UserID            string
	MbtiType          string
	AIDescription     string
	StaticDescription string
}

// PersonalityService persists and serves completed MBTI assessments.
type PersonalityService interface {
	SaveResult(ctx context.Context, in SaveResultInput) (*domain.PersonalityResult, error)
	GetResult(ctx context.Context, userID, resultID string) (*domain.PersonalityResult, error)
	ListResults(ctx context.Context, userID string) ([]*domain.PersonalityResult, error)
}
