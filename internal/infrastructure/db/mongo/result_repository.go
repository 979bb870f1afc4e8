package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/persome/account-system/internal/core/domain"
)

const resultsCollection = "personality_results"

// ResultRepository persists completed MBTI assessments in MongoDB.
type ResultRepository struct {
	coll *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{coll: db.Collection(resultsCollection)}
}

type mongoResult struct {
	ID                string    `bson:"_id"`
	UserID            string    `bson:"user_id"`
	MbtiType          string    `bson:"mbti_type"`
	AIDescription     string    `bson:"ai_description,omitempty"`
	StaticDescription string    `bson:"static_description"`
	CreatedAt         time.Time `bson:"created_at"`
}

func (r *ResultRepository) Insert(ctx context.Context, result *domain.PersonalityResult) error {
	doc := mongoResult{
		ID:                result.ID,
		UserID:            result.UserID,
		MbtiType:          result.MbtiType,
		AIDescription:     result.AIDescription,
		StaticDescription: result.StaticDescription,
		CreatedAt:         result.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("insert personality result: %w", err)
	}
	return nil
}

func (r *ResultRepository) FindByID(ctx context.Context, id string) (*domain.PersonalityResult, error) {
	var mr mongoResult
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrResultNotFound
		}
		return nil, fmt.Errorf("find personality result: %w", err)
	}
	return mr.toDomain(), nil
}

// ListByUser returns the user's results, newest first.
func (r *ResultRepository) ListByUser(ctx context.Context, userID string) ([]*domain.PersonalityResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cursor, err := r.coll.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("list personality results: %w", err)
	}
	defer cursor.Close(ctx)

	var results []*domain.PersonalityResult
	for cursor.Next(ctx) {
		var mr mongoResult
		if err := cursor.Decode(&mr); err != nil {
			return nil, fmt.Errorf("decode personality result: %w", err)
		}
		results = append(results, mr.toDomain())
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate personality results: %w", err)
	}
	return results, nil
}

func (m mongoResult) toDomain() *domain.PersonalityResult {
	return &domain.PersonalityResult{
		ID:                m.ID,
		UserID:            m.UserID,
		MbtiType:          m.MbtiType,
		AIDescription:     m.AIDescription,
		StaticDescription: m.StaticDescription,
		CreatedAt:         m.CreatedAt,
	}
}
