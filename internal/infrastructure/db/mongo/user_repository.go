package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/persome/account-system/internal/core/domain"
	"github.com/persome/account-system/internal/core/ports"
)

const usersCollection = "users"

// UserRepository persists user accounts in MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID              string            `bson:"_id"`
	FullName        string            `bson:"full_name"`
	Username        string            `bson:"username"`
	Email           string            `bson:"email"`
	PhoneNumber     string            `bson:"phone_number,omitempty"`
	AvatarURL       string            `bson:"avatar_url,omitempty"`
	Role            string            `bson:"role"`
	PasswordHash    string            `bson:"password_hash"`
	IsEmailVerified bool              `bson:"is_email_verified"`
	IsPhoneVerified bool              `bson:"is_phone_verified"`
	LastLoginAt     int64             `bson:"last_login_at,omitempty"`
	IsActive        bool              `bson:"is_active"`
	Timezone        string            `bson:"timezone,omitempty"`
	Locale          string            `bson:"locale,omitempty"`
	Preferences     map[string]string `bson:"preferences,omitempty"`
	CreatedAt       int64             `bson:"created_at"`
	UpdatedAt       int64             `bson:"updated_at"`
}

func toMongoUser(rec *ports.UserRecord) mongoUser {
	u := rec.User
	return mongoUser{
		ID:              u.ID,
		FullName:        u.FullName,
		Username:        u.Username,
		Email:           u.Email,
		PhoneNumber:     u.PhoneNumber,
		AvatarURL:       u.AvatarURL,
		Role:            string(u.Role),
		PasswordHash:    rec.PasswordHash,
		IsEmailVerified: u.IsEmailVerified,
		IsPhoneVerified: u.IsPhoneVerified,
		LastLoginAt:     u.LastLoginAt,
		IsActive:        u.IsActive,
		Timezone:        u.Timezone,
		Locale:          u.Locale,
		Preferences:     u.Preferences,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
}

func (m mongoUser) toRecord() *ports.UserRecord {
	return &ports.UserRecord{
		User: domain.UserData{
			ID:              m.ID,
			FullName:        m.FullName,
			Username:        m.Username,
			Email:           m.Email,
			PhoneNumber:     m.PhoneNumber,
			AvatarURL:       m.AvatarURL,
			Role:            domain.ParseRole(m.Role),
			IsEmailVerified: m.IsEmailVerified,
			IsPhoneVerified: m.IsPhoneVerified,
			LastLoginAt:     m.LastLoginAt,
			IsActive:        m.IsActive,
			Timezone:        m.Timezone,
			Locale:          m.Locale,
			Preferences:     m.Preferences,
			CreatedAt:       m.CreatedAt,
			UpdatedAt:       m.UpdatedAt,
		},
		PasswordHash: m.PasswordHash,
	}
}

func (r *UserRepository) Create(ctx context.Context, rec *ports.UserRecord) (*ports.UserRecord, error) {
	count, err := r.coll.CountDocuments(ctx, bson.M{"$or": bson.A{
		bson.M{"username": rec.User.Username},
		bson.M{"email": rec.User.Email},
	}})
	if err != nil {
		return nil, fmt.Errorf("check user exists: %w", err)
	}
	if count > 0 {
		return nil, domain.ErrUserExists
	}

	if _, err := r.coll.InsertOne(ctx, toMongoUser(rec)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return rec, nil
}

// FindByIdentifier resolves a username or email to a record.
func (r *UserRepository) FindByIdentifier(ctx context.Context, identifier string) (*ports.UserRecord, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"username": identifier},
		bson.M{"email": identifier},
	}}
	return r.findOne(ctx, filter)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*ports.UserRecord, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*ports.UserRecord, error) {
	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return mu.toRecord(), nil
}

// UpdateUser replaces the stored snapshot wholesale, preserving credentials.
func (r *UserRepository) UpdateUser(ctx context.Context, user domain.UserData) error {
	update := bson.M{"$set": bson.M{
		"full_name":         user.FullName,
		"phone_number":      user.PhoneNumber,
		"avatar_url":        user.AvatarURL,
		"role":              string(user.Role),
		"is_email_verified": user.IsEmailVerified,
		"is_phone_verified": user.IsPhoneVerified,
		"last_login_at":     user.LastLoginAt,
		"is_active":         user.IsActive,
		"timezone":          user.Timezone,
		"locale":            user.Locale,
		"preferences":       user.Preferences,
		"updated_at":        user.UpdatedAt,
	}}

	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": user.ID}, update)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
