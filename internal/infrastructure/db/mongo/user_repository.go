package mongo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

const usersCollection = "users"

const (
	emailIndex    = "email_1"
	nicknameIndex = "nickname_1"
)

// UserRepository implements ports.UserRepository using MongoDB.
type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection)}
}

type mongoUser struct {
	ID                 string     `bson:"_id"`
	Email              string     `bson:"email"`
	Nickname           string     `bson:"nickname"`
	FirstName          string     `bson:"first_name,omitempty"`
	LastName           string     `bson:"last_name,omitempty"`
	Bio                string     `bson:"bio,omitempty"`
	ProfilePictureURL  string     `bson:"profile_picture_url,omitempty"`
	LinkedInProfileURL string     `bson:"linkedin_profile_url,omitempty"`
	GitHubProfileURL   string     `bson:"github_profile_url,omitempty"`
	Role               string     `bson:"role"`
	IsProfessional     bool       `bson:"is_professional"`
	EmailVerified      bool       `bson:"email_verified"`
	VerificationToken  string     `bson:"verification_token,omitempty"`
	IsLocked           bool       `bson:"is_locked"`
	HashedPassword     string     `bson:"hashed_password"`
	LastLoginAt        *time.Time `bson:"last_login_at,omitempty"`
	CreatedAt          time.Time  `bson:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at"`
}

func toDoc(u *domain.User) mongoUser {
	return mongoUser{
		ID:                 u.ID,
		Email:              u.Email,
		Nickname:           u.Nickname,
		FirstName:          u.FirstName,
		LastName:           u.LastName,
		Bio:                u.Bio,
		ProfilePictureURL:  u.ProfilePictureURL,
		LinkedInProfileURL: u.LinkedInProfileURL,
		GitHubProfileURL:   u.GitHubProfileURL,
		Role:               string(u.Role),
		IsProfessional:     u.IsProfessional,
		EmailVerified:      u.EmailVerified,
		VerificationToken:  u.VerificationToken,
		IsLocked:           u.IsLocked,
		HashedPassword:     u.HashedPassword,
		LastLoginAt:        u.LastLoginAt,
		CreatedAt:          u.CreatedAt.UTC(),
		UpdatedAt:          u.UpdatedAt.UTC(),
	}
}

func (m mongoUser) toDomain() *domain.User {
	return &domain.User{
		ID:                 m.ID,
		Email:              m.Email,
		Nickname:           m.Nickname,
		FirstName:          m.FirstName,
		LastName:           m.LastName,
		Bio:                m.Bio,
		ProfilePictureURL:  m.ProfilePictureURL,
		LinkedInProfileURL: m.LinkedInProfileURL,
		GitHubProfileURL:   m.GitHubProfileURL,
		Role:               domain.Role(m.Role),
		IsProfessional:     m.IsProfessional,
		EmailVerified:      m.EmailVerified,
		VerificationToken:  m.VerificationToken,
		IsLocked:           m.IsLocked,
		HashedPassword:     m.HashedPassword,
		LastLoginAt:        m.LastLoginAt,
		CreatedAt:          m.CreatedAt.UTC(),
		UpdatedAt:          m.UpdatedAt.UTC(),
	}
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"nickname": nickname})
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.findOne(ctx, bson.M{"verification_token": token})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var doc mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return doc.toDomain(), nil
}

// Create inserts a new user document.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, toDoc(user)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// Update replaces the stored document with user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": user.ID}, toDoc(user))
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return duplicateError(err)
		}
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// List returns a page of users ordered by creation time.
func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: 1}, {Key: "_id", Value: 1}}).
		SetSkip(int64(skip)).
		SetLimit(int64(limit))

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer cur.Close(ctx)

	var docs []mongoUser
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode users: %w", err)
	}

	out := make([]*domain.User, len(docs))
	for i, d := range docs {
		out[i] = d.toDomain()
	}
	return out, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

// EnsureIndexes creates the uniqueness and lookup indexes on the users collection.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(emailIndex)},
		{Keys: bson.D{{Key: "nickname", Value: 1}}, Options: options.Index().SetUnique(true).SetName(nicknameIndex)},
		{Keys: bson.D{{Key: "verification_token", Value: 1}}, Options: options.Index().SetSparse(true)},
		{Keys: bson.D{{Key: "created_at", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexes)
	return err
}

// duplicateError maps a duplicate key error to the violated uniqueness rule.
// The server names the offending index in keyPattern; older servers only
// carry it in the message.
func duplicateError(err error) error {
	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			if violatesNickname(e.Raw, e.Message) {
				return domain.ErrNicknameExists
			}
		}
		return domain.ErrEmailExists
	}
	if violatesNickname(nil, err.Error()) {
		return domain.ErrNicknameExists
	}
	return domain.ErrEmailExists
}

func violatesNickname(raw bson.Raw, msg string) bool {
	if pattern, err := raw.LookupErr("keyPattern"); err == nil {
		if doc, ok := pattern.DocumentOK(); ok {
			_, err := doc.LookupErr("nickname")
			return err == nil
		}
	}
	return strings.Contains(msg, "index: "+nicknameIndex+" ")
}
