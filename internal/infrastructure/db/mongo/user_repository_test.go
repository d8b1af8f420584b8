package mongo

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

func TestDocRoundTrip(t *testing.T) {
	login := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	u := &domain.User{
		ID:                "u-1",
		Email:             "ann@example.com",
		Nickname:          "ann",
		GitHubProfileURL:  "https://github.com/ann",
		Role:              domain.RoleManager,
		EmailVerified:     true,
		VerificationToken: "tok",
		HashedPassword:    "hash",
		LastLoginAt:       &login,
		CreatedAt:         login,
		UpdatedAt:         login,
	}

	got := toDoc(u).toDomain()
	if *got.LastLoginAt != login || got.Role != domain.RoleManager || got.VerificationToken != "tok" {
		t.Fatalf("unexpected round trip: %+v", got)
	}
	if got.GitHubProfileURL != u.GitHubProfileURL || got.HashedPassword != "hash" {
		t.Fatalf("lost fields: %+v", got)
	}
}

func dupWriteError(t *testing.T, keyPattern bson.D, msg string) mongo.WriteException {
	t.Helper()
	raw, err := bson.Marshal(bson.D{
		{Key: "index", Value: 0},
		{Key: "code", Value: 11000},
		{Key: "keyPattern", Value: keyPattern},
		{Key: "errmsg", Value: msg},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: msg, Raw: raw}}}
}

func TestDuplicateError_KeyPattern(t *testing.T) {
	nick := dupWriteError(t, bson.D{{Key: "nickname", Value: 1}}, "E11000 duplicate key error collection: app.users")
	if err := duplicateError(nick); !errors.Is(err, domain.ErrNicknameExists) {
		t.Fatalf("expected ErrNicknameExists, got %v", err)
	}

	// An email value that happens to contain "nickname" must not be mistaken
	// for a nickname clash.
	email := dupWriteError(t, bson.D{{Key: "email", Value: 1}},
		`E11000 duplicate key error collection: app.users index: email_1 dup key: { email: "nickname@example.com" }`)
	if err := duplicateError(email); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}

	wrapped := fmt.Errorf("insert: %w", nick)
	if err := duplicateError(wrapped); !errors.Is(err, domain.ErrNicknameExists) {
		t.Fatalf("expected ErrNicknameExists through wrapping, got %v", err)
	}
}

func TestDuplicateError_IndexNameFallback(t *testing.T) {
	nick := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error collection: users index: nickname_1 dup key: { nickname: \"ann\" }"}}}
	if err := duplicateError(nick); !errors.Is(err, domain.ErrNicknameExists) {
		t.Fatalf("expected ErrNicknameExists, got %v", err)
	}

	email := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key error collection: users index: email_1 dup key: { email: \"nickname@example.com\" }"}}}
	if err := duplicateError(email); !errors.Is(err, domain.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}
