package postgres

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pressly/goose/v3"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

const testID = "6f1c2f4e-8a1b-4c1e-9d2a-3b4c5d6e7f80"

var columns = []string{
	"id", "email", "nickname", "first_name", "last_name", "bio",
	"profile_picture_url", "linkedin_profile_url", "github_profile_url",
	"role", "is_professional", "email_verified", "verification_token",
	"is_locked", "hashed_password", "last_login_at", "created_at", "updated_at",
}

func newRepoWithMock(t *testing.T) (*UserRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewUserRepository(db), mock, db
}

func userRow(id, email, nickname string, lastLogin any) *sqlmock.Rows {
	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return sqlmock.NewRows(columns).AddRow(
		id, email, nickname, "Ann", "Lee", "", "", "", "",
		"AUTHENTICATED", false, true, "", false, "hash", lastLogin, created, created,
	)
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	login := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(testID).
		WillReturnRows(userRow(testID, "ann@example.com", "ann", login))

	got, err := repo.GetByID(context.Background(), testID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Email != "ann@example.com" || got.Role != domain.RoleAuthenticated || !got.EmailVerified {
		t.Fatalf("unexpected user: %+v", got)
	}
	if got.LastLoginAt == nil || !got.LastLoginAt.Equal(login) {
		t.Fatalf("unexpected last login: %v", got.LastLoginAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestGetByEmail_NullLastLogin(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE email = $1`)).
		WithArgs("ann@example.com").
		WillReturnRows(userRow(testID, "ann@example.com", "ann", nil))

	got, err := repo.GetByEmail(context.Background(), "ann@example.com")
	if err != nil {
		t.Fatalf("GetByEmail error: %v", err)
	}
	if got.LastLoginAt != nil {
		t.Fatalf("expected nil LastLoginAt, got %v", got.LastLoginAt)
	}
}

func TestGetByNickname_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE nickname = $1`)).
		WithArgs("ghost").
		WillReturnError(sql.ErrNoRows)

	if _, err := repo.GetByNickname(context.Background(), "ghost"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
}

func TestGetByVerificationToken_EmptyToken(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.GetByVerificationToken(context.Background(), ""); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestGetByID_NotAUUID(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	if _, err := repo.GetByID(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
	if err := repo.Delete(context.Background(), "not-a-uuid"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("no query expected: %v", err)
	}
}

func TestGetByID_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(`FROM users WHERE id = $1`)).
		WithArgs(testID).
		WillReturnError(errors.New("db down"))

	_, err := repo.GetByID(context.Background(), testID)
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^INSERT\s+INTO\s+users\s*\(id,\s*email,.*VALUES\s*\(\$1,.*\$18\)$`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	now := time.Now().UTC()
	u := &domain.User{ID: testID, Email: "ann@example.com", Nickname: "ann", Role: domain.RoleAnonymous, CreatedAt: now, UpdatedAt: now}
	if err := repo.Create(context.Background(), u); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestCreate_UniqueViolations(t *testing.T) {
	cases := map[string]error{
		emailConstraint:    domain.ErrEmailExists,
		nicknameConstraint: domain.ErrNicknameExists,
	}
	for constraint, want := range cases {
		repo, mock, db := newRepoWithMock(t)

		mock.ExpectExec(`INSERT\s+INTO\s+users`).
			WillReturnError(&pgconn.PgError{Code: uniqueViolation, ConstraintName: constraint})

		err := repo.Create(context.Background(), &domain.User{ID: "u-2"})
		if !errors.Is(err, want) {
			t.Fatalf("%s: want %v, got %v", constraint, want, err)
		}
		db.Close()
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET.*WHERE\s+id\s*=\s*\$1$`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Update(context.Background(), &domain.User{ID: "missing"}); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	login := time.Now().UTC()
	mock.ExpectExec(`(?s)^UPDATE\s+users\s+SET`).
		WithArgs(testID, "ann@example.com", "ann", "", "", "", "", "", "",
			"ADMIN", false, true, "", true, "hash", login, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	u := &domain.User{
		ID: testID, Email: "ann@example.com", Nickname: "ann", Role: domain.RoleAdmin,
		EmailVerified: true, IsLocked: true, HashedPassword: "hash", LastLoginAt: &login,
	}
	if err := repo.Update(context.Background(), u); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestDelete(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM users WHERE id = $1`)).
		WithArgs(testID).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), testID); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), testID); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("want domain.ErrUserNotFound, got %v", err)
	}
}

func TestListAndCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	created := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(columns).
		AddRow(testID, "a@example.com", "a", "", "", "", "", "", "", "ADMIN", false, true, "", false, "h", nil, created, created).
		AddRow("u-2", "b@example.com", "b", "", "", "", "", "", "", "ANONYMOUS", false, false, "tok", false, "h", nil, created, created)
	mock.ExpectQuery(regexp.QuoteMeta(`ORDER BY created_at, id LIMIT $1 OFFSET $2`)).
		WithArgs(10, 20).
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COUNT(*) FROM users`)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(22)))

	users, err := repo.List(context.Background(), 20, 10)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(users) != 2 || users[1].VerificationToken != "tok" || users[1].Role != domain.RoleAnonymous {
		t.Fatalf("unexpected users: %+v", users)
	}

	n, err := repo.Count(context.Background())
	if err != nil || n != 22 {
		t.Fatalf("Count = %d, %v", n, err)
	}
}

func TestRunMigrations_UsesEmbeddedDir(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	orig := gooseUpContext
	t.Cleanup(func() { gooseUpContext = orig })

	var gotDir string
	gooseUpContext = func(_ context.Context, _ *sql.DB, dir string, _ ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}
	if err := RunMigrations(context.Background(), db); err != nil {
		t.Fatalf("RunMigrations error: %v", err)
	}
	if gotDir != "migrations" {
		t.Fatalf("unexpected dir %q", gotDir)
	}

	gooseUpContext = func(context.Context, *sql.DB, string, ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	if err := RunMigrations(context.Background(), db); err == nil {
		t.Fatal("expected migration error")
	}
}

func TestMigrationsEmbedded(t *testing.T) {
	data, err := migrations.ReadFile("migrations/00001_create_users.sql")
	if err != nil {
		t.Fatalf("read embedded migration: %v", err)
	}
	for _, want := range []string{"-- +goose Up", "users_email_key", "users_nickname_key", "-- +goose Down"} {
		if !regexp.MustCompile(regexp.QuoteMeta(want)).Match(data) {
			t.Fatalf("migration missing %q", want)
		}
	}
}
