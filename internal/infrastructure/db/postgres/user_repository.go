package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/99minutos/user-accounts/internal/core/domain"
)

const (
	uniqueViolation    = "23505"
	emailConstraint    = "users_email_key"
	nicknameConstraint = "users_nickname_key"
	userColumns        = `id, email, nickname, first_name, last_name, bio, profile_picture_url, linkedin_profile_url, github_profile_url, role, is_professional, email_verified, verification_token, is_locked, hashed_password, last_login_at, created_at, updated_at`
)

// UserRepository implements ports.UserRepository on PostgreSQL.
type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*domain.User, error) {
	var (
		u         domain.User
		role      string
		lastLogin sql.NullTime
	)
	err := row.Scan(
		&u.ID, &u.Email, &u.Nickname, &u.FirstName, &u.LastName, &u.Bio,
		&u.ProfilePictureURL, &u.LinkedInProfileURL, &u.GitHubProfileURL,
		&role, &u.IsProfessional, &u.EmailVerified, &u.VerificationToken,
		&u.IsLocked, &u.HashedPassword, &lastLogin, &u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	u.Role = domain.Role(role)
	if lastLogin.Valid {
		t := lastLogin.Time.UTC()
		u.LastLoginAt = &t
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return &u, nil
}

// GetByID treats an id that is not a UUID as unknown; the column type would
// otherwise reject it with a query error.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if uuid.Validate(id) != nil {
		return nil, domain.ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
}

func (r *UserRepository) GetByNickname(ctx context.Context, nickname string) (*domain.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE nickname = $1`, nickname)
}

func (r *UserRepository) GetByVerificationToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domain.ErrUserNotFound
	}
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE verification_token = $1`, token)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	u, err := scanUser(r.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Nickname, u.FirstName, u.LastName, u.Bio,
		u.ProfilePictureURL, u.LinkedInProfileURL, u.GitHubProfileURL,
		string(u.Role), u.IsProfessional, u.EmailVerified, u.VerificationToken,
		u.IsLocked, u.HashedPassword, nullTime(u), u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (r *UserRepository) Update(ctx context.Context, u *domain.User) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	query := `UPDATE users SET
		email = $2, nickname = $3, first_name = $4, last_name = $5, bio = $6,
		profile_picture_url = $7, linkedin_profile_url = $8, github_profile_url = $9,
		role = $10, is_professional = $11, email_verified = $12, verification_token = $13,
		is_locked = $14, hashed_password = $15, last_login_at = $16, updated_at = $17
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.Nickname, u.FirstName, u.LastName, u.Bio,
		u.ProfilePictureURL, u.LinkedInProfileURL, u.GitHubProfileURL,
		string(u.Role), u.IsProfessional, u.EmailVerified, u.VerificationToken,
		u.IsLocked, u.HashedPassword, nullTime(u), u.UpdatedAt,
	)
	if err != nil {
		return mapWriteError(err)
	}
	return requireAffected(res)
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if uuid.Validate(id) != nil {
		return domain.ErrUserNotFound
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return requireAffected(res)
}

func (r *UserRepository) List(ctx context.Context, skip, limit int) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := r.db.QueryContext(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at, id LIMIT $1 OFFSET $2`, limit, skip)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0, limit)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return users, nil
}

func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func nullTime(u *domain.User) sql.NullTime {
	if u.LastLoginAt == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *u.LastLoginAt, Valid: true}
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// mapWriteError translates unique violations into domain conflicts.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		switch pgErr.ConstraintName {
		case nicknameConstraint:
			return domain.ErrNicknameExists
		case emailConstraint:
			return domain.ErrEmailExists
		}
	}
	return fmt.Errorf("db error: %w", err)
}
