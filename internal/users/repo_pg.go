package users

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

const pgUniqueViolation = "23505"

type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, user User) error {
	const query = `
INSERT INTO users (id, name, email, password_hash, provider, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, now(), now())`
	_, err := r.DB.ExecContext(ctx, query,
		user.ID,
		user.Name,
		normalizeEmail(user.Email),
		nullableString(user.PasswordHash),
		providerOrDefault(user.Provider),
	)
	if isUniqueViolation(err) {
		return ErrEmailTaken
	}
	return err
}

const selectUser = `
SELECT id, name, email, password_hash, provider, created_at, updated_at
FROM users
`

func (r *PGRepo) GetByID(ctx context.Context, userID string) (User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectUser+"WHERE id = $1\nLIMIT 1", userID))
}

func (r *PGRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	return r.scanOne(r.DB.QueryRowContext(ctx, selectUser+"WHERE lower(email) = $1\nLIMIT 1", normalizeEmail(email)))
}

func (r *PGRepo) UpsertByEmail(ctx context.Context, user User) (User, error) {
	const query = `
INSERT INTO users (id, name, email, password_hash, provider, created_at, updated_at)
VALUES ($1, $2, $3, NULL, $4, now(), now())
ON CONFLICT ((lower(email))) DO UPDATE SET
  name = COALESCE(NULLIF(EXCLUDED.name, ''), users.name),
  updated_at = now()
RETURNING id, name, email, password_hash, provider, created_at, updated_at`
	return r.scanOne(r.DB.QueryRowContext(ctx, query,
		user.ID,
		user.Name,
		normalizeEmail(user.Email),
		providerOrDefault(user.Provider),
	))
}

func (r *PGRepo) scanOne(row *sql.Row) (User, error) {
	var user User
	var passwordHash sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&passwordHash,
		&user.Provider,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, err
	}
	if passwordHash.Valid {
		user.PasswordHash = passwordHash.String
	}
	return user, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

func providerOrDefault(provider string) string {
	if provider == "" {
		return ProviderPassword
	}
	return provider
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

var _ Repo = (*PGRepo)(nil)
