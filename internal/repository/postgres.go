package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smallbiznis/prepquiz/internal/domain"
)

const uniqueViolation = "23505"

var _ UserRepository = (*PostgresUserRepo)(nil)

// PostgresUserRepo implements UserRepository on a users table.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

const selectUserByEmailSQL = `SELECT id, name, email, password_hash, created_at FROM users WHERE email = $1`

func (r *PostgresUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	var user domain.User
	err := r.db.QueryRow(ctx, selectUserByEmailSQL, email).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.PasswordHash,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (id, name, email, password_hash)
VALUES ($1, $2, $3, $4)
RETURNING created_at`

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	err := r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Name,
		user.Email,
		user.PasswordHash,
	).Scan(&user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.User{}, fmt.Errorf("create user: %w", ErrDuplicateEmail)
		}
		return domain.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}
