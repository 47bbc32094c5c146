package persistence

import (
	"context"
	"errors"
	"fmt"

	"shifttrack/internal/account/application/ports/out"
	"shifttrack/internal/account/domain"
	"shifttrack/internal/shared/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type userPgRepository struct {
	pool *pgxpool.Pool
	log  *logger.Logger
}

func NewUserPgRepository(pool *pgxpool.Pool, log *logger.Logger) out.UserRepository {
	return &userPgRepository{pool: pool, log: log}
}

func (r *userPgRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, username, role, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Role,
		user.PasswordHash,
		user.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "users_username_key" {
			return domain.ErrUsernameTaken
		}
		r.log.Error(logger.Entry{
			Action:  "insert_user_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
		})
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (r *userPgRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	query := `
		SELECT id, username, role, password_hash, created_at
		FROM users
		WHERE username = $1
	`

	var u domain.User
	err := r.pool.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	u.CreatedAt = u.CreatedAt.UTC()
	return &u, nil
}

func (r *userPgRepository) List(ctx context.Context, role string) ([]*domain.User, error) {
	query := `
		SELECT id, username, role, password_hash, created_at
		FROM users
		WHERE ($1 = '' OR role = $1)
		ORDER BY created_at, username
	`

	rows, err := r.pool.Query(ctx, query, role)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Username, &u.Role, &u.PasswordHash, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		u.CreatedAt = u.CreatedAt.UTC()
		users = append(users, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}
	return users, nil
}
