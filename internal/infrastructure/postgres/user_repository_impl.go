package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oksasatya/suraksha-api/internal/domain/entity"
	"github.com/oksasatya/suraksha-api/internal/domain/repository"
)

const uniqueViolation = "23505"

const userColumns = `id, username, email, password_hash, firstname, lastname,
		profile_image, email_verified_at, created_at, updated_at, deleted_at`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, password_hash, firstname, lastname, profile_image)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Password, u.Firstname, u.Lastname, u.ProfileImage)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return mapWriteErr(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1 AND deleted_at IS NULL
	`, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.getOne(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE lower(email) = lower($1) AND deleted_at IS NULL
	`, email)
}

func (r *UserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE lower(username) = lower($1) AND deleted_at IS NULL)`, username).Scan(&exists)
	return exists, err
}

func (r *UserRepository) UpdateProfile(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()
	return r.exec(ctx, `
		UPDATE users
		SET firstname = $1, lastname = $2, updated_at = $3
		WHERE id = $4 AND deleted_at IS NULL
	`, u.Firstname, u.Lastname, u.UpdatedAt, u.ID)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return r.exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, hash, id)
}

func (r *UserRepository) UpdateProfileImage(ctx context.Context, id string, image *string) error {
	return r.exec(ctx, `
		UPDATE users SET profile_image = $1, updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, image, id)
}

func (r *UserRepository) MarkEmailVerified(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET email_verified_at = COALESCE(email_verified_at, $1), updated_at = now()
		WHERE id = $2 AND deleted_at IS NULL
	`, at, id)
}

func (r *UserRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	return r.exec(ctx, `
		UPDATE users SET deleted_at = $1, updated_at = $1
		WHERE id = $2 AND deleted_at IS NULL
	`, at, id)
}

func (r *UserRepository) getOne(ctx context.Context, query string, arg any) (*entity.User, error) {
	u := &entity.User{}
	row := r.pool.QueryRow(ctx, query, arg)
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.Firstname, &u.Lastname,
		&u.ProfileImage, &u.EmailVerifiedAt, &u.CreatedAt, &u.UpdatedAt, &u.DeletedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return u, nil
}

func (r *UserRepository) exec(ctx context.Context, query string, args ...any) error {
	res, err := r.pool.Exec(ctx, query, args...)
	if err != nil {
		return mapWriteErr(err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func mapWriteErr(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return repository.ErrDuplicate
	}
	return err
}

var _ repository.UserRepository = (*UserRepository)(nil)
