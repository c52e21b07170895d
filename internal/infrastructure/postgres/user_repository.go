package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	"github.com/videotube/videotube-api/internal/domain/repository"
)

const uniqueViolation = "23505"

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, fullname, password_hash, avatar_url, cover_image_url, COALESCE(refresh_token, ''), created_at, updated_at`

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.Fullname, &u.Password,
		&u.AvatarURL, &u.CoverImageURL, &u.RefreshToken, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "user not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "user lookup failed", err)
	}
	return u, nil
}

// Create inserts the user. The unique indexes on lower(username) and email are
// the real uniqueness guard; a violation surfaces as a conflict error.
func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO users (username, email, fullname, password_hash, avatar_url, cover_image_url)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Fullname, u.Password, u.AvatarURL, u.CoverImageURL)

	if err := row.Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.KindConflict, "username or email already exists", err)
		}
		return apperr.Wrap(apperr.KindPersistence, "user insert failed", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE id = $1
	`, id))
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)
	`, username))
}

func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*entity.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `
		SELECT `+userColumns+` FROM users
		WHERE lower(username) = lower($1) OR email = $1
	`, identifier))
}

func (r *UserRepository) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE lower(username) = lower($1) OR email = $2
		)
	`, username, email).Scan(&exists)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "existence check failed", err)
	}
	return exists, nil
}

func (r *UserRepository) EmailTaken(ctx context.Context, email, excludeID string) (bool, error) {
	var taken bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM users WHERE email = $1 AND id <> $2
		)
	`, email, excludeID).Scan(&taken)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "email check failed", err)
	}
	return taken, nil
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	u.UpdatedAt = time.Now()

	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET email = $1, fullname = $2, avatar_url = $3, cover_image_url = $4, updated_at = $5
		WHERE id = $6
	`, u.Email, u.Fullname, u.AvatarURL, u.CoverImageURL, u.UpdatedAt, u.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return apperr.Wrap(apperr.KindConflict, "email already in use", err)
		}
		return apperr.Wrap(apperr.KindPersistence, "user update failed", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
	`, passwordHash, id)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "password update failed", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) SetRefreshToken(ctx context.Context, id, token string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = $1, updated_at = now() WHERE id = $2
	`, token, id)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "refresh token store failed", err)
	}
	if res.RowsAffected() == 0 {
		return apperr.New(apperr.KindNotFound, "user not found")
	}
	return nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = NULL, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "refresh token clear failed", err)
	}
	return nil
}

// SwapRefreshToken commits the replacement only if the stored token still
// equals old. Two concurrent rotations cannot both succeed: the WHERE clause
// makes the read-check-and-replace a single atomic statement.
func (r *UserRepository) SwapRefreshToken(ctx context.Context, id, old, new string) (bool, error) {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET refresh_token = $1, updated_at = now()
		WHERE id = $2 AND refresh_token = $3
	`, new, id, old)
	if err != nil {
		return false, apperr.Wrap(apperr.KindPersistence, "refresh token swap failed", err)
	}
	return res.RowsAffected() == 1, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
