package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/videotube/videotube-api/internal/domain/apperr"
	"github.com/videotube/videotube-api/internal/domain/entity"
	"github.com/videotube/videotube-api/internal/domain/repository"
)

type VideoRepository struct {
	pool *pgxpool.Pool
}

func NewVideoRepository(pool *pgxpool.Pool) *VideoRepository {
	return &VideoRepository{pool: pool}
}

func (r *VideoRepository) GetByID(ctx context.Context, id string) (*entity.Video, error) {
	v := &entity.Video{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, owner_id, title, description, thumbnail_url, duration, views, created_at
		FROM videos WHERE id = $1
	`, id).Scan(&v.ID, &v.OwnerID, &v.Title, &v.Description, &v.ThumbnailURL,
		&v.Duration, &v.Views, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.New(apperr.KindNotFound, "video not found")
		}
		return nil, apperr.Wrap(apperr.KindPersistence, "video lookup failed", err)
	}
	return v, nil
}

// WatchHistory returns the user's history in stored order. The owner join is
// against videos.owner_id, so each entry collapses to exactly one owner row.
func (r *VideoRepository) WatchHistory(ctx context.Context, userID string) ([]entity.HistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT v.id, v.title, v.description, v.thumbnail_url, v.duration, v.views, v.created_at,
		       o.fullname, o.username, o.avatar_url
		FROM watch_history h
		JOIN videos v ON v.id = h.video_id
		JOIN users o ON o.id = v.owner_id
		WHERE h.user_id = $1
		ORDER BY h.id
	`, userID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "watch history query failed", err)
	}
	defer rows.Close()

	out := make([]entity.HistoryEntry, 0, 16)
	for rows.Next() {
		var e entity.HistoryEntry
		if err := rows.Scan(&e.ID, &e.Title, &e.Description, &e.ThumbnailURL,
			&e.Duration, &e.Views, &e.CreatedAt,
			&e.Owner.Fullname, &e.Owner.Username, &e.Owner.AvatarURL); err != nil {
			return nil, apperr.Wrap(apperr.KindPersistence, "watch history scan failed", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, apperr.Wrap(apperr.KindPersistence, "watch history read failed", err)
	}
	return out, nil
}

func (r *VideoRepository) AddWatchEvent(ctx context.Context, userID, videoID string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO watch_history (user_id, video_id) VALUES ($1, $2)
	`, userID, videoID)
	if err != nil {
		return apperr.Wrap(apperr.KindPersistence, "watch event insert failed", err)
	}
	return nil
}

var _ repository.VideoRepository = (*VideoRepository)(nil)
