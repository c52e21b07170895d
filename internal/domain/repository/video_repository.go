package repository

import (
	"context"

	"github.com/videotube/videotube-api/internal/domain/entity"
)

// VideoRepository gives read access to the video catalog plus the per-user
// watch history. History entries come back in stored (insertion) order, each
// joined with exactly one owner projection.
type VideoRepository interface {
	GetByID(ctx context.Context, id string) (*entity.Video, error)
	WatchHistory(ctx context.Context, userID string) ([]entity.HistoryEntry, error)
	AddWatchEvent(ctx context.Context, userID, videoID string) error
}
