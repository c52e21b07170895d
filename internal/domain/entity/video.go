package entity

import "time"

// Video is an external entity here: the identity service only reads it when
// resolving a user's watch history.
type Video struct {
	ID           string
	OwnerID      string
	Title        string
	Description  string
	ThumbnailURL string
	Duration     float64 // seconds
	Views        int64
	CreatedAt    time.Time
}

// VideoOwner is the restricted owner projection joined into history entries.
type VideoOwner struct {
	Fullname  string `json:"fullname"`
	Username  string `json:"username"`
	AvatarURL string `json:"avatar"`
}

// HistoryEntry is one watch-history item: a video summary with exactly one
// owner record.
type HistoryEntry struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	ThumbnailURL string     `json:"thumbnail"`
	Duration     float64    `json:"duration"`
	Views        int64      `json:"views"`
	CreatedAt    time.Time  `json:"createdAt"`
	Owner        VideoOwner `json:"owner"`
}
