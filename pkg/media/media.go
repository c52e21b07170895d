// Package media is the client for the external media store that hosts
// uploaded avatar and cover assets.
package media

import (
	"context"
	"io"
)

// File is one uploaded file ready to be streamed to the media store.
type File struct {
	Reader      io.Reader
	Filename    string
	ContentType string
}

// Uploader stores files and returns a stable public reference URL. Delete
// accepts the same URL so that callers can roll back partially completed
// operations.
type Uploader interface {
	Upload(ctx context.Context, folder string, f File) (string, error)
	Delete(ctx context.Context, url string) error
}
