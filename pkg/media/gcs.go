package media

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// GCS implements Uploader on a Google Cloud Storage bucket.
type GCS struct {
	Client *storage.Client
	Bucket string
}

// NewGCSClient creates a Google Cloud Storage client. If credsPath is empty,
// Application Default Credentials are used.
func NewGCSClient(ctx context.Context, credsPath string) (*storage.Client, error) {
	if credsPath == "" {
		return storage.NewClient(ctx)
	}
	return storage.NewClient(ctx, option.WithCredentialsFile(credsPath))
}

func NewGCS(client *storage.Client, bucket string) *GCS {
	return &GCS{Client: client, Bucket: bucket}
}

// Upload streams f into the bucket under folder/<uuid><ext> and returns the
// public URL.
func (g *GCS) Upload(ctx context.Context, folder string, f File) (string, error) {
	objectPath := path.Join(folder, uuid.NewString()+strings.ToLower(path.Ext(f.Filename)))

	wc := g.Client.Bucket(g.Bucket).Object(objectPath).NewWriter(ctx)
	wc.ContentType = f.ContentType
	wc.ChunkSize = 0 // disable chunking for small files
	if _, err := io.Copy(wc, f.Reader); err != nil {
		_ = wc.Close()
		return "", err
	}
	if err := wc.Close(); err != nil {
		return "", err
	}
	return PublicURL(g.Bucket, objectPath), nil
}

// Delete removes the object referenced by a public URL previously returned by
// Upload. Unknown URLs are ignored so rollback is always safe to call.
func (g *GCS) Delete(ctx context.Context, url string) error {
	objectPath, ok := ObjectPath(g.Bucket, url)
	if !ok {
		return nil
	}
	return g.Client.Bucket(g.Bucket).Object(objectPath).Delete(ctx)
}

// PublicURL builds a public URL for an object (assuming public read access or signed URLs)
func PublicURL(bucket, objectPath string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, objectPath)
}

// ObjectPath inverts PublicURL, reporting false when url does not point into
// the bucket.
func ObjectPath(bucket, url string) (string, bool) {
	prefix := fmt.Sprintf("https://storage.googleapis.com/%s/", bucket)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}

var _ Uploader = (*GCS)(nil)
