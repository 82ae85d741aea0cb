package domain

import (
	"context"
)

// FileRepository stores meal photos
type FileRepository interface {
	// Upload saves a file under key and returns its public URL
	Upload(ctx context.Context, file []byte, key string, contentType string) (string, error)
}
