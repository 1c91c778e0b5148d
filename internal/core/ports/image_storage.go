package ports

import (
	"context"
	"io"
)

// FileInfo describes a stored file.
type FileInfo struct {
	ID          string
	Filename    string
	ContentType string
	Size        int64
}

// ImageStorage keeps item images and QR codes outside the database.
// Fetch and Delete return errs.ObjectNotFoundError for unknown ids.
type ImageStorage interface {
	Store(ctx context.Context, filename, contentType string, content io.Reader) (FileInfo, error)
	Fetch(ctx context.Context, fileID string, w io.Writer) (FileInfo, error)
	Delete(ctx context.Context, fileID string) error
}
