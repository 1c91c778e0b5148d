// Package localfs keeps uploaded images and QR codes in a directory on the
// local filesystem. Each file is stored under a generated id next to a small
// JSON sidecar holding its original name and content type.
package localfs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"exportdocs/internal/core/ports"
	"exportdocs/internal/pkg/errs"

	"github.com/google/uuid"
)

var _ ports.ImageStorage = (*Storage)(nil)

type sidecar struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Storage struct {
	dir string
}

// New creates dir when it does not exist yet.
func New(dir string) (*Storage, error) {
	if dir == "" {
		return nil, errs.NewValueIsRequiredError("dir")
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

func (s *Storage) Store(ctx context.Context, filename, contentType string, content io.Reader) (ports.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.FileInfo{}, err
	}

	id := uuid.NewString()
	f, err := os.OpenFile(s.dataPath(id), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o640)
	if err != nil {
		return ports.FileInfo{}, err
	}

	size, err := io.Copy(f, content)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(s.dataPath(id))
		return ports.FileInfo{}, fmt.Errorf("write %s: %w", filename, err)
	}

	meta, err := json.Marshal(sidecar{Filename: filename, ContentType: contentType, Size: size})
	if err != nil {
		_ = os.Remove(s.dataPath(id))
		return ports.FileInfo{}, err
	}
	if err = os.WriteFile(s.metaPath(id), meta, 0o640); err != nil {
		_ = os.Remove(s.dataPath(id))
		return ports.FileInfo{}, err
	}

	return ports.FileInfo{ID: id, Filename: filename, ContentType: contentType, Size: size}, nil
}

func (s *Storage) Fetch(ctx context.Context, fileID string, w io.Writer) (ports.FileInfo, error) {
	if err := ctx.Err(); err != nil {
		return ports.FileInfo{}, err
	}

	info, err := s.stat(fileID)
	if err != nil {
		return ports.FileInfo{}, err
	}

	f, err := os.Open(s.dataPath(fileID))
	if err != nil {
		return ports.FileInfo{}, s.notFound(fileID, err)
	}
	defer f.Close()

	if _, err = io.Copy(w, f); err != nil {
		return ports.FileInfo{}, err
	}
	return info, nil
}

func (s *Storage) Delete(ctx context.Context, fileID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.stat(fileID); err != nil {
		return err
	}

	return errors.Join(
		ignoreMissing(os.Remove(s.dataPath(fileID))),
		ignoreMissing(os.Remove(s.metaPath(fileID))),
	)
}

func (s *Storage) stat(fileID string) (ports.FileInfo, error) {
	if err := uuid.Validate(fileID); err != nil {
		return ports.FileInfo{}, errs.NewObjectNotFoundErrorWithCause("fileID", fileID, err)
	}

	raw, err := os.ReadFile(s.metaPath(fileID))
	if err != nil {
		return ports.FileInfo{}, s.notFound(fileID, err)
	}

	var meta sidecar
	if err = json.Unmarshal(raw, &meta); err != nil {
		return ports.FileInfo{}, fmt.Errorf("read metadata of %s: %w", fileID, err)
	}
	return ports.FileInfo{ID: fileID, Filename: meta.Filename, ContentType: meta.ContentType, Size: meta.Size}, nil
}

func (s *Storage) notFound(fileID string, err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return errs.NewObjectNotFoundError("fileID", fileID)
	}
	return err
}

func (s *Storage) dataPath(id string) string { return filepath.Join(s.dir, id) }
func (s *Storage) metaPath(id string) string { return filepath.Join(s.dir, id+".json") }

func ignoreMissing(err error) error {
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
