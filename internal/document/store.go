// Package document is the boundary to the external document service. The
// default implementation keeps files on local disk; production deployments
// swap in the hosted store behind the same interface.
package document

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

type FileStore struct {
	dir string
}

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create document dir: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (s *FileStore) Store(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(content) == 0 {
		return "", fmt.Errorf("empty document")
	}
	ref := uuid.New().String() + ".pdf"
	if err := os.WriteFile(filepath.Join(s.dir, ref), content, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}
	return ref, nil
}

// Verify confirms the reference resolves to a stored, non-empty document.
// Cryptographic signature validation belongs to the signing provider.
func (s *FileStore) Verify(ctx context.Context, documentRef string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	info, err := os.Stat(filepath.Join(s.dir, filepath.Base(documentRef)))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.Size() > 0, nil
}
