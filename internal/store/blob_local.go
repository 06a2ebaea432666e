package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mapxn/koodo-reader/internal/logger"
	"github.com/mapxn/koodo-reader/models"
)

// localDrive is the filesystem-backed [Drive]: each logical folder is a
// subdirectory below the library root. Uploads are atomic (temp file
// plus rename) so a crashed write never leaves a half-written blob
// visible to a concurrent snapshot.
type localDrive struct {
	root   string
	logger *logger.Logger
}

// NewLocalDrive constructs a [Drive] rooted at dir, creating the folder
// layout on first use.
func NewLocalDrive(dir string, logger *logger.Logger) (Drive, error) {
	if dir == "" {
		return nil, fmt.Errorf("library directory is empty")
	}
	for _, folder := range []models.BlobFolder{models.FolderBook, models.FolderCover, models.FolderConfig} {
		if err := os.MkdirAll(filepath.Join(dir, string(folder)), 0o755); err != nil {
			return nil, fmt.Errorf("create library folder %s: %w", folder, err)
		}
	}
	return &localDrive{root: dir, logger: logger}, nil
}

func (d *localDrive) List(_ context.Context, folder models.BlobFolder) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(d.root, string(folder)))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, entry.Name())
	}
	return names, nil
}

func (d *localDrive) Upload(_ context.Context, name string, folder models.BlobFolder, data []byte) error {
	dir := filepath.Join(d.root, string(folder))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create folder %s: %w", folder, err)
	}

	tmp, err := os.CreateTemp(dir, "."+name+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp blob for %s: %w", name, err)
	}
	tmpName := tmp.Name()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write blob %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close blob %s: %w", name, err)
	}

	if err = os.Rename(tmpName, filepath.Join(dir, name)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("publish blob %s: %w", name, err)
	}

	return nil
}

func (d *localDrive) Download(_ context.Context, name string, folder models.BlobFolder) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(d.root, string(folder), name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrBlobNotFound
		}
		return nil, fmt.Errorf("read blob %s: %w", name, err)
	}
	return data, nil
}

func (d *localDrive) Delete(_ context.Context, name string, folder models.BlobFolder) error {
	err := os.Remove(filepath.Join(d.root, string(folder), name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob %s: %w", name, err)
	}
	return nil
}
