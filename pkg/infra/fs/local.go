package fs

import (
	"errors"
	"io/fs"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
)

// Local implements FileSystem on the host operating system
type Local struct{}

var _ interfaces.FileSystem = Local{}

// NewLocal creates a local filesystem
func NewLocal() Local {
	return Local{}
}

// List returns the entries of dir
func (Local) List(dir string) ([]model.DirEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read directory", goerr.V("dir", dir))
	}

	result := make([]model.DirEntry, 0, len(entries))
	for _, e := range entries {
		result = append(result, model.DirEntry{Name: e.Name(), IsDir: e.IsDir()})
	}
	return result, nil
}

// Exists reports whether path exists
func (Local) Exists(path string) (bool, error) {
	_, err := os.Lstat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, goerr.Wrap(err, "failed to stat path", goerr.V("path", path))
}

// Move renames src to dst
func (Local) Move(src, dst string) error {
	if err := os.Rename(src, dst); err != nil {
		return goerr.Wrap(err, "failed to rename", goerr.V("src", src), goerr.V("dst", dst))
	}
	return nil
}

// RemoveAll removes path and everything below it
func (Local) RemoveAll(path string) error {
	if err := os.RemoveAll(path); err != nil {
		return goerr.Wrap(err, "failed to remove", goerr.V("path", path))
	}
	return nil
}
