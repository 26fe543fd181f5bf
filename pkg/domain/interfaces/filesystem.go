package interfaces

import "github.com/m-mizutani/updraft/pkg/domain/model"

// FileSystem is the directory abstraction used for artifact staging
type FileSystem interface {
	// List returns the entries of a directory
	List(dir string) ([]model.DirEntry, error)

	// Exists reports whether a path exists
	Exists(path string) (bool, error)

	// Move renames src to dst
	Move(src, dst string) error

	// RemoveAll removes a path recursively
	RemoveAll(path string) error
}
