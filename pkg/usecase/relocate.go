package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

type relocator struct {
	fs interfaces.FileSystem
}

// NewRelocator creates a Relocator operating on fs
func NewRelocator(fs interfaces.FileSystem) interfaces.Relocator {
	return &relocator{fs: fs}
}

// Relocate moves the single top-level directory of an extracted archive to a
// sibling of extractedParentDir named desiredName and returns the resulting
// path. Archives with any other layout are returned unchanged.
func (r *relocator) Relocate(ctx context.Context, extractedParentDir, desiredName string) (string, error) {
	logger := ctxlog.From(ctx)

	if err := validateDirName(desiredName); err != nil {
		return "", err
	}

	parent := filepath.Clean(extractedParentDir)
	finalDir := filepath.Join(filepath.Dir(parent), desiredName)

	entries, err := r.fs.List(parent)
	if err != nil {
		return "", goerr.Wrap(err, "failed to list extracted directory",
			goerr.V("dir", parent),
			goerr.T(types.ErrTagRelocationFailed))
	}

	if len(entries) != 1 || !entries[0].IsDir {
		// Already relocated by an earlier call: the wrapper directory was moved out
		if len(entries) == 0 && finalDir != parent {
			exists, err := r.fs.Exists(finalDir)
			if err != nil {
				return "", goerr.Wrap(err, "failed to check relocation target",
					goerr.V("target", finalDir),
					goerr.T(types.ErrTagRelocationFailed))
			}
			if exists {
				logger.Debug("Archive already relocated", "target", finalDir)
				return finalDir, nil
			}
		}

		logger.Debug("Archive layout is not a single directory, keeping source",
			"dir", parent,
			"entries", len(entries),
		)
		return parent, nil
	}

	source := filepath.Join(parent, entries[0].Name)
	if source == finalDir {
		return finalDir, nil
	}

	// The extracted directory already carries the desired name
	if finalDir == parent {
		logger.Debug("Extracted directory already has the desired name", "dir", parent)
		return parent, nil
	}

	// Clear a stale target left by an earlier failed upgrade
	exists, err := r.fs.Exists(finalDir)
	if err != nil {
		return "", goerr.Wrap(err, "failed to check relocation target",
			goerr.V("target", finalDir),
			goerr.T(types.ErrTagRelocationFailed))
	}
	if exists {
		logger.Info("Removing stale relocation target", "target", finalDir)
		if err := r.fs.RemoveAll(finalDir); err != nil {
			return "", goerr.Wrap(err, "failed to remove stale relocation target",
				goerr.V("target", finalDir),
				goerr.T(types.ErrTagRelocationFailed))
		}
	}

	if err := r.fs.Move(source, finalDir); err != nil {
		return "", goerr.Wrap(err, "failed to move extracted directory",
			goerr.V("source", source),
			goerr.V("target", finalDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	logger.Info("Relocated extracted archive",
		"source", source,
		"target", finalDir,
	)
	return finalDir, nil
}

// validateDirName ensures the relocation target stays a direct sibling of the
// extracted directory
func validateDirName(name string) error {
	if name == "" || name == "." || name == ".." ||
		strings.ContainsAny(name, `/\`) || filepath.Base(name) != name {
		return goerr.New("invalid relocation directory name",
			goerr.V("name", name),
			goerr.T(types.ErrTagRelocationFailed))
	}
	return nil
}
