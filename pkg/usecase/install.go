package usecase

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
)

// maxExtractedSize caps the uncompressed size of a release archive
const maxExtractedSize = 1 << 30

type installUseCase struct {
	registry    interfaces.RegistryClient
	coordinator interfaces.UpdateCoordinator
	fs          interfaces.FileSystem
}

// NewInstall creates a new instance of InstallUseCase
func NewInstall(registry interfaces.RegistryClient, coordinator interfaces.UpdateCoordinator, fs interfaces.FileSystem) interfaces.InstallUseCase {
	return &installUseCase{
		registry:    registry,
		coordinator: coordinator,
		fs:          fs,
	}
}

// Install downloads the release archive of decision, extracts it next to the
// component's install directory and swaps it into place. The previous tree is
// restored when the swap fails. It returns the install directory.
func (uc *installUseCase) Install(ctx context.Context, component model.Component, decision *model.UpdateDecision) (string, error) {
	logger := ctxlog.From(ctx)

	if decision == nil || !decision.Available || decision.PackageURL == "" {
		return "", goerr.New("no update available to install",
			goerr.V("slug", component.Slug),
			goerr.T(types.ErrTagNotFound))
	}
	if component.InstallDir == "" {
		return "", goerr.New("component has no install directory",
			goerr.V("slug", component.Slug),
			goerr.T(types.ErrTagInvalidManifest))
	}

	installDir := filepath.Clean(component.InstallDir)

	logger.Info("Installing release",
		"slug", component.Slug,
		"from", component.Version,
		"to", decision.TargetVersion,
		"package_url", decision.PackageURL,
	)

	// Download archive
	archive, err := uc.registry.DownloadArchive(ctx, decision.PackageURL)
	if err != nil {
		return "", goerr.Wrap(err, "failed to download release archive",
			goerr.V("slug", component.Slug),
			goerr.V("url", decision.PackageURL))
	}

	logger.Info("Downloaded release archive",
		"slug", component.Slug,
		"size_bytes", len(archive),
	)

	// Stage next to the install directory so the final rename stays on one filesystem
	extraction, err := extractArchive(ctx, filepath.Dir(installDir), archive)
	if err != nil {
		return "", err
	}
	defer func() {
		if err := uc.fs.RemoveAll(extraction.StagingDir); err != nil {
			logger.Warn("Failed to remove staging directory",
				"staging_dir", extraction.StagingDir,
				"error", err,
			)
		}
	}()

	logger.Info("Extracted release archive",
		"slug", component.Slug,
		"staging_dir", extraction.StagingDir,
		"file_count", len(extraction.Files),
		"total_size_bytes", extraction.Size,
	)

	source, err := uc.coordinator.SelectSource(ctx, component, extraction.ExtractDir)
	if err != nil {
		return "", err
	}

	if err := uc.activate(ctx, source, installDir, extraction.StagingDir); err != nil {
		return "", err
	}

	logger.Info("Release installed",
		"slug", component.Slug,
		"version", decision.TargetVersion,
		"install_dir", installDir,
	)

	return installDir, nil
}

// activate moves source to installDir, keeping the previous tree in stagingDir
// until the move succeeded
func (uc *installUseCase) activate(ctx context.Context, source, installDir, stagingDir string) error {
	logger := ctxlog.From(ctx)

	exists, err := uc.fs.Exists(installDir)
	if err != nil {
		return goerr.Wrap(err, "failed to check install directory",
			goerr.V("install_dir", installDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	if !exists {
		if err := uc.fs.Move(source, installDir); err != nil {
			return goerr.Wrap(err, "failed to move release into place",
				goerr.V("source", source),
				goerr.V("install_dir", installDir),
				goerr.T(types.ErrTagRelocationFailed))
		}
		return nil
	}

	backup := filepath.Join(stagingDir, "previous-"+uuid.NewString())
	if err := uc.fs.Move(installDir, backup); err != nil {
		return goerr.Wrap(err, "failed to back up installed tree",
			goerr.V("install_dir", installDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	if err := uc.fs.Move(source, installDir); err != nil {
		if restoreErr := uc.fs.Move(backup, installDir); restoreErr != nil {
			logger.Error("Failed to restore previous tree",
				"install_dir", installDir,
				"backup", backup,
				"error", restoreErr,
			)
		}
		return goerr.Wrap(err, "failed to move release into place",
			goerr.V("source", source),
			goerr.V("install_dir", installDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	return nil
}

// extractArchive extracts zip data below a new staging directory in baseDir
func extractArchive(ctx context.Context, baseDir string, data []byte) (*model.ArchiveExtraction, error) {
	logger := ctxlog.From(ctx)

	// Create staging directory
	stagingDir, err := os.MkdirTemp(baseDir, ".updraft-staging-*")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create staging directory",
			goerr.V("base_dir", baseDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	logger.Debug("Created staging directory", "staging_dir", stagingDir)

	extraction, err := extractZip(stagingDir, data)
	if err != nil {
		_ = os.RemoveAll(stagingDir)
		return nil, err
	}

	return extraction, nil
}

func extractZip(stagingDir string, data []byte) (*model.ArchiveExtraction, error) {
	zipReader, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read release archive",
			goerr.T(types.ErrTagMalformedPayload))
	}

	extractDir := filepath.Join(stagingDir, "extract")
	if err := os.Mkdir(extractDir, 0700); err != nil {
		return nil, goerr.Wrap(err, "failed to create extract directory",
			goerr.V("dir", extractDir),
			goerr.T(types.ErrTagRelocationFailed))
	}

	var files []string
	var totalSize int64

	for _, file := range zipReader.File {
		totalSize += int64(file.UncompressedSize64)
		if totalSize > maxExtractedSize {
			return nil, goerr.New("release archive too large",
				goerr.V("limit", maxExtractedSize),
				goerr.T(types.ErrTagMalformedPayload))
		}

		if err := extractFile(file, extractDir); err != nil {
			return nil, err
		}
		files = append(files, file.Name)
	}

	return &model.ArchiveExtraction{
		StagingDir: stagingDir,
		ExtractDir: extractDir,
		Files:      files,
		Size:       totalSize,
	}, nil
}

// extractFile extracts a single archive entry below destDir
func extractFile(file *zip.File, destDir string) error {
	// Reject entries escaping the destination
	destPath := filepath.Join(destDir, file.Name)
	if !strings.HasPrefix(destPath, filepath.Clean(destDir)+string(os.PathSeparator)) {
		return goerr.New("invalid file path in archive",
			goerr.V("file", file.Name),
			goerr.T(types.ErrTagMalformedPayload))
	}

	if file.FileInfo().IsDir() {
		if err := os.MkdirAll(destPath, 0755); err != nil {
			return goerr.Wrap(err, "failed to create directory", goerr.V("path", destPath))
		}
		return nil
	}

	if !file.Mode().IsRegular() {
		return goerr.New("unsupported archive entry",
			goerr.V("file", file.Name),
			goerr.V("mode", file.Mode().String()),
			goerr.T(types.ErrTagMalformedPayload))
	}

	rc, err := file.Open()
	if err != nil {
		return goerr.Wrap(err, "failed to open archive entry",
			goerr.V("file", file.Name),
			goerr.T(types.ErrTagMalformedPayload))
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return goerr.Wrap(err, "failed to create parent directories", goerr.V("path", filepath.Dir(destPath)))
	}

	destFile, err := os.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, file.Mode().Perm()|0600)
	if err != nil {
		return goerr.Wrap(err, "failed to create file", goerr.V("path", destPath))
	}
	defer destFile.Close()

	if _, err := io.Copy(destFile, io.LimitReader(rc, int64(file.UncompressedSize64))); err != nil {
		return goerr.Wrap(err, "failed to write file",
			goerr.V("path", destPath),
			goerr.T(types.ErrTagMalformedPayload))
	}

	return nil
}
