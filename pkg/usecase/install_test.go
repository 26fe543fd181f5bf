package usecase_test

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"github.com/m-mizutani/updraft/pkg/infra/cache"
	"github.com/m-mizutani/updraft/pkg/infra/fs"
	"github.com/m-mizutani/updraft/pkg/usecase"
)

// createTestZip builds a zipball shaped like the ones GitHub serves
func createTestZip(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		f, err := w.Create(name)
		gt.NoError(t, err)
		_, err = f.Write([]byte(content))
		gt.NoError(t, err)
	}
	gt.NoError(t, w.Close())

	return buf.Bytes()
}

func defaultZip(t *testing.T) []byte {
	return createTestZip(t, map[string]string{
		"owner-my-plugin-abc123/README.md":     "# My Plugin 1.0.3",
		"owner-my-plugin-abc123/src/plugin.go": "package plugin",
	})
}

func newTestSelector(registry *MockRegistryClient) *usecase.Coordinator {
	fetcher := usecase.NewReleaseFetcher(registry, cache.NewReleaseCache(10, time.Hour))
	return usecase.NewCoordinator(fetcher, usecase.WithRelocator(usecase.NewRelocator(fs.NewLocal())))
}

func installComponent(root string) model.Component {
	comp := testComponent()
	comp.InstallDir = filepath.Join(root, "my-plugin")
	return comp
}

func availableDecision() *model.UpdateDecision {
	return &model.UpdateDecision{
		Available:     true,
		TargetVersion: "1.0.3",
		PackageURL:    "https://api.github.com/repos/owner/my-plugin/zipball/v1.0.3",
	}
}

// assertNoStaging fails when a staging directory was left behind in root
func assertNoStaging(t *testing.T, root string) {
	t.Helper()
	entries, err := os.ReadDir(root)
	gt.NoError(t, err)
	for _, e := range entries {
		gt.False(t, strings.HasPrefix(e.Name(), ".updraft-staging-"))
	}
}

func TestInstall_FreshInstall(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	zipData := defaultZip(t)

	registry := &MockRegistryClient{
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			return zipData, nil
		},
	}
	fileSystem := &MockFileSystem{}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	comp := installComponent(root)
	installDir, err := uc.Install(ctx, comp, availableDecision())
	gt.NoError(t, err)
	gt.Value(t, installDir).Equal(comp.InstallDir)

	content, err := os.ReadFile(filepath.Join(installDir, "README.md"))
	gt.NoError(t, err)
	gt.String(t, string(content)).Contains("1.0.3")
	assertExists(t, filepath.Join(installDir, "src", "plugin.go"), true)

	gt.Value(t, registry.downloadCalls).Equal([]string{"https://api.github.com/repos/owner/my-plugin/zipball/v1.0.3"})
	assertNoStaging(t, root)
}

func TestInstall_ReplacesExistingTree(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"my-plugin/README.md":   "# My Plugin 1.0.1",
		"my-plugin/obsolete.go": "package plugin",
		"unrelated/keep.txt":    "keep",
	})
	zipData := defaultZip(t)

	registry := &MockRegistryClient{
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			return zipData, nil
		},
	}
	fileSystem := &MockFileSystem{}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	installDir, err := uc.Install(ctx, installComponent(root), availableDecision())
	gt.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(installDir, "README.md"))
	gt.NoError(t, err)
	gt.String(t, string(content)).Contains("1.0.3")

	assertExists(t, filepath.Join(installDir, "obsolete.go"), false)
	assertExists(t, filepath.Join(root, "unrelated", "keep.txt"), true)
	assertNoStaging(t, root)
}

func TestInstall_NothingToInstall(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	registry := &MockRegistryClient{}
	fileSystem := &MockFileSystem{}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	testCases := []struct {
		name     string
		decision *model.UpdateDecision
	}{
		{name: "nil decision", decision: nil},
		{name: "not available", decision: &model.UpdateDecision{Available: false, PackageURL: "https://example.com/a.zip"}},
		{name: "missing package url", decision: &model.UpdateDecision{Available: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Install(ctx, installComponent(root), tc.decision)
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagNotFound))
		})
	}

	gt.Number(t, len(registry.downloadCalls)).Equal(0)
}

func TestInstall_MissingInstallDir(t *testing.T) {
	ctx := context.Background()
	registry := &MockRegistryClient{}
	fileSystem := &MockFileSystem{}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	_, err := uc.Install(ctx, testComponent(), availableDecision())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagInvalidManifest))
}

func TestInstall_DownloadError(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"my-plugin/README.md": "# My Plugin 1.0.1"})

	registry := &MockRegistryClient{
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			return nil, goerr.New("download error", goerr.T(types.ErrTagRegistryUnavailable))
		},
	}
	fileSystem := &MockFileSystem{}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	_, err := uc.Install(ctx, installComponent(root), availableDecision())
	gt.Error(t, err)
	gt.String(t, err.Error()).Contains("failed to download release archive")

	content, err := os.ReadFile(filepath.Join(root, "my-plugin", "README.md"))
	gt.NoError(t, err)
	gt.String(t, string(content)).Contains("1.0.1")
}

func TestInstall_InvalidArchive(t *testing.T) {
	ctx := context.Background()

	testCases := []struct {
		name string
		data func(t *testing.T) []byte
	}{
		{
			name: "not a zip",
			data: func(t *testing.T) []byte { return []byte("invalid zip data") },
		},
		{
			name: "path traversal",
			data: func(t *testing.T) []byte {
				return createTestZip(t, map[string]string{"../evil.txt": "evil"})
			},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeTree(t, root, map[string]string{"my-plugin/README.md": "# My Plugin 1.0.1"})
			zipData := tc.data(t)

			registry := &MockRegistryClient{
				downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
					return zipData, nil
				},
			}
			fileSystem := &MockFileSystem{}
			uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

			_, err := uc.Install(ctx, installComponent(root), availableDecision())
			gt.Error(t, err)
			gt.True(t, goerr.HasTag(err, types.ErrTagMalformedPayload))

			assertExists(t, filepath.Join(root, "my-plugin", "README.md"), true)
			assertExists(t, filepath.Join(root, "evil.txt"), false)
			assertNoStaging(t, root)
		})
	}
}

func TestInstall_RestoresPreviousTreeOnFailure(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	writeTree(t, root, map[string]string{"my-plugin/README.md": "# My Plugin 1.0.1"})
	zipData := defaultZip(t)
	comp := installComponent(root)

	registry := &MockRegistryClient{
		downloadFunc: func(ctx context.Context, url string) ([]byte, error) {
			return zipData, nil
		},
	}
	fileSystem := &MockFileSystem{}
	fileSystem.moveFunc = func(src, dst string) error {
		if dst == comp.InstallDir && !strings.Contains(src, "previous-") {
			return errors.New("device busy")
		}
		return fileSystem.base.Move(src, dst)
	}
	uc := usecase.NewInstall(registry, newTestSelector(registry), fileSystem)

	_, err := uc.Install(ctx, comp, availableDecision())
	gt.Error(t, err)
	gt.True(t, goerr.HasTag(err, types.ErrTagRelocationFailed))
	gt.Number(t, len(fileSystem.moveCalls)).Equal(3)

	content, err := os.ReadFile(filepath.Join(root, "my-plugin", "README.md"))
	gt.NoError(t, err)
	gt.String(t, string(content)).Contains("1.0.1")
	assertNoStaging(t, root)
}
