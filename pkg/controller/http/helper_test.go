package http_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	controller "github.com/m-mizutani/updraft/pkg/controller/http"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/infra/cache"
	"github.com/m-mizutani/updraft/pkg/usecase"
)

// MockRegistryClient is a mock implementation of RegistryClient
type MockRegistryClient struct {
	fetchFunc func(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error)

	mu    sync.Mutex
	calls int
}

func (m *MockRegistryClient) FetchLatestRelease(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()

	if m.fetchFunc != nil {
		return m.fetchFunc(ctx, repo)
	}
	return nil, errors.New("mock not configured")
}

func (m *MockRegistryClient) DownloadArchive(ctx context.Context, url string) ([]byte, error) {
	return nil, errors.New("mock not configured")
}

func (m *MockRegistryClient) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// MockRefreshScheduler records refresh requests
type MockRefreshScheduler struct {
	mu       sync.Mutex
	requests [][]string
}

func (m *MockRefreshScheduler) RequestRefresh(ctx context.Context, slugs []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = append(m.requests, slugs)
}

func (m *MockRefreshScheduler) Requests() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests
}

func latestRelease(tag string) func(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error) {
	return func(ctx context.Context, repo model.Repository) (*model.ReleaseInfo, error) {
		return &model.ReleaseInfo{
			TagName:     tag,
			PublishedAt: time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
			Body:        "Bug fixes",
			ArchiveURL:  "https://api.github.com/repos/" + repo.FullName() + "/zipball/" + tag,
			HTMLURL:     "https://github.com/" + repo.FullName() + "/releases/tag/" + tag,
		}, nil
	}
}

type testEnv struct {
	server    *controller.Server
	registry  *MockRegistryClient
	refresher *MockRefreshScheduler
	coord     *usecase.Coordinator
}

func newTestEnv(t *testing.T, secret string) *testEnv {
	t.Helper()
	ctx := context.Background()

	registry := &MockRegistryClient{fetchFunc: latestRelease("v1.0.3")}
	refresher := &MockRefreshScheduler{}
	fetcher := usecase.NewReleaseFetcher(registry, cache.NewReleaseCache(10, time.Hour))
	coord := usecase.NewCoordinator(fetcher, usecase.WithRefreshScheduler(refresher))
	coord.Track(ctx, model.Component{
		Slug:        "my-plugin",
		Name:        "My Plugin",
		Description: "Does plugin things",
		Homepage:    "https://example.com/my-plugin",
		Version:     "1.0.1",
		Repository:  model.Repository{Owner: "owner", Repo: "my-plugin", Branch: "main"},
	})

	server, err := controller.NewServer(ctx,
		usecase.NewWebhook(coord),
		coord,
		controller.WithAddr("localhost:0"),
		controller.WithWebhookSecret(secret),
	)
	if err != nil {
		t.Fatalf("Failed to create server: %v", err)
	}

	return &testEnv{
		server:    server,
		registry:  registry,
		refresher: refresher,
		coord:     coord,
	}
}
