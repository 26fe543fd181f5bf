package usecase

import (
	"context"
	"strconv"
	"sync"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"golang.org/x/sync/singleflight"
)

type releaseFetcher struct {
	registry interfaces.RegistryClient
	cache    interfaces.ReleaseCache
	group    singleflight.Group

	mu          sync.Mutex
	generations map[string]uint64 // bumped by Invalidate
}

// NewReleaseFetcher creates a ReleaseFetcher that serves releases from cache and
// deduplicates concurrent registry requests per repository
func NewReleaseFetcher(registry interfaces.RegistryClient, cache interfaces.ReleaseCache) interfaces.ReleaseFetcher {
	return &releaseFetcher{
		registry:    registry,
		cache:       cache,
		generations: make(map[string]uint64),
	}
}

// FetchLatest returns the cached release, or fetches it when absent or force is set.
// A failed fetch leaves the cache untouched.
func (f *releaseFetcher) FetchLatest(ctx context.Context, repo model.Repository, force bool) (*model.ReleaseInfo, error) {
	logger := ctxlog.From(ctx)

	if !force {
		if info, ok := f.cache.Get(repo); ok {
			logger.Debug("Release served from cache",
				"repository", repo.FullName(),
				"tag", info.TagName,
			)
			return info, nil
		}
	}

	// At most one in-flight registry request per repository and generation.
	// A fetch started before Invalidate is never joined afterwards and never
	// writes its result into the cache.
	key := repo.CacheKey()
	gen := f.generation(key)
	v, err, shared := f.group.Do(key+"@"+strconv.FormatUint(gen, 10), func() (any, error) {
		info, err := f.registry.FetchLatestRelease(ctx, repo)
		if err != nil {
			return nil, err
		}

		f.mu.Lock()
		defer f.mu.Unlock()
		if f.generations[key] == gen {
			f.cache.Put(repo, info)
		} else {
			logger.Debug("Release invalidated during fetch, not caching",
				"repository", repo.FullName(),
				"tag", info.TagName,
			)
		}
		return info, nil
	})
	if err != nil {
		logger.Warn("Failed to fetch latest release",
			"repository", repo.FullName(),
			"force", force,
			"error", err,
		)
		return nil, err
	}

	info := v.(*model.ReleaseInfo)
	logger.Debug("Fetched latest release",
		"repository", repo.FullName(),
		"tag", info.TagName,
		"force", force,
		"shared", shared,
	)
	return info, nil
}

// Cached returns the cached release without touching the registry
func (f *releaseFetcher) Cached(repo model.Repository) (*model.ReleaseInfo, bool) {
	return f.cache.Get(repo)
}

// Invalidate drops the cached release for repo. Fetches already in flight no
// longer populate the cache.
func (f *releaseFetcher) Invalidate(repo model.Repository) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generations[repo.CacheKey()]++
	f.cache.Invalidate(repo)
}

func (f *releaseFetcher) generation(key string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.generations[key]
}
