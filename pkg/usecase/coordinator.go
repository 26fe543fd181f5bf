package usecase

import (
	"context"
	"html"
	"sort"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/domain/types"
	"golang.org/x/sync/errgroup"
)

// defaultCheckConcurrency bounds parallel registry requests during CheckAll
const defaultCheckConcurrency = 4

// Coordinator tracks components and answers update questions about them.
// Every collaborator is registered explicitly at construction.
type Coordinator struct {
	releases    interfaces.ReleaseFetcher
	relocator   interfaces.Relocator
	notifier    interfaces.Notifier
	refresher   interfaces.RefreshScheduler
	concurrency int

	mu         sync.RWMutex
	components map[string]model.Component
	states     map[string]model.ComponentState
	pending    map[string]bool   // repositories that must bypass the cache on the next check
	webhooks   map[string]uint64 // published notifications seen per repository
}

var _ interfaces.UpdateCoordinator = (*Coordinator)(nil)

// CoordinatorOption is a functional option for Coordinator
type CoordinatorOption func(*Coordinator)

// WithRelocator sets the relocator used by SelectSource
func WithRelocator(r interfaces.Relocator) CoordinatorOption {
	return func(c *Coordinator) {
		c.relocator = r
	}
}

// WithNotifier sets the notifier called when a component becomes upgradable
func WithNotifier(n interfaces.Notifier) CoordinatorOption {
	return func(c *Coordinator) {
		c.notifier = n
	}
}

// WithRefreshScheduler sets the scheduler asked to refresh after a webhook
func WithRefreshScheduler(s interfaces.RefreshScheduler) CoordinatorOption {
	return func(c *Coordinator) {
		c.refresher = s
	}
}

// WithCheckConcurrency sets how many components CheckAll checks in parallel
func WithCheckConcurrency(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n > 0 {
			c.concurrency = n
		}
	}
}

// NewCoordinator creates a new Coordinator
func NewCoordinator(releases interfaces.ReleaseFetcher, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		releases:    releases,
		concurrency: defaultCheckConcurrency,
		components:  make(map[string]model.Component),
		states:      make(map[string]model.ComponentState),
		pending:     make(map[string]bool),
		webhooks:    make(map[string]uint64),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Track registers components for update checks. Components without repository
// coordinates are skipped. A component with an already known slug replaces the
// previous value. It returns the number of tracked components.
func (c *Coordinator) Track(ctx context.Context, components ...model.Component) int {
	logger := ctxlog.From(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	tracked := 0
	for _, comp := range components {
		if comp.Slug == "" || !comp.Tracked() {
			logger.Debug("Component has no repository, not tracking", "slug", comp.Slug)
			continue
		}

		c.components[comp.Slug] = comp
		tracked++
	}

	return tracked
}

// Untrack removes a component and its state
func (c *Coordinator) Untrack(slug string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	comp, ok := c.components[slug]
	if !ok {
		return
	}
	delete(c.components, slug)
	delete(c.states, slug)

	key := comp.Repository.CacheKey()
	for _, other := range c.components {
		if other.Repository.CacheKey() == key {
			return
		}
	}
	delete(c.pending, key)
	delete(c.webhooks, key)
}

// Components returns the tracked components ordered by slug
func (c *Coordinator) Components() []model.Component {
	c.mu.RLock()
	defer c.mu.RUnlock()

	result := make([]model.Component, 0, len(c.components))
	for _, comp := range c.components {
		result = append(result, comp)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Slug < result[j].Slug })
	return result
}

// Component returns a tracked component by slug
func (c *Coordinator) Component(slug string) (model.Component, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	comp, ok := c.components[slug]
	return comp, ok
}

// State returns the last settled state of a component
func (c *Coordinator) State(slug string) (model.ComponentState, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	state, ok := c.states[slug]
	return state, ok
}

// CheckForUpdate decides whether a newer release of component exists. When the
// registry cannot be reached the result is indeterminate and the previous state
// is kept.
func (c *Coordinator) CheckForUpdate(ctx context.Context, component model.Component) model.CheckResult {
	logger := ctxlog.From(ctx)

	if !component.Tracked() {
		return model.CheckResult{
			Slug:    component.Slug,
			Outcome: model.OutcomeIndeterminate,
			Err: goerr.New("component declares no repository",
				goerr.V("slug", component.Slug),
				goerr.T(types.ErrTagNotFound)),
		}
	}

	repo := component.Repository
	key := repo.CacheKey()

	c.mu.RLock()
	force := c.pending[key]
	seen := c.webhooks[key]
	c.mu.RUnlock()

	// No lock is held while talking to the registry
	info, err := c.releases.FetchLatest(ctx, repo, force)
	if err != nil {
		logger.Warn("Update check indeterminate, keeping previous state",
			"slug", component.Slug,
			"repository", repo.FullName(),
			"error", err,
		)
		return model.CheckResult{
			Slug:    component.Slug,
			Outcome: model.OutcomeIndeterminate,
			Err:     err,
		}
	}

	decision := decide(component, info)
	status := model.StatusStable
	outcome := model.OutcomeStable
	if decision.Available {
		status = model.StatusUpdateAvailable
		outcome = model.OutcomeUpdateAvailable
	}

	c.mu.Lock()
	if c.webhooks[key] != seen {
		// A release was published while fetching; the forced check that
		// follows the notification owns the state and the pending flag.
		c.mu.Unlock()
		logger.Info("Release published during update check, result not stored",
			"slug", component.Slug,
			"repository", repo.FullName(),
			"tag", info.TagName,
		)
		return model.CheckResult{
			Slug:     component.Slug,
			Outcome:  outcome,
			Decision: decision,
		}
	}
	prev, hadPrev := c.states[component.Slug]
	c.states[component.Slug] = model.ComponentState{
		Status:    status,
		Decision:  decision,
		CheckedAt: time.Now(),
	}
	if force {
		delete(c.pending, key)
	}
	c.mu.Unlock()

	logger.Info("Update check completed",
		"slug", component.Slug,
		"installed", component.Version,
		"latest", decision.TargetVersion,
		"outcome", outcome,
		"forced", force,
	)

	if decision.Available && isNewAnnouncement(prev, hadPrev, decision) {
		c.notify(ctx, component, decision)
	}

	return model.CheckResult{
		Slug:     component.Slug,
		Outcome:  outcome,
		Decision: decision,
	}
}

// CheckAll checks every tracked component. Failures of one component never stop
// the others.
func (c *Coordinator) CheckAll(ctx context.Context) []model.CheckResult {
	return c.check(ctx, c.Components())
}

// CheckComponents checks the tracked components with the given slugs. Unknown
// slugs are skipped.
func (c *Coordinator) CheckComponents(ctx context.Context, slugs []string) []model.CheckResult {
	components := make([]model.Component, 0, len(slugs))
	for _, slug := range slugs {
		if comp, ok := c.Component(slug); ok {
			components = append(components, comp)
		}
	}
	return c.check(ctx, components)
}

func (c *Coordinator) check(ctx context.Context, components []model.Component) []model.CheckResult {
	results := make([]model.CheckResult, len(components))

	var eg errgroup.Group
	eg.SetLimit(c.concurrency)
	for i, comp := range components {
		eg.Go(func() error {
			results[i] = c.CheckForUpdate(ctx, comp)
			return nil
		})
	}
	_ = eg.Wait() // CheckForUpdate never returns an error to the group

	return results
}

// GetDetails builds the info view of a component from cached release metadata
// only. It reports false when nothing has been fetched yet.
func (c *Coordinator) GetDetails(ctx context.Context, component model.Component) (*model.Details, bool) {
	logger := ctxlog.From(ctx)

	if !component.Tracked() {
		return nil, false
	}

	info, ok := c.releases.Cached(component.Repository)
	if !ok {
		return nil, false
	}

	version := info.Version()
	changelog, err := RenderChangelog(version, info.Body)
	if err != nil {
		logger.Warn("Failed to render changelog, falling back to plain text",
			"slug", component.Slug,
			"error", err,
		)
		changelog = "<h4>Changes in v" + html.EscapeString(version) + "</h4>\n<pre>" + html.EscapeString(info.Body) + "</pre>"
	}

	name := component.Name
	if name == "" {
		name = component.Slug
	}

	return &model.Details{
		Name:         name,
		Slug:         component.Slug,
		Version:      version,
		Author:       component.Author,
		Homepage:     component.Homepage,
		LastUpdated:  info.PublishedAt,
		ChangelogURL: component.ChangelogURL(),
		Sections: model.DetailsSections{
			Description: component.Description,
			Changelog:   changelog,
		},
		ReleaseNotes: info.Body,
	}, true
}

// SelectSource renames the extracted archive directory of component to the
// directory name the component is installed under
func (c *Coordinator) SelectSource(ctx context.Context, component model.Component, extractedDir string) (string, error) {
	if c.relocator == nil {
		return "", goerr.New("no relocator configured",
			goerr.V("slug", component.Slug),
			goerr.T(types.ErrTagRelocationFailed))
	}

	return c.relocator.Relocate(ctx, extractedDir, component.DirName())
}

// OnWebhookPublished invalidates cached release metadata for the tracked
// components of repo (all components when repo is nil) and asks the refresh
// scheduler to run their next check. It never talks to the registry itself.
// It returns the number of affected components.
func (c *Coordinator) OnWebhookPublished(ctx context.Context, repo *model.Repository) int {
	logger := ctxlog.From(ctx)

	c.mu.Lock()
	var slugs []string
	bumped := make(map[string]bool)
	for slug, comp := range c.components {
		if repo != nil && !comp.Repository.Matches(*repo) {
			continue
		}

		key := comp.Repository.CacheKey()
		if !bumped[key] {
			bumped[key] = true
			c.webhooks[key]++
			c.releases.Invalidate(comp.Repository)
		}
		c.pending[key] = true
		slugs = append(slugs, slug)
	}
	c.mu.Unlock()

	if len(slugs) == 0 {
		logger.Info("Published release does not match any tracked component")
		return 0
	}

	sort.Strings(slugs)
	logger.Info("Release cache invalidated by webhook", "slugs", slugs)

	if c.refresher != nil {
		c.refresher.RequestRefresh(ctx, slugs)
	}

	return len(slugs)
}

func (c *Coordinator) notify(ctx context.Context, component model.Component, decision *model.UpdateDecision) {
	if c.notifier == nil {
		return
	}

	if err := c.notifier.NotifyUpdateAvailable(ctx, component, decision); err != nil {
		ctxlog.From(ctx).Warn("Failed to send update notification",
			"slug", component.Slug,
			"error", err,
		)
	}
}

// decide derives the update decision from a component and its latest release
func decide(component model.Component, info *model.ReleaseInfo) *model.UpdateDecision {
	available, version := model.IsUpgradeAvailable(component.Version, info.TagName)

	infoURL := info.HTMLURL
	if infoURL == "" {
		infoURL = component.Homepage
	}

	return &model.UpdateDecision{
		Available:     available,
		TargetVersion: version,
		PackageURL:    info.ArchiveURL,
		InfoURL:       infoURL,
	}
}

// isNewAnnouncement reports whether decision has not been announced before
func isNewAnnouncement(prev model.ComponentState, hadPrev bool, decision *model.UpdateDecision) bool {
	if !hadPrev || prev.Status != model.StatusUpdateAvailable || prev.Decision == nil {
		return true
	}
	return prev.Decision.TargetVersion != decision.TargetVersion
}
