package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/updraft/pkg/domain/interfaces"
	"github.com/m-mizutani/updraft/pkg/domain/model"
	"github.com/m-mizutani/updraft/pkg/utils/async"
)

const (
	// DefaultInterval is the period of full update checks
	DefaultInterval = 12 * time.Hour

	// DefaultRefreshTimeout bounds a single refresh run
	DefaultRefreshTimeout = 2 * time.Minute
)

// Checker runs update checks
type Checker interface {
	CheckAll(ctx context.Context) []model.CheckResult
	CheckComponents(ctx context.Context, slugs []string) []model.CheckResult
}

// Reloader refreshes state that is read on the request path, such as settings
type Reloader interface {
	Reload(ctx context.Context) error
}

// Scheduler runs periodic update checks and on-demand refreshes outside of the
// caller's request path
type Scheduler struct {
	interval  time.Duration
	reloaders []Reloader
	cron      *gocron.Scheduler
	group     *async.Group

	mu      sync.RWMutex
	checker Checker
}

var _ interfaces.RefreshScheduler = (*Scheduler)(nil)

// Option is a functional option for Scheduler
type Option func(*Scheduler)

// WithInterval sets the period of full update checks
func WithInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.interval = d
		}
	}
}

// WithReloader adds a reloader run before every periodic check
func WithReloader(r Reloader) Option {
	return func(s *Scheduler) {
		s.reloaders = append(s.reloaders, r)
	}
}

// New creates a new Scheduler. It does nothing until Start is called.
func New(opts ...Option) *Scheduler {
	s := &Scheduler{
		interval: DefaultInterval,
		cron:     gocron.NewScheduler(time.UTC),
		group:    async.NewGroup(async.WithTimeout(DefaultRefreshTimeout)),
	}
	for _, opt := range opts {
		opt(s)
	}

	// A slow pass is never overlapped by the next one
	s.cron.SingletonModeAll()

	return s
}

// Start registers the periodic job and starts it. The first pass runs immediately.
func (s *Scheduler) Start(ctx context.Context, checker Checker) error {
	if checker == nil {
		return goerr.New("checker is required")
	}

	s.mu.Lock()
	s.checker = checker
	s.mu.Unlock()

	jobCtx := context.WithoutCancel(ctx)
	if _, err := s.cron.Every(s.interval).Do(func() { s.RunOnce(jobCtx) }); err != nil {
		return goerr.Wrap(err, "failed to schedule update checks", goerr.V("interval", s.interval))
	}

	s.cron.StartAsync()
	ctxlog.From(ctx).Info("Scheduler started", "interval", s.interval)

	return nil
}

// Stop stops the periodic job and waits for in-flight refreshes
func (s *Scheduler) Stop() {
	s.cron.Stop()
	s.group.Wait()
}

// RunOnce reloads settings and checks every tracked component
func (s *Scheduler) RunOnce(ctx context.Context) []model.CheckResult {
	logger := ctxlog.From(ctx)

	for _, r := range s.reloaders {
		if err := r.Reload(ctx); err != nil {
			logger.Warn("Failed to reload settings, keeping previous values", "error", err)
		}
	}

	checker := s.currentChecker()
	if checker == nil {
		logger.Warn("Scheduler has no checker, skipping update checks")
		return nil
	}

	started := time.Now()
	results := checker.CheckAll(ctx)
	logSummary(ctx, "Periodic update check completed", results, started)

	return results
}

// RequestRefresh runs update checks for slugs in the background
func (s *Scheduler) RequestRefresh(ctx context.Context, slugs []string) {
	logger := ctxlog.From(ctx)

	checker := s.currentChecker()
	if checker == nil {
		logger.Warn("Scheduler not started, dropping refresh request", "slugs", slugs)
		return
	}

	s.group.Dispatch(ctx, "refresh", func(ctx context.Context) error {
		started := time.Now()
		results := checker.CheckComponents(ctx, slugs)
		logSummary(ctx, "Requested update check completed", results, started)
		return nil
	})
}

func (s *Scheduler) currentChecker() Checker {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.checker
}

func logSummary(ctx context.Context, msg string, results []model.CheckResult, started time.Time) {
	counts := map[model.CheckOutcome]int{}
	for _, r := range results {
		counts[r.Outcome]++
	}

	ctxlog.From(ctx).Info(msg,
		"components", len(results),
		"update_available", counts[model.OutcomeUpdateAvailable],
		"stable", counts[model.OutcomeStable],
		"indeterminate", counts[model.OutcomeIndeterminate],
		"duration_ms", time.Since(started).Milliseconds(),
	)
}
