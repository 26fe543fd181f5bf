package scheduler_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/updraft/pkg/controller/scheduler"
	"github.com/m-mizutani/updraft/pkg/domain/model"
)

// MockChecker records update check requests
type MockChecker struct {
	mu         sync.Mutex
	allCalls   int
	slugCalls  [][]string
	checkedAll chan struct{}
}

func newMockChecker() *MockChecker {
	return &MockChecker{checkedAll: make(chan struct{}, 10)}
}

func (m *MockChecker) CheckAll(ctx context.Context) []model.CheckResult {
	m.mu.Lock()
	m.allCalls++
	m.mu.Unlock()

	m.checkedAll <- struct{}{}
	return []model.CheckResult{
		{Slug: "a", Outcome: model.OutcomeStable},
		{Slug: "b", Outcome: model.OutcomeUpdateAvailable},
	}
}

func (m *MockChecker) CheckComponents(ctx context.Context, slugs []string) []model.CheckResult {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.slugCalls = append(m.slugCalls, slugs)

	results := make([]model.CheckResult, 0, len(slugs))
	for _, slug := range slugs {
		results = append(results, model.CheckResult{Slug: slug, Outcome: model.OutcomeIndeterminate})
	}
	return results
}

// MockReloader counts reloads
type MockReloader struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *MockReloader) Reload(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.err
}

func TestScheduler_RunOnce(t *testing.T) {
	ctx := context.Background()
	checker := newMockChecker()
	reloader := &MockReloader{err: errors.New("firestore unavailable")}

	s := scheduler.New(scheduler.WithReloader(reloader))

	// Without a checker nothing is checked
	gt.Value(t, s.RunOnce(ctx)).Nil()
	gt.Number(t, reloader.calls).Equal(1)

	gt.NoError(t, s.Start(ctx, checker))
	defer s.Stop()

	// First pass runs immediately after start
	select {
	case <-checker.checkedAll:
	case <-time.After(time.Second):
		t.Fatal("initial check did not run")
	}

	results := s.RunOnce(ctx)
	gt.Number(t, len(results)).Equal(2)
}

func TestScheduler_RequestRefresh(t *testing.T) {
	ctx := context.Background()
	checker := newMockChecker()

	s := scheduler.New(scheduler.WithInterval(time.Hour))

	// Dropped before start
	s.RequestRefresh(ctx, []string{"early"})

	gt.NoError(t, s.Start(ctx, checker))
	s.RequestRefresh(ctx, []string{"my-plugin"})
	s.RequestRefresh(ctx, []string{"a", "b"})
	s.Stop()

	checker.mu.Lock()
	defer checker.mu.Unlock()
	gt.Number(t, len(checker.slugCalls)).Equal(2)
	for _, slugs := range checker.slugCalls {
		gt.Value(t, slugs[0]).NotEqual("early")
	}
}

func TestScheduler_RequestRefreshOutlivesCaller(t *testing.T) {
	checker := newMockChecker()
	s := scheduler.New(scheduler.WithInterval(time.Hour))
	gt.NoError(t, s.Start(context.Background(), checker))

	ctx, cancel := context.WithCancel(context.Background())
	s.RequestRefresh(ctx, []string{"my-plugin"})
	cancel()
	s.Stop()

	checker.mu.Lock()
	defer checker.mu.Unlock()
	gt.Value(t, checker.slugCalls).Equal([][]string{{"my-plugin"}})
}

func TestScheduler_StartRequiresChecker(t *testing.T) {
	s := scheduler.New()
	gt.Error(t, s.Start(context.Background(), nil))
}
