package async

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"github.com/m-mizutani/ctxlog"
)

// Group runs handlers in the background and lets the owner wait for them on
// shutdown. The zero value is ready to use and applies no timeout.
type Group struct {
	wg      sync.WaitGroup
	timeout time.Duration
}

// GroupOption is a functional option for Group
type GroupOption func(*Group)

// WithTimeout bounds the run time of every handler dispatched through the group
func WithTimeout(d time.Duration) GroupOption {
	return func(g *Group) {
		g.timeout = d
	}
}

// NewGroup creates a new Group
func NewGroup(opts ...GroupOption) *Group {
	g := &Group{}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Dispatch executes handler in a new goroutine. The handler context keeps the
// values of ctx, including its logger, but is not cancelled with it. Panics and
// returned errors are logged under name.
func (g *Group) Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	newCtx := context.WithoutCancel(ctx)

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()

		logger := ctxlog.From(newCtx).With("task", name)

		runCtx := newCtx
		if g.timeout > 0 {
			var cancel context.CancelFunc
			runCtx, cancel = context.WithTimeout(newCtx, g.timeout)
			defer cancel()
		}

		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(runCtx); err != nil {
			logger.Error("error in async handler", "error", err)
		}
	}()
}

// Wait blocks until every dispatched handler returned
func (g *Group) Wait() {
	g.wg.Wait()
}

// Dispatch executes handler in a new untracked goroutine
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	var g Group
	g.Dispatch(ctx, "", handler)
}
