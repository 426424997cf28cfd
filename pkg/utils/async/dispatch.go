package async

import (
	"context"
	"sync"

	"github.com/getsentry/sentry-go"
	"github.com/secmon-lab/iract/pkg/utils/errutil"
	"github.com/secmon-lab/iract/pkg/utils/logging"
)

var inflight sync.WaitGroup

// Dispatch runs handler on its own goroutine, detached from the request that
// started it. The new context carries the caller's logger and Sentry hub but
// not its cancellation. Failures and panics are logged under name.
func Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	logger := logging.From(ctx).With("task", name)
	bgCtx := logging.With(context.Background(), logger)
	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		bgCtx = sentry.SetHubOnContext(bgCtx, hub.Clone())
	}

	inflight.Add(1)
	go func() {
		defer inflight.Done()
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic in async task", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async task failed")
			return
		}
		logger.Debug("async task done")
	}()
}

// Wait blocks until every dispatched task has returned or ctx is done. It
// reports whether all tasks finished.
func Wait(ctx context.Context) bool {
	done := make(chan struct{})
	go func() {
		inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return true
	case <-ctx.Done():
		return false
	}
}
