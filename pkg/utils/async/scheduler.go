package async

import (
	"context"
	"runtime/debug"
	"time"

	"github.com/m-mizutani/ctxlog"
)

// RunInterval invokes the handler every interval until the context is
// cancelled. Each invocation is panic-safe; a failing or panicking run does
// not stop the schedule. The call blocks, so run it via Dispatch or a
// goroutine.
func RunInterval(ctx context.Context, interval time.Duration, handler func(ctx context.Context) error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce(ctx, handler)
		}
	}
}

func runOnce(ctx context.Context, handler func(ctx context.Context) error) {
	defer func() {
		if r := recover(); r != nil {
			stack := debug.Stack()
			ctxlog.From(ctx).Error("panic in scheduled handler",
				"recover", r,
				"stack", string(stack))
		}
	}()

	if err := handler(ctx); err != nil {
		ctxlog.From(ctx).Error("error in scheduled handler", "error", err)
	}
}
