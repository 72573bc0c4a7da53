package async_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/prism-brain/prism/pkg/utils/async"
)

func TestRunInterval(t *testing.T) {
	t.Run("runs repeatedly until cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var runs atomic.Int32
		done := make(chan struct{})

		go func() {
			async.RunInterval(ctx, 10*time.Millisecond, func(ctx context.Context) error {
				if runs.Add(1) >= 3 {
					cancel()
				}
				return nil
			})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler did not stop after cancellation")
		}
		gt.True(t, runs.Load() >= 3)
	})

	t.Run("keeps running after handler errors", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var runs atomic.Int32
		done := make(chan struct{})

		go func() {
			async.RunInterval(ctx, 10*time.Millisecond, func(ctx context.Context) error {
				if runs.Add(1) >= 2 {
					cancel()
					return nil
				}
				return errors.New("source unavailable")
			})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler stopped on handler error")
		}
		gt.True(t, runs.Load() >= 2)
	})

	t.Run("keeps running after handler panic", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		var runs atomic.Int32
		done := make(chan struct{})

		go func() {
			async.RunInterval(ctx, 10*time.Millisecond, func(ctx context.Context) error {
				if runs.Add(1) >= 2 {
					cancel()
					return nil
				}
				panic("collector blew up")
			})
			close(done)
		}()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatal("scheduler stopped on handler panic")
		}
		gt.True(t, runs.Load() >= 2)
	})
}
