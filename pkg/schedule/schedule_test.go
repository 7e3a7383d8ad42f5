package schedule

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDispatchDueRespectsInterval(t *testing.T) {
	s := New()
	var runs atomic.Int32
	done := make(chan struct{}, 4)
	s.Every(time.Minute).Name("purge").Run(func(context.Context) {
		runs.Add(1)
		done <- struct{}{}
	})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ctx := context.Background()

	s.dispatchDue(ctx, start)
	<-done
	s.wg.Wait()

	s.dispatchDue(ctx, start.Add(30*time.Second))
	s.wg.Wait()
	assert.Equal(t, int32(1), runs.Load())

	s.dispatchDue(ctx, start.Add(time.Minute))
	<-done
	s.wg.Wait()
	assert.Equal(t, int32(2), runs.Load())
}

func TestNoOverlap(t *testing.T) {
	s := New()
	release := make(chan struct{})
	var runs atomic.Int32
	s.Every(time.Millisecond).Run(func(context.Context) {
		runs.Add(1)
		<-release
	})

	now := time.Now()
	s.dispatchDue(context.Background(), now)
	s.dispatchDue(context.Background(), now.Add(time.Second))
	close(release)
	s.wg.Wait()

	assert.Equal(t, int32(1), runs.Load())
}

func TestPanicDoesNotKillScheduler(t *testing.T) {
	s := New()
	s.Every(time.Millisecond).Name("boom").Run(func(context.Context) { panic("boom") })

	s.dispatchDue(context.Background(), time.Now())
	s.wg.Wait()

	s.mu.Lock()
	defer s.mu.Unlock()
	assert.False(t, s.entries[0].running)
}

func TestStartStop(t *testing.T) {
	s := New()
	s.tick = time.Millisecond
	ran := make(chan struct{}, 1)
	s.Every(time.Hour).Run(func(context.Context) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})

	s.Start(context.Background())
	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		require.FailNow(t, "task never ran")
	}
	s.Stop()
}

func TestList(t *testing.T) {
	s := New()
	s.Every(time.Minute).Name("b").Run(func(context.Context) {})
	s.Every(time.Hour).Name("a").Run(func(context.Context) {})
	assert.Equal(t, []string{"a  [every 1h0m0s]", "b  [every 1m0s]"}, s.List())
}
