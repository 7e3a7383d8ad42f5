// Package schedule runs housekeeping tasks on fixed intervals.
//
// Usage:
//
//	s := schedule.New()
//	s.Every(10*time.Minute).Name("carts:purge").Run(func(ctx context.Context) { store.Purge() })
//	s.Start(ctx)
//	defer s.Stop()
package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/shashiranjanraj/duka/pkg/logger"
)

// Task is the function signature for a scheduled task.
type Task func(ctx context.Context)

type entry struct {
	id       string
	interval time.Duration
	task     Task
	lastRun  time.Time
	running  bool
}

// Scheduler dispatches registered entries once their interval has elapsed.
// A task never overlaps with its own previous run.
type Scheduler struct {
	mu      sync.Mutex
	entries []*entry
	tick    time.Duration
	now     func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns a scheduler that checks for due tasks every second.
func New() *Scheduler {
	return &Scheduler{tick: time.Second, now: time.Now}
}

// Builder configures one entry before Run registers it.
type Builder struct {
	s *Scheduler
	e *entry
}

// Every starts an entry that runs each d. The first run happens on the
// first tick after Start.
func (s *Scheduler) Every(d time.Duration) *Builder {
	return &Builder{s: s, e: &entry{interval: d}}
}

// Name gives the entry an identifier for logs and List.
func (b *Builder) Name(id string) *Builder {
	b.e.id = id
	return b
}

// Run registers the task.
func (b *Builder) Run(fn Task) {
	b.e.task = fn
	b.s.mu.Lock()
	defer b.s.mu.Unlock()
	if b.e.id == "" {
		b.e.id = fmt.Sprintf("task-%d", len(b.s.entries)+1)
	}
	b.s.entries = append(b.s.entries, b.e)
}

// Start begins dispatching in the background until ctx is done or Stop is
// called.
func (s *Scheduler) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop(ctx)
	}()
}

// Stop cancels the loop and waits for running tasks to return.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	s.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	s.wg.Wait()
}

func (s *Scheduler) loop(ctx context.Context) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.dispatchDue(ctx, s.now())
		}
	}
}

func (s *Scheduler) dispatchDue(ctx context.Context, now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.entries {
		if e.running || (!e.lastRun.IsZero() && now.Sub(e.lastRun) < e.interval) {
			continue
		}
		e.running = true
		e.lastRun = now

		s.wg.Add(1)
		go s.run(ctx, e)
	}
}

func (s *Scheduler) run(ctx context.Context, e *entry) {
	defer s.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("schedule: task panicked", "id", e.id, "panic", r)
		}
		s.mu.Lock()
		e.running = false
		s.mu.Unlock()
	}()

	logger.Debug("schedule: running task", "id", e.id)
	e.task(ctx)
}

// List describes the registered entries, sorted by id.
func (s *Scheduler) List() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, fmt.Sprintf("%s  [every %s]", e.id, e.interval))
	}
	sort.Strings(out)
	return out
}
