package sched

import (
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheduler runs delayed and repeating tasks keyed by entity id
// (e.g. "msg:<id>", "typing:<chat>", "call:tick"). Registering a task under
// a key that is already pending replaces the old task.
//
// Callbacks run on their own goroutine and never while the scheduler's lock
// is held, so they may freely call back into the scheduler.
type Scheduler struct {
	mu      sync.Mutex
	tasks   map[string]*task
	seq     uint64
	stopped bool
	logger  *zap.Logger
}

type task struct {
	id    uint64
	timer *time.Timer
	done  chan struct{}
}

func (t *task) stop() {
	if t.timer != nil {
		t.timer.Stop()
	}
	if t.done != nil {
		close(t.done)
	}
}

// New creates an empty scheduler.
func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		tasks:  make(map[string]*task),
		logger: logger,
	}
}

// After runs fn once after d.
func (s *Scheduler) After(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(key)

	s.seq++
	id := s.seq
	t := &task{id: id}
	t.timer = time.AfterFunc(d, func() {
		s.mu.Lock()
		cur, ok := s.tasks[key]
		if !ok || cur.id != id {
			// Replaced or cancelled after the timer already fired.
			s.mu.Unlock()
			return
		}
		delete(s.tasks, key)
		s.mu.Unlock()
		fn()
	})
	s.tasks[key] = t
}

// Every runs fn every d until the task is cancelled.
func (s *Scheduler) Every(key string, d time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.cancelLocked(key)

	s.seq++
	t := &task{id: s.seq, done: make(chan struct{})}
	s.tasks[key] = t

	ticker := time.NewTicker(d)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				select {
				case <-t.done:
					return
				default:
				}
				fn()
			case <-t.done:
				return
			}
		}
	}()
}

// Cancel stops the task registered under key, if any.
func (s *Scheduler) Cancel(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cancelLocked(key)
}

// CancelPrefix stops every task whose key starts with prefix and returns how
// many were stopped.
func (s *Scheduler) CancelPrefix(prefix string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for key := range s.tasks {
		if strings.HasPrefix(key, prefix) {
			s.cancelLocked(key)
			n++
		}
	}
	return n
}

// Pending reports whether a task is registered under key.
func (s *Scheduler) Pending(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[key]
	return ok
}

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Stop cancels all pending tasks. Later registrations are ignored.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.stopped = true
	n := len(s.tasks)
	for key := range s.tasks {
		s.cancelLocked(key)
	}
	s.logger.Debug("scheduler stopped", zap.Int("cancelled", n))
}

func (s *Scheduler) cancelLocked(key string) {
	if t, ok := s.tasks[key]; ok {
		t.stop()
		delete(s.tasks, key)
	}
}
