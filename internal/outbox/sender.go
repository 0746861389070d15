package outbox

import (
	"context"
	"sync"
	"time"

	"github.com/matheus3301/guftagu/internal/model"
	"github.com/matheus3301/guftagu/internal/push"
	"go.uber.org/zap"
)

// Options tunes the retry loop. Zero values take the defaults.
type Options struct {
	Interval    time.Duration // poll interval and base retry delay
	MaxBackoff  time.Duration
	MaxAttempts int
	Timeout     time.Duration // per delivery attempt
}

const (
	defaultInterval    = 500 * time.Millisecond
	defaultMaxBackoff  = 30 * time.Second
	defaultMaxAttempts = 5
	defaultTimeout     = 10 * time.Second
)

type entry struct {
	n        model.Notification
	attempts int
	due      time.Time
}

// Sender is a push.Notifier that queues notifications and delivers them in
// the background, retrying failures with exponential backoff. Deliver never
// blocks on the network.
type Sender struct {
	next   push.Notifier
	opts   Options
	logger *zap.Logger
	now    func() time.Time

	mu      sync.Mutex
	pending []entry
	dropped int

	cancel context.CancelFunc
	done   chan struct{}
}

// NewSender creates a sender in front of next.
func NewSender(next push.Notifier, opts Options, logger *zap.Logger) *Sender {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Interval <= 0 {
		opts.Interval = defaultInterval
	}
	if opts.MaxBackoff <= 0 {
		opts.MaxBackoff = defaultMaxBackoff
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	return &Sender{
		next:   next,
		opts:   opts,
		logger: logger,
		now:    time.Now,
	}
}

// Deliver queues n for delivery.
func (s *Sender) Deliver(_ context.Context, n model.Notification) error {
	s.mu.Lock()
	s.pending = append(s.pending, entry{n: n, due: s.now()})
	s.mu.Unlock()
	return nil
}

// Start begins draining the queue.
func (s *Sender) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.loop(ctx)
}

// Stop stops the loop and waits for it to exit. Undelivered entries stay
// queued.
func (s *Sender) Stop() {
	if s.cancel != nil {
		s.cancel()
		<-s.done
	}
}

// Pending returns how many notifications wait for delivery.
func (s *Sender) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Dropped returns how many notifications were given up on.
func (s *Sender) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Sender) loop(ctx context.Context) {
	defer close(s.done)
	ticker := time.NewTicker(s.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.processPending(ctx)
		case <-ctx.Done():
			return
		}
	}
}

// processPending makes one delivery attempt for every entry that is due.
func (s *Sender) processPending(ctx context.Context) {
	now := s.now()
	s.mu.Lock()
	var due, later []entry
	for _, e := range s.pending {
		if e.due.After(now) {
			later = append(later, e)
		} else {
			due = append(due, e)
		}
	}
	s.pending = later
	s.mu.Unlock()

	var retry []entry
	dropped := 0
	for _, e := range due {
		if ctx.Err() != nil {
			retry = append(retry, e)
			continue
		}
		attemptCtx, cancel := context.WithTimeout(ctx, s.opts.Timeout)
		err := s.next.Deliver(attemptCtx, e.n)
		cancel()
		if err == nil {
			s.logger.Debug("notification delivered", zap.String("notification_id", e.n.ID), zap.Int("attempt", e.attempts+1))
			continue
		}

		e.attempts++
		if e.attempts >= s.opts.MaxAttempts {
			s.logger.Error("giving up on notification", zap.String("notification_id", e.n.ID), zap.Int("attempts", e.attempts), zap.Error(err))
			dropped++
			continue
		}
		e.due = s.now().Add(s.backoff(e.attempts))
		s.logger.Warn("notification delivery failed, will retry",
			zap.String("notification_id", e.n.ID),
			zap.Int("attempt", e.attempts),
			zap.Time("retry_at", e.due),
			zap.Error(err),
		)
		retry = append(retry, e)
	}

	if len(retry) > 0 || dropped > 0 {
		s.mu.Lock()
		s.pending = append(s.pending, retry...)
		s.dropped += dropped
		s.mu.Unlock()
	}
}

// backoff doubles the base interval per failed attempt, capped at MaxBackoff.
func (s *Sender) backoff(attempts int) time.Duration {
	d := s.opts.Interval
	for i := 1; i < attempts && d < s.opts.MaxBackoff; i++ {
		d *= 2
	}
	return min(d, s.opts.MaxBackoff)
}
