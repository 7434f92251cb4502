package session

import (
	"context"
	"sync"
	"time"
)

// Timer counts a fixed allotment down once per interval and calls onExpire
// exactly once when it reaches zero. It is owned by a single session and
// stopped on every exit from InProgress.
type Timer struct {
	mu        sync.Mutex
	remaining int
	interval  time.Duration
	onExpire  func()

	cancel context.CancelFunc
	done   chan struct{}
}

// StartTimer begins counting total ticks down. interval is one second in
// production.
func StartTimer(total int, interval time.Duration, onExpire func()) *Timer {
	ctx, cancel := context.WithCancel(context.Background())
	t := &Timer{
		remaining: total,
		interval:  interval,
		onExpire:  onExpire,
		cancel:    cancel,
		done:      make(chan struct{}),
	}
	go t.run(ctx)
	return t
}

func (t *Timer) run(ctx context.Context) {
	defer close(t.done)

	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ctx.Err() != nil {
				return
			}
			if t.tick() > 0 {
				continue
			}
			t.cancel()
			if t.onExpire != nil {
				t.onExpire()
			}
			return
		}
	}
}

func (t *Timer) tick() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.remaining > 0 {
		t.remaining--
	}
	return t.remaining
}

// Remaining is the number of ticks left.
func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

// Stop halts the countdown. It is safe to call more than once and from
// inside onExpire; it does not wait for the goroutine to exit.
func (t *Timer) Stop() {
	t.cancel()
}

// Done is closed once the countdown goroutine has exited.
func (t *Timer) Done() <-chan struct{} {
	return t.done
}
