package onboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Worker runs cycle every interval until it is stopped. Each cycle holds the
// worker lock, so once SignalStop returns no further cycle will start.
type Worker struct {
	name     string
	interval time.Duration
	cycle    func(now time.Time)

	lock    sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	done    chan struct{}
}

func NewWorker(name string, interval time.Duration, cycle func(now time.Time)) *Worker {
	if interval <= 0 {
		interval = time.Second
	}
	return &Worker{
		name:     name,
		interval: interval,
		cycle:    cycle,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Name() string {
	return w.name
}

func (w *Worker) Interval() time.Duration {
	return w.interval
}

// Start launches the cycle loop in its own goroutine. The first cycle runs
// immediately. Starting twice, or after SignalStop, does nothing.
func (w *Worker) Start(ctx context.Context) {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.started {
		return
	}
	w.started = true

	ctx, w.cancel = context.WithCancel(ctx)
	go w.run(ctx)
}

func (w *Worker) run(ctx context.Context) {
	defer close(w.done)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	now := time.Now()
	for {
		if !w.step(ctx, now) {
			return
		}

		select {
		case <-ctx.Done():
			return
		case now = <-ticker.C:
		}
	}
}

func (w *Worker) step(ctx context.Context, now time.Time) bool {
	w.lock.Lock()
	defer w.lock.Unlock()

	if w.stopped || ctx.Err() != nil {
		return false
	}
	w.cycle(now)
	return true
}

// SignalStop asks the loop to exit. It waits for an in-flight cycle but not
// for the goroutine itself; use Wait or Done for that.
func (w *Worker) SignalStop() {
	w.lock.Lock()
	defer w.lock.Unlock()

	w.stopped = true
	if w.cancel != nil {
		w.cancel()
	}
	if !w.started {
		// never ran, nothing to wait for
		w.started = true
		close(w.done)
	}
}

func (w *Worker) Stopped() bool {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.stopped
}

// Done is closed once the loop has exited.
func (w *Worker) Done() <-chan struct{} {
	return w.done
}

func (w *Worker) Wait(ctx context.Context) error {
	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s did not stop: %w", w.name, ctx.Err())
	}
}
