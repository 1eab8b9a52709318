package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yukikurage/sprint-tracker/internal/constants"
)

// Pending is the deferred outcome of a repository write that was queued
// after the in-memory state had already changed.
type Pending struct {
	done chan struct{}
	err  error
}

func newPending() *Pending {
	return &Pending{done: make(chan struct{})}
}

func (p *Pending) resolve(err error) {
	p.err = err
	close(p.done)
}

// Done is closed once the write has finished.
func (p *Pending) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until the write finishes or ctx ends. A failed write
// returns an error wrapping ErrPersistenceFailed; the local change is not
// rolled back.
func (p *Pending) Wait(ctx context.Context) error {
	select {
	case <-p.done:
		return p.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Mutation carries the updated entity together with its pending write.
type Mutation[T any] struct {
	Value   T
	Persist *Pending
}

// Wait returns the entity and the persistence outcome.
func (m Mutation[T]) Wait(ctx context.Context) (T, error) {
	return m.Value, m.Persist.Wait(ctx)
}

type writeJob struct {
	name    string
	op      func(ctx context.Context) error
	pending *Pending
}

// Writer applies repository writes one at a time in submission order.
type Writer struct {
	mu      sync.RWMutex
	closed  bool
	jobs    chan writeJob
	done    chan struct{}
	timeout time.Duration
	logger  *slog.Logger
}

// NewWriter starts the write loop.
func NewWriter(logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{
		jobs:    make(chan writeJob, 256),
		done:    make(chan struct{}),
		timeout: constants.PersistTimeout,
		logger:  logger,
	}
	go w.run()
	return w
}

// Submit queues op and returns its pending outcome.
func (w *Writer) Submit(name string, op func(ctx context.Context) error) *Pending {
	p := newPending()

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		p.resolve(fmt.Errorf("%w: %s: writer closed", ErrPersistenceFailed, name))
		return p
	}
	w.jobs <- writeJob{name: name, op: op, pending: p}
	return p
}

// Close stops accepting writes and waits for queued ones to finish.
func (w *Writer) Close() {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.jobs)
	}
	w.mu.Unlock()
	<-w.done
}

func (w *Writer) run() {
	defer close(w.done)
	for job := range w.jobs {
		ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
		err := job.op(ctx)
		cancel()
		if err != nil {
			w.logger.Error("Persistence write failed", slog.String("op", job.name), slog.String("error", err.Error()))
			err = fmt.Errorf("%w: %s: %v", ErrPersistenceFailed, job.name, err)
		}
		job.pending.resolve(err)
	}
}
