// Package clock provides the injectable time source used by the services
// and the alarm monitor.
package clock

import (
	"sync"
	"time"
)

// Clock reports the current time and creates tickers.
type Clock interface {
	Now() time.Time
	NewTicker(d time.Duration) Ticker
}

// Ticker is the subset of *time.Ticker the tracker uses.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

// Real is backed by the time package.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) NewTicker(d time.Duration) Ticker {
	return realTicker{time.NewTicker(d)}
}

type realTicker struct{ t *time.Ticker }

func (r realTicker) C() <-chan time.Time { return r.t.C }
func (r realTicker) Stop()               { r.t.Stop() }

// Fake is a manually advanced clock. Tickers fire when Advance moves the
// clock past their next deadline.
type Fake struct {
	mu      sync.Mutex
	now     time.Time
	tickers []*fakeTicker
}

// NewFake returns a fake clock set to now.
func NewFake(now time.Time) *Fake {
	return &Fake{now: now}
}

func (f *Fake) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

// Set moves the clock to t without firing tickers.
func (f *Fake) Set(t time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = t
}

// Advance moves the clock forward and fires every due ticker once.
func (f *Fake) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	now := f.now
	tickers := append([]*fakeTicker(nil), f.tickers...)
	f.mu.Unlock()

	for _, t := range tickers {
		t.fire(now)
	}
}

// Tickers returns how many tickers are live.
func (f *Fake) Tickers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *Fake) NewTicker(d time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	t := &fakeTicker{clock: f, period: d, next: f.now.Add(d), ch: make(chan time.Time, 1)}
	f.tickers = append(f.tickers, t)
	return t
}

func (f *Fake) remove(t *fakeTicker) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, candidate := range f.tickers {
		if candidate == t {
			f.tickers = append(f.tickers[:i], f.tickers[i+1:]...)
			return
		}
	}
}

type fakeTicker struct {
	clock  *Fake
	period time.Duration
	mu     sync.Mutex
	next   time.Time
	ch     chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.ch }

func (t *fakeTicker) Stop() { t.clock.remove(t) }

func (t *fakeTicker) fire(now time.Time) {
	t.mu.Lock()
	if now.Before(t.next) {
		t.mu.Unlock()
		return
	}
	for !now.Before(t.next) {
		t.next = t.next.Add(t.period)
	}
	t.mu.Unlock()

	// Like time.Ticker, drop the tick if the reader is behind.
	select {
	case t.ch <- now:
	default:
	}
}
