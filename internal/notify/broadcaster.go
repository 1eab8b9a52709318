// Package notify delivers completion and alarm cues to connected consoles.
package notify

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType names a cue.
type EventType string

const (
	EventCompletion   EventType = "completion"
	EventAlarm        EventType = "alarm"
	EventAlarmStopped EventType = "alarm_stopped"
)

// Event is what subscribers receive.
type Event struct {
	ID   string    `json:"id"`
	Type EventType `json:"type"`
	At   time.Time `json:"at"`
}

const subscriberBuffer = 16

// Broadcaster fans cues out to subscribers. Publishing never blocks; a
// subscriber whose buffer is full misses the event.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[chan Event]struct{}
	closed bool
	logger *slog.Logger
	now    func() time.Time
}

// NewBroadcaster creates a Broadcaster.
func NewBroadcaster(logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{
		subs:   make(map[chan Event]struct{}),
		logger: logger,
		now:    time.Now,
	}
}

// Subscribe registers a new subscriber. After Close the returned channel
// is already closed.
func (b *Broadcaster) Subscribe() <-chan Event {
	ch := make(chan Event, subscriberBuffer)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}
	return ch
}

// Unsubscribe removes the subscriber and closes its channel.
func (b *Broadcaster) Unsubscribe(sub <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		if ch == sub {
			delete(b.subs, ch)
			close(ch)
			return
		}
	}
}

// Close closes every subscriber channel so open streams end. It is safe to
// call more than once.
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	b.logger.Debug("Broadcaster closed")
}

// Subscribers returns the number of live subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

func (b *Broadcaster) PlayCompletionCue() { b.publish(EventCompletion) }

func (b *Broadcaster) PlayAlarmCue() { b.publish(EventAlarm) }

func (b *Broadcaster) StopAlarmCue() { b.publish(EventAlarmStopped) }

func (b *Broadcaster) publish(t EventType) {
	ev := Event{ID: uuid.NewString(), Type: t, At: b.now()}

	b.mu.RLock()
	defer b.mu.RUnlock()

	dropped := 0
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
			dropped++
		}
	}
	b.logger.Debug("Cue published", slog.String("type", string(t)), slog.Int("subscribers", len(b.subs)), slog.Int("dropped", dropped))
}
