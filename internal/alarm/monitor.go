// Package alarm watches task and subtask due dates and keeps the set of
// items that are due, together with the process-wide mute and sounding
// flags.
package alarm

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/yukikurage/sprint-tracker/internal/clock"
	"github.com/yukikurage/sprint-tracker/internal/constants"
	"github.com/yukikurage/sprint-tracker/internal/models"
)

// Key identifies an alarm. SubtaskID is empty for task alarms.
type Key struct {
	TaskID    string `json:"task_id"`
	SubtaskID string `json:"subtask_id,omitempty"`
}

func (k Key) String() string {
	if k.SubtaskID == "" {
		return k.TaskID
	}
	return k.TaskID + "/" + k.SubtaskID
}

// Entry is an active alarm.
type Entry struct {
	Key       Key       `json:"key"`
	Title     string    `json:"title"`
	TaskTitle string    `json:"task_title"`
	DueDate   time.Time `json:"due_date"`
	RaisedAt  time.Time `json:"raised_at"`
}

// Notifier plays and stops the alarm cue.
type Notifier interface {
	PlayAlarmCue()
	StopAlarmCue()
}

// Source provides the task snapshot to scan.
type Source interface {
	Tasks() []models.Task
}

// Options configures a Monitor. Zero values fall back to the real clock,
// the default poll interval, no lead time, and slog.Default.
type Options struct {
	Clock    clock.Clock
	Interval time.Duration
	LeadTime time.Duration
	Logger   *slog.Logger
	Metrics  *Metrics
}

// CheckResult lists the keys a check raised and cleared.
type CheckResult struct {
	Raised  []Key
	Cleared []Key
}

// Monitor owns the alarm state. Check may be called from any goroutine.
type Monitor struct {
	source   Source
	notifier Notifier
	clock    clock.Clock
	interval time.Duration
	lead     time.Duration
	logger   *slog.Logger
	metrics  *Metrics

	// checkMu serializes scans so two checks never race on the active set.
	checkMu sync.Mutex

	mu       sync.Mutex
	active   map[Key]Entry
	muted    bool
	sounding bool

	runMu  sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a Monitor over source.
func New(source Source, notifier Notifier, opts Options) *Monitor {
	if opts.Clock == nil {
		opts.Clock = clock.Real{}
	}
	if opts.Interval <= 0 {
		opts.Interval = constants.DefaultAlarmPollInterval
	}
	if opts.LeadTime < 0 {
		opts.LeadTime = 0
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Monitor{
		source:   source,
		notifier: notifier,
		clock:    opts.Clock,
		interval: opts.Interval,
		lead:     opts.LeadTime,
		logger:   opts.Logger,
		metrics:  opts.Metrics,
		active:   make(map[Key]Entry),
	}
}

// Check scans every task and subtask once. New due items are added to the
// active set, items that are no longer due are removed, and the alarm cue
// starts at most once per check.
func (m *Monitor) Check() CheckResult {
	m.checkMu.Lock()
	defer m.checkMu.Unlock()

	now := m.clock.Now()
	due := make(map[Key]Entry)
	for _, task := range m.source.Tasks() {
		m.evaluate(task, now, due)
	}

	var result CheckResult
	var play, stop bool

	m.mu.Lock()
	for key, entry := range due {
		if _, ok := m.active[key]; ok {
			continue
		}
		entry.RaisedAt = now
		m.active[key] = entry
		result.Raised = append(result.Raised, key)
	}
	for key := range m.active {
		if _, ok := due[key]; !ok {
			delete(m.active, key)
			result.Cleared = append(result.Cleared, key)
		}
	}
	if len(result.Raised) > 0 && !m.muted && !m.sounding {
		m.sounding = true
		play = true
	}
	if len(m.active) == 0 && m.sounding {
		m.sounding = false
		stop = true
	}
	count := len(m.active)
	m.mu.Unlock()

	sortKeys(result.Raised)
	sortKeys(result.Cleared)
	for _, key := range result.Raised {
		m.logger.Info("Alarm raised", slog.String("key", key.String()))
	}
	for _, key := range result.Cleared {
		m.logger.Info("Alarm cleared", slog.String("key", key.String()))
	}

	if m.metrics != nil {
		m.metrics.Checks.Inc()
		m.metrics.Active.Set(float64(count))
		if play {
			m.metrics.Cues.Inc()
		}
	}
	if play {
		m.notify("play", Notifier.PlayAlarmCue)
	}
	if stop {
		m.notify("stop", Notifier.StopAlarmCue)
	}
	return result
}

// evaluate adds the task and its subtasks to due when they are due at now.
// Each item is evaluated on its own so one bad record cannot stop the scan.
func (m *Monitor) evaluate(task models.Task, now time.Time, due map[Key]Entry) {
	if !task.Status.Resolved() {
		m.guard(Key{TaskID: task.ID}, func() error {
			if task.DueDate.IsZero() {
				return fmt.Errorf("missing due date")
			}
			if m.isDue(task.DueDate, now) {
				key := Key{TaskID: task.ID}
				due[key] = Entry{Key: key, Title: task.Title, TaskTitle: task.Title, DueDate: task.DueDate}
			}
			return nil
		})
	}

	for i := range task.Subtasks {
		st := task.Subtasks[i]
		if st.Completed || st.DueDate == nil {
			continue
		}
		key := Key{TaskID: task.ID, SubtaskID: st.ID}
		m.guard(key, func() error {
			if st.DueDate.IsZero() {
				return fmt.Errorf("missing due date")
			}
			if m.isDue(*st.DueDate, now) {
				due[key] = Entry{Key: key, Title: st.Title, TaskTitle: task.Title, DueDate: *st.DueDate}
			}
			return nil
		})
	}
}

func (m *Monitor) isDue(dueDate, now time.Time) bool {
	return !now.Before(dueDate.Add(-m.lead))
}

func (m *Monitor) guard(key Key, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Warn("Skipped alarm evaluation", slog.String("key", key.String()), slog.Any("panic", r))
		}
	}()
	if err := fn(); err != nil {
		m.logger.Warn("Skipped alarm evaluation", slog.String("key", key.String()), slog.String("error", err.Error()))
	}
}

func (m *Monitor) notify(action string, fn func(Notifier)) {
	if m.notifier == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("Alarm notifier failed", slog.String("action", action), slog.Any("panic", r))
		}
	}()
	fn(m.notifier)
}

// StopAlarm silences the cue that is currently sounding. Active alarms stay
// active until their items are resolved.
func (m *Monitor) StopAlarm() {
	m.mu.Lock()
	wasSounding := m.sounding
	m.sounding = false
	m.mu.Unlock()

	if wasSounding {
		m.notify("stop", Notifier.StopAlarmCue)
	}
}

// SetMuted suppresses or re-enables the cue. Muting also stops a cue that
// is sounding; unmuting does not replay it.
func (m *Monitor) SetMuted(muted bool) {
	m.mu.Lock()
	m.muted = muted
	wasSounding := m.sounding
	if muted {
		m.sounding = false
	}
	m.mu.Unlock()

	if muted && wasSounding {
		m.notify("stop", Notifier.StopAlarmCue)
	}
}

// Muted reports whether the cue is suppressed.
func (m *Monitor) Muted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.muted
}

// Sounding reports whether the cue is playing.
func (m *Monitor) Sounding() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sounding
}

// Count returns the number of active alarms.
func (m *Monitor) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.active)
}

// IsActive reports whether key is in the active set.
func (m *Monitor) IsActive(key Key) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[key]
	return ok
}

// Active returns the active alarms ordered by due date.
func (m *Monitor) Active() []Entry {
	m.mu.Lock()
	entries := make([]Entry, 0, len(m.active))
	for _, e := range m.active {
		entries = append(entries, e)
	}
	m.mu.Unlock()

	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].DueDate.Equal(entries[j].DueDate) {
			return entries[i].DueDate.Before(entries[j].DueDate)
		}
		return entries[i].Key.String() < entries[j].Key.String()
	})
	return entries
}

// Start runs a check immediately and then on every tick until ctx ends or
// Stop is called. Calling Start on a running monitor does nothing.
func (m *Monitor) Start(ctx context.Context) {
	m.runMu.Lock()
	defer m.runMu.Unlock()
	if m.cancel != nil {
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	ticker := m.clock.NewTicker(m.interval)
	done := make(chan struct{})
	m.cancel = cancel
	m.done = done

	m.logger.Info("Alarm monitor started", slog.Duration("interval", m.interval), slog.Duration("lead_time", m.lead))

	go func() {
		defer close(done)
		defer ticker.Stop()

		m.Check()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C():
				m.Check()
			}
		}
	}()
}

// Stop cancels the polling loop and waits for it to exit.
func (m *Monitor) Stop() {
	m.runMu.Lock()
	cancel, done := m.cancel, m.done
	m.cancel, m.done = nil, nil
	m.runMu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	m.logger.Info("Alarm monitor stopped")
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
}
