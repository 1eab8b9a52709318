package alarm

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the alarm monitor's prometheus collectors.
type Metrics struct {
	Active prometheus.Gauge
	Checks prometheus.Counter
	Cues   prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg when it is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Active: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_active_alarms",
			Help: "Number of tasks and subtasks currently flagged as due.",
		}),
		Checks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_alarm_checks_total",
			Help: "Number of due-item scans performed.",
		}),
		Cues: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_alarm_cues_total",
			Help: "Number of times the alarm cue was started.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.Active, m.Checks, m.Cues)
	}
	return m
}
