package scheduler

import (
	"time"

	"github.com/VictoriaMetrics/metrics"
)

// Metrics holds scheduler counters in their own set so that several
// schedulers can coexist in one process.
type Metrics struct {
	set *metrics.Set

	enqueued        *metrics.Counter
	cancelled       *metrics.Counter
	paused          *metrics.Counter
	resumed         *metrics.Counter
	promoted        *metrics.Counter
	demoted         *metrics.Counter
	reordered       *metrics.Counter
	completed       *metrics.Counter
	inconsistencies *metrics.Counter
	denied          *metrics.Counter
	tickErrors      *metrics.Counter
	tickDuration    *metrics.Histogram
}

// NewMetrics creates the scheduler metric set.
func NewMetrics() *Metrics {
	set := metrics.NewSet()
	return &Metrics{
		set:             set,
		enqueued:        set.NewCounter(`foreman_scheduler_events_total{type="enqueued"}`),
		cancelled:       set.NewCounter(`foreman_scheduler_events_total{type="cancelled"}`),
		paused:          set.NewCounter(`foreman_scheduler_events_total{type="paused"}`),
		resumed:         set.NewCounter(`foreman_scheduler_events_total{type="resumed"}`),
		promoted:        set.NewCounter(`foreman_scheduler_events_total{type="promoted"}`),
		demoted:         set.NewCounter(`foreman_scheduler_events_total{type="demoted"}`),
		reordered:       set.NewCounter(`foreman_scheduler_events_total{type="reordered"}`),
		completed:       set.NewCounter(`foreman_scheduler_events_total{type="completed"}`),
		inconsistencies: set.NewCounter(`foreman_scheduler_events_total{type="inconsistency"}`),
		denied:          set.NewCounter(`foreman_scheduler_parallelization_denied_total`),
		tickErrors:      set.NewCounter(`foreman_scheduler_tick_errors_total`),
		tickDuration:    set.NewHistogram(`foreman_scheduler_tick_duration_seconds`),
	}
}

// Set returns the underlying metric set for registration.
func (m *Metrics) Set() *metrics.Set {
	return m.set
}

// Completed returns the number of completed projects so far.
func (m *Metrics) Completed() uint64 {
	return m.completed.Get()
}

func (m *Metrics) observe(events []Event) {
	for _, ev := range events {
		switch ev.Type {
		case EventEnqueued:
			m.enqueued.Inc()
		case EventCancelled:
			m.cancelled.Inc()
		case EventPaused:
			m.paused.Inc()
		case EventResumed:
			m.resumed.Inc()
		case EventPromoted:
			m.promoted.Inc()
		case EventDemoted:
			m.demoted.Inc()
		case EventReordered:
			m.reordered.Inc()
		case EventCompleted:
			m.completed.Inc()
		case EventInconsistency:
			m.inconsistencies.Inc()
		}
	}
}

func (m *Metrics) observeTick(start time.Time, failed bool) {
	m.tickDuration.UpdateDuration(start)
	if failed {
		m.tickErrors.Inc()
	}
}
