// Package metrics exposes attendance counters to Prometheus.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"labattendance/internal/attendance"
)

// Attendance implements attendance.Observer with Prometheus counters.
type Attendance struct {
	registry   *prometheus.Registry
	clockIns   prometheus.Counter
	clockOuts  prometheus.Counter
	rejections *prometheus.CounterVec
	resets     *prometheus.CounterVec
}

// New registers the attendance counters plus Go and process collectors on a fresh registry.
func New() *Attendance {
	reg := prometheus.NewRegistry()
	m := &Attendance{
		registry: reg,
		clockIns: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lab_attendance",
			Name:      "clock_ins_total",
			Help:      "Successful clock-ins.",
		}),
		clockOuts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "lab_attendance",
			Name:      "clock_outs_total",
			Help:      "Successful clock-outs.",
		}),
		rejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lab_attendance",
			Name:      "rejections_total",
			Help:      "Rejected clock-in and clock-out requests by reason.",
		}, []string{"reason"}),
		resets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "lab_attendance",
			Name:      "resets_total",
			Help:      "Times all records were cleared, by reset mode.",
		}, []string{"mode"}),
	}
	reg.MustRegister(
		m.clockIns, m.clockOuts, m.rejections, m.resets,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Attendance) ClockedIn()  { m.clockIns.Inc() }
func (m *Attendance) ClockedOut() { m.clockOuts.Inc() }

func (m *Attendance) Rejected(reason string) {
	m.rejections.WithLabelValues(reason).Inc()
}

func (m *Attendance) Reset(mode attendance.ResetMode) {
	m.resets.WithLabelValues(string(mode)).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Attendance) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
