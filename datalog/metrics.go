package datalog

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional side channel onto the bounded fixpoint loop
// (component C5): it observes the fact count and iteration count once
// per round. It never influences termination; Limits alone does that.
//
// A nil *Metrics is valid and simply does nothing, so World works
// unmetered by default.
type Metrics struct {
	facts      prometheus.Gauge
	iterations prometheus.Counter
}

// NewMetrics builds the gauge/counter pair and, if reg is non-nil,
// registers them with it.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		facts: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "biscuitdl",
			Subsystem: "datalog",
			Name:      "facts",
			Help:      "Number of facts currently held by the world being evaluated.",
		}),
		iterations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "biscuitdl",
			Subsystem: "datalog",
			Name:      "iterations_total",
			Help:      "Total number of fixpoint rounds executed across all worlds.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.facts, m.iterations)
	}
	return m
}

// observe records one fixpoint round having completed with factCount
// facts now held.
func (m *Metrics) observe(factCount int) {
	if m == nil {
		return
	}
	m.facts.Set(float64(factCount))
	m.iterations.Inc()
}
