package vsync

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics counts what vsync sources do. All methods may be called on a nil
// *Metrics, which counts nothing.
//
// Counters are resolved when Metrics is created. The vsync callback only
// increments them and never allocates.
type Metrics struct {
	callbacks prometheus.Counter
	glitches  prometheus.Counter
	early     prometheus.Counter
	retries   prometheus.Counter
	fallbacks prometheus.Counter
	enabled   prometheus.Gauge
}

// NewMetrics creates the vsync metrics and registers them with reg.
// If reg is nil, the metrics are created but not registered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	corrections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vsync",
		Name:      "timestamp_corrections_total",
		Help:      "Vsync timestamps corrected before delivery, by kind of correction.",
	}, []string{"kind"})
	m := &Metrics{
		callbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "callbacks_total",
			Help:      "Vsync callbacks received from display links.",
		}),
		glitches: corrections.WithLabelValues(GlitchCorrection.String()),
		early:    corrections.WithLabelValues(EarlyCorrection.String()),
		retries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "enable_retries_total",
			Help:      "Retries scheduled after transient failures to acquire a display link.",
		}),
		fallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "vsync",
			Name:      "software_fallbacks_total",
			Help:      "Vsync sources created as software sources because hardware vsync failed.",
		}),
		enabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "vsync",
			Name:      "display_enabled",
			Help:      "1 while a hardware display delivers vsync, 0 otherwise.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.callbacks, corrections, m.retries, m.fallbacks, m.enabled)
	}
	return m
}

func (m *Metrics) callback(c Correction) {
	if m == nil {
		return
	}
	m.callbacks.Inc()
	switch c {
	case GlitchCorrection:
		m.glitches.Inc()
	case EarlyCorrection:
		m.early.Inc()
	}
}

func (m *Metrics) retry() {
	if m != nil {
		m.retries.Inc()
	}
}

func (m *Metrics) fallback() {
	if m != nil {
		m.fallbacks.Inc()
	}
}

func (m *Metrics) setEnabled(on bool) {
	if m == nil {
		return
	}
	if on {
		m.enabled.Set(1)
	} else {
		m.enabled.Set(0)
	}
}
