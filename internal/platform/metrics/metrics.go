// Package metrics registra contadores Prometheus del gateway.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pets_gateway"

// Recorder cuenta operaciones del dispatcher (op, result) y notificaciones
// de cambio (kind).
type Recorder struct {
	ops      *prometheus.CounterVec
	duration *prometheus.HistogramVec
	changes  *prometheus.CounterVec
}

// New registra los collectors en reg. Registrar dos veces en el mismo
// registry devuelve error.
func New(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		ops: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Dispatcher operations by operation and result.",
		}, []string{"op", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "operation_duration_seconds",
			Help:      "Dispatcher operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"op"}),
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "change_notifications_total",
			Help:      "Change notifications broadcast, by identifier kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{r.ops, r.duration, r.changes} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) ObserveOp(op, result string, d time.Duration) {
	r.ops.WithLabelValues(op, result).Inc()
	r.duration.WithLabelValues(op).Observe(d.Seconds())
}

func (r *Recorder) ObserveChange(kind string) {
	r.changes.WithLabelValues(kind).Inc()
}
