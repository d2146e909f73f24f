package notifier

import "github.com/prometheus/client_golang/prometheus"

// Metrics counts what the notifier has done.
type Metrics struct {
	UserChanges prometheus.Counter
	Broadcasts  *prometheus.CounterVec
	FlushErrors prometheus.Counter
}

// NewMetrics creates the counters and registers them on reg. A nil reg
// leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		UserChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertprefs_user_changes_total",
			Help: "Total number of flushes that found a user change",
		}),
		Broadcasts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alertprefs_broadcasts_total",
				Help: "Total number of broadcasts sent",
			},
			[]string{"action"},
		),
		FlushErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "alertprefs_flush_errors_total",
			Help: "Total number of flushes that returned an error",
		}),
	}
	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.UserChanges, m.Broadcasts, m.FlushErrors} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}
