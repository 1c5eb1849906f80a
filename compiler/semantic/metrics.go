package semantic

import "github.com/prometheus/client_golang/prometheus"

var (
	resolutions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vdb",
		Subsystem: "resolver",
		Name:      "commands_total",
		Help:      "Commands resolved, by command kind.",
	}, []string{"kind"})
	resolveErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vdb",
		Subsystem: "resolver",
		Name:      "errors_total",
		Help:      "Failed resolutions, by error kind.",
	}, []string{"kind"})
)

// RegisterMetrics adds the resolver counters to reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{resolutions, resolveErrors} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
