package graph

import "github.com/prometheus/client_golang/prometheus"

var (
	resolveTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "owmeta",
		Subsystem: "querier",
		Name:      "resolutions_total",
		Help:      "Total number of pattern resolutions executed",
	})

	hopsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "owmeta",
		Subsystem: "querier",
		Name:      "hops_total",
		Help:      "Total number of traversal hops evaluated",
	})

	resolveDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "owmeta",
		Subsystem: "querier",
		Name:      "resolution_duration_seconds",
		Help:      "Time spent resolving query patterns",
		Buckets:   prometheus.DefBuckets,
	})
)

// RegisterMetrics registers the querier metrics with the given registerer.
// Call once at startup; metrics are collected whether or not they are
// registered anywhere.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{resolveTotal, hopsTotal, resolveDuration} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}
