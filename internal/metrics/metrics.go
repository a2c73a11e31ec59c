// File: internal/metrics/metrics.go
package metrics

import (
	"errors"
	"fmt"
	"strconv"

	"stowage/pkg/multi/mirror"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "stowage"

// Collector holds the mirror counters. Results that callers never see, such as
// optimistic background writes, are only observable here and in the logs
type Collector struct {
	writes     *prometheus.CounterVec
	successes  prometheus.Histogram
	background *prometheus.CounterVec
	rollbacks  *prometheus.CounterVec
}

func New() *Collector {
	return &Collector{
		writes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_writes_total",
			Help:      "Mirror writes by return policy and result",
		}, []string{"policy", "result"}),
		successes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "mirror_write_successful_backends",
			Help:      "Backends that had acknowledged a mirror write when it returned",
			Buckets:   prometheus.LinearBuckets(0, 1, 11),
		}),
		background: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_background_writes_total",
			Help:      "Optimistic background writes by backend and result",
		}, []string{"backend", "result"}),
		rollbacks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "mirror_rollbacks_total",
			Help:      "Rollback deletes by backend and result",
		}, []string{"backend", "result"}),
	}
}

// Register adds the collector's metrics to reg (the default registerer when nil).
// Metrics that are already registered are left in place
func (c *Collector) Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, collector := range []prometheus.Collector{c.writes, c.successes, c.background, c.rollbacks} {
		if err := reg.Register(collector); err != nil {
			var already prometheus.AlreadyRegisteredError
			if !errors.As(err, &already) {
				return fmt.Errorf("registering metrics: %w", err)
			}
		}
	}
	return nil
}

// Returns an observer for one mirror whose backends are labelled with names, in mirror order.
// Indices without a name are labelled by number
func (c *Collector) MirrorObserver(names []string) mirror.Observer {
	return &mirrorObserver{collector: c, names: names}
}

type mirrorObserver struct {
	collector *Collector
	names     []string
}

func (o *mirrorObserver) WriteFinished(policy mirror.ReturnPolicy, required, successes int, err error) {
	o.collector.writes.WithLabelValues(policy.String(), result(err)).Inc()
	o.collector.successes.Observe(float64(successes))
}

func (o *mirrorObserver) BackgroundWriteFinished(index int, err error) {
	o.collector.background.WithLabelValues(o.backend(index), result(err)).Inc()
}

func (o *mirrorObserver) RollbackFinished(index int, err error) {
	o.collector.rollbacks.WithLabelValues(o.backend(index), result(err)).Inc()
}

func (o *mirrorObserver) backend(index int) string {
	if index >= 0 && index < len(o.names) {
		return o.names[index]
	}
	return strconv.Itoa(index)
}

func result(err error) string {
	if err != nil {
		return "failure"
	}
	return "success"
}

// Writes every metric gathered by g to path in the text exposition format, for the
// node-exporter textfile collector
func WriteTextfile(path string, g prometheus.Gatherer) error {
	if g == nil {
		g = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, g); err != nil {
		return fmt.Errorf("writing metrics textfile %s: %w", path, err)
	}
	return nil
}
