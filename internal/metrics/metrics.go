// Package metrics records the outcome of a run in a private Prometheus
// registry and writes it in the text exposition format, ready for the
// node_exporter textfile collector.
package metrics

import (
	"time"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "pubdoc"

// Run collects metrics for one pipeline run.
type Run struct {
	registry *prometheus.Registry

	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	failures      *prometheus.CounterVec
	documentBytes prometheus.Gauge
	downloaded    prometheus.Counter
	duration      prometheus.Gauge
	success       prometheus.Gauge
	lastRun       prometheus.Gauge
}

func NewRun() *Run {
	r := &Run{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Runs served from the cache slot.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Runs that downloaded the document.",
		}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failures_total",
			Help:      "Failed runs by stage and error kind.",
		}, []string{"stage", "kind"}),
		documentBytes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "document_bytes",
			Help:      "Expected length of the document.",
		}),
		downloaded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Bytes transferred from the document host.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		success: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_success",
			Help:      "1 if the last run produced the document.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run finished.",
		}),
	}

	r.registry.MustRegister(
		r.cacheHits,
		r.cacheMisses,
		r.failures,
		r.documentBytes,
		r.downloaded,
		r.duration,
		r.success,
		r.lastRun,
	)
	return r
}

// Succeeded records a completed run. length is the probed size, received the
// bytes actually transferred; they differ when the host misreports the length.
func (r *Run) Succeeded(length, received uint64, fromCache bool, took time.Duration) {
	r.documentBytes.Set(float64(length))
	if fromCache {
		r.cacheHits.Inc()
	} else {
		r.cacheMisses.Inc()
		r.downloaded.Add(float64(received))
	}
	r.finish(true, took)
}

// Failed records a run that ended in stage with an error of kind.
func (r *Run) Failed(stage, kind string, took time.Duration) {
	r.failures.WithLabelValues(stage, kind).Inc()
	r.finish(false, took)
}

func (r *Run) finish(ok bool, took time.Duration) {
	r.duration.Set(took.Seconds())
	if ok {
		r.success.Set(1)
	} else {
		r.success.Set(0)
	}
	r.lastRun.SetToCurrentTime()
}

// Gatherer exposes the registry, mainly for tests.
func (r *Run) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteFile writes the metrics to path atomically.
func (r *Run) WriteFile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return errors.Wrap(err, "Write metrics ["+path+"] failed")
	}
	return nil
}
