// Package metrics counts cache and build activity for one mcstarter run and
// writes it in the Prometheus textfile format.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "mcstarter"

const (
	cacheHitsTotal    = "cache_hits_total"
	cacheMissesTotal  = "cache_misses_total"
	fetchedBytesTotal = "fetched_bytes_total"
	filesStagedTotal  = "files_staged_total"
	artifactsPruned   = "artifacts_pruned_total"
	lastBuildDuration = "last_build_duration_seconds"
)

// Recorder owns a private registry so runs and tests never share counters.
// A nil *Recorder is valid and records nothing.
type Recorder struct {
	registry *prometheus.Registry

	cacheHits     prometheus.Counter
	cacheMisses   prometheus.Counter
	fetchedBytes  prometheus.Counter
	filesStaged   *prometheus.CounterVec
	pruned        prometheus.Counter
	buildDuration prometheus.Gauge
}

// New creates a Recorder with every metric registered.
func New() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      cacheHitsTotal,
			Help:      "Artifacts found in the cache without a download.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      cacheMissesTotal,
			Help:      "Artifacts that had to be downloaded.",
		}),
		fetchedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      fetchedBytesTotal,
			Help:      "Bytes downloaded from artifact sources.",
		}),
		filesStaged: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      filesStagedTotal,
			Help:      "Files written into the target directory, by kind.",
		}, []string{"kind"}),
		pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      artifactsPruned,
			Help:      "Stale core and plugin jars removed from the target.",
		}),
		buildDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      lastBuildDuration,
			Help:      "Wall time of the last build.",
		}),
	}

	r.registry.MustRegister(
		r.cacheHits,
		r.cacheMisses,
		r.fetchedBytes,
		r.filesStaged,
		r.pruned,
		r.buildDuration,
	)
	return r
}

// Registry exposes the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.registry
}

func (r *Recorder) CacheHit(string) {
	if r != nil {
		r.cacheHits.Inc()
	}
}

func (r *Recorder) CacheMiss(string) {
	if r != nil {
		r.cacheMisses.Inc()
	}
}

func (r *Recorder) Fetched(_ string, n int) {
	if r != nil {
		r.fetchedBytes.Add(float64(n))
	}
}

// Staged counts one file written into the target. kind is core, plugin,
// mergeable, text or opaque.
func (r *Recorder) Staged(kind string) {
	if r != nil {
		r.filesStaged.WithLabelValues(kind).Inc()
	}
}

func (r *Recorder) Pruned(n int) {
	if r != nil {
		r.pruned.Add(float64(n))
	}
}

func (r *Recorder) BuildFinished(d time.Duration) {
	if r != nil {
		r.buildDuration.Set(d.Seconds())
	}
}

// WriteFile writes every metric to path in the node-exporter textfile
// format. The write is atomic.
func (r *Recorder) WriteFile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("writing metrics to %s: %w", path, err)
	}
	return nil
}
