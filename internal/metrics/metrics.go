// Package metrics exports sweep results in the Prometheus text format so a
// node_exporter textfile collector can pick them up.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spiffcs/lockstale/internal/model"
	"github.com/spiffcs/lockstale/internal/service"
)

// Recorder holds the gauges describing the most recent sweep.
type Recorder struct {
	registry *prometheus.Registry

	info         *prometheus.GaugeVec
	fetched      *prometheus.GaugeVec
	locked       *prometheus.GaugeVec
	failed       *prometheus.GaugeVec
	skipped      *prometheus.GaugeVec
	remaining    *prometheus.GaugeVec
	duration     *prometheus.GaugeVec
	lastRun      *prometheus.GaugeVec
	runState     *prometheus.GaugeVec
	unrecog      *prometheus.GaugeVec
	stoppedEarly *prometheus.GaugeVec
}

// NewRecorder creates a Recorder on its own registry.
func NewRecorder(version string) *Recorder {
	r := &Recorder{registry: prometheus.NewRegistry()}

	r.info = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_info",
			Help: "Build information",
		},
		[]string{"version"},
	)
	r.fetched = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_threads_fetched",
			Help: "Closed, unlocked threads returned by the search",
		},
		[]string{"repository"},
	)
	r.locked = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_threads_locked",
			Help: "Threads locked by the last run",
		},
		[]string{"repository", "category"},
	)
	r.failed = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_lock_failures",
			Help: "Lock requests that failed in the last run",
		},
		[]string{"repository", "category"},
	)
	r.skipped = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_threads_skipped",
			Help: "Threads not evaluated because the quota buffer was reached",
		},
		[]string{"repository", "category"},
	)
	r.remaining = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_rate_limit_remaining",
			Help: "Remaining GitHub API quota at the end of the last run",
		},
		[]string{"resource"},
	)
	r.duration = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_run_duration_seconds",
			Help: "Wall time of the last run",
		},
		[]string{"repository"},
	)
	r.lastRun = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_last_run_timestamp_seconds",
			Help: "Unix time the last run started",
		},
		[]string{"repository"},
	)
	r.runState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_run_state",
			Help: "Terminal state of the last run (1 for the state reached)",
		},
		[]string{"repository", "state"},
	)
	r.unrecog = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_threads_unrecognized",
			Help: "Search results of an unrecognized kind",
		},
		[]string{"repository"},
	)
	r.stoppedEarly = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "lockstale_search_stopped_early",
			Help: "1 when the search stopped at the quota buffer",
		},
		[]string{"repository"},
	)

	r.registry.MustRegister(
		r.info, r.fetched, r.locked, r.failed, r.skipped, r.remaining,
		r.duration, r.lastRun, r.runState, r.unrecog, r.stoppedEarly,
	)
	r.info.WithLabelValues(version).Set(1)
	return r
}

// Registry returns the registry the gauges live on.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Observe records res.
func (r *Recorder) Observe(res *service.Result) {
	repo := res.Repository.FullName()

	r.fetched.WithLabelValues(repo).Set(float64(res.Fetched))
	r.unrecog.WithLabelValues(repo).Set(float64(res.Unrecognized))
	r.stoppedEarly.WithLabelValues(repo).Set(boolToFloat(res.FetchStoppedForQuota))
	r.duration.WithLabelValues(repo).Set(res.Duration.Seconds())
	r.lastRun.WithLabelValues(repo).Set(float64(res.StartedAt.Unix()))

	for _, state := range []service.RunState{service.StateAborted, service.StateDone, service.StateFailed} {
		r.runState.WithLabelValues(repo, string(state)).Set(boolToFloat(res.State == state))
	}

	for _, cr := range res.Categories() {
		category := string(cr.Category)
		r.locked.WithLabelValues(repo, category).Set(float64(len(cr.Locked)))
		r.failed.WithLabelValues(repo, category).Set(float64(len(cr.Failed)))
		r.skipped.WithLabelValues(repo, category).Set(float64(cr.Skipped))
	}

	q := res.QuotaBefore
	if res.QuotaAfter != nil {
		q = *res.QuotaAfter
	}
	r.ObserveQuota(q)
}

// ObserveQuota records the remaining quota for one resource. Later calls for
// the same resource replace earlier ones.
func (r *Recorder) ObserveQuota(q model.QuotaStatus) {
	if q.Resource == "" {
		return
	}
	r.remaining.WithLabelValues(q.Resource).Set(float64(q.Remaining))
}

// WriteTextfile writes every metric to path atomically.
func (r *Recorder) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
