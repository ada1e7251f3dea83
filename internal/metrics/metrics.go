package metrics

import (
	"fmt"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Recorder holds the counters of one analysis run.
// Each run owns its registry; a batch job pushes it once at the end.
type Recorder struct {
	Registry *prometheus.Registry

	// LinesRead counts raw lines read from the log.
	// Labels:
	// - analysis: "bruteforce" or "passwords"
	LinesRead *prometheus.CounterVec

	// EventsProcessed counts recognized login events.
	// Labels:
	// - analysis: "bruteforce" or "passwords"
	// - type:     "login_failed" or "login_success"
	EventsProcessed *prometheus.CounterVec

	// LinesSkipped counts dropped lines.
	// Labels:
	// - analysis: "bruteforce" or "passwords"
	// - reason:   "malformed", "missing_field", "bad_timestamp"
	LinesSkipped *prometheus.CounterVec

	SourcesSeen    prometheus.Gauge
	SourcesFlagged prometheus.Gauge

	// Duration of the last run per analysis, in seconds.
	RunDuration *prometheus.GaugeVec

	// RunInfo is always 1 and carries the run id as a label.
	RunInfo *prometheus.GaugeVec

	LastCompletion prometheus.Gauge
}

// New creates a recorder backed by a fresh registry
func New() *Recorder {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)

	return &Recorder{
		Registry: reg,
		LinesRead: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeylog",
			Name:      "lines_read_total",
			Help:      "Number of log lines read",
		}, []string{"analysis"}),
		EventsProcessed: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeylog",
			Name:      "events_processed_total",
			Help:      "Number of login events accepted",
		}, []string{"analysis", "type"}),
		LinesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "honeylog",
			Name:      "lines_skipped_total",
			Help:      "Number of log lines dropped as malformed or incomplete",
		}, []string{"analysis", "reason"}),
		SourcesSeen: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "honeylog",
			Subsystem: "bruteforce",
			Name:      "sources_seen",
			Help:      "Distinct source IPs with at least one login attempt",
		}),
		SourcesFlagged: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "honeylog",
			Subsystem: "bruteforce",
			Name:      "sources_flagged",
			Help:      "Source IPs flagged as brute-force suspects",
		}),
		RunDuration: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "honeylog",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run",
		}, []string{"analysis"}),
		RunInfo: f.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "honeylog",
			Name:      "run_info",
			Help:      "Identifies the last run",
		}, []string{"run_id"}),
		LastCompletion: f.NewGauge(prometheus.GaugeOpts{
			Namespace: "honeylog",
			Name:      "last_completion_timestamp_seconds",
			Help:      "Unix time the last run completed",
		}),
	}
}

// ObserveRun records the end of a run
func (r *Recorder) ObserveRun(analysis, runID string, elapsed time.Duration) {
	r.RunDuration.WithLabelValues(analysis).Set(elapsed.Seconds())
	r.RunInfo.Reset()
	r.RunInfo.WithLabelValues(runID).Set(1)
	r.LastCompletion.SetToCurrentTime()
}

// Push sends the registry to a Pushgateway, grouped by job and host.
// Push replaces the whole group, so a rerun overwrites the previous one.
func (r *Recorder) Push(url, job string) error {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	if err := push.New(url, job).
		Gatherer(r.Registry).
		Grouping("instance", host).
		Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	return nil
}
