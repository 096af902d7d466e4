package metrics

import (
	"sync"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// PolicyModes are the values SetPolicyMode toggles between.
var PolicyModes = []string{"offline", "codex_common", "unrestricted"}

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	once         sync.Once
	reg          *prom.Registry
	syncDuration *prom.HistogramVec
	syncResults  *prom.CounterVec
	retries      *prom.CounterVec
	policyMode   *prom.GaugeVec
	runDuration  prom.Histogram
	runOutcome   *prom.CounterVec
	lastRun      prom.Gauge
}

// NewPrometheusRecorder constructs and registers Prometheus metrics (idempotent).
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{reg: reg}
	pr.once.Do(func() {
		pr.syncDuration = prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: "agentboot",
			Name:      "repo_sync_duration_seconds",
			Help:      "Duration of individual repository synchronizations",
			Buckets:   prom.DefBuckets,
		}, []string{"repo", "result"})
		pr.syncResults = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "agentboot",
			Name:      "repo_sync_results_total",
			Help:      "Repository sync results by outcome",
		}, []string{"repo", "result"})
		pr.retries = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "agentboot",
			Name:      "git_retries_total",
			Help:      "Retried git operations (transient failures)",
		}, []string{"op"})
		pr.policyMode = prom.NewGaugeVec(prom.GaugeOpts{
			Namespace: "agentboot",
			Name:      "network_policy_mode",
			Help:      "Effective network policy mode (1 for the active mode)",
		}, []string{"mode"})
		pr.runDuration = prom.NewHistogram(prom.HistogramOpts{
			Namespace: "agentboot",
			Name:      "run_duration_seconds",
			Help:      "Total bootstrap duration",
			Buckets:   prom.DefBuckets,
		})
		pr.runOutcome = prom.NewCounterVec(prom.CounterOpts{
			Namespace: "agentboot",
			Name:      "run_outcomes_total",
			Help:      "Bootstrap outcomes by final status",
		}, []string{"outcome"})
		pr.lastRun = prom.NewGauge(prom.GaugeOpts{
			Namespace: "agentboot",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed bootstrap",
		})
		reg.MustRegister(pr.syncDuration, pr.syncResults, pr.retries, pr.policyMode, pr.runDuration, pr.runOutcome, pr.lastRun)
	})
	return pr
}

// Registry returns the registry the collectors are registered with.
func (p *PrometheusRecorder) Registry() *prom.Registry { return p.reg }

func (p *PrometheusRecorder) ObserveSyncDuration(repo string, d time.Duration, ready bool) {
	if p == nil || p.syncDuration == nil {
		return
	}
	res := "failed"
	if ready {
		res = "success"
	}
	p.syncDuration.WithLabelValues(repo, res).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncSyncResult(repo string, result ResultLabel) {
	if p == nil || p.syncResults == nil {
		return
	}
	p.syncResults.WithLabelValues(repo, string(result)).Inc()
}

func (p *PrometheusRecorder) IncGitRetry(op string) {
	if p == nil || p.retries == nil {
		return
	}
	p.retries.WithLabelValues(op).Inc()
}

func (p *PrometheusRecorder) SetPolicyMode(mode string) {
	if p == nil || p.policyMode == nil {
		return
	}
	for _, m := range PolicyModes {
		v := 0.0
		if m == mode {
			v = 1
		}
		p.policyMode.WithLabelValues(m).Set(v)
	}
}

func (p *PrometheusRecorder) ObserveRunDuration(d time.Duration) {
	if p == nil || p.runDuration == nil {
		return
	}
	p.runDuration.Observe(d.Seconds())
	p.lastRun.SetToCurrentTime()
}

func (p *PrometheusRecorder) IncRunOutcome(outcome string) {
	if p == nil || p.runOutcome == nil {
		return
	}
	p.runOutcome.WithLabelValues(outcome).Inc()
}
