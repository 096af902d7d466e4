package metrics

import "time"

// ResultLabel enumerates per-repository sync result categories for counters.
type ResultLabel string

const (
	ResultReady       ResultLabel = "ready"
	ResultNotReady    ResultLabel = "not_ready"
	ResultMissingURL  ResultLabel = "missing_url"
	ResultRemoteState ResultLabel = "remote_state"
)

// Recorder defines observability hooks for a bootstrap run.
type Recorder interface {
	ObserveSyncDuration(repo string, d time.Duration, ready bool)
	IncSyncResult(repo string, result ResultLabel)
	IncGitRetry(op string)
	SetPolicyMode(mode string)
	ObserveRunDuration(d time.Duration)
	IncRunOutcome(outcome string) // outcome: ready|not_ready|config_error
}

// NoopRecorder is a Recorder that does nothing (default when metrics not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSyncDuration(string, time.Duration, bool) {}
func (NoopRecorder) IncSyncResult(string, ResultLabel)             {}
func (NoopRecorder) IncGitRetry(string)                            {}
func (NoopRecorder) SetPolicyMode(string)                          {}
func (NoopRecorder) ObserveRunDuration(time.Duration)              {}
func (NoopRecorder) IncRunOutcome(string)                          {}
