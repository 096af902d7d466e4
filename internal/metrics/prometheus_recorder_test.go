package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

// gathered returns the value of the named metric whose labels match.
func gathered(t *testing.T, reg *prom.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			switch {
			case m.GetCounter() != nil:
				return m.GetCounter().GetValue()
			case m.GetGauge() != nil:
				return m.GetGauge().GetValue()
			}
		}
	}
	t.Fatalf("metric %s%v not found", name, labels)
	return 0
}

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveSyncDuration("spec", 150*time.Millisecond, true)
	pr.IncSyncResult("spec", ResultReady)
	pr.IncSyncResult("source", ResultRemoteState)
	pr.IncGitRetry("fetch")
	pr.SetPolicyMode("codex_common")
	pr.ObserveRunDuration(500 * time.Millisecond)
	pr.IncRunOutcome("not_ready")

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
	if got := gathered(t, reg, "agentboot_repo_sync_results_total", map[string]string{"repo": "source", "result": string(ResultRemoteState)}); got != 1 {
		t.Fatalf("remote_state count = %v", got)
	}
	if got := gathered(t, reg, "agentboot_network_policy_mode", map[string]string{"mode": "codex_common"}); got != 1 {
		t.Fatalf("active mode gauge = %v", got)
	}
	if got := gathered(t, reg, "agentboot_network_policy_mode", map[string]string{"mode": "offline"}); got != 0 {
		t.Fatalf("inactive mode gauge = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.IncRunOutcome("ready")

	path := filepath.Join(t.TempDir(), "textfile", "agentboot.prom")
	if err := WriteTextfile(pr.Registry(), path); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `agentboot_run_outcomes_total{outcome="ready"} 1`) {
		t.Fatalf("unexpected textfile:\n%s", data)
	}
}
