package journal

import (
	"context"
	"time"
)

// RunSummary is a read model of one run rebuilt from its events.
type RunSummary struct {
	RunID       string
	StartedAt   time.Time
	CompletedAt *time.Time
	Ready       bool
	Repos       map[string]RepoSummary
	Mode        string
}

// RepoSummary is the final state of one repository in a run.
type RepoSummary struct {
	Ready  bool
	Commit string
	Reason string
}

// Summarize folds the events of runID into a RunSummary. ok is false when the
// run has no events.
func Summarize(ctx context.Context, store Store, runID string) (RunSummary, bool, error) {
	events, err := store.GetByRunID(ctx, runID)
	if err != nil {
		return RunSummary{}, false, err
	}
	if len(events) == 0 {
		return RunSummary{}, false, nil
	}

	s := RunSummary{RunID: runID, StartedAt: events[0].Timestamp(), Repos: map[string]RepoSummary{}}
	for _, e := range events {
		v, err := Decode(e)
		if err != nil {
			continue
		}
		switch ev := v.(type) {
		case *RepositorySynced:
			s.Repos[ev.Repo] = RepoSummary{Ready: true, Commit: ev.Commit}
		case *RepositoryNotReady:
			s.Repos[ev.Repo] = RepoSummary{Reason: ev.Reason}
		case *PolicyApplied:
			s.Mode = ev.Mode
		case *RunCompleted:
			ts := e.Timestamp()
			s.CompletedAt = &ts
			s.Ready = ev.Ready
		}
	}
	return s, true, nil
}
