package logfields

import "log/slog"

// Canonical log field name constants to avoid drift across packages.
const (
	KeyRepo       = "repository"
	KeyURL        = "url"
	KeyBranch     = "branch"
	KeyPath       = "path"
	KeyCommit     = "commit"
	KeyState      = "state"
	KeyMode       = "mode"
	KeyRequested  = "requested_mode"
	KeyHost       = "host"
	KeyOp         = "operation"
	KeyAttempt    = "attempt"
	KeyRunID      = "run_id"
	KeyDurationMS = "duration_ms"
	KeyCommand    = "command"
	KeyError      = "error"
)

// Simple helpers returning slog.Attr. Keeping each granular means callers can compose.
func Repository(r string) slog.Attr   { return slog.String(KeyRepo, r) }
func URL(u string) slog.Attr          { return slog.String(KeyURL, u) }
func Branch(b string) slog.Attr       { return slog.String(KeyBranch, b) }
func Path(p string) slog.Attr         { return slog.String(KeyPath, p) }
func State(s string) slog.Attr        { return slog.String(KeyState, s) }
func Mode(m string) slog.Attr         { return slog.String(KeyMode, m) }
func Requested(m string) slog.Attr    { return slog.String(KeyRequested, m) }
func Host(h string) slog.Attr         { return slog.String(KeyHost, h) }
func Op(op string) slog.Attr          { return slog.String(KeyOp, op) }
func Attempt(n int) slog.Attr         { return slog.Int(KeyAttempt, n) }
func RunID(id string) slog.Attr       { return slog.String(KeyRunID, id) }
func DurationMS(ms float64) slog.Attr { return slog.Float64(KeyDurationMS, ms) }
func Command(c string) slog.Attr      { return slog.String(KeyCommand, c) }

// Commit logs the short (8 char) form of a commit hash.
func Commit(hash string) slog.Attr {
	if len(hash) > 8 {
		hash = hash[:8]
	}
	return slog.String(KeyCommit, hash)
}

func Error(err error) slog.Attr {
	if err == nil {
		return slog.String(KeyError, "")
	}
	return slog.String(KeyError, err.Error())
}
