package errors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// CLIErrorAdapter turns the error a command returned into stderr text and a
// process exit status.
type CLIErrorAdapter struct {
	verbose bool
	strict  bool
	logger  *slog.Logger
	out     io.Writer
}

// NewCLIErrorAdapter creates an adapter. Unless strict is set every
// recognized error class exits 0 after printing its remediation text.
func NewCLIErrorAdapter(verbose, strict bool, logger *slog.Logger) *CLIErrorAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CLIErrorAdapter{verbose: verbose, strict: strict, logger: logger, out: os.Stderr}
}

// SetOutput redirects user-facing messages.
func (a *CLIErrorAdapter) SetOutput(w io.Writer) {
	a.out = w
}

// ExitCodeFor determines the exit status for err. Internal errors always
// fail; unclassified errors exit 1.
func (a *CLIErrorAdapter) ExitCodeFor(err error) int {
	if err == nil {
		return 0
	}
	classified, ok := AsClassified(err)
	if !ok {
		return 1
	}
	if !a.strict && classified.Category() != CategoryInternal {
		return 0
	}
	return classified.Category().ExitCode()
}

// FormatError renders err for the terminal. The hint, if any, follows on
// its own line.
func (a *CLIErrorAdapter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	classified, ok := AsClassified(err)
	if !ok {
		return fmt.Sprintf("Error: %v", err)
	}

	var msg string
	switch {
	case a.verbose:
		msg = classified.Error()
	case classified.Category() == CategoryInternal:
		return "Internal error occurred (use -v for details)"
	case classified.Category() == CategoryConfig,
		classified.Category() == CategoryRemoteState,
		classified.Category() == CategoryAdvisory,
		classified.Cause() == nil:
		msg = classified.Category().Headline() + ": " + classified.Message()
	default:
		msg = fmt.Sprintf("%s: %s: %v", classified.Category().Headline(), classified.Message(), classified.Cause())
	}
	if repo := classified.Repository(); repo != "" && !a.verbose {
		msg = "[" + repo + "] " + msg
	}
	if hint := classified.Hint(); hint != "" {
		msg += "\n  hint: " + hint
	}
	return msg
}

// HandleError prints the error and returns the exit code the process should use.
func (a *CLIErrorAdapter) HandleError(err error) int {
	if err == nil {
		return 0
	}
	if a.shouldLog(err) {
		a.logError(err)
	}
	_, _ = fmt.Fprintln(a.out, a.FormatError(err))
	return a.ExitCodeFor(err)
}

func (a *CLIErrorAdapter) shouldLog(err error) bool {
	if a.verbose {
		return true
	}
	if classified, ok := AsClassified(err); ok {
		return classified.IsFatal()
	}
	return true
}

func (a *CLIErrorAdapter) logError(err error) {
	classified, ok := AsClassified(err)
	if !ok {
		a.logger.Error("Unclassified error", "error", err)
		return
	}

	level := slog.LevelError
	if classified.Severity() == SeverityWarning {
		level = slog.LevelWarn
	}
	attrs := []slog.Attr{slog.String("category", string(classified.Category()))}
	if classified.CanRetry() {
		attrs = append(attrs, slog.Bool("retryable", true))
	}
	for k, v := range classified.Context() {
		attrs = append(attrs, slog.Any(k, v))
	}
	a.logger.LogAttrs(context.Background(), level, classified.Message(), attrs...)
}
