package commands

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"

	"git.home.luguber.info/inful/agentboot/internal/bootstrap"
	"git.home.luguber.info/inful/agentboot/internal/config"
	"git.home.luguber.info/inful/agentboot/internal/journal"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
	"git.home.luguber.info/inful/agentboot/internal/metrics"
	"git.home.luguber.info/inful/agentboot/internal/retry"
)

// Global carries process-wide state into subcommands.
type Global struct {
	Ctx    context.Context
	Stdout io.Writer
}

// CLI definition & global flags.
type CLI struct {
	Config        string           `short:"c" env:"AGENT_CONFIG_PATH" help:"Configuration file path (default: search the standard locations)"`
	WorkspaceRoot string           `name:"workspace-root" env:"AGENT_WORKSPACE_ROOT" default:"/workspaces" help:"Directory relative repository paths are resolved against"`
	RuntimeDir    string           `name:"runtime-dir" env:"AGENT_RUNTIME_DIR" default:"/opt/agent/runtime" help:"Directory for network_policy.json and agent.env"`
	Verbose       bool             `short:"v" help:"Enable verbose logging"`
	LogLevel      string           `name:"log-level" env:"AGENT_LOG_LEVEL" default:"info" help:"Log level (debug|info|warn|error)"`
	LogFormat     string           `name:"log-format" env:"AGENT_LOG_FORMAT" default:"text" help:"Log format (text|json)"`
	StrictExit    bool             `name:"strict-exit" help:"Exit non-zero when a repository is not ready or configuration is invalid"`
	GitRetries    int              `name:"git-retries" default:"0" help:"Retries for transient clone/fetch failures"`
	RetryBackoff  string           `name:"retry-backoff" default:"linear" help:"Retry backoff (fixed|linear|exponential)"`
	Journal       string           `name:"journal" env:"AGENT_JOURNAL" help:"SQLite run journal path (disabled when empty)"`
	MetricsFile   string           `name:"metrics-file" env:"AGENT_METRICS_FILE" help:"Write Prometheus textfile metrics to this path"`
	Version       kong.VersionFlag `name:"version" help:"Show version and exit"`

	Run    RunCmd    `cmd:"" default:"1" help:"Synchronize repositories, apply the network policy, seed and launch the agent"`
	Sync   SyncCmd   `cmd:"" help:"Synchronize repositories only"`
	Policy PolicyCmd `cmd:"" help:"Resolve and apply the network policy only"`
	Probe  ProbeCmd  `cmd:"" help:"Report the remote state of a repository URL"`
	Watch  WatchCmd  `cmd:"" help:"Re-apply the network policy whenever the configuration changes"`
}

// AfterApply runs after flag parsing; setup logging once.
// nolint:unparam // AfterApply currently never returns an error.
func (c *CLI) AfterApply() error {
	level := config.NormalizeLogLevel(c.LogLevel).SlogLevel()
	if c.Verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if config.NormalizeLogFormat(c.LogFormat) == config.LogFormatJSON {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
	return nil
}

// LoadConfig locates and loads the agent configuration.
func (c *CLI) LoadConfig() (*config.Config, error) {
	path, err := config.Locate(c.Config, executableDir())
	if err != nil {
		return nil, err
	}
	slog.Debug("Using configuration", logfields.Path(path))
	return config.Load(path, config.Options{WorkspaceRoot: c.WorkspaceRoot})
}

// RetryPolicy builds the git retry policy from flags.
func (c *CLI) RetryPolicy() retry.Policy {
	p, ok := retry.FromFlags(c.RetryBackoff, c.GitRetries)
	if !ok {
		slog.Warn("Ignoring invalid --retry-backoff value", slog.String("value", c.RetryBackoff))
	}
	return p
}

// session holds the per-invocation collaborators that need closing.
type session struct {
	cli      *CLI
	journal  *journal.Journal
	recorder metrics.Recorder
	prom     *metrics.PrometheusRecorder
}

func (c *CLI) openSession() *session {
	s := &session{cli: c, recorder: metrics.NoopRecorder{}}

	j, err := journal.Open(c.Journal)
	if err != nil {
		slog.Warn("Run journal disabled", logfields.Path(c.Journal), logfields.Error(err))
		j, _ = journal.Open("")
	}
	s.journal = j

	if c.MetricsFile != "" {
		s.prom = metrics.NewPrometheusRecorder(nil)
		s.recorder = s.prom
	}
	return s
}

func (s *session) runner(opts bootstrap.Options) *bootstrap.Runner {
	opts.WorkspaceRoot = s.cli.WorkspaceRoot
	opts.RuntimeDir = s.cli.RuntimeDir
	opts.RetryPolicy = s.cli.RetryPolicy()
	opts.Recorder = s.recorder
	opts.Journal = s.journal
	return bootstrap.NewRunner(opts)
}

func (s *session) close() {
	if s.prom != nil {
		if err := metrics.WriteTextfile(s.prom.Registry(), s.cli.MetricsFile); err != nil {
			slog.Warn("Failed to write metrics textfile", logfields.Path(s.cli.MetricsFile), logfields.Error(err))
		}
	}
	if err := s.journal.Close(); err != nil {
		slog.Warn("Failed to close run journal", logfields.Error(err))
	}
}

func executableDir() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	return filepath.Dir(exe)
}
