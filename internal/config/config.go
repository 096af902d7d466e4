package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	ferrors "git.home.luguber.info/inful/agentboot/internal/foundation/errors"
)

const (
	// EnvConfigPath overrides the configuration search path.
	EnvConfigPath = "AGENT_CONFIG_PATH"

	DefaultWorkspaceRoot = "/workspaces"
	DefaultRuntimeDir    = "/opt/agent/runtime"
	DefaultBranch        = "main"
	DefaultSystemConfig  = "/opt/agent/config/agent_config.json"

	SlotSpec   = "spec"
	SlotSource = "source"
)

// Config is the agent configuration document (agent_config.json).
type Config struct {
	SpecRepo              *RepoConfig    `json:"spec_repo,omitempty"`
	SourceRepo            *RepoConfig    `json:"source_repo,omitempty"`
	SameRepo              bool           `json:"docs_and_source_same_repo,omitempty"`
	AllowUnrestrictedMode bool           `json:"allow_unrestricted_mode,omitempty"`
	InternetAccess        InternetAccess `json:"internet_access"`
	Environment           Environment    `json:"environment"`

	// Path is the file the configuration was read from.
	Path string `json:"-"`
}

// RepoConfig declares one logical repository.
type RepoConfig struct {
	URL    string `json:"url"`
	Branch string `json:"branch,omitempty"`
	Path   string `json:"path,omitempty"`
}

// InternetAccess is the requested network policy.
type InternetAccess struct {
	Mode         string   `json:"mode,omitempty"`
	AllowedSites SiteList `json:"allowed_sites,omitempty"`
}

// Environment holds optional container preparation settings.
type Environment struct {
	SeedDataScript string `json:"seed_data_script,omitempty"`
}

// SiteList decodes allowed_sites leniently: anything other than an array of
// strings becomes an empty list.
type SiteList []string

func (s *SiteList) UnmarshalJSON(data []byte) error {
	var raw []any
	if err := json.Unmarshal(data, &raw); err != nil {
		*s = SiteList{}
		return nil
	}
	out := make(SiteList, 0, len(raw))
	for _, v := range raw {
		if str, ok := v.(string); ok {
			out = append(out, str)
		}
	}
	*s = out
	return nil
}

// Options controls how relative paths are resolved during Load.
type Options struct {
	WorkspaceRoot string
}

// Load reads, validates and defaults the configuration at path.
func Load(path string, opts Options) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to read configuration").
			Fatal().
			WithContext("path", path).
			Build()
	}
	cfg, err := Parse(data, opts)
	if err != nil {
		if classified, ok := ferrors.AsClassified(err); ok {
			return nil, classified.WithContext("path", path)
		}
		return nil, err
	}
	cfg.Path = path
	return cfg, nil
}

// Parse validates data against the configuration schema, decodes it and
// applies defaults. Every validation problem is reported together.
func Parse(data []byte, opts Options) (*Config, error) {
	if err := ValidateSchema(data); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "configuration does not match schema").
			Fatal().
			Build()
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "failed to parse configuration").
			Fatal().
			Build()
	}

	applyDefaults(&cfg, opts)

	if err := Validate(&cfg); err != nil {
		return nil, ferrors.WrapError(err, ferrors.CategoryConfig, "configuration validation failed").
			Fatal().
			UserAction().
			Build()
	}
	return &cfg, nil
}

// Locate returns the first existing configuration file. The override (usually
// AGENT_CONFIG_PATH) wins, then the system path, then files next to the binary.
func Locate(override, exeDir string) (string, error) {
	var candidates []string
	if override != "" {
		candidates = append(candidates, override)
	}
	candidates = append(candidates, DefaultSystemConfig)
	if exeDir != "" {
		candidates = append(candidates,
			filepath.Join(exeDir, "..", "config", "agent_config.json"),
			filepath.Join(exeDir, "..", "config", "agent_config.example.json"),
		)
	}
	for _, c := range candidates {
		if st, err := os.Stat(c); err == nil && !st.IsDir() {
			return c, nil
		}
	}
	return "", ferrors.ConfigError(fmt.Sprintf("unable to locate agent configuration; set %s or add config/agent_config.json", EnvConfigPath)).
		WithContext("candidates", candidates).
		Build()
}

// Repo returns the declaration for a slot, nil when the section is absent.
func (c *Config) Repo(slot string) *RepoConfig {
	switch slot {
	case SlotSpec:
		return c.SpecRepo
	case SlotSource:
		return c.SourceRepo
	default:
		return nil
	}
}

// Combined returns the repository used in single-repo mode: source_repo when
// it has a URL, spec_repo otherwise.
func (c *Config) Combined() *RepoConfig {
	if c.SourceRepo != nil && c.SourceRepo.URL != "" {
		return c.SourceRepo
	}
	return c.SpecRepo
}

// ResolvePath turns a declared path into the absolute local path for a slot.
// Empty paths default to <root>/<name>; relative paths are joined under root.
func ResolvePath(root, name, declared string) string {
	if root == "" {
		root = DefaultWorkspaceRoot
	}
	p := declared
	if p == "" {
		p = filepath.Join(root, name)
	} else if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return filepath.Clean(p)
}

func applyDefaults(cfg *Config, opts Options) {
	for _, slot := range []string{SlotSpec, SlotSource} {
		rc := cfg.Repo(slot)
		if rc == nil {
			continue
		}
		if rc.Branch == "" {
			rc.Branch = DefaultBranch
		}
		// Single-repo mode labels the combined repository "source".
		name := slot
		if cfg.SameRepo && rc == cfg.Combined() {
			name = SlotSource
		}
		rc.Path = ResolvePath(opts.WorkspaceRoot, name, rc.Path)
	}
	if cfg.InternetAccess.AllowedSites == nil {
		cfg.InternetAccess.AllowedSites = SiteList{}
	}
}

// ErrNoRepositories is reported when no repository section carries a URL in
// single-repo mode.
var ErrNoRepositories = errors.New("docs_and_source_same_repo is set but neither spec_repo nor source_repo has a url")
