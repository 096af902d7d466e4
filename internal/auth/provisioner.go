package auth

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/agentboot/internal/auth/providers"
	"git.home.luguber.info/inful/agentboot/internal/logfields"
)

// Token environment variables, in lookup order.
var TokenEnvVars = []string{"GITHUB_TOKEN", "GH_TOKEN"}

// DefaultTokenHosts are the HTTPS hosts that accept x-access-token credentials.
var DefaultTokenHosts = []string{"github.com"}

// Context describes the credentials available at the moment of use.
type Context struct {
	HasToken  bool
	HasSSHKey bool

	token   string
	keyPath string
}

// Token returns the detected access token.
func (c Context) Token() string { return c.token }

// KeyPath returns the detected SSH private key.
func (c Context) KeyPath() string { return c.keyPath }

// Provisioner decides how git reaches a remote and makes the credentials
// available to subsequent operations.
type Provisioner struct {
	home       string
	getenv     func(string) string
	tokenHosts []string
	manager    *Manager
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithHome sets the home directory holding .ssh, .gitconfig and .git-credentials.
func WithHome(home string) Option {
	return func(p *Provisioner) { p.home = home }
}

// WithGetenv replaces environment lookup.
func WithGetenv(getenv func(string) string) Option {
	return func(p *Provisioner) { p.getenv = getenv }
}

// WithTokenHosts replaces the recognized token hosts.
func WithTokenHosts(hosts ...string) Option {
	return func(p *Provisioner) { p.tokenHosts = hosts }
}

// NewProvisioner creates a Provisioner rooted at the user's home directory.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{
		getenv:     os.Getenv,
		tokenHosts: DefaultTokenHosts,
		manager:    NewManager(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.home == "" {
		if home, err := os.UserHomeDir(); err == nil {
			p.home = home
		} else {
			p.home = "/root"
		}
	}
	return p
}

// CredentialsPath is the git credential store file.
func (p *Provisioner) CredentialsPath() string {
	return filepath.Join(p.home, ".git-credentials")
}

// GitConfigPath is the global git configuration file.
func (p *Provisioner) GitConfigPath() string {
	return filepath.Join(p.home, ".gitconfig")
}

func (p *Provisioner) sshKeyCandidates() []string {
	return []string{
		filepath.Join(p.home, ".ssh", "id_rsa"),
		filepath.Join(p.home, ".ssh", "id_ed25519"),
	}
}

// Detect inspects the environment and filesystem. It has no side effects.
func (p *Provisioner) Detect() Context {
	var c Context
	for _, name := range TokenEnvVars {
		if v := p.getenv(name); v != "" {
			c.HasToken, c.token = true, v
			break
		}
	}
	for _, key := range p.sshKeyCandidates() {
		if st, err := os.Stat(key); err == nil && !st.IsDir() {
			c.HasSSHKey, c.keyPath = true, key
			break
		}
	}
	return c
}

// IsTokenHost reports whether host accepts x-access-token credentials.
func (p *Provisioner) IsTokenHost(host string) bool {
	return slices.ContainsFunc(p.tokenHosts, func(h string) bool {
		return strings.EqualFold(h, host)
	})
}

// ProvisionForHost persists credentials for host when a token is available:
// credential.helper=store in the global git config and a single-line
// credential store file with owner-only permissions. Without any credentials
// it logs guidance and continues unauthenticated. Write failures are warnings.
func (p *Provisioner) ProvisionForHost(host string) Context {
	c := p.Detect()

	if !c.HasToken && !c.HasSSHKey {
		slog.Warn("No git credentials found; private repositories will not be reachable",
			logfields.Host(host),
			slog.String("hint", fmt.Sprintf("set %s or mount SSH keys under %s", strings.Join(TokenEnvVars, "/"), filepath.Join(p.home, ".ssh"))))
		return c
	}

	if !c.HasToken || !p.IsTokenHost(host) {
		slog.Debug("Skipping credential store", logfields.Host(host), slog.Bool("has_ssh_key", c.HasSSHKey))
		return c
	}

	if err := setGlobalOption(p.GitConfigPath(), "credential", "helper", "store"); err != nil {
		slog.Warn("Failed to configure git credential helper", logfields.Path(p.GitConfigPath()), logfields.Error(err))
		return c
	}
	if err := p.writeCredentials(host, c.token); err != nil {
		slog.Warn("Failed to write git credentials", logfields.Path(p.CredentialsPath()), logfields.Error(err))
		return c
	}
	slog.Info("Configured token authentication", logfields.Host(host))
	return c
}

func (p *Provisioner) writeCredentials(host, token string) error {
	line := (&url.URL{
		Scheme: "https",
		User:   url.UserPassword(providers.TokenUsername, token),
		Host:   host,
	}).String()

	path := p.CredentialsPath()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, line); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// O_CREATE does not tighten an existing file.
	return os.Chmod(path, 0o600)
}

// EffectiveURL returns the URL git should use: the token is embedded for
// recognized HTTPS hosts when one is available.
func (p *Provisioner) EffectiveURL(rawURL string, c Context) string {
	if !c.HasToken {
		return rawURL
	}
	return injectToken(rawURL, c.token, p.IsTokenHost)
}

// AuthMethod builds go-git transport credentials for rawURL.
func (p *Provisioner) AuthMethod(rawURL string, c Context) (transport.AuthMethod, error) {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return nil, err
	}
	req := providers.Request{
		URL:        rawURL,
		Token:      c.token,
		SSHKeyPath: c.keyPath,
		KnownHosts: filepath.Join(p.home, ".ssh", "known_hosts"),
		Username:   ep.User,
		Password:   ep.Password,
	}
	return p.manager.CreateAuth(Select(ep, c, p.IsTokenHost), req)
}

// InjectToken embeds token as x-access-token user-info in an HTTPS URL on a
// recognized token host that has no user-info yet. Any other URL is returned
// unchanged.
func InjectToken(rawURL, token string) string {
	return injectToken(rawURL, token, func(host string) bool {
		return slices.Contains(DefaultTokenHosts, strings.ToLower(host))
	})
}

func injectToken(rawURL, token string, recognized func(string) bool) string {
	if token == "" {
		return rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme != "https" || u.User != nil || !recognized(u.Hostname()) {
		return rawURL
	}
	u.User = url.UserPassword(providers.TokenUsername, token)
	return u.String()
}

// HostOf returns the host of a git remote URL, including scp-style addresses.
func HostOf(rawURL string) string {
	ep, err := transport.NewEndpoint(rawURL)
	if err != nil {
		return ""
	}
	return ep.Host
}
