package providers

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/ssh"
	cryptossh "golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"
)

// SSHProvider handles SSH key authentication.
type SSHProvider struct{}

// NewSSHProvider creates a new SSH authentication provider.
func NewSSHProvider() *SSHProvider {
	return &SSHProvider{}
}

// Type returns the authentication type this provider handles.
func (p *SSHProvider) Type() AuthType {
	return AuthTypeSSH
}

// CreateAuth loads the private key and installs an accept-new host key policy.
func (p *SSHProvider) CreateAuth(req Request) (transport.AuthMethod, error) {
	publicKeys, err := ssh.NewPublicKeysFromFile("git", req.SSHKeyPath, "")
	if err != nil {
		return nil, fmt.Errorf("failed to load SSH key from %s: %w", req.SSHKeyPath, err)
	}
	if req.KnownHosts != "" {
		publicKeys.HostKeyCallback = AcceptNewHostKeys(req.KnownHosts)
	}
	return publicKeys, nil
}

// ValidateRequest validates the SSH authentication request.
func (p *SSHProvider) ValidateRequest(req Request) error {
	if req.SSHKeyPath == "" {
		return fmt.Errorf("SSH authentication requires a key path")
	}
	if _, err := os.Stat(req.SSHKeyPath); os.IsNotExist(err) {
		return fmt.Errorf("SSH key file does not exist: %s", req.SSHKeyPath)
	}
	return nil
}

// Name returns a human-readable name for this provider.
func (p *SSHProvider) Name() string {
	return "SSHProvider"
}

// AcceptNewHostKeys returns a host key callback that trusts hosts already in
// the known_hosts file, records unknown hosts, and rejects changed keys. It
// mirrors `StrictHostKeyChecking=accept-new`.
func AcceptNewHostKeys(path string) cryptossh.HostKeyCallback {
	return func(hostname string, remote net.Addr, key cryptossh.PublicKey) error {
		if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_RDONLY, 0o600)
		if err != nil {
			return err
		}
		_ = f.Close()

		check, err := knownhosts.New(path)
		if err != nil {
			return err
		}
		err = check(hostname, remote, key)
		var keyErr *knownhosts.KeyError
		if err == nil || !errors.As(err, &keyErr) || len(keyErr.Want) > 0 {
			return err
		}

		out, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		defer out.Close()
		line := knownhosts.Line([]string{knownhosts.Normalize(hostname)}, key)
		_, err = fmt.Fprintln(out, line)
		return err
	}
}
