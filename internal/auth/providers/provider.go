// Package providers builds go-git transport credentials, one provider per
// authentication strategy.
package providers

import (
	"fmt"
	"log/slog"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// AuthType names a transport credential strategy.
type AuthType string

const (
	AuthTypeNone  AuthType = "none"
	AuthTypeSSH   AuthType = "ssh"
	AuthTypeToken AuthType = "token"
	AuthTypeBasic AuthType = "basic"
)

// Request carries what a provider needs to build credentials for one remote.
type Request struct {
	URL        string
	Token      string
	SSHKeyPath string
	KnownHosts string
	Username   string
	Password   string
}

// AuthProvider builds credentials for one AuthType.
type AuthProvider interface {
	Type() AuthType
	Name() string

	// ValidateRequest checks the request carries what this provider needs.
	ValidateRequest(req Request) error

	// CreateAuth returns nil, nil for anonymous access.
	CreateAuth(req Request) (transport.AuthMethod, error)
}

// Registry maps each AuthType to its provider.
type Registry struct {
	providers map[AuthType]AuthProvider
}

// NewRegistry returns a registry holding the none, ssh, token and basic providers.
func NewRegistry() *Registry {
	r := &Registry{providers: make(map[AuthType]AuthProvider, 4)}
	for _, p := range []AuthProvider{NewNoneProvider(), NewSSHProvider(), NewTokenProvider(), NewBasicProvider()} {
		r.Register(p)
	}
	return r
}

// Register adds or replaces the provider for p.Type().
func (r *Registry) Register(p AuthProvider) {
	r.providers[p.Type()] = p
}

// Lookup returns the provider for authType.
func (r *Registry) Lookup(authType AuthType) (AuthProvider, bool) {
	p, ok := r.providers[authType]
	return p, ok
}

// CreateAuth validates req and builds credentials. An empty type is anonymous.
func (r *Registry) CreateAuth(authType AuthType, req Request) (transport.AuthMethod, error) {
	if authType == "" {
		authType = AuthTypeNone
	}
	p, ok := r.Lookup(authType)
	if !ok {
		return nil, &AuthError{Type: authType, Message: "unsupported authentication type"}
	}
	if err := p.ValidateRequest(req); err != nil {
		return nil, &AuthError{Type: authType, Message: "incomplete credentials", Cause: err}
	}
	am, err := p.CreateAuth(req)
	if err != nil {
		return nil, &AuthError{Type: authType, Message: "failed to create credentials", Cause: err}
	}
	slog.Debug("Prepared git credentials", slog.String("provider", p.Name()), slog.String("auth_type", string(authType)))
	return am, nil
}

// AuthError reports why credentials could not be built. It never carries the
// secret itself.
type AuthError struct {
	Type    AuthType
	Message string
	Cause   error
}

func (e *AuthError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("auth (%s): %s", e.Type, e.Message)
	}
	return fmt.Sprintf("auth (%s): %s: %v", e.Type, e.Message, e.Cause)
}

func (e *AuthError) Unwrap() error { return e.Cause }
