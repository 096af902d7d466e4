package auth

import (
	"github.com/go-git/go-git/v5/plumbing/transport"

	"git.home.luguber.info/inful/agentboot/internal/auth/providers"
)

// Manager selects a provider per remote and builds its transport credentials.
type Manager struct {
	registry *providers.Registry
}

// NewManager creates a new authentication manager with the standard providers.
func NewManager() *Manager {
	return &Manager{
		registry: providers.NewRegistry(),
	}
}

// CreateAuth creates authentication of the given type.
func (m *Manager) CreateAuth(authType providers.AuthType, req providers.Request) (transport.AuthMethod, error) {
	return m.registry.CreateAuth(authType, req)
}

// Select picks the provider type for a remote URL given the detected context:
// embedded credentials use basic, recognized HTTPS hosts with a token use the
// token provider, SSH remotes with a key use the SSH provider.
func Select(ep *transport.Endpoint, c Context, tokenHost func(string) bool) providers.AuthType {
	switch ep.Protocol {
	case "https", "http":
		if ep.User != "" && ep.Password != "" {
			return providers.AuthTypeBasic
		}
		if c.HasToken && ep.Protocol == "https" && tokenHost(ep.Host) {
			return providers.AuthTypeToken
		}
	case "ssh":
		if c.HasSSHKey {
			return providers.AuthTypeSSH
		}
	}
	return providers.AuthTypeNone
}
