package providers

import (
	"errors"

	"github.com/go-git/go-git/v5/plumbing/transport"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
)

// TokenUsername is the user GitHub expects alongside an access token.
const TokenUsername = "x-access-token"

var (
	errNoToken    = errors.New("token authentication requires GITHUB_TOKEN or GH_TOKEN")
	errNoUsername = errors.New("basic authentication requires a username in the URL")
	errNoPassword = errors.New("basic authentication requires a password in the URL")
)

// NoneProvider is anonymous access: public HTTPS remotes and local paths.
type NoneProvider struct{}

func NewNoneProvider() *NoneProvider { return &NoneProvider{} }

func (*NoneProvider) Type() AuthType                { return AuthTypeNone }
func (*NoneProvider) Name() string                  { return "NoneProvider" }
func (*NoneProvider) ValidateRequest(Request) error { return nil }
func (*NoneProvider) CreateAuth(Request) (transport.AuthMethod, error) {
	return nil, nil
}

// TokenProvider sends the detected access token as x-access-token basic auth.
type TokenProvider struct{}

func NewTokenProvider() *TokenProvider { return &TokenProvider{} }

func (*TokenProvider) Type() AuthType { return AuthTypeToken }
func (*TokenProvider) Name() string   { return "TokenProvider" }

func (*TokenProvider) ValidateRequest(req Request) error {
	if req.Token == "" {
		return errNoToken
	}
	return nil
}

func (p *TokenProvider) CreateAuth(req Request) (transport.AuthMethod, error) {
	if err := p.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &http.BasicAuth{Username: TokenUsername, Password: req.Token}, nil
}

// BasicProvider forwards user:password already present in the remote URL.
type BasicProvider struct{}

func NewBasicProvider() *BasicProvider { return &BasicProvider{} }

func (*BasicProvider) Type() AuthType { return AuthTypeBasic }
func (*BasicProvider) Name() string   { return "BasicProvider" }

func (*BasicProvider) ValidateRequest(req Request) error {
	switch {
	case req.Username == "":
		return errNoUsername
	case req.Password == "":
		return errNoPassword
	}
	return nil
}

func (p *BasicProvider) CreateAuth(req Request) (transport.AuthMethod, error) {
	if err := p.ValidateRequest(req); err != nil {
		return nil, err
	}
	return &http.BasicAuth{Username: req.Username, Password: req.Password}, nil
}
