package gogitengine

import (
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	gitssh "github.com/go-git/go-git/v5/plumbing/transport/ssh"
)

const (
	httpProtocolConstant          = "http"
	httpsProtocolConstant         = "https"
	sshProtocolConstant           = "ssh"
	defaultTokenUsernameConstant  = "git"
	defaultSSHUserConstant        = "git"
	sshAgentErrorTemplateConstant = "ssh agent unavailable for %s: %w"
)

// AuthProvider supplies credentials for an endpoint. A nil AuthMethod means anonymous access.
type AuthProvider interface {
	AuthMethod(endpoint *transport.Endpoint) (transport.AuthMethod, error)
}

// AnonymousAuthProvider never supplies credentials.
type AnonymousAuthProvider struct{}

// AuthMethod returns no credentials.
func (AnonymousAuthProvider) AuthMethod(*transport.Endpoint) (transport.AuthMethod, error) {
	return nil, nil
}

// CredentialsAuthProvider supplies token credentials for HTTP endpoints and
// SSH agent credentials for SSH endpoints.
type CredentialsAuthProvider struct {
	Username    string
	Token       string
	UseSSHAgent bool
}

// AuthMethod selects credentials by endpoint protocol.
func (provider CredentialsAuthProvider) AuthMethod(endpoint *transport.Endpoint) (transport.AuthMethod, error) {
	switch endpoint.Protocol {
	case httpProtocolConstant, httpsProtocolConstant:
		token := strings.TrimSpace(provider.Token)
		if len(token) == 0 {
			return nil, nil
		}
		username := strings.TrimSpace(provider.Username)
		if len(username) == 0 {
			username = defaultTokenUsernameConstant
		}
		return &githttp.BasicAuth{Username: username, Password: token}, nil
	case sshProtocolConstant:
		if !provider.UseSSHAgent {
			return nil, nil
		}
		sshUser := endpoint.User
		if len(sshUser) == 0 {
			sshUser = strings.TrimSpace(provider.Username)
		}
		if len(sshUser) == 0 {
			sshUser = defaultSSHUserConstant
		}
		agentAuth, agentError := gitssh.NewSSHAgentAuth(sshUser)
		if agentError != nil {
			return nil, fmt.Errorf(sshAgentErrorTemplateConstant, endpoint.Host, agentError)
		}
		return agentAuth, nil
	default:
		return nil, nil
	}
}
