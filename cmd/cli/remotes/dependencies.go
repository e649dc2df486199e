package remotes

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/execshell"
	"github.com/temirov/gitremote/internal/gitcliengine"
	"github.com/temirov/gitremote/internal/gogitengine"
	"github.com/temirov/gitremote/internal/remote"
)

// EngineRequest describes the engine a command needs.
type EngineRequest struct {
	EngineName      string
	Auth            AuthConfiguration
	Logger          *zap.Logger
	CommandObserver execshell.CommandEventObserver
}

// EngineFactory builds the remote engine selected by configuration.
type EngineFactory func(executionContext context.Context, request EngineRequest) (remote.Engine, error)

// DefaultEngineFactory builds go-git or git executable engines.
//
// The git executable engine is probed with `git version` before use.
func DefaultEngineFactory(executionContext context.Context, request EngineRequest) (remote.Engine, error) {
	logger := request.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	switch request.EngineName {
	case EngineGitCLI:
		shellExecutor, executorError := execshell.NewShellExecutorWithObserver(logger, execshell.NewOSCommandRunner(), request.CommandObserver)
		if executorError != nil {
			return nil, executorError
		}
		cliEngine, engineError := gitcliengine.NewEngine(gitcliengine.Dependencies{Executor: shellExecutor, Logger: logger})
		if engineError != nil {
			return nil, engineError
		}
		if availabilityError := cliEngine.CheckAvailability(executionContext); availabilityError != nil {
			return nil, availabilityError
		}
		return cliEngine, nil
	default:
		return gogitengine.NewEngine(gogitengine.Dependencies{
			Logger: logger,
			AuthProvider: gogitengine.CredentialsAuthProvider{
				Username:    request.Auth.Username,
				Token:       request.Auth.Token,
				UseSSHAgent: request.Auth.SSHAgent,
			},
		}), nil
	}
}

func resolveEngineFactory(existing EngineFactory) EngineFactory {
	if existing != nil {
		return existing
	}
	return DefaultEngineFactory
}
