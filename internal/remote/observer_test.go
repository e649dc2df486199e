package remote_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/temirov/gitremote/internal/remote"
)

func TestCombineObserversFansOutAndSkipsNil(testInstance *testing.T) {
	firstObserver := &recordingLifecycleObserver{}
	secondObserver := &recordingLifecycleObserver{}
	combined := remote.CombineObservers(firstObserver, nil, secondObserver)

	event := remote.ConnectionEvent{RemoteName: "origin", Direction: remote.DirectionFetch, SessionIdentifier: "session"}
	combined.ConnectionOpened(event)
	combined.ConnectionFailed(event, errors.New("refused"))
	combined.ConnectionClosed(event)

	for _, recordingObserver := range []*recordingLifecycleObserver{firstObserver, secondObserver} {
		require.Equal(testInstance, []remote.ConnectionEvent{event}, recordingObserver.opened)
		require.Equal(testInstance, []remote.ConnectionEvent{event}, recordingObserver.failed)
		require.Equal(testInstance, []remote.ConnectionEvent{event}, recordingObserver.closed)
	}
}

func TestOperationErrorMessages(testInstance *testing.T) {
	engineFailure := errors.New("repository not found")
	testCases := []struct {
		name            string
		operationError  remote.OperationError
		expectedMessage string
	}{
		{
			name:            "engine_error_is_verbatim",
			operationError:  remote.OperationError{Kind: remote.ErrEngine, Operation: "connect remote", Message: engineFailure.Error(), Cause: engineFailure},
			expectedMessage: "repository not found",
		},
		{
			name:            "invalid_argument_is_prefixed",
			operationError:  remote.OperationError{Kind: remote.ErrInvalidArgument, Operation: "create remote", Message: "remote url is required"},
			expectedMessage: "create remote: remote url is required",
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			require.Equal(testInstance, testCase.expectedMessage, testCase.operationError.Error())
			require.ErrorIs(testInstance, testCase.operationError, testCase.operationError.Kind)
		})
	}
}
