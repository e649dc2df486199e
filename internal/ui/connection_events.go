package ui

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/temirov/gitremote/internal/remote"
)

const (
	connectionOpenedTemplateConstant = "Connected %s (%s) for %s"
	connectionFailedTemplateConstant = "Could not connect %s (%s) for %s: %s"
	connectionClosedTemplateConstant = "Disconnected %s (%s) after %s"
	unknownFailureMessageConstant    = "unknown error"
)

// ConsoleConnectionEventLogger renders remote lifecycle events as console messages.
type ConsoleConnectionEventLogger struct {
	logger *zap.Logger
}

// NewConsoleConnectionEventLogger constructs a connection event logger backed by the provided zap logger.
func NewConsoleConnectionEventLogger(logger *zap.Logger) *ConsoleConnectionEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConsoleConnectionEventLogger{logger: logger}
}

// ConnectionOpened implements remote.LifecycleObserver.
func (eventLogger *ConsoleConnectionEventLogger) ConnectionOpened(event remote.ConnectionEvent) {
	eventLogger.logger.Info(fmt.Sprintf(connectionOpenedTemplateConstant, event.RemoteName, event.RemoteURL, event.Direction))
}

// ConnectionFailed implements remote.LifecycleObserver.
func (eventLogger *ConsoleConnectionEventLogger) ConnectionFailed(event remote.ConnectionEvent, failure error) {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	eventLogger.logger.Warn(fmt.Sprintf(connectionFailedTemplateConstant, event.RemoteName, event.RemoteURL, event.Direction, failureMessage))
}

// ConnectionClosed implements remote.LifecycleObserver.
func (eventLogger *ConsoleConnectionEventLogger) ConnectionClosed(event remote.ConnectionEvent) {
	eventLogger.logger.Info(fmt.Sprintf(connectionClosedTemplateConstant, event.RemoteName, event.RemoteURL, event.Direction))
}
