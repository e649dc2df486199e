package remote

// ConnectionEvent describes a handle at the time of a lifecycle notification.
type ConnectionEvent struct {
	RemoteName        string
	RemoteURL         string
	Direction         Direction
	SessionIdentifier string
}

// LifecycleObserver receives connection lifecycle notifications from handles.
type LifecycleObserver interface {
	// ConnectionOpened reports a successful connect.
	ConnectionOpened(event ConnectionEvent)
	// ConnectionFailed reports a connect rejected by the engine.
	ConnectionFailed(event ConnectionEvent, failure error)
	// ConnectionClosed reports a disconnect of an open connection.
	ConnectionClosed(event ConnectionEvent)
}

type noopLifecycleObserver struct{}

func (noopLifecycleObserver) ConnectionOpened(ConnectionEvent) {}

func (noopLifecycleObserver) ConnectionFailed(ConnectionEvent, error) {}

func (noopLifecycleObserver) ConnectionClosed(ConnectionEvent) {}

type lifecycleObservers []LifecycleObserver

// CombineObservers fans notifications out to every non-nil observer.
func CombineObservers(observers ...LifecycleObserver) LifecycleObserver {
	combined := make(lifecycleObservers, 0, len(observers))
	for _, observer := range observers {
		if observer != nil {
			combined = append(combined, observer)
		}
	}
	return combined
}

func (observers lifecycleObservers) ConnectionOpened(event ConnectionEvent) {
	for _, observer := range observers {
		observer.ConnectionOpened(event)
	}
}

func (observers lifecycleObservers) ConnectionFailed(event ConnectionEvent, failure error) {
	for _, observer := range observers {
		observer.ConnectionFailed(event, failure)
	}
}

func (observers lifecycleObservers) ConnectionClosed(event ConnectionEvent) {
	for _, observer := range observers {
		observer.ConnectionClosed(event)
	}
}
