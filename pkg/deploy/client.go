package deploy

import "context"

// StatusClient fetches the current job status. Failures are returned as
// *TransportError.
type StatusClient interface {
	FetchStatus(ctx context.Context) (JobStatus, error)
}

// StartClient asks the panel to begin a deployment. A nil error is the
// acknowledgement; otherwise the error is ErrAlreadyRunning or a
// *TransportError. The panel does not deduplicate requests.
type StartClient interface {
	RequestStart(ctx context.Context) error
}

type Observer interface {
	OnStateChange(status JobStatus)
}

type ObserverFunc func(status JobStatus)

func (f ObserverFunc) OnStateChange(status JobStatus) {
	f(status)
}
