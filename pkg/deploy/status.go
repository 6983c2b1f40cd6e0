package deploy

type Phase string

const (
	PhaseIdle     Phase = "idle"
	PhaseRunning  Phase = "running"
	PhaseTerminal Phase = "terminal"
)

const (
	MessageReady   = "Ready to deploy"
	MessageStarted = "started"
)

// JobStatus is a snapshot of the remote deployment job. The JSON shape matches
// the panel's /api/status response.
type JobStatus struct {
	Running   bool   `json:"running"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
}

func IdleStatus() JobStatus {
	return JobStatus{Message: MessageReady}
}

func (s JobStatus) IsTerminal() bool {
	return s.Completed
}

func (s JobStatus) Phase() Phase {
	switch {
	case s.Completed:
		return PhaseTerminal
	case s.Running:
		return PhaseRunning
	default:
		return PhaseIdle
	}
}

// Normalize returns s with the running flag cleared when the job also reports
// completion; a snapshot is never both running and completed.
func (s JobStatus) Normalize() JobStatus {
	if s.Completed {
		s.Running = false
	}
	return s
}
