package deploy

import (
	"encoding/json"
	"testing"

	"github.com/go-playground/assert/v2"
)

func TestJobStatusPhase(t *testing.T) {
	assert.Equal(t, PhaseIdle, IdleStatus().Phase())
	assert.Equal(t, PhaseRunning, JobStatus{Running: true}.Phase())
	assert.Equal(t, PhaseTerminal, JobStatus{Completed: true}.Phase())
	assert.Equal(t, true, JobStatus{Completed: true}.IsTerminal())
}

func TestJobStatusNormalize(t *testing.T) {
	s := JobStatus{Running: true, Completed: true, Message: "done"}.Normalize()
	assert.Equal(t, JobStatus{Completed: true, Message: "done"}, s)

	running := JobStatus{Running: true, Message: "in progress"}
	assert.Equal(t, running, running.Normalize())
}

func TestJobStatusJSON(t *testing.T) {
	var s JobStatus
	err := json.Unmarshal([]byte(`{"running":false,"message":"Deployment completed successfully","completed":true}`), &s)
	assert.Equal(t, nil, err)
	assert.Equal(t, JobStatus{Message: "Deployment completed successfully", Completed: true}, s)
}
