package deploy

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/oursky/slurm-deploy-controller/pkg/kv"

	"go.uber.org/zap"
)

var KVNamespace = kv.RegisterNamespace("deploy")

const KVKeyLastStatus = "last-status"

// Recorder persists the last delivered snapshot.
type Recorder struct {
	logger *zap.Logger
	store  kv.Store
}

func NewRecorder(logger *zap.Logger, store kv.Store) *Recorder {
	return &Recorder{
		logger: logger.Named("recorder"),
		store:  store,
	}
}

func (r *Recorder) OnStateChange(status JobStatus) {
	data, err := json.Marshal(status)
	if err != nil {
		r.logger.Warn("failed to encode status", zap.Error(err))
		return
	}

	if err := r.store.Set(context.Background(), KVNamespace, KVKeyLastStatus, string(data)); err != nil {
		r.logger.Warn("failed to save status", zap.Error(err))
	}
}

// Load returns the last recorded snapshot, or nil when nothing was recorded.
func (r *Recorder) Load(ctx context.Context) (*JobStatus, error) {
	data, err := r.store.Get(ctx, KVNamespace, KVKeyLastStatus)
	if err != nil {
		return nil, fmt.Errorf("failed to load status: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var status JobStatus
	if err := json.Unmarshal([]byte(data), &status); err != nil {
		return nil, fmt.Errorf("failed to decode status: %w", err)
	}
	return &status, nil
}
