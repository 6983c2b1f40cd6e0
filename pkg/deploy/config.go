package deploy

import (
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/utils/defaults"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/tomltypes"
)

type Config struct {
	PollInterval   *tomltypes.Duration `toml:"pollInterval,omitempty"`
	RequestTimeout *tomltypes.Duration `toml:"requestTimeout,omitempty"`
	// MaxConsecutiveFailures aborts polling after this many failed status
	// fetches in a row. Zero polls forever.
	MaxConsecutiveFailures *int `toml:"maxConsecutiveFailures,omitempty" validate:"omitempty,min=0"`
}

func (c *Config) GetPollInterval() time.Duration {
	return defaults.Value(c.PollInterval.Value(), 2*time.Second)
}

func (c *Config) GetRequestTimeout() time.Duration {
	return defaults.Value(c.RequestTimeout.Value(), 10*time.Second)
}

func (c *Config) GetMaxConsecutiveFailures() int {
	return defaults.Value(c.MaxConsecutiveFailures, 0)
}
