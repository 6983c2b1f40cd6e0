package panel

import (
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/utils/defaults"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/tomltypes"
)

type Config struct {
	URL         string              `toml:"url" validate:"required,url"`
	Token       string              `toml:"token,omitempty"`
	TokenPath   string              `toml:"tokenPath,omitempty" validate:"omitempty,file,excluded_with=Token"`
	RPS         *float64            `toml:"rps,omitempty" validate:"omitempty,gt=0"`
	Burst       *int                `toml:"burst,omitempty" validate:"omitempty,min=1"`
	HTTPTimeout *tomltypes.Duration `toml:"httpTimeout,omitempty"`
	StatusPath  *string             `toml:"statusPath,omitempty"`
	DeployPath  *string             `toml:"deployPath,omitempty"`
}

func (c *Config) GetRPS() float64 {
	return defaults.Value(c.RPS, 5)
}

func (c *Config) GetBurst() int {
	return defaults.Value(c.Burst, 1)
}

func (c *Config) GetHTTPTimeout() time.Duration {
	return defaults.Value(c.HTTPTimeout.Value(), 10*time.Second)
}

func (c *Config) GetStatusPath() string {
	return defaults.Value(c.StatusPath, "api/status")
}

func (c *Config) GetDeployPath() string {
	return defaults.Value(c.DeployPath, "api/deploy")
}
