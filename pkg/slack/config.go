package slack

import "github.com/oursky/slurm-deploy-controller/pkg/utils/defaults"

type Config struct {
	WebhookURL  string  `toml:"webhookURL,omitempty" validate:"omitempty,url"`
	Channel     *string `toml:"channel,omitempty"`
	Username    *string `toml:"username,omitempty"`
	ClusterName *string `toml:"clusterName,omitempty"`
}

func (c *Config) Enabled() bool {
	return c.WebhookURL != ""
}

func (c *Config) GetChannel() string {
	return defaults.Value(c.Channel, "")
}

func (c *Config) GetUsername() string {
	return defaults.Value(c.Username, "deploy-controller")
}

func (c *Config) GetClusterName() string {
	return defaults.Value(c.ClusterName, "cluster")
}
