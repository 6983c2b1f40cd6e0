package server

import "github.com/oursky/slurm-deploy-controller/pkg/utils/defaults"

type Config struct {
	Disabled  bool     `toml:"disabled"`
	Addr      *string  `toml:"addr,omitempty" validate:"omitempty,tcp_addr"`
	AuthKeys  []string `toml:"authKeys,omitempty" validate:"dive,required"`
	AssetsDir *string  `toml:"assetsDir,omitempty" validate:"omitempty,dir"`
}

func (c *Config) GetAddr() string {
	return defaults.Value(c.Addr, "127.0.0.1:8000")
}
