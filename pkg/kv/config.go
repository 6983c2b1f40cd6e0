package kv

import (
	"fmt"

	"go.uber.org/zap"
)

type Type string

const (
	TypeInMemory Type = "InMemory"
	TypeFS       Type = "FS"
)

type Config struct {
	Type Type   `toml:"type,omitempty" validate:"omitempty,oneof=InMemory FS"`
	Path string `toml:"path,omitempty" validate:"required_if=Type FS"`
}

func NewStore(logger *zap.Logger, config *Config) (Store, error) {
	switch config.Type {
	case "", TypeInMemory:
		return NewInMemoryStore(), nil

	case TypeFS:
		return NewFSStore(logger, config.Path), nil
	}
	return nil, fmt.Errorf("invalid kv store type: %s", config.Type)
}
