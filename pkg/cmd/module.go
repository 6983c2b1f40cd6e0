package cmd

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Module is a long-running component. Start must not block; background work
// is added to g and ends when ctx is cancelled.
type Module interface {
	Start(ctx context.Context, g *errgroup.Group) error
}

type ModuleFunc func(ctx context.Context, g *errgroup.Group) error

func (f ModuleFunc) Start(ctx context.Context, g *errgroup.Group) error {
	return f(ctx, g)
}
