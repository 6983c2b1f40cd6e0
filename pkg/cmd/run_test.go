package cmd

import (
	"context"
	"errors"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func TestRun(t *testing.T) {
	Convey("Run", t, func() {
		logger := zap.NewNop()

		Convey("stops all modules when the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			stopped := make(chan struct{})
			m := ModuleFunc(func(ctx context.Context, g *errgroup.Group) error {
				g.Go(func() error {
					<-ctx.Done()
					close(stopped)
					return nil
				})
				return nil
			})

			result := make(chan error, 1)
			go func() { result <- Run(ctx, logger, []Module{m}) }()
			cancel()

			var err error
			select {
			case err = <-result:
			case <-time.After(time.Second):
				err = errors.New("timed out")
			}
			So(err, ShouldBeNil)
			So(isClosed(stopped), ShouldBeTrue)
		})

		Convey("returns the first module failure", func() {
			failure := errors.New("boom")
			m := ModuleFunc(func(ctx context.Context, g *errgroup.Group) error {
				g.Go(func() error { return failure })
				return nil
			})

			err := Run(context.Background(), logger, []Module{m})
			So(errors.Is(err, failure), ShouldBeTrue)
		})

		Convey("reports start errors and skips later modules", func() {
			started := false
			failing := ModuleFunc(func(ctx context.Context, g *errgroup.Group) error {
				return errors.New("bad config")
			})
			later := ModuleFunc(func(ctx context.Context, g *errgroup.Group) error {
				started = true
				return nil
			})

			err := Run(context.Background(), logger, []Module{failing, later})
			So(err, ShouldBeError, "error while starting: bad config")
			So(started, ShouldBeFalse)
		})
	})
}

func isClosed(ch chan struct{}) bool {
	select {
	case <-ch:
		return true
	default:
		return false
	}
}
