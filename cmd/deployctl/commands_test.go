package main

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/tomltypes"

	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

type stubPanel struct {
	lock     sync.Mutex
	startErr error
	statuses []deploy.JobStatus
	starts   int
}

func (p *stubPanel) RequestStart(ctx context.Context) error {
	p.lock.Lock()
	defer p.lock.Unlock()
	p.starts++
	return p.startErr
}

func (p *stubPanel) FetchStatus(ctx context.Context) (deploy.JobStatus, error) {
	p.lock.Lock()
	defer p.lock.Unlock()
	status := p.statuses[0]
	if len(p.statuses) > 1 {
		p.statuses = p.statuses[1:]
	}
	return status, nil
}

func TestRunDeploy(t *testing.T) {
	Convey("runDeploy", t, func() {
		logger := zap.NewNop()
		panel := &stubPanel{}
		config := &deploy.Config{
			PollInterval: &tomltypes.Duration{Duration: 5 * time.Millisecond},
		}
		controller := deploy.NewController(logger, config, panel, panel, nil)
		defer controller.Close()

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()

		Convey("follows a started deployment to completion", func() {
			panel.statuses = []deploy.JobStatus{
				{Running: true, Message: "Running deployment script..."},
				{Completed: true, Message: "Deployment completed successfully"},
			}

			So(runDeploy(ctx, logger, controller), ShouldBeNil)
			So(panel.starts, ShouldEqual, 1)
			So(controller.CurrentState().Completed, ShouldBeTrue)
		})

		Convey("follows a deployment the panel already runs", func() {
			panel.startErr = deploy.ErrAlreadyRunning
			panel.statuses = []deploy.JobStatus{
				{Running: true, Message: "Running deployment script..."},
				{Completed: true, Message: "Deployment completed successfully"},
			}

			So(runDeploy(ctx, logger, controller), ShouldBeNil)
			So(controller.CurrentState().Completed, ShouldBeTrue)
		})

		Convey("fails when the panel refuses the start but is idle", func() {
			panel.startErr = deploy.ErrAlreadyRunning
			panel.statuses = []deploy.JobStatus{deploy.IdleStatus()}

			err := runDeploy(ctx, logger, controller)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "reports no running deployment")
			So(ctx.Err(), ShouldBeNil)
		})

		Convey("fails when interrupted before the deployment finishes", func() {
			panel.statuses = []deploy.JobStatus{{Running: true, Message: "Running deployment script..."}}
			short, stop := context.WithTimeout(ctx, 50*time.Millisecond)
			defer stop()

			So(runDeploy(short, logger, controller), ShouldBeError, "interrupted before deployment finished")
		})
	})
}
