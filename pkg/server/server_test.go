package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
	"go.uber.org/zap"
)

type fakeController struct {
	status    deploy.JobStatus
	startErr  error
	resetErr  error
	starts    int
	cancelled int
}

func (c *fakeController) Start(ctx context.Context) error {
	c.starts++
	if c.startErr != nil {
		return c.startErr
	}
	c.status = deploy.JobStatus{Running: true, Message: deploy.MessageStarted}
	return nil
}

func (c *fakeController) Cancel() { c.cancelled++ }

func (c *fakeController) Reset() error {
	if c.resetErr != nil {
		return c.resetErr
	}
	c.status = deploy.IdleStatus()
	return nil
}

func (c *fakeController) CurrentState() deploy.JobStatus { return c.status }

func serve(s *Server, method string, path string, key string) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, nil)
	if key != "" {
		r.Header.Set("Authorization", "Bearer "+key)
	}
	rw := httptest.NewRecorder()
	s.Handler().ServeHTTP(rw, r)
	return rw
}

func TestServer(t *testing.T) {
	Convey("Given a server", t, func() {
		controller := &fakeController{status: deploy.IdleStatus()}
		config := &Config{AuthKeys: []string{"secret", "secret"}}
		s := NewServer(zap.NewNop(), config, controller, prometheus.NewRegistry())

		Convey("the API requires a key", func() {
			rw := serve(s, http.MethodGet, "/api/v1/state", "")
			So(rw.Code, ShouldEqual, http.StatusUnauthorized)
			rw = serve(s, http.MethodPost, "/api/v1/deploy", "wrong")
			So(rw.Code, ShouldEqual, http.StatusUnauthorized)
			So(controller.starts, ShouldEqual, 0)
		})

		Convey("state is served in the panel status shape", func() {
			rw := serve(s, http.MethodGet, "/api/v1/state", "secret")
			So(rw.Code, ShouldEqual, http.StatusOK)

			var body map[string]any
			So(json.Unmarshal(rw.Body.Bytes(), &body), ShouldBeNil)
			So(body, ShouldResemble, map[string]any{"running": false, "completed": false, "message": deploy.MessageReady})
		})

		Convey("deploy starts the controller", func() {
			rw := serve(s, http.MethodPost, "/api/v1/deploy", "secret")
			So(rw.Code, ShouldEqual, http.StatusAccepted)
			So(controller.starts, ShouldEqual, 1)
			So(rw.Body.String(), ShouldContainSubstring, `"running":true`)
		})

		Convey("deploy maps controller errors", func() {
			controller.startErr = deploy.ErrAlreadyRunning
			So(serve(s, http.MethodPost, "/api/v1/deploy", "secret").Code, ShouldEqual, http.StatusConflict)

			controller.startErr = deploy.ErrTerminal
			So(serve(s, http.MethodPost, "/api/v1/deploy", "secret").Code, ShouldEqual, http.StatusConflict)

			controller.startErr = &deploy.TransportError{Op: "request start", Err: errors.New("refused")}
			So(serve(s, http.MethodPost, "/api/v1/deploy", "secret").Code, ShouldEqual, http.StatusBadGateway)

			controller.startErr = deploy.ErrClosed
			So(serve(s, http.MethodPost, "/api/v1/deploy", "secret").Code, ShouldEqual, http.StatusServiceUnavailable)
		})

		Convey("deploy only accepts POST", func() {
			So(serve(s, http.MethodGet, "/api/v1/deploy", "secret").Code, ShouldEqual, http.StatusMethodNotAllowed)
		})

		Convey("cancel and reset", func() {
			So(serve(s, http.MethodPost, "/api/v1/cancel", "secret").Code, ShouldEqual, http.StatusNoContent)
			So(controller.cancelled, ShouldEqual, 1)

			So(serve(s, http.MethodPost, "/api/v1/reset", "secret").Code, ShouldEqual, http.StatusNoContent)

			controller.resetErr = deploy.ErrAlreadyInProgress
			So(serve(s, http.MethodPost, "/api/v1/reset", "secret").Code, ShouldEqual, http.StatusConflict)
		})

		Convey("the index page renders the current snapshot", func() {
			controller.status = deploy.JobStatus{Running: true, Message: "Running deployment script..."}
			rw := serve(s, http.MethodGet, "/", "")
			So(rw.Code, ShouldEqual, http.StatusOK)
			So(rw.Body.String(), ShouldContainSubstring, "RUNNING")
			So(rw.Body.String(), ShouldContainSubstring, "Running deployment script...")
			So(strings.Contains(rw.Body.String(), `content="2"`), ShouldBeTrue)
		})

		Convey("metrics are served without a key", func() {
			So(serve(s, http.MethodGet, "/metrics", "").Code, ShouldEqual, http.StatusOK)
		})
	})

	Convey("A disabled server does nothing on start", t, func() {
		s := NewServer(zap.NewNop(), &Config{Disabled: true}, &fakeController{}, prometheus.NewRegistry())
		So(s.Start(context.Background(), nil), ShouldBeNil)
	})
}
