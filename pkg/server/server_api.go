package server

import (
	"errors"
	"net/http"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/httputil"

	"go.uber.org/zap"
)

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) apiState(rw http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(rw, s.controller.CurrentState())
}

func (s *Server) apiDeploy(rw http.ResponseWriter, r *http.Request) {
	err := s.controller.Start(r.Context())
	if err != nil {
		s.logger.Info("deploy request failed", zap.Error(err))
		httputil.RespondJSONStatus(rw, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}
	httputil.RespondJSONStatus(rw, http.StatusAccepted, s.controller.CurrentState())
}

func (s *Server) apiCancel(rw http.ResponseWriter, r *http.Request) {
	s.controller.Cancel()
	rw.WriteHeader(http.StatusNoContent)
}

func (s *Server) apiReset(rw http.ResponseWriter, r *http.Request) {
	if err := s.controller.Reset(); err != nil {
		httputil.RespondJSONStatus(rw, errorStatus(err), errorResponse{Error: err.Error()})
		return
	}
	rw.WriteHeader(http.StatusNoContent)
}

func errorStatus(err error) int {
	var transportErr *deploy.TransportError
	switch {
	case errors.Is(err, deploy.ErrAlreadyInProgress), errors.Is(err, deploy.ErrTerminal):
		return http.StatusConflict
	case errors.Is(err, deploy.ErrClosed):
		return http.StatusServiceUnavailable
	case errors.As(err, &transportErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
