package server

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"os"
	"time"

	"github.com/oursky/slurm-deploy-controller/pkg/deploy"
	"github.com/oursky/slurm-deploy-controller/pkg/utils/httputil"

	"github.com/Masterminds/sprig/v3"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/lo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

type Controller interface {
	Start(ctx context.Context) error
	Cancel()
	Reset() error
	CurrentState() deploy.JobStatus
}

type Server struct {
	logger     *zap.Logger
	enabled    bool
	server     *http.Server
	assets     fs.FS
	controller Controller
}

func NewServer(logger *zap.Logger, config *Config, controller Controller, gatherer prometheus.Gatherer) *Server {
	if config.Disabled {
		return &Server{enabled: false}
	}

	logger = logger.Named("server")

	assets, _ := fs.Sub(assetsFS, "assets")
	if config.AssetsDir != nil {
		assets = os.DirFS(*config.AssetsDir)
	}

	r := mux.NewRouter()
	server := &Server{
		logger:  logger,
		enabled: true,
		server: &http.Server{
			Addr:         config.GetAddr(),
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 30 * time.Second,
			Handler:      r,
			ErrorLog:     zap.NewStdLog(logger),
		},
		assets:     assets,
		controller: controller,
	}

	r.HandleFunc("/", server.index).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{
		ErrorLog: zap.NewStdLog(logger.Named("prom")),
	}))

	apiR := r.PathPrefix("/api/v1").Subrouter()
	if keys := lo.Uniq(config.AuthKeys); len(keys) > 0 {
		apiR.Use(func(next http.Handler) http.Handler {
			return httputil.UseKeyAuth(keys, next)
		})
	}
	apiR.HandleFunc("/state", server.apiState).Methods("GET")
	apiR.HandleFunc("/deploy", server.apiDeploy).Methods("POST")
	apiR.HandleFunc("/cancel", server.apiCancel).Methods("POST")
	apiR.HandleFunc("/reset", server.apiReset).Methods("POST")

	return server
}

func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

func (s *Server) Start(ctx context.Context, g *errgroup.Group) error {
	if !s.enabled {
		return nil
	}

	g.Go(func() error {
		go func() {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			s.server.Shutdown(shutdownCtx)
		}()

		s.logger.Info("starting server", zap.String("addr", s.server.Addr))
		err := s.server.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: failed to run server: %w", err)
		}
		return nil
	})
	return nil
}

type dataIndex struct {
	Status         deploy.JobStatus
	Now            time.Time
	RefreshSeconds int
}

func (s *Server) index(rw http.ResponseWriter, r *http.Request) {
	status := s.controller.CurrentState()
	refresh := 0
	if status.Running {
		refresh = 2
	}

	s.template(rw, "index.html", &dataIndex{
		Status:         status,
		Now:            time.Now(),
		RefreshSeconds: refresh,
	})
}

func (s *Server) template(rw http.ResponseWriter, tplName string, data any) {
	tpl := template.New(tplName).Funcs(sprig.FuncMap())
	tpl, err := tpl.ParseFS(s.assets, tplName)
	if err != nil {
		rw.WriteHeader(http.StatusInternalServerError)
		rw.Write([]byte(fmt.Sprintf("failed to load template: %s", err)))
		s.logger.Error("failed to load template", zap.Error(err))
		return
	}

	rw.Header().Add("Content-Type", "text/html; charset=utf-8")
	rw.WriteHeader(http.StatusOK)
	if err := tpl.Execute(rw, data); err != nil {
		rw.Write([]byte(fmt.Sprintf("failed to execute template: %s", err)))
		s.logger.Error("failed to execute template", zap.Error(err))
	}
}
