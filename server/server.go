package server

import (
	"context"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/server/jsonrpc"
	"github.com/icon-project/govote/server/metric"
	"github.com/icon-project/govote/server/v1"
	"github.com/icon-project/govote/service"
)

type Config struct {
	Addr          string
	MaxSession    int
	LimitOfBatch  int
	IncludeDebug  bool
	JsonrpcDump   bool
	EnableMetrics bool
}

type Manager struct {
	e        *echo.Echo
	cfg      Config
	svc      *service.Manager
	wssm     *wsSessionManager
	jm       *metric.JsonrpcMetric
	logger   log.Logger
	mtx      sync.Mutex
	listener net.Listener
}

func NewManager(cfg Config, svc *service.Manager, logger log.Logger) *Manager {
	if logger == nil {
		logger = log.GlobalLogger()
	}
	logger = log.ModuleLogger(logger, "server")

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = HTTPErrorHandler
	e.Validator = jsonrpc.NewValidator()

	srv := &Manager{
		e:      e,
		cfg:    cfg,
		svc:    svc,
		wssm:   newWSSessionManager(logger, svc.Bus(), cfg.MaxSession),
		logger: logger,
	}
	srv.route()
	return srv
}

func (srv *Manager) route() {
	srv.e.Use(middleware.Recover())
	srv.e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		MaxAge: 3600,
	}))

	mr := v1.MethodRepository()
	mr.SetLimitOfBatch(srv.cfg.LimitOfBatch)
	mr.SetIncludeDebug(srv.cfg.IncludeDebug)

	g := srv.e.Group("/api")
	if srv.cfg.JsonrpcDump {
		g.Use(middleware.BodyDump(func(c echo.Context, reqBody []byte, resBody []byte) {
			srv.logger.Infof("request=%s", reqBody)
			srv.logger.Infof("response=%s", resBody)
		}))
	}
	g.POST("/v1", mr.Handle, Chunk(), JsonRpc(), ServiceInjector(srv.svc))

	srv.e.GET("/api/v1/events", srv.wssm.RunEventSession)

	if srv.cfg.EnableMetrics {
		if pe := metric.PrometheusExporter(); pe != nil {
			srv.jm = metric.NewJsonrpcMetric(metric.DefaultJsonrpcDurationsExpire,
				metric.DefaultJsonrpcDurationsSize, true)
			mctx := metric.NewMetricContext()
			mr.SetObserver(func(method string, ts time.Time, err error) {
				srv.jm.OnHandle(mctx, method, ts, err)
			})
			srv.e.GET("/metrics", echo.WrapHandler(metric.Handler(pe)))
		}
	}
}

// Handler returns the HTTP handler of the server.
func (srv *Manager) Handler() http.Handler {
	return srv.e
}

// Addr returns the address the server listens on. It's valid after Start.
func (srv *Manager) Addr() string {
	srv.mtx.Lock()
	defer srv.mtx.Unlock()
	if srv.listener != nil {
		return srv.listener.Addr().String()
	}
	return srv.cfg.Addr
}

// Start serves requests until Stop is called.
func (srv *Manager) Start() error {
	l, err := net.Listen("tcp", srv.cfg.Addr)
	if err != nil {
		return errors.WithStack(err)
	}
	srv.mtx.Lock()
	srv.listener = l
	srv.mtx.Unlock()

	srv.logger.Infof("Listening RPC on %s", l.Addr())
	srv.e.Listener = l
	if err := srv.e.Start(""); err != nil && err != http.ErrServerClosed {
		return err
	}
	srv.logger.Info("shutting down the server")
	return nil
}

func (srv *Manager) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv.wssm.StopAllSessions()
	return srv.e.Shutdown(ctx)
}
