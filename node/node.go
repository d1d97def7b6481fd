package node

import (
	"context"
	"os"

	"golang.org/x/sync/errgroup"

	"github.com/icon-project/govote/common/db"
	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/server"
	"github.com/icon-project/govote/server/metric"
	"github.com/icon-project/govote/service"
	"github.com/icon-project/govote/service/event"
)

type Node struct {
	cfg    Config
	logger log.Logger

	svc      *service.Manager
	srv      *server.Manager
	adminSrv *AdminServer
	pub      *event.Publisher
}

func NewNode(cfg *Config, l log.Logger) (*Node, error) {
	if l == nil {
		l = log.GlobalLogger()
	}
	cfg.FillEmpty()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	owner, _ := cfg.OwnerAddress()
	timeout, _ := cfg.ForwardTimeoutDuration()
	if !owner.IsZero() {
		metric.Initialize(&owner)
	}

	baseDir := cfg.AbsBaseDir()
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, errors.CriticalIOError.Wrapf(err, "FailToMakeDir(dir=%s)", baseDir)
	}
	l.Infof("BaseDir : %s", baseDir)

	dbase, err := db.Open(baseDir, cfg.DBType, DefaultDBName)
	if err != nil {
		return nil, err
	}
	svc, err := service.NewManager(dbase, &service.Config{
		Owner:          owner,
		ForwardTimeout: timeout,
		DefaultOptions: cfg.DefaultOptions,
	}, l)
	if err != nil {
		_ = dbase.Close()
		return nil, err
	}

	srv := server.NewManager(server.Config{
		Addr:          cfg.RPCAddr,
		MaxSession:    cfg.WSMaxSession,
		LimitOfBatch:  cfg.RPCBatchLimit,
		IncludeDebug:  cfg.RPCIncludeDebug,
		JsonrpcDump:   cfg.RPCDump,
		EnableMetrics: cfg.Metrics,
	}, svc, l)

	adminSrv := NewAdminServer(cfg.ResolveAbsolute(cfg.AdminSocket))
	adminSrv.e.Logger.SetOutput(l.Writer())

	n := &Node{
		cfg:      *cfg,
		logger:   l,
		svc:      svc,
		srv:      srv,
		adminSrv: adminSrv,
	}

	if cfg.EventNATS != nil && cfg.EventNATS.URL != "" {
		if n.pub, err = event.NewPublisher(cfg.EventNATS, l); err != nil {
			_ = svc.Close()
			return nil, err
		}
	}

	RegisterRest(n)
	return n, nil
}

func (n *Node) Service() *service.Manager {
	return n.svc
}

// Run serves the RPC and the admin socket until ctx is done or one of them
// fails.
func (n *Node) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(n.srv.Start)
	eg.Go(n.adminSrv.Start)
	if n.cfg.Metrics {
		sub := n.svc.Bus().Subscribe(event.DefaultBufferSize)
		eg.Go(func() error {
			defer sub.Close()
			metric.ObserveEvents(ctx, sub.C())
			return nil
		})
	}
	if n.pub != nil {
		sub := n.svc.Bus().Subscribe(event.DefaultBufferSize)
		eg.Go(func() error {
			return n.pub.Run(ctx, sub)
		})
	}
	eg.Go(func() error {
		<-ctx.Done()
		n.stop()
		return nil
	})

	err := eg.Wait()
	if cerr := n.svc.Close(); cerr != nil {
		n.logger.Warnf("Fail to close service err=%+v", cerr)
	}
	return err
}

func (n *Node) stop() {
	if err := n.srv.Stop(); err != nil {
		n.logger.Warnf("Fail to stop server err=%+v", err)
	}
	if err := n.adminSrv.Stop(); err != nil {
		n.logger.Warnf("Fail to stop admin server err=%+v", err)
	}
	if n.pub != nil {
		n.pub.Close()
	}
}
