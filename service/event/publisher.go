package event

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/icon-project/govote/common/errors"
	"github.com/icon-project/govote/common/log"
	"github.com/icon-project/govote/module"
)

const DefaultSubjectPrefix = "govote.events"

type NATSConfig struct {
	URL    string `json:"url"`
	Prefix string `json:"prefix,omitempty"`
}

type natsPublisher interface {
	Publish(subject string, data []byte) error
}

// Publisher forwards events of the bus to NATS subjects named
// <prefix>.<event type>.
type Publisher struct {
	conn   natsPublisher
	prefix string
	log    log.Logger
	closer func()
}

func (p *Publisher) Subject(t module.EventType) string {
	return p.prefix + "." + string(t)
}

func (p *Publisher) publish(e *module.Event) error {
	bs, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return p.conn.Publish(p.Subject(e.Type), bs)
}

// Run publishes events of the subscription until the context is done or
// the subscription is closed.
func (p *Publisher) Run(ctx context.Context, sub *Subscription) error {
	defer sub.Close()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-sub.C():
			if !ok {
				return nil
			}
			if err := p.publish(e); err != nil {
				p.log.Warnf("Fail to publish event type=%s err=%+v", e.Type, err)
			}
		}
	}
}

func (p *Publisher) Close() {
	if p.closer != nil {
		p.closer()
	}
}

func newPublisher(conn natsPublisher, prefix string, logger log.Logger) *Publisher {
	prefix = strings.TrimSuffix(prefix, ".")
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	if logger == nil {
		logger = log.GlobalLogger()
	}
	return &Publisher{
		conn:   conn,
		prefix: prefix,
		log:    log.ModuleLogger(logger, "event"),
	}
}

// NewPublisher connects to the NATS server of the configuration.
func NewPublisher(cfg *NATSConfig, logger log.Logger) (*Publisher, error) {
	if cfg == nil || cfg.URL == "" {
		return nil, errors.IllegalArgumentError.New("NoNATSURL")
	}
	nc, err := nats.Connect(cfg.URL,
		nats.Name("govote"),
		nats.Timeout(5*time.Second),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, errors.Wrapf(err, "FailToConnectNATS(url=%s)", cfg.URL)
	}
	p := newPublisher(nc, cfg.Prefix, logger)
	p.closer = func() {
		if err := nc.Drain(); err != nil {
			p.log.Warnf("Fail to drain NATS connection err=%+v", err)
		}
	}
	p.log.Infof("NATS publisher connected url=%s prefix=%s", cfg.URL, p.prefix)
	return p, nil
}
