package broker

import (
	"context"
	"fmt"
	"time"

	"ecoroute/internal/config"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"

	"github.com/nats-io/nats.go"
)

const natsReconnectWait = 2 * time.Second

// NATS subscribes to a core NATS subject for deployments that bridge the
// devices into NATS. Reconnection is left to the client library.
type NATS struct {
	cfg   config.BrokerConfig
	log   *logger.Logger
	state *linkState
}

func NewNATS(cfg config.BrokerConfig, log *logger.Logger) *NATS {
	return &NATS{cfg: cfg, log: log, state: newLinkState()}
}

func (n *NATS) Status() models.LinkStatus { return n.state.get() }

func (n *NATS) options() []nats.Option {
	opts := []nats.Option{
		nats.Name(n.cfg.ClientIDPrefix + "subscriber"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(natsReconnectWait),
		nats.ConnectHandler(func(nc *nats.Conn) {
			n.state.set(models.LinkConnected)
			n.log.Infow("nats_connected", "url", nc.ConnectedUrl())
		}),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			n.state.set(models.LinkDisconnected)
			n.log.Warnw("nats_disconnected", "err", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			n.state.set(models.LinkConnected)
			n.log.Infow("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ErrorHandler(func(_ *nats.Conn, _ *nats.Subscription, err error) {
			n.log.Errorw("nats_error", "err", err)
		}),
	}
	if n.cfg.DialTimeout > 0 {
		opts = append(opts, nats.Timeout(n.cfg.DialTimeout))
	}
	if n.cfg.Username != "" {
		opts = append(opts, nats.UserInfo(n.cfg.Username, n.cfg.Password))
	}
	return opts
}

// Run subscribes to cfg.Topic. Messages of one subscription are delivered
// sequentially by the client library, which keeps receipt order.
func (n *NATS) Run(ctx context.Context, h Handler) error {
	n.state.set(models.LinkConnecting)
	nc, err := nats.Connect(n.cfg.URL, n.options()...)
	if err != nil {
		n.state.set(models.LinkDisconnected)
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer func() {
		nc.Close()
		n.state.set(models.LinkDisconnected)
	}()
	if nc.IsConnected() {
		n.state.set(models.LinkConnected)
	}

	sub, err := nc.Subscribe(n.cfg.Topic, func(msg *nats.Msg) {
		h(msg.Data, time.Now())
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", n.cfg.Topic, err)
	}
	n.log.Infow("nats_subscribed", "subject", n.cfg.Topic)

	<-ctx.Done()
	if err := sub.Unsubscribe(); err != nil {
		n.log.Debugw("nats_unsubscribe_failed", "err", err)
	}
	return nil
}
