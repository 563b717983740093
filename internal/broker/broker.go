// Package broker subscribes to the bins' telemetry feed.
package broker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"ecoroute/internal/config"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
)

// Handler receives one raw telemetry message. Handlers are called from a
// single goroutine in receipt order.
type Handler func(payload []byte, receivedAt time.Time)

// Subscriber owns one broker connection for the lifetime of Run.
type Subscriber interface {
	// Run connects, subscribes and delivers messages to h until ctx is
	// canceled. It returns nil on cancellation.
	Run(ctx context.Context, h Handler) error
	Status() models.LinkStatus
}

// New builds the subscriber selected by cfg.Kind.
func New(cfg config.BrokerConfig, log *logger.Logger) (Subscriber, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch cfg.Kind {
	case config.BrokerMQTT, "":
		return NewMQTT(cfg, log.Named("mqtt")), nil
	case config.BrokerNATS:
		return NewNATS(cfg, log.Named("nats")), nil
	case config.BrokerNone:
		return Disabled{}, nil
	default:
		return nil, fmt.Errorf("unknown broker kind %q", cfg.Kind)
	}
}

// Disabled never delivers anything. Telemetry then only arrives over HTTP.
type Disabled struct{}

func (Disabled) Run(ctx context.Context, _ Handler) error {
	<-ctx.Done()
	return nil
}

func (Disabled) Status() models.LinkStatus { return models.LinkDisabled }

// linkState is a LinkStatus safe for concurrent use.
type linkState struct {
	v atomic.Value
}

func newLinkState() *linkState {
	s := &linkState{}
	s.v.Store(models.LinkConnecting)
	return s
}

func (s *linkState) set(st models.LinkStatus) { s.v.Store(st) }

func (s *linkState) get() models.LinkStatus { return s.v.Load().(models.LinkStatus) }
