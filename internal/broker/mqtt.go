package broker

import (
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"strconv"
	"time"

	"ecoroute/internal/config"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"

	"github.com/cenkalti/backoff/v5"
	mqtt "github.com/soypat/natiu-mqtt"
)

const (
	mqttBufSize = 4096
	maxPayload  = 64 << 10

	reconnectInitial = time.Second
	reconnectMax     = 30 * time.Second
)

// MQTT is an MQTT 3.1.1 subscriber over TCP or TLS.
type MQTT struct {
	cfg   config.BrokerConfig
	log   *logger.Logger
	state *linkState
	// dial is replaced in tests.
	dial func(ctx context.Context) (net.Conn, error)
}

func NewMQTT(cfg config.BrokerConfig, log *logger.Logger) *MQTT {
	m := &MQTT{cfg: cfg, log: log, state: newLinkState()}
	m.dial = m.dialBroker
	return m
}

func (m *MQTT) Status() models.LinkStatus { return m.state.get() }

// Run keeps a session alive, reconnecting with exponential backoff until
// ctx is canceled.
func (m *MQTT) Run(ctx context.Context, h Handler) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = reconnectInitial
	bo.MaxInterval = reconnectMax
	bo.RandomizationFactor = 0.2

	op := func() (struct{}, error) {
		err := m.session(ctx, h, bo.Reset)
		if ctx.Err() != nil {
			return struct{}{}, backoff.Permanent(ctx.Err())
		}
		return struct{}{}, err
	}
	notify := func(err error, wait time.Duration) {
		m.state.set(models.LinkDisconnected)
		m.log.Warnw("mqtt_session_lost", "err", err, "retry_in", wait)
	}

	_, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(bo),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	m.state.set(models.LinkDisconnected)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// session runs one connection from dial to teardown. connected is called
// once the broker accepted us.
func (m *MQTT) session(ctx context.Context, h Handler, connected func()) error {
	m.state.set(models.LinkConnecting)

	conn, err := m.dial(ctx)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	// The socket is torn down on cancel whatever state the session is in.
	sessCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		<-sessCtx.Done()
		_ = conn.Close()
	}()

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, mqttBufSize)},
		OnPub: func(_ mqtt.Header, vp mqtt.VariablesPublish, r io.Reader) error {
			payload, err := io.ReadAll(io.LimitReader(r, maxPayload))
			if err != nil {
				return err
			}
			m.log.Debugw("mqtt_message", "topic", string(vp.TopicName), "bytes", len(payload))
			h(payload, time.Now())
			return nil
		},
	})
	defer client.Disconnect(errors.New("session closed"))

	clientID := m.clientID()
	var vc mqtt.VariablesConnect
	vc.SetDefaultMQTT([]byte(clientID))
	vc.KeepAlive = keepAliveSeconds(m.cfg.KeepAlive)
	if m.cfg.Username != "" {
		vc.Username = []byte(m.cfg.Username)
		vc.Password = []byte(m.cfg.Password)
	}

	_ = conn.SetDeadline(time.Now().Add(m.dialTimeout()))
	if err := client.StartConnect(conn, &vc); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	for !client.IsConnected() {
		if err := client.HandleNext(); err != nil {
			return fmt.Errorf("await connack: %w", err)
		}
	}

	sub := mqtt.VariablesSubscribe{
		PacketIdentifier: 1,
		TopicFilters: []mqtt.SubscribeRequest{
			{TopicFilter: []byte(m.cfg.Topic), QoS: mqtt.QoS0},
		},
	}
	if err := client.StartSubscribe(sub); err != nil {
		return fmt.Errorf("subscribe %s: %w", m.cfg.Topic, err)
	}
	_ = conn.SetDeadline(time.Time{})

	m.state.set(models.LinkConnected)
	connected()
	m.log.Infow("mqtt_connected", "addr", m.addr(), "topic", m.cfg.Topic, "client_id", clientID)

	if vc.KeepAlive > 0 {
		go m.keepAlive(sessCtx, client)
	}

	for {
		if err := client.HandleNext(); err != nil {
			return fmt.Errorf("read: %w", err)
		}
		if !client.IsConnected() {
			return errors.New("broker closed session")
		}
	}
}

// keepAlive pings at half the negotiated interval so the broker never
// sees us idle for a full period.
func (m *MQTT) keepAlive(ctx context.Context, client *mqtt.Client) {
	t := time.NewTicker(m.cfg.KeepAlive / 2)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if err := client.StartPing(); err != nil {
				m.log.Debugw("mqtt_ping_failed", "err", err)
			}
		}
	}
}

func (m *MQTT) dialBroker(ctx context.Context) (net.Conn, error) {
	d := &net.Dialer{Timeout: m.dialTimeout()}
	if !m.cfg.TLS {
		return d.DialContext(ctx, "tcp", m.addr())
	}
	td := &tls.Dialer{
		NetDialer: d,
		Config:    &tls.Config{ServerName: m.cfg.Host, MinVersion: tls.VersionTLS12},
	}
	return td.DialContext(ctx, "tcp", m.addr())
}

func (m *MQTT) addr() string {
	return net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
}

func (m *MQTT) dialTimeout() time.Duration {
	if m.cfg.DialTimeout > 0 {
		return m.cfg.DialTimeout
	}
	return 10 * time.Second
}

// clientID appends a random suffix so parallel servers do not kick each
// other off the broker.
func (m *MQTT) clientID() string {
	var b [4]byte
	_, _ = rand.Read(b[:])
	return m.cfg.ClientIDPrefix + hex.EncodeToString(b[:])
}

// keepAliveSeconds converts d to the CONNECT keep-alive field, saturating
// at the 16-bit limit.
func keepAliveSeconds(d time.Duration) uint16 {
	return uint16(min(max(d/time.Second, 0), math.MaxUint16))
}
