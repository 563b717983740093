package broker

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"sync"
	"testing"
	"time"

	"ecoroute/internal/config"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
)

func TestNew_SelectsKind(t *testing.T) {
	cases := []struct {
		kind string
		want any
	}{
		{config.BrokerMQTT, &MQTT{}},
		{"", &MQTT{}},
		{config.BrokerNATS, &NATS{}},
		{config.BrokerNone, Disabled{}},
	}
	for _, tc := range cases {
		s, err := New(config.BrokerConfig{Kind: tc.kind}, nil)
		if err != nil {
			t.Fatalf("New(%q): %v", tc.kind, err)
		}
		switch tc.want.(type) {
		case *MQTT:
			if _, ok := s.(*MQTT); !ok {
				t.Fatalf("New(%q) = %T", tc.kind, s)
			}
		case *NATS:
			if _, ok := s.(*NATS); !ok {
				t.Fatalf("New(%q) = %T", tc.kind, s)
			}
		case Disabled:
			if _, ok := s.(Disabled); !ok {
				t.Fatalf("New(%q) = %T", tc.kind, s)
			}
		}
	}
	if _, err := New(config.BrokerConfig{Kind: "kafka"}, nil); err == nil {
		t.Fatal("expected error for unknown kind")
	}
}

func TestDisabled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := (Disabled{}).Run(ctx, nil); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if (Disabled{}).Status() != models.LinkDisabled {
		t.Fatal("status")
	}
}

func TestMQTT_DialFailureRetriesUntilCancel(t *testing.T) {
	m := NewMQTT(config.BrokerConfig{Host: "broker", Port: 1883, Topic: "t"}, logger.Nop())
	var mu sync.Mutex
	attempts := 0
	m.dial = func(ctx context.Context) (net.Conn, error) {
		mu.Lock()
		attempts++
		mu.Unlock()
		return nil, errors.New("connection refused")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 1500*time.Millisecond)
	defer cancel()
	if err := m.Run(ctx, func([]byte, time.Time) {}); err != nil {
		t.Fatalf("Run returned %v after cancel", err)
	}
	mu.Lock()
	defer mu.Unlock()
	if attempts < 2 {
		t.Fatalf("attempts = %d, expected a retry", attempts)
	}
	if m.Status() != models.LinkDisconnected {
		t.Fatalf("status = %s", m.Status())
	}
}

// readPacket consumes one MQTT control packet and returns its type nibble.
func readPacket(r *bufio.Reader) (byte, []byte, error) {
	first, err := r.ReadByte()
	if err != nil {
		return 0, nil, err
	}
	length, mult := 0, 1
	for {
		b, err := r.ReadByte()
		if err != nil {
			return 0, nil, err
		}
		length += int(b&0x7f) * mult
		if b&0x80 == 0 {
			break
		}
		mult *= 128
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return 0, nil, err
	}
	return first >> 4, body, nil
}

func publishPacket(topic string, payload []byte) []byte {
	rem := 2 + len(topic) + len(payload)
	p := []byte{0x30, byte(rem)}
	p = append(p, byte(len(topic)>>8), byte(len(topic)))
	p = append(p, topic...)
	return append(p, payload...)
}

// fakeBroker accepts one session on conn and publishes payload after the
// subscription is acknowledged.
func fakeBroker(t *testing.T, conn net.Conn, topic string, payload []byte) {
	t.Helper()
	r := bufio.NewReader(conn)

	if typ, _, err := readPacket(r); err != nil || typ != 1 {
		t.Errorf("expected CONNECT, got type %d err %v", typ, err)
		return
	}
	_, _ = conn.Write([]byte{0x20, 0x02, 0x00, 0x00})

	typ, body, err := readPacket(r)
	if err != nil || typ != 8 {
		t.Errorf("expected SUBSCRIBE, got type %d err %v", typ, err)
		return
	}
	_, _ = conn.Write([]byte{0x90, 0x03, body[0], body[1], 0x00})
	_, _ = conn.Write(publishPacket(topic, payload))

	// drain until the client hangs up
	_, _ = io.Copy(io.Discard, r)
}

func TestMQTT_DeliversPublish(t *testing.T) {
	const topic = "ecoroute/updates"
	payload := []byte(`{"id":"bin-7","fill_level":93}`)

	client, server := net.Pipe()
	m := NewMQTT(config.BrokerConfig{Host: "broker", Port: 1883, Topic: topic, ClientIDPrefix: "test_"}, logger.Nop())
	m.dial = func(context.Context) (net.Conn, error) { return client, nil }
	go fakeBroker(t, server, topic, payload)

	got := make(chan []byte, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- m.Run(ctx, func(p []byte, _ time.Time) { got <- p })
	}()

	select {
	case p := <-got:
		if string(p) != string(payload) {
			t.Fatalf("payload = %s", p)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message delivered")
	}
	if m.Status() != models.LinkConnected {
		t.Fatalf("status = %s, want connected", m.Status())
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
	if m.Status() != models.LinkDisconnected {
		t.Fatalf("status = %s, want disconnected", m.Status())
	}
}

func TestClientIDIsRandomized(t *testing.T) {
	m := NewMQTT(config.BrokerConfig{ClientIDPrefix: "ecoroute_srv_"}, logger.Nop())
	a, b := m.clientID(), m.clientID()
	if a == b || len(a) != len("ecoroute_srv_")+8 {
		t.Fatalf("client ids %q %q", a, b)
	}
}

func TestKeepAliveSecondsSaturates(t *testing.T) {
	cases := []struct {
		in   time.Duration
		want uint16
	}{
		{0, 0},
		{-time.Second, 0},
		{60 * time.Second, 60},
		{65535 * time.Second, 65535},
		{65536 * time.Second, 65535},
		{48 * time.Hour, 65535},
	}
	for _, tc := range cases {
		if got := keepAliveSeconds(tc.in); got != tc.want {
			t.Errorf("keepAliveSeconds(%v) = %d, want %d", tc.in, got, tc.want)
		}
	}
}
