package server

import (
	"context"
	"testing"
	"time"
)

func TestNormalizeAddr(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"8080":           ":8080",
		":9090":          ":9090",
		"127.0.0.1:8080": "127.0.0.1:8080",
	}
	for in, want := range cases {
		if got := normalizeAddr(in); got != want {
			t.Fatalf("normalizeAddr(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNew_Defaults(t *testing.T) {
	s := New(Timeouts{Write: 5 * time.Second})
	hs := s.newHTTPServer(":0", nil)
	if hs.WriteTimeout != 5*time.Second {
		t.Fatalf("write timeout = %v", hs.WriteTimeout)
	}
	if hs.ReadHeaderTimeout != readHeaderTimeout || hs.IdleTimeout != idleTimeout {
		t.Fatalf("defaults not applied: %+v", hs)
	}
}

func TestShutdownBeforeRun(t *testing.T) {
	s := New(Timeouts{})
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if err := s.Run(":0", nil); err != nil {
		t.Fatalf("Run after Shutdown should return nil, got %v", err)
	}
}
