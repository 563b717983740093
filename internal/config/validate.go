package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// routeWriteMargin is the write time left for encoding a route after both
// collaborators have used their full timeouts.
const routeWriteMargin = 5 * time.Second

// maxKeepAlive is the largest keep-alive an MQTT CONNECT can carry.
const maxKeepAlive = 65535 * time.Second

// Validate checks cross-field rules that defaults cannot guarantee.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("config cannot be nil")
	}
	if err := validatePort(c.Port); err != nil {
		return fmt.Errorf("port: %w", err)
	}
	if err := c.validateStore(); err != nil {
		return fmt.Errorf("store validation failed: %w", err)
	}
	if err := c.validateStaleness(); err != nil {
		return fmt.Errorf("staleness validation failed: %w", err)
	}
	if err := c.validateBroker(); err != nil {
		return fmt.Errorf("broker validation failed: %w", err)
	}
	if c.Ordering.Timeout <= 0 {
		return fmt.Errorf("ordering timeout must be positive, got %v", c.Ordering.Timeout)
	}
	if c.Geometry.Timeout <= 0 {
		return fmt.Errorf("geometry timeout must be positive, got %v", c.Geometry.Timeout)
	}
	if err := c.validateHTTP(); err != nil {
		return fmt.Errorf("http validation failed: %w", err)
	}
	if c.WS.Interval <= 0 {
		return fmt.Errorf("ws interval must be positive, got %v", c.WS.Interval)
	}
	return nil
}

func validatePort(port string) error {
	p, err := strconv.Atoi(strings.TrimPrefix(port, ":"))
	if err != nil {
		return fmt.Errorf("invalid port %q: %w", port, err)
	}
	if p < 1 || p > 65535 {
		return fmt.Errorf("port %d out of range", p)
	}
	return nil
}

func (c *Config) validateStore() error {
	lat, lng := c.Store.DefaultLat, c.Store.DefaultLng
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return fmt.Errorf("default center (%v, %v) out of range", lat, lng)
	}
	return nil
}

func (c *Config) validateStaleness() error {
	if c.Staleness.OfflineAfter <= 0 {
		return fmt.Errorf("offline_after must be positive, got %v", c.Staleness.OfflineAfter)
	}
	if c.Staleness.Tick <= 0 {
		return fmt.Errorf("tick must be positive, got %v", c.Staleness.Tick)
	}
	return nil
}

func (c *Config) validateBroker() error {
	switch c.Broker.Kind {
	case BrokerMQTT:
		if c.Broker.Host == "" {
			return fmt.Errorf("mqtt host is required")
		}
		if c.Broker.Port < 1 || c.Broker.Port > 65535 {
			return fmt.Errorf("mqtt port %d out of range", c.Broker.Port)
		}
		if c.Broker.Topic == "" {
			return fmt.Errorf("mqtt topic is required")
		}
		if c.Broker.KeepAlive < 0 || c.Broker.KeepAlive > maxKeepAlive {
			return fmt.Errorf("keepalive must be within [0, %v], got %v", maxKeepAlive, c.Broker.KeepAlive)
		}
	case BrokerNATS:
		if c.Broker.URL == "" {
			return fmt.Errorf("nats url is required")
		}
		if c.Broker.Topic == "" {
			return fmt.Errorf("nats subject is required")
		}
	case BrokerNone:
	default:
		return fmt.Errorf("unknown broker kind %q", c.Broker.Kind)
	}
	return nil
}

// validateHTTP makes sure a route request that waits out both the ordering
// and the geometry timeouts can still write its fallback answer.
func (c *Config) validateHTTP() error {
	if c.HTTP.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %v", c.HTTP.WriteTimeout)
	}
	need := c.Ordering.Timeout + c.Geometry.Timeout + routeWriteMargin
	if c.HTTP.WriteTimeout < need {
		return fmt.Errorf("write_timeout %v must be at least %v (ordering %v + geometry %v + %v)",
			c.HTTP.WriteTimeout, need, c.Ordering.Timeout, c.Geometry.Timeout, routeWriteMargin)
	}
	return nil
}
