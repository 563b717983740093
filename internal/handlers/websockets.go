package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"ecoroute/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// Send/receive timing configuration and message size limits.
const (
	writeWait        = 10 * time.Second
	pongWait         = 60 * time.Second
	pingPeriod       = (pongWait * 9) / 10
	maxMsgSize       = 1 << 12 // 4 KB
	defaultInterval  = 5 * time.Second
	minInterval      = 100 * time.Millisecond
	maxInterval      = 60 * time.Second
	maxIntervalMilli = 60_000
)

const msgDashboard = "dashboard"

// wsEnvelope is the frame sent to viewers. Type is "dashboard" for full
// snapshots, otherwise the notification kind.
type wsEnvelope struct {
	Type  string      `json:"type"`
	Data  interface{} `json:"data,omitempty"`
	Error string      `json:"error,omitempty"`
}

// The dashboard is served from any origin the map UI is hosted on.
var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *Handler) wsConnect(c *gin.Context) {
	interval := h.parseInterval(c)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		if h.log != nil {
			h.log.Errorw("ws_upgrade_failed", "err", err)
		}
		return
	}
	defer func() { _ = conn.Close() }()

	conn.SetReadLimit(maxMsgSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	go h.startReader(conn, done)

	var notes <-chan hub.Notification
	if h.notifications != nil {
		ch, cancel := h.notifications.Subscribe()
		defer cancel()
		notes = ch
	}

	ticker := time.NewTicker(interval)
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		ping.Stop()
	}()

	ctx := c.Request.Context()
	if err := h.sendDashboard(ctx, conn); err != nil {
		if h.log != nil {
			h.log.Infow("ws_write_failed_initial", "err", err)
		}
		return
	}

	for {
		select {
		case <-done:
			return
		case <-ctx.Done():
			return
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				if h.log != nil {
					h.log.Infow("ws_ping_failed", "err", err)
				}
				return
			}
		case <-ticker.C:
			if err := h.sendDashboard(ctx, conn); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err)
				}
				return
			}
		case n, ok := <-notes:
			if !ok {
				notes = nil
				continue
			}
			if err := h.sendNotification(conn, n); err != nil {
				if h.log != nil {
					h.log.Infow("ws_write_failed", "err", err, "kind", n.Kind)
				}
				return
			}
		}
	}
}

// parseInterval reads ?interval=2s or ?interval_ms=2000 with bounds.
func (h *Handler) parseInterval(c *gin.Context) time.Duration {
	interval := h.interval
	if interval <= 0 {
		interval = defaultInterval
	}

	if s := c.Query("interval"); s != "" {
		if d, err := time.ParseDuration(s); err == nil && d >= minInterval && d <= maxInterval {
			return d
		}
	}

	if ms := c.Query("interval_ms"); ms != "" {
		if v, err := strconv.Atoi(ms); err == nil && v > 0 && v <= maxIntervalMilli {
			if d := time.Duration(v) * time.Millisecond; d >= minInterval {
				return d
			}
		}
	}

	return interval
}

// startReader drains incoming messages to handle control frames and detect closure.
func (h *Handler) startReader(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if h.log != nil {
				h.log.Debugw("ws_read_closed", "err", err)
			}
			return
		}
	}
}

func (h *Handler) sendDashboard(ctx context.Context, conn *websocket.Conn) error {
	d := h.services.Monitoring.Dashboard(ctx)
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: msgDashboard, Data: d})
}

// sendNotification forwards a hub event. Dashboard hints are answered
// with a fresh snapshot instead of the hint itself.
func (h *Handler) sendNotification(conn *websocket.Conn, n hub.Notification) error {
	if n.Kind == hub.KindDashboard {
		return h.sendDashboard(context.Background(), conn)
	}
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(wsEnvelope{Type: n.Kind, Data: n.Data})
}
