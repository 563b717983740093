package models

import "time"

// Event types.
const (
	EventDiscovered    = "DISCOVERED"
	EventManualAdd     = "MANUAL_ADD"
	EventAlert         = "ALERT"
	EventAlertCleared  = "ALERT_CLEARED"
	EventOffline       = "OFFLINE"
	EventOnline        = "ONLINE"
	EventRoutePlanned  = "ROUTE_PLANNED"
	EventRouteFallback = "ROUTE_FALLBACK"
	EventRouteCleared  = "ROUTE_CLEARED"
)

// BinEvent is a single log entry.
type BinEvent struct {
	EventID     string    `json:"event_id"`
	OccurredAt  time.Time `json:"occurred_at"`
	Type        string    `json:"type"`
	BinID       string    `json:"bin_id,omitempty"`
	Description string    `json:"description"` // human-readable
	Metadata    any       `json:"metadata,omitempty"`
}
