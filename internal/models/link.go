package models

// LinkStatus is the state of the telemetry broker connection.
type LinkStatus string

const (
	LinkConnecting   LinkStatus = "connecting"
	LinkConnected    LinkStatus = "connected"
	LinkDisconnected LinkStatus = "disconnected"
	LinkDisabled     LinkStatus = "disabled"
)
