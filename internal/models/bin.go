package models

import "time"

// Position is a WGS84 coordinate.
type Position struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Bin is the current snapshot of one waste bin.
type Bin struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Location    Position  `json:"location"`
	Level       int       `json:"level"` // 0-100 %
	Smell       int       `json:"smell"` // MQ2 ppm
	LastUpdated string    `json:"last_updated"`
	LastSeen    time.Time `json:"last_seen"`
	IsIoTDevice bool      `json:"is_iot_device"`
}

// Delta is one decoded telemetry message. Nil fields were not supplied
// and keep their previous value when merged.
type Delta struct {
	ID       string
	Name     *string
	Lat      *float64
	Lng      *float64
	Level    *int
	Smell    *int
	IsSensor bool
}

// Status is the collection urgency of a bin.
type Status string

const (
	StatusOK     Status = "OK"
	StatusFull   Status = "FULL"
	StatusSmelly Status = "SMELLY"
)

// BinView is a Bin with its derived state at a given instant.
type BinView struct {
	Bin
	Status          Status `json:"status"`
	Online          bool   `json:"online"`
	NeedsCollection bool   `json:"needs_collection"`
}
