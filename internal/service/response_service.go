package service

import (
	"time"

	"ecoroute/internal/models"
)

// ManualBinParams registers a bin that has no sensor.
type ManualBinParams struct {
	Name string
	Lat  float64
	Lng  float64
}

// BinFilter narrows List. Zero value lists everything.
type BinFilter struct {
	Status  models.Status // "", "OK", "FULL", "SMELLY"
	Collect *bool         // only bins that do (or do not) need collection
	Online  *bool
}

// LogFilter narrows the event history.
type LogFilter struct {
	From  time.Time // inclusive; zero means no lower bound
	To    time.Time // inclusive; zero means no upper bound
	Type  string    // one of the models.Event* constants, any case
	BinID string
	Limit int // newest N matches; 0 means all
}
