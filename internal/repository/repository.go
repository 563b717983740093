package repository

import (
	"context"
	"time"

	"ecoroute/internal/models"
)

// BinStore is the in-memory collection of bins keyed by id.
type BinStore interface {
	Upsert(d models.Delta, now time.Time) Change
	AddManual(name string, pos models.Position, now time.Time) models.Bin
	List() []models.Bin
	Get(id string) (models.Bin, bool)
	Len() int
}

// EventQuery selects events from the log. Zero fields match everything;
// From and To are inclusive.
type EventQuery struct {
	From  time.Time
	To    time.Time
	Type  string
	BinID string
}

type EventRepo interface {
	Append(ctx context.Context, e models.BinEvent) error
	List(ctx context.Context, q EventQuery) ([]models.BinEvent, error)
}

type Repository struct {
	Bins   BinStore
	Events EventRepo
}

// NewRepository builds the in-memory repositories. center is used for
// bins discovered without a usable position.
func NewRepository(center models.Position, eventCapacity int) *Repository {
	return &Repository{
		Bins:   NewMemoryBinStore(center),
		Events: NewEventRing(eventCapacity),
	}
}
