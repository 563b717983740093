package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

// MaxLogLimit caps LogFilter.Limit.
const MaxLogLimit = 1000

var (
	ErrInvalidTimeRange = errors.New("invalid time range: from must not be after to")
	ErrUnknownEventType = errors.New("unknown event type")
	ErrInvalidLimit     = errors.New("limit out of range")
)

var knownEventTypes = map[string]struct{}{
	models.EventDiscovered:    {},
	models.EventManualAdd:     {},
	models.EventAlert:         {},
	models.EventAlertCleared:  {},
	models.EventOffline:       {},
	models.EventOnline:        {},
	models.EventRoutePlanned:  {},
	models.EventRouteFallback: {},
	models.EventRouteCleared:  {},
}

// EventLogService answers history queries over the bin event log written
// by ingestion, staleness and route planning.
type EventLogService struct {
	events repository.EventRepo
}

func NewEventLogService(events repository.EventRepo) *EventLogService {
	return &EventLogService{events: events}
}

// List returns matching events oldest first. With a Limit only the newest
// Limit matches are kept.
func (s *EventLogService) List(ctx context.Context, f LogFilter) ([]models.BinEvent, error) {
	q, err := f.query()
	if err != nil {
		return nil, err
	}
	evs, err := s.events.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	if f.Limit > 0 && len(evs) > f.Limit {
		evs = evs[len(evs)-f.Limit:]
	}
	return evs, nil
}

func (f LogFilter) query() (repository.EventQuery, error) {
	typ := strings.ToUpper(strings.TrimSpace(f.Type))
	if _, ok := knownEventTypes[typ]; typ != "" && !ok {
		return repository.EventQuery{}, fmt.Errorf("%w: %q", ErrUnknownEventType, f.Type)
	}
	if f.Limit < 0 || f.Limit > MaxLogLimit {
		return repository.EventQuery{}, fmt.Errorf("%w: %d (max %d)", ErrInvalidLimit, f.Limit, MaxLogLimit)
	}
	from, to := f.From.UTC(), f.To.UTC()
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return repository.EventQuery{}, ErrInvalidTimeRange
	}
	return repository.EventQuery{
		From:  from,
		To:    to,
		Type:  typ,
		BinID: strings.TrimSpace(f.BinID),
	}, nil
}
