package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

var (
	ErrBinNotFound   = errors.New("bin not found")
	ErrInvalidBin    = errors.New("invalid bin")
	ErrInvalidStatus = errors.New("invalid status filter")
)

const maxManualNameRunes = 64

type BinService struct {
	bins     repository.BinStore
	events   repository.EventRepo
	notifier Notifier
	now      func() time.Time
	offAt    time.Duration
	log      *logger.Logger
}

func NewBinService(bins repository.BinStore, events repository.EventRepo, deps Deps) *BinService {
	deps = deps.withDefaults()
	return &BinService{
		bins:     bins,
		events:   events,
		notifier: deps.Notifier,
		now:      deps.Now,
		offAt:    deps.OfflineAfter,
		log:      deps.Log,
	}
}

// List returns bins in discovery order, narrowed by f.
func (s *BinService) List(_ context.Context, f BinFilter) []models.BinView {
	now := s.now()
	out := make([]models.BinView, 0, s.bins.Len())
	for _, b := range s.bins.List() {
		v := viewOf(b, now, s.offAt)
		if f.Status != "" && v.Status != f.Status {
			continue
		}
		if f.Collect != nil && v.NeedsCollection != *f.Collect {
			continue
		}
		if f.Online != nil && v.Online != *f.Online {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *BinService) Get(_ context.Context, id string) (models.BinView, error) {
	b, ok := s.bins.Get(strings.TrimSpace(id))
	if !ok {
		return models.BinView{}, fmt.Errorf("%w: %q", ErrBinNotFound, id)
	}
	return viewOf(b, s.now(), s.offAt), nil
}

// AddManual registers a bin placed by an operator. Manual bins have no
// sensor, start empty and are always online.
func (s *BinService) AddManual(ctx context.Context, p ManualBinParams) (models.Bin, error) {
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return models.Bin{}, fmt.Errorf("%w: name is required", ErrInvalidBin)
	}
	if len([]rune(name)) > maxManualNameRunes {
		return models.Bin{}, fmt.Errorf("%w: name longer than %d characters", ErrInvalidBin, maxManualNameRunes)
	}
	if !repository.ValidPosition(p.Lat, p.Lng) {
		return models.Bin{}, fmt.Errorf("%w: position %v,%v out of range", ErrInvalidBin, p.Lat, p.Lng)
	}

	b := s.bins.AddManual(name, models.Position{Lat: p.Lat, Lng: p.Lng}, s.now())
	if err := s.events.Append(ctx, models.BinEvent{
		OccurredAt:  b.LastSeen.UTC(),
		Type:        models.EventManualAdd,
		BinID:       b.ID,
		Description: "manual bin " + b.Name + " added",
	}); err != nil {
		s.log.Warnw("manual_add_event_append_failed", "err", err, "bin_id", b.ID)
	}
	s.notifier.Notify(hub.KindBin, viewOf(b, b.LastSeen, s.offAt))
	return b, nil
}

// ParseStatus validates a status filter value. Empty means no filter.
func ParseStatus(s string) (models.Status, error) {
	switch st := models.Status(strings.ToUpper(strings.TrimSpace(s))); st {
	case "", models.StatusOK, models.StatusFull, models.StatusSmelly:
		return st, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
}
