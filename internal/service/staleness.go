package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

// DefaultOfflineAfter is how long a sensor may stay silent before it is
// shown as offline.
const DefaultOfflineAfter = 30 * time.Second

// IsOnline reports whether b counts as online at now. Manual bins are
// always online.
func IsOnline(b models.Bin, now time.Time, timeout time.Duration) bool {
	if !b.IsIoTDevice {
		return true
	}
	return now.Sub(b.LastSeen) < timeout
}

// StalenessService periodically re-evaluates IsOnline for every bin and
// records transitions. It never mutates bins.
type StalenessService struct {
	bins     repository.BinStore
	events   repository.EventRepo
	notifier Notifier
	timeout  time.Duration
	log      *logger.Logger

	mu   sync.Mutex
	seen map[string]bool // last observed online state per bin
}

func NewStalenessService(bins repository.BinStore, events repository.EventRepo, notifier Notifier, timeout time.Duration, log *logger.Logger) *StalenessService {
	if timeout <= 0 {
		timeout = DefaultOfflineAfter
	}
	return &StalenessService{
		bins:     bins,
		events:   events,
		notifier: notifier,
		timeout:  timeout,
		log:      log,
		seen:     make(map[string]bool),
	}
}

// Run ticks at the given interval until ctx is canceled.
func (s *StalenessService) Run(ctx context.Context, tick time.Duration) {
	t := time.NewTicker(tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			s.Evaluate(ctx, now)
		}
	}
}

// Evaluate compares the online set at now against the previous tick and
// returns the bins whose state flipped.
func (s *StalenessService) Evaluate(ctx context.Context, now time.Time) []models.BinEvent {
	s.mu.Lock()
	defer s.mu.Unlock()

	var changed []models.BinEvent
	for _, b := range s.bins.List() {
		online := IsOnline(b, now, s.timeout)
		prev, known := s.seen[b.ID]
		s.seen[b.ID] = online
		// a bin first seen online is not a transition
		if (!known && online) || (known && prev == online) {
			continue
		}

		ev := models.BinEvent{
			OccurredAt: now.UTC(),
			Type:       models.EventOffline,
			BinID:      b.ID,
			Description: fmt.Sprintf("%s silent for %s",
				b.Name, now.Sub(b.LastSeen).Truncate(time.Second)),
			Metadata: map[string]any{"last_seen": b.LastSeen.UTC()},
		}
		if online {
			ev.Type = models.EventOnline
			ev.Description = b.Name + " reporting again"
		}
		if err := s.events.Append(ctx, ev); err != nil && s.log != nil {
			s.log.Warnw("staleness_event_append_failed", "err", err, "bin_id", b.ID)
		}
		changed = append(changed, ev)
	}

	if s.notifier != nil && len(changed) > 0 {
		s.notifier.Notify(hub.KindDashboard, map[string]any{"transitions": len(changed)})
	}
	return changed
}
