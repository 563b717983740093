package service

import (
	"context"
	"time"

	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

type MonitoringService struct {
	bins   repository.BinStore
	routes *RouteService
	link   LinkReporter
	now    func() time.Time
	offAt  time.Duration
}

func NewMonitoringService(bins repository.BinStore, routes *RouteService, deps Deps) *MonitoringService {
	deps = deps.withDefaults()
	return &MonitoringService{
		bins:   bins,
		routes: routes,
		link:   deps.Link,
		now:    deps.Now,
		offAt:  deps.OfflineAfter,
	}
}

// Dashboard returns every bin with its derived state, the counters shown
// in the header and the current route, all evaluated at one instant.
func (s *MonitoringService) Dashboard(ctx context.Context) models.Dashboard {
	now := s.now()
	bins := s.bins.List()

	d := models.Dashboard{
		Bins:        make([]models.BinView, 0, len(bins)),
		Total:       len(bins),
		Broker:      models.LinkDisabled,
		GeneratedAt: now.UTC(),
	}
	for _, b := range bins {
		v := viewOf(b, now, s.offAt)
		if v.Online {
			d.Online++
		}
		if v.NeedsCollection {
			d.PickupsRequired++
		}
		d.Bins = append(d.Bins, v)
	}
	if s.routes != nil {
		if r, ok := s.routes.Current(); ok {
			d.Route = &r
		}
	}
	if s.link != nil {
		d.Broker = s.link.Status()
	}
	return d
}

// viewOf derives status and liveness for b at now.
func viewOf(b models.Bin, now time.Time, offlineAfter time.Duration) models.BinView {
	st := Classify(b)
	return models.BinView{
		Bin:             b,
		Status:          st,
		Online:          IsOnline(b, now, offlineAfter),
		NeedsCollection: st != models.StatusOK,
	}
}
