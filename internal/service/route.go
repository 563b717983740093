package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

// DefaultOrderTimeout bounds one call to the ordering collaborator.
const DefaultOrderTimeout = 20 * time.Second

const (
	EmptyRouteExplanation    = "No bins currently require collection based on IoT sensor thresholds."
	FallbackRouteExplanation = "Route visualized based on default sensor discovery order."
)

var errNoOrderer = errors.New("no ordering collaborator configured")

type RouteService struct {
	bins     repository.BinStore
	events   repository.EventRepo
	orderer  Orderer
	geometry Geometry
	notifier Notifier
	timeout  time.Duration
	now      func() time.Time
	log      *logger.Logger

	mu      sync.RWMutex
	current *models.RouteResult
}

func NewRouteService(bins repository.BinStore, events repository.EventRepo, deps Deps) *RouteService {
	deps = deps.withDefaults()
	return &RouteService{
		bins:     bins,
		events:   events,
		orderer:  deps.Orderer,
		geometry: deps.Geometry,
		notifier: deps.Notifier,
		timeout:  deps.OrderTimeout,
		now:      deps.Now,
		log:      deps.Log.Named("route"),
	}
}

// PlanRoute orders the bins that need collection and resolves a drawable
// path. Collaborator failures degrade to discovery order and straight
// lines; PlanRoute itself never fails.
func (s *RouteService) PlanRoute(ctx context.Context, origin *models.Position) models.RouteResult {
	var candidates []models.Bin
	for _, b := range s.bins.List() {
		if NeedsCollection(b) {
			candidates = append(candidates, b)
		}
	}

	if len(candidates) == 0 {
		res := models.RouteResult{
			OptimizedOrder: []string{},
			Explanation:    EmptyRouteExplanation,
			Path:           [][2]float64{},
			Source:         models.RouteSourceEmpty,
			GeneratedAt:    s.now().UTC(),
		}
		s.publish(res)
		return res
	}

	res := models.RouteResult{Source: models.RouteSourceLLM}
	order, explanation, err := s.order(ctx, candidates, origin)
	if err != nil {
		s.log.Warnw("route_ordering_failed", "err", err, "candidates", len(candidates))
		order = discoveryOrder(candidates)
		explanation = FallbackRouteExplanation
		res.Source = models.RouteSourceFallback
	}
	res.OptimizedOrder = sanitizeOrder(order, candidates)
	res.Explanation = explanation
	res.Path = s.path(ctx, stops(res.OptimizedOrder, candidates, origin))
	res.GeneratedAt = s.now().UTC()

	ev := models.BinEvent{
		OccurredAt:  res.GeneratedAt,
		Type:        models.EventRoutePlanned,
		Description: fmt.Sprintf("route over %d bins", len(res.OptimizedOrder)),
		Metadata:    map[string]any{"order": res.OptimizedOrder, "source": res.Source},
	}
	if res.Source == models.RouteSourceFallback {
		ev.Type = models.EventRouteFallback
		ev.Metadata = map[string]any{"order": res.OptimizedOrder, "source": res.Source, "reason": err.Error()}
	}
	if err := s.events.Append(ctx, ev); err != nil {
		s.log.Warnw("route_event_append_failed", "err", err)
	}

	s.publish(res)
	return res
}

func (s *RouteService) order(ctx context.Context, candidates []models.Bin, origin *models.Position) ([]string, string, error) {
	if s.orderer == nil {
		return nil, "", errNoOrderer
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.orderer.Order(ctx, candidates, origin)
}

// path asks the geometry collaborator for a road path and falls back to
// the straight-line stops.
func (s *RouteService) path(ctx context.Context, pts [][2]float64) [][2]float64 {
	if len(pts) < 2 || s.geometry == nil {
		return pts
	}
	road, err := s.geometry.Path(ctx, pts)
	if err != nil || len(road) == 0 {
		s.log.Warnw("route_geometry_failed", "err", err, "stops", len(pts))
		return pts
	}
	return road
}

// Current returns the last resolved route, if any.
func (s *RouteService) Current() (models.RouteResult, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return models.RouteResult{}, false
	}
	return *s.current, true
}

// Clear drops the current route.
func (s *RouteService) Clear(ctx context.Context) {
	s.mu.Lock()
	had := s.current != nil
	s.current = nil
	s.mu.Unlock()

	if !had {
		return
	}
	if err := s.events.Append(ctx, models.BinEvent{
		OccurredAt:  s.now().UTC(),
		Type:        models.EventRouteCleared,
		Description: "route cleared",
	}); err != nil {
		s.log.Warnw("route_event_append_failed", "err", err)
	}
	s.notifier.Notify(hub.KindRoute, nil)
}

// publish stores res as current. Whichever plan finishes last wins.
func (s *RouteService) publish(res models.RouteResult) {
	s.mu.Lock()
	s.current = &res
	s.mu.Unlock()
	s.notifier.Notify(hub.KindRoute, res)
}

func discoveryOrder(candidates []models.Bin) []string {
	ids := make([]string, len(candidates))
	for i, b := range candidates {
		ids[i] = b.ID
	}
	return ids
}

// sanitizeOrder keeps the first occurrence of every known candidate id
// and appends the ones the planner left out, in discovery order.
func sanitizeOrder(order []string, candidates []models.Bin) []string {
	known := make(map[string]bool, len(candidates))
	for _, b := range candidates {
		known[b.ID] = true
	}
	out := make([]string, 0, len(candidates))
	used := make(map[string]bool, len(candidates))
	for _, id := range order {
		if known[id] && !used[id] {
			used[id] = true
			out = append(out, id)
		}
	}
	for _, b := range candidates {
		if !used[b.ID] {
			out = append(out, b.ID)
		}
	}
	return out
}

// stops lists [lat, lng] points for the ordered ids, origin first.
func stops(order []string, candidates []models.Bin, origin *models.Position) [][2]float64 {
	byID := make(map[string]models.Position, len(candidates))
	for _, b := range candidates {
		byID[b.ID] = b.Location
	}
	pts := make([][2]float64, 0, len(order)+1)
	if origin != nil {
		pts = append(pts, [2]float64{origin.Lat, origin.Lng})
	}
	for _, id := range order {
		p := byID[id]
		pts = append(pts, [2]float64{p.Lat, p.Lng})
	}
	return pts
}
