package service

import (
	"context"
	"time"

	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

// Bins exposes the fleet as derived views plus manual registration.
type Bins interface {
	List(ctx context.Context, f BinFilter) []models.BinView
	Get(ctx context.Context, id string) (models.BinView, error)
	AddManual(ctx context.Context, p ManualBinParams) (models.Bin, error)
}

// Telemetry turns raw broker payloads into store updates.
type Telemetry interface {
	Ingest(ctx context.Context, raw []byte, receivedAt time.Time) (models.Bin, bool)
}

// Monitoring exposes the read-only dashboard snapshot.
type Monitoring interface {
	Dashboard(ctx context.Context) models.Dashboard
}

// Routing plans and holds the current collection route.
type Routing interface {
	PlanRoute(ctx context.Context, origin *models.Position) models.RouteResult
	Current() (models.RouteResult, bool)
	Clear(ctx context.Context)
}

// EventLog exposes append-only logs with filtering access.
type EventLog interface {
	List(ctx context.Context, f LogFilter) ([]models.BinEvent, error)
}

// Staleness runs the background loop that derives online/offline state.
// Stop via context cancellation in main() for graceful shutdown.
type Staleness interface {
	Run(ctx context.Context, tick time.Duration)
}

// Notifier pushes a change to live viewers. It must not block.
type Notifier interface {
	Notify(kind string, data any)
}

// LinkReporter reports the telemetry broker connection state.
type LinkReporter interface {
	Status() models.LinkStatus
}

// Orderer asks an external planner for a visiting order of the
// candidates. It returns ids and a human-readable rationale.
type Orderer interface {
	Order(ctx context.Context, candidates []models.Bin, origin *models.Position) ([]string, string, error)
}

// Geometry turns a sequence of [lat, lng] stops into a drawable road path.
type Geometry interface {
	Path(ctx context.Context, stops [][2]float64) ([][2]float64, error)
}

// Deps are the collaborators and tunables shared by the services.
// Zero values fall back to safe defaults.
type Deps struct {
	Orderer      Orderer
	Geometry     Geometry
	Notifier     Notifier
	Link         LinkReporter
	OfflineAfter time.Duration
	OrderTimeout time.Duration
	Log          *logger.Logger
	Now          func() time.Time
}

func (d Deps) withDefaults() Deps {
	if d.Notifier == nil {
		d.Notifier = nopNotifier{}
	}
	if d.OfflineAfter <= 0 {
		d.OfflineAfter = DefaultOfflineAfter
	}
	if d.OrderTimeout <= 0 {
		d.OrderTimeout = DefaultOrderTimeout
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}
	return d
}

type nopNotifier struct{}

func (nopNotifier) Notify(string, any) {}

type Service struct {
	Bins
	Telemetry
	Monitoring
	Routing
	EventLog
	Staleness
}

// NewService wires the repository layer and collaborators into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	deps = deps.withDefaults()
	routes := NewRouteService(repos.Bins, repos.Events, deps)
	return &Service{
		Bins:       NewBinService(repos.Bins, repos.Events, deps),
		Telemetry:  NewIngestService(repos.Bins, repos.Events, deps),
		Monitoring: NewMonitoringService(repos.Bins, routes, deps),
		Routing:    routes,
		EventLog:   NewEventLogService(repos.Events),
		Staleness:  NewStalenessService(repos.Bins, repos.Events, deps.Notifier, deps.OfflineAfter, deps.Log.Named("staleness")),
	}
}
