package handlers

import (
	"context"
	"sync"
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/models"
	"ecoroute/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockBins struct {
	list    []models.BinView
	get     models.BinView
	getErr  error
	added   models.Bin
	addErr  error
	lastF   service.BinFilter
	lastID  string
	lastAdd service.ManualBinParams
}

func (m *mockBins) List(ctx context.Context, f service.BinFilter) []models.BinView {
	m.lastF = f
	return m.list
}
func (m *mockBins) Get(ctx context.Context, id string) (models.BinView, error) {
	m.lastID = id
	return m.get, m.getErr
}
func (m *mockBins) AddManual(ctx context.Context, p service.ManualBinParams) (models.Bin, error) {
	m.lastAdd = p
	return m.added, m.addErr
}

type mockTelemetry struct {
	bin     models.Bin
	ok      bool
	lastRaw []byte
	calls   int
}

func (m *mockTelemetry) Ingest(ctx context.Context, raw []byte, receivedAt time.Time) (models.Bin, bool) {
	m.calls++
	m.lastRaw = raw
	return m.bin, m.ok
}

type mockMonitoring struct {
	mu    sync.Mutex
	dash  models.Dashboard
	calls int
}

func (m *mockMonitoring) Dashboard(ctx context.Context) models.Dashboard {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	return m.dash
}

type mockRouting struct {
	result     models.RouteResult
	current    *models.RouteResult
	lastOrigin *models.Position
	planCalls  int
	clearCalls int
}

func (m *mockRouting) PlanRoute(ctx context.Context, origin *models.Position) models.RouteResult {
	m.planCalls++
	m.lastOrigin = origin
	return m.result
}
func (m *mockRouting) Current() (models.RouteResult, bool) {
	if m.current == nil {
		return models.RouteResult{}, false
	}
	return *m.current, true
}
func (m *mockRouting) Clear(ctx context.Context) {
	m.clearCalls++
	m.current = nil
}

type mockEventLog struct {
	resp  []models.BinEvent
	err   error
	calls int
	last  service.LogFilter
}

func (m *mockEventLog) List(ctx context.Context, f service.LogFilter) ([]models.BinEvent, error) {
	m.calls++
	m.last = f
	return m.resp, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, nil, nil).InitRoutes()
}

func newTestRouterWithHub(s *service.Service, h *hub.Hub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return NewHandler(s, h, nil).InitRoutes()
}
