package models

import "time"

// Route sources.
const (
	RouteSourceLLM      = "llm"
	RouteSourceFallback = "fallback"
	RouteSourceEmpty    = "empty"
)

// RouteResult is the outcome of one route request.
type RouteResult struct {
	OptimizedOrder []string     `json:"optimizedOrder"`
	Explanation    string       `json:"explanation"`
	Path           [][2]float64 `json:"path"` // [lat, lng]
	Source         string       `json:"source"`
	GeneratedAt    time.Time    `json:"generated_at"`
}

// Dashboard is everything a viewer needs to render one frame.
type Dashboard struct {
	Bins            []BinView    `json:"bins"`
	Total           int          `json:"total"`
	Online          int          `json:"online"`
	PickupsRequired int          `json:"pickups_required"`
	Route           *RouteResult `json:"route,omitempty"`
	Broker          LinkStatus   `json:"broker"`
	GeneratedAt     time.Time    `json:"generated_at"`
}
