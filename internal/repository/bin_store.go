package repository

import (
	"math"
	"sync"
	"time"

	"ecoroute/internal/models"

	"github.com/google/uuid"
)

const (
	// displayLayout formats Bin.LastUpdated.
	displayLayout = "15:04:05"

	defaultNamePrefix = "Node: "
)

// Change describes the effect of one upsert.
type Change struct {
	Before  models.Bin // zero value when Created
	After   models.Bin
	Created bool
}

// MemoryBinStore keeps bins in discovery order. Reads return copies so
// callers never observe a half-applied upsert.
type MemoryBinStore struct {
	mu     sync.RWMutex
	center models.Position
	order  []string
	bins   map[string]models.Bin
}

func NewMemoryBinStore(center models.Position) *MemoryBinStore {
	return &MemoryBinStore{
		center: center,
		bins:   make(map[string]models.Bin),
	}
}

// Upsert merges d into the bin with id d.ID, creating it if needed.
func (s *MemoryBinStore) Upsert(d models.Delta, now time.Time) Change {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, exists := s.bins[d.ID]
	next := applyDelta(prev, exists, d, now, s.center)
	if !exists {
		s.order = append(s.order, d.ID)
	}
	s.bins[d.ID] = next

	return Change{Before: prev, After: next, Created: !exists}
}

// AddManual creates an operator-entered bin. Manual bins are never
// subject to staleness.
func (s *MemoryBinStore) AddManual(name string, pos models.Position, now time.Time) models.Bin {
	b := models.Bin{
		ID:          uuid.NewString(),
		Name:        name,
		Location:    pos,
		LastUpdated: now.Format(displayLayout),
		LastSeen:    now,
		IsIoTDevice: false,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.order = append(s.order, b.ID)
	s.bins[b.ID] = b
	return b
}

// List returns all bins in discovery order.
func (s *MemoryBinStore) List() []models.Bin {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Bin, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.bins[id])
	}
	return out
}

func (s *MemoryBinStore) Get(id string) (models.Bin, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.bins[id]
	return b, ok
}

func (s *MemoryBinStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// applyDelta is the pure merge of one delta into the previous snapshot.
// Supplied fields win; everything else keeps its prior value.
func applyDelta(prev models.Bin, exists bool, d models.Delta, now time.Time, center models.Position) models.Bin {
	b := prev
	if !exists {
		b = models.Bin{
			ID:       d.ID,
			Name:     defaultNamePrefix + d.ID,
			Location: center,
		}
	}

	if d.Name != nil && *d.Name != "" {
		b.Name = *d.Name
	}

	lat, lng := b.Location.Lat, b.Location.Lng
	if d.Lat != nil {
		lat = *d.Lat
	}
	if d.Lng != nil {
		lng = *d.Lng
	}
	if ValidPosition(lat, lng) {
		b.Location = models.Position{Lat: lat, Lng: lng}
	}

	if d.Level != nil {
		b.Level = ClampLevel(*d.Level)
	}
	if d.Smell != nil {
		b.Smell = max(*d.Smell, 0)
	}
	if d.IsSensor {
		b.IsIoTDevice = true
	}

	b.LastUpdated = now.Format(displayLayout)
	b.LastSeen = now
	return b
}

// ValidPosition reports whether lat/lng are finite and within WGS84 range.
func ValidPosition(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsNaN(lng) || math.IsInf(lat, 0) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

// ClampLevel bounds a fill level to [0,100].
func ClampLevel(v int) int {
	return min(max(v, 0), 100)
}
