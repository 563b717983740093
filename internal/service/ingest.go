package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"ecoroute/internal/hub"
	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

var (
	ErrMalformedPayload = errors.New("malformed telemetry payload")
	ErrMissingID        = errors.New("telemetry payload has no id")
)

// Recenter is pushed to viewers when a sensor is seen for the first time.
type Recenter struct {
	BinID    string          `json:"bin_id"`
	Location models.Position `json:"location"`
}

// Decode turns one broker message into a delta. Only a missing id or a
// payload that is not a JSON object is an error; bad fields are coerced
// or dropped so the rest of the message still applies.
func Decode(raw []byte) (models.Delta, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()

	var msg map[string]any
	if err := dec.Decode(&msg); err != nil {
		return models.Delta{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if msg == nil {
		return models.Delta{}, fmt.Errorf("%w: null", ErrMalformedPayload)
	}

	id, ok := decodeID(msg["id"])
	if !ok {
		return models.Delta{}, ErrMissingID
	}
	d := models.Delta{ID: id, IsSensor: true}

	if s, ok := msg["name"].(string); ok && strings.TrimSpace(s) != "" {
		name := strings.TrimSpace(s)
		d.Name = &name
	}

	rawLat, hasLat := msg["lat"]
	rawLon, hasLon := msg["lon"]
	lat, latOK := parseNumber(rawLat)
	lon, lonOK := parseNumber(rawLon)
	switch {
	case hasLat && hasLon:
		// the pair is all or nothing
		if latOK && lonOK && repository.ValidPosition(lat, lon) {
			d.Lat, d.Lng = &lat, &lon
		}
	case hasLat && latOK:
		d.Lat = &lat
	case hasLon && lonOK:
		d.Lng = &lon
	}

	if f, ok := parseNumber(msg["fill_level"]); ok {
		lvl := int(math.Trunc(min(max(f, 0), 100)))
		d.Level = &lvl
	}

	if v, present := msg["gas"]; present {
		gas := 0
		if f, ok := parseNumber(v); ok && f > 0 {
			gas = int(math.Trunc(min(f, math.MaxInt32)))
		}
		d.Smell = &gas
	}
	return d, nil
}

func decodeID(v any) (string, bool) {
	switch id := v.(type) {
	case string:
		id = strings.TrimSpace(id)
		return id, id != ""
	case json.Number:
		return id.String(), true
	default:
		return "", false
	}
}

// parseNumber accepts JSON numbers and numeric strings. NaN and Inf are
// rejected.
func parseNumber(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// IngestService applies telemetry to the store. Calls are serialized so
// messages land in receipt order whichever transport delivered them.
type IngestService struct {
	mu       sync.Mutex
	bins     repository.BinStore
	events   repository.EventRepo
	notifier Notifier
	offAt    time.Duration
	log      *logger.Logger
}

func NewIngestService(bins repository.BinStore, events repository.EventRepo, deps Deps) *IngestService {
	deps = deps.withDefaults()
	return &IngestService{
		bins:     bins,
		events:   events,
		notifier: deps.Notifier,
		offAt:    deps.OfflineAfter,
		log:      deps.Log.Named("ingest"),
	}
}

// Ingest decodes raw and merges it into the store. It reports false when
// the message was dropped.
func (s *IngestService) Ingest(ctx context.Context, raw []byte, receivedAt time.Time) (models.Bin, bool) {
	d, err := Decode(raw)
	if err != nil {
		s.log.Debugw("telemetry_dropped", "err", err, "bytes", len(raw))
		return models.Bin{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ch := s.bins.Upsert(d, receivedAt)
	b := ch.After

	if ch.Created {
		s.record(ctx, models.BinEvent{
			OccurredAt:  receivedAt.UTC(),
			Type:        models.EventDiscovered,
			BinID:       b.ID,
			Description: "discovered " + b.Name,
			Metadata:    b.Location,
		})
		s.notifier.Notify(hub.KindRecenter, Recenter{BinID: b.ID, Location: b.Location})
		s.log.Infow("bin_discovered", "bin_id", b.ID, "lat", b.Location.Lat, "lng", b.Location.Lng)
	}

	before := models.StatusOK
	if !ch.Created {
		before = Classify(ch.Before)
	}
	if after := Classify(b); after != before {
		ev := models.BinEvent{
			OccurredAt: receivedAt.UTC(),
			BinID:      b.ID,
			Metadata:   map[string]any{"level": b.Level, "smell": b.Smell, "from": before, "to": after},
		}
		if after == models.StatusOK {
			ev.Type = models.EventAlertCleared
			ev.Description = b.Name + " back to normal"
		} else {
			ev.Type = models.EventAlert
			ev.Description = fmt.Sprintf("%s is %s (level %d%%, gas %d)", b.Name, after, b.Level, b.Smell)
		}
		s.record(ctx, ev)
	}

	s.notifier.Notify(hub.KindBin, viewOf(b, receivedAt, s.offAt))
	return b, true
}

func (s *IngestService) record(ctx context.Context, e models.BinEvent) {
	if err := s.events.Append(ctx, e); err != nil {
		s.log.Warnw("event_append_failed", "err", err, "type", e.Type, "bin_id", e.BinID)
	}
}
