package repository_test

import (
	"math"
	"testing"
	"time"

	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

var limuru = models.Position{Lat: -1.1145, Lng: 36.6620}

func ptr[T any](v T) *T { return &v }

func TestMemoryBinStore_Upsert_CreatesWithDefaults(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	now := time.Date(2025, 3, 1, 10, 11, 12, 0, time.UTC)

	ch := s.Upsert(models.Delta{ID: "bin-1", IsSensor: true}, now)
	if !ch.Created {
		t.Fatalf("expected Created for a new id")
	}
	b := ch.After
	if b.Name != "Node: bin-1" {
		t.Errorf("Name: got %q", b.Name)
	}
	if b.Location != limuru {
		t.Errorf("Location: want default center, got %+v", b.Location)
	}
	if b.Level != 0 || b.Smell != 0 {
		t.Errorf("numeric defaults: got level=%d smell=%d", b.Level, b.Smell)
	}
	if !b.IsIoTDevice {
		t.Errorf("expected sensor flag")
	}
	if !b.LastSeen.Equal(now) || b.LastUpdated != "10:11:12" {
		t.Errorf("timestamps: got %v / %q", b.LastSeen, b.LastUpdated)
	}
}

func TestMemoryBinStore_Upsert_MergesSuppliedFieldsOnly(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	t0 := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	s.Upsert(models.Delta{
		ID: "b", Name: ptr("Market"), Lat: ptr(-1.2), Lng: ptr(36.8),
		Level: ptr(40), Smell: ptr(120), IsSensor: true,
	}, t0)

	t1 := t0.Add(5 * time.Second)
	ch := s.Upsert(models.Delta{ID: "b", Level: ptr(75), IsSensor: true}, t1)
	if ch.Created {
		t.Fatalf("second upsert must not create")
	}
	if ch.Before.Level != 40 {
		t.Errorf("Before.Level: got %d", ch.Before.Level)
	}
	b := ch.After
	if b.Level != 75 {
		t.Errorf("Level: got %d, want 75", b.Level)
	}
	if b.Name != "Market" || b.Smell != 120 {
		t.Errorf("omitted fields changed: %+v", b)
	}
	if b.Location != (models.Position{Lat: -1.2, Lng: 36.8}) {
		t.Errorf("Location changed: %+v", b.Location)
	}
	if !b.LastSeen.Equal(t1) {
		t.Errorf("LastSeen: got %v, want %v", b.LastSeen, t1)
	}
}

func TestMemoryBinStore_Upsert_IdempotentUnderResend(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	d := models.Delta{ID: "x", Name: ptr("X"), Lat: ptr(1.0), Lng: ptr(2.0), Level: ptr(50), Smell: ptr(10), IsSensor: true}
	t0 := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	first := s.Upsert(d, t0).After
	second := s.Upsert(d, t0.Add(time.Minute)).After

	first.LastSeen, second.LastSeen = time.Time{}, time.Time{}
	first.LastUpdated, second.LastUpdated = "", ""
	if first != second {
		t.Fatalf("resend changed more than timestamps:\n first=%+v\nsecond=%+v", first, second)
	}
}

func TestMemoryBinStore_Upsert_OneRecordPerID(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	now := time.Now()
	for _, id := range []string{"a", "b", "a", "c", "b", "a", "c"} {
		s.Upsert(models.Delta{ID: id, IsSensor: true}, now)
	}
	if s.Len() != 3 {
		t.Fatalf("Len: got %d, want 3", s.Len())
	}
	var got []string
	for _, b := range s.List() {
		got = append(got, b.ID)
	}
	want := []string{"a", "b", "c"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("discovery order: got %v, want %v", got, want)
		}
	}
}

func TestMemoryBinStore_Upsert_CoercesValues(t *testing.T) {
	cases := []struct {
		name      string
		level     *int
		smell     *int
		wantLevel int
		wantSmell int
	}{
		{"level above range", ptr(140), nil, 100, 0},
		{"level below range", ptr(-5), nil, 0, 0},
		{"negative gas", nil, ptr(-30), 0, 0},
		{"in range", ptr(90), ptr(200), 90, 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := repository.NewMemoryBinStore(limuru)
			b := s.Upsert(models.Delta{ID: "id", Level: tc.level, Smell: tc.smell}, time.Now()).After
			if b.Level != tc.wantLevel || b.Smell != tc.wantSmell {
				t.Fatalf("got level=%d smell=%d, want %d/%d", b.Level, b.Smell, tc.wantLevel, tc.wantSmell)
			}
		})
	}
}

func TestMemoryBinStore_Upsert_InvalidPositionKeepsPrevious(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	now := time.Now()
	s.Upsert(models.Delta{ID: "p", Lat: ptr(10.0), Lng: ptr(20.0)}, now)

	for _, d := range []models.Delta{
		{ID: "p", Lat: ptr(91.0), Lng: ptr(20.0)},
		{ID: "p", Lat: ptr(10.0), Lng: ptr(-181.0)},
		{ID: "p", Lat: ptr(math.NaN())},
		{ID: "p", Lng: ptr(math.Inf(1))},
	} {
		b := s.Upsert(d, now).After
		if b.Location != (models.Position{Lat: 10, Lng: 20}) {
			t.Fatalf("position changed by invalid delta %+v: %+v", d, b.Location)
		}
	}

	b := s.Upsert(models.Delta{ID: "p", Lat: ptr(-45.5)}, now).After
	if b.Location != (models.Position{Lat: -45.5, Lng: 20}) {
		t.Fatalf("single valid coordinate not merged: %+v", b.Location)
	}
}

func TestMemoryBinStore_AddManual(t *testing.T) {
	s := repository.NewMemoryBinStore(limuru)
	now := time.Now()
	s.Upsert(models.Delta{ID: "sensor", IsSensor: true}, now)

	b := s.AddManual("Nairobi Central 1", models.Position{Lat: -1.2921, Lng: 36.8219}, now)
	if b.ID == "" {
		t.Fatalf("manual bin must get an id")
	}
	if b.IsIoTDevice {
		t.Errorf("manual bin flagged as sensor")
	}
	got, ok := s.Get(b.ID)
	if !ok || got.Name != "Nairobi Central 1" {
		t.Fatalf("Get: ok=%v bin=%+v", ok, got)
	}
	list := s.List()
	if len(list) != 2 || list[1].ID != b.ID {
		t.Fatalf("manual bin not appended in discovery order: %+v", list)
	}
}

func TestValidPositionAndClampLevel(t *testing.T) {
	if !repository.ValidPosition(-90, 180) || !repository.ValidPosition(90, -180) {
		t.Errorf("range bounds must be valid")
	}
	if repository.ValidPosition(90.0001, 0) || repository.ValidPosition(0, math.NaN()) {
		t.Errorf("out of range / NaN must be invalid")
	}
	for in, want := range map[int]int{-1: 0, 0: 0, 55: 55, 100: 100, 101: 100} {
		if got := repository.ClampLevel(in); got != want {
			t.Errorf("ClampLevel(%d)=%d, want %d", in, got, want)
		}
	}
}
