package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"ecoroute/internal/logger"
	"ecoroute/internal/models"
	"ecoroute/internal/repository"
)

// historyFixture runs ingestion, staleness and route planning against one
// event ring and returns the log over it. Resulting history:
//
//	t0      DISCOVERED bin-1, ALERT bin-1
//	t0+1s   DISCOVERED bin-2
//	t0+45s  OFFLINE bin-2
//	t0+60s  ROUTE_FALLBACK
func historyFixture(t *testing.T) (*EventLogService, time.Time) {
	t.Helper()
	ctx := context.Background()
	t0 := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)

	bins := repository.NewMemoryBinStore(testCenter)
	events := repository.NewEventRing(0)

	ingest := NewIngestService(bins, events, Deps{})
	ingest.Ingest(ctx, []byte(`{"id":"bin-1","fill_level":95}`), t0)
	ingest.Ingest(ctx, []byte(`{"id":"bin-2","fill_level":20}`), t0.Add(time.Second))

	stale := NewStalenessService(bins, events, nil, 30*time.Second, logger.Nop())
	stale.Evaluate(ctx, t0.Add(10*time.Second))
	ingest.Ingest(ctx, []byte(`{"id":"bin-1","fill_level":96}`), t0.Add(40*time.Second))
	stale.Evaluate(ctx, t0.Add(45*time.Second))

	route := NewRouteService(bins, events, Deps{
		Orderer: &stubOrderer{err: errors.New("quota exceeded")},
		Now:     func() time.Time { return t0.Add(time.Minute) },
	})
	route.PlanRoute(ctx, nil)

	return NewEventLogService(events), t0
}

func describe(evs []models.BinEvent) []string {
	out := make([]string, len(evs))
	for i, e := range evs {
		out[i] = e.Type
		if e.BinID != "" {
			out[i] += " " + e.BinID
		}
	}
	return out
}

func TestEventLog_FiltersProducedEvents(t *testing.T) {
	log, t0 := historyFixture(t)
	plus3 := time.FixedZone("UTC+3", 3*3600)

	cases := []struct {
		name string
		f    LogFilter
		want []string
	}{
		{"everything", LogFilter{}, []string{
			"DISCOVERED bin-1", "ALERT bin-1", "DISCOVERED bin-2", "OFFLINE bin-2", "ROUTE_FALLBACK",
		}},
		{"alerts", LogFilter{Type: models.EventAlert}, []string{"ALERT bin-1"}},
		{"offline any case", LogFilter{Type: " offline "}, []string{"OFFLINE bin-2"}},
		{"route fallback", LogFilter{Type: models.EventRouteFallback}, []string{"ROUTE_FALLBACK"}},
		{"one bin", LogFilter{BinID: "bin-1"}, []string{"DISCOVERED bin-1", "ALERT bin-1"}},
		{"bin and type", LogFilter{BinID: "bin-2", Type: models.EventOffline}, []string{"OFFLINE bin-2"}},
		{"to is inclusive", LogFilter{To: t0.Add(time.Second)}, []string{
			"DISCOVERED bin-1", "ALERT bin-1", "DISCOVERED bin-2",
		}},
		{"from in another zone", LogFilter{From: t0.Add(30 * time.Second).In(plus3)}, []string{
			"OFFLINE bin-2", "ROUTE_FALLBACK",
		}},
		{"newest two", LogFilter{Limit: 2}, []string{"OFFLINE bin-2", "ROUTE_FALLBACK"}},
		{"limit above matches", LogFilter{Type: models.EventDiscovered, Limit: 10}, []string{
			"DISCOVERED bin-1", "DISCOVERED bin-2",
		}},
		{"no match", LogFilter{Type: models.EventRouteCleared}, []string{}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := log.List(context.Background(), tc.f)
			if err != nil {
				t.Fatalf("List: %v", err)
			}
			if d := describe(got); !sameIDs(d, tc.want) {
				t.Fatalf("got %v, want %v", d, tc.want)
			}
		})
	}
}

func TestEventLog_FallbackCarriesReason(t *testing.T) {
	log, _ := historyFixture(t)
	got, err := log.List(context.Background(), LogFilter{Type: models.EventRouteFallback})
	if err != nil || len(got) != 1 {
		t.Fatalf("List = %v, %v", got, err)
	}
	meta, ok := got[0].Metadata.(map[string]any)
	if !ok {
		t.Fatalf("metadata = %T", got[0].Metadata)
	}
	if meta["reason"] != "quota exceeded" {
		t.Fatalf("reason = %v", meta["reason"])
	}
	if order, _ := meta["order"].([]string); !sameIDs(order, []string{"bin-1"}) {
		t.Fatalf("order = %v", meta["order"])
	}
}

func TestEventLog_RingWrapSeenThroughList(t *testing.T) {
	ctx := context.Background()
	t0 := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	bins := repository.NewMemoryBinStore(testCenter)
	events := repository.NewEventRing(4)
	ingest := NewIngestService(bins, events, Deps{})
	log := NewEventLogService(events)

	for i := 1; i <= 6; i++ {
		ingest.Ingest(ctx, []byte(fmt.Sprintf(`{"id":"bin-%d","fill_level":10}`, i)), t0.Add(time.Duration(i)*time.Second))
	}

	got, err := log.List(ctx, LogFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"DISCOVERED bin-3", "DISCOVERED bin-4", "DISCOVERED bin-5", "DISCOVERED bin-6"}
	if d := describe(got); !sameIDs(d, want) {
		t.Fatalf("after wrap got %v, want %v", d, want)
	}

	if got, _ := log.List(ctx, LogFilter{BinID: "bin-1"}); len(got) != 0 {
		t.Fatalf("evicted bin still listed: %v", describe(got))
	}

	// one more transition evicts bin-3 and is the newest entry
	ingest.Ingest(ctx, []byte(`{"id":"bin-6","fill_level":92}`), t0.Add(10*time.Second))
	got, _ = log.List(ctx, LogFilter{Limit: 2})
	if d := describe(got); !sameIDs(d, []string{"DISCOVERED bin-6", "ALERT bin-6"}) {
		t.Fatalf("newest two = %v", d)
	}
	got, _ = log.List(ctx, LogFilter{})
	if len(got) != 4 || got[0].BinID != "bin-4" {
		t.Fatalf("oldest after second wrap = %v", describe(got))
	}
}

// countingEventRepo fails every List and counts the calls.
type countingEventRepo struct {
	calls int
}

func (r *countingEventRepo) Append(context.Context, models.BinEvent) error { return nil }

func (r *countingEventRepo) List(context.Context, repository.EventQuery) ([]models.BinEvent, error) {
	r.calls++
	return nil, context.Canceled
}

func TestEventLog_RejectsBadFilters(t *testing.T) {
	t0 := time.Date(2025, 7, 1, 6, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		f    LogFilter
		want error
	}{
		{"unknown type", LogFilter{Type: "START"}, ErrUnknownEventType},
		{"from after to", LogFilter{From: t0.Add(time.Second), To: t0}, ErrInvalidTimeRange},
		{"negative limit", LogFilter{Limit: -1}, ErrInvalidLimit},
		{"limit over cap", LogFilter{Limit: MaxLogLimit + 1}, ErrInvalidLimit},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			repo := &countingEventRepo{}
			_, err := NewEventLogService(repo).List(context.Background(), tc.f)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
			if repo.calls != 0 {
				t.Fatal("invalid filter reached the event log")
			}
		})
	}

	repo := &countingEventRepo{}
	_, err := NewEventLogService(repo).List(context.Background(), LogFilter{Type: models.EventAlert})
	if !errors.Is(err, context.Canceled) || repo.calls != 1 {
		t.Fatalf("repo error not wrapped: %v (calls %d)", err, repo.calls)
	}
}
