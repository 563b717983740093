package geometry

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOSRM_Path(t *testing.T) {
	var gotPath, gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath, gotQuery = r.URL.Path, r.URL.RawQuery
		_, _ = io.WriteString(w, `{"code":"Ok","routes":[{"distance":1200,"duration":180,
			"geometry":{"type":"LineString","coordinates":[[36.66,-1.11],[36.665,-1.115],[36.67,-1.12]]}}]}`)
	}))
	defer srv.Close()

	o := NewOSRM(Config{BaseURL: srv.URL + "/", Profile: "driving"}, nil)
	path, err := o.Path(context.Background(), [][2]float64{{-1.11, 36.66}, {-1.12, 36.67}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotPath != "/route/v1/driving/36.66,-1.11;36.67,-1.12" {
		t.Fatalf("path = %q", gotPath)
	}
	if gotQuery != "geometries=geojson&overview=full" {
		t.Fatalf("query = %q", gotQuery)
	}
	want := [][2]float64{{-1.11, 36.66}, {-1.115, 36.665}, {-1.12, 36.67}}
	if len(path) != len(want) {
		t.Fatalf("path = %v", path)
	}
	for i := range want {
		if path[i] != want[i] {
			t.Fatalf("path = %v, want %v", path, want)
		}
	}
}

func TestOSRM_Errors(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		noRoute bool
	}{
		{"non-200", http.StatusBadGateway, `oops`, false},
		{"code not ok", http.StatusOK, `{"code":"NoRoute","message":"Impossible route"}`, true},
		{"no routes", http.StatusOK, `{"code":"Ok","routes":[]}`, true},
		{"bad json", http.StatusOK, `{"code":`, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = io.WriteString(w, tc.body)
			}))
			defer srv.Close()

			_, err := NewOSRM(Config{BaseURL: srv.URL}, nil).Path(context.Background(), [][2]float64{{0, 0}, {1, 1}})
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.noRoute != errors.Is(err, ErrNoRoute) {
				t.Fatalf("err = %v, noRoute=%v", err, tc.noRoute)
			}
		})
	}
}

func TestOSRM_TooFewStops(t *testing.T) {
	if _, err := NewOSRM(Config{}, nil).Path(context.Background(), [][2]float64{{0, 0}}); err == nil {
		t.Fatal("expected error for a single stop")
	}
}
