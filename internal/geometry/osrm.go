// Package geometry resolves road paths through an OSRM routing server.
package geometry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultBaseURL = "https://router.project-osrm.org"
	DefaultProfile = "driving"
	defaultTimeout = 10 * time.Second

	// maxBody caps how much of a response we read; full overview
	// geometries for a city route stay well below this.
	maxBody = 8 << 20
)

var ErrNoRoute = errors.New("geometry: no route found")

type Config struct {
	BaseURL string
	Profile string
	Timeout time.Duration
}

// OSRM is a minimal client for the /route/v1 service.
type OSRM struct {
	base    string
	profile string
	http    *http.Client
}

func NewOSRM(cfg Config, client *http.Client) *OSRM {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Profile == "" {
		cfg.Profile = DefaultProfile
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}
	return &OSRM{
		base:    strings.TrimRight(cfg.BaseURL, "/"),
		profile: cfg.Profile,
		http:    client,
	}
}

type routeResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Routes  []struct {
		Geometry struct {
			Coordinates [][2]float64 `json:"coordinates"` // [lng, lat]
		} `json:"geometry"`
		Distance float64 `json:"distance"`
		Duration float64 `json:"duration"`
	} `json:"routes"`
}

// Path returns the road geometry through stops, both as [lat, lng].
func (o *OSRM) Path(ctx context.Context, stops [][2]float64) ([][2]float64, error) {
	if len(stops) < 2 {
		return nil, fmt.Errorf("geometry: need at least 2 stops, got %d", len(stops))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, o.routeURL(stops), nil)
	if err != nil {
		return nil, fmt.Errorf("geometry: build request: %w", err)
	}
	resp, err := o.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geometry: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))
		return nil, fmt.Errorf("geometry: unexpected status %d", resp.StatusCode)
	}

	var rr routeResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&rr); err != nil {
		return nil, fmt.Errorf("geometry: decode: %w", err)
	}
	if rr.Code != "Ok" {
		return nil, fmt.Errorf("%w: %s %s", ErrNoRoute, rr.Code, rr.Message)
	}
	if len(rr.Routes) == 0 || len(rr.Routes[0].Geometry.Coordinates) == 0 {
		return nil, ErrNoRoute
	}

	coords := rr.Routes[0].Geometry.Coordinates
	path := make([][2]float64, len(coords))
	for i, c := range coords {
		path[i] = [2]float64{c[1], c[0]}
	}
	return path, nil
}

// routeURL builds {base}/route/v1/{profile}/{lng,lat;...}.
func (o *OSRM) routeURL(stops [][2]float64) string {
	parts := make([]string, len(stops))
	for i, s := range stops {
		parts[i] = strconv.FormatFloat(s[1], 'f', -1, 64) + "," + strconv.FormatFloat(s[0], 'f', -1, 64)
	}
	q := url.Values{}
	q.Set("overview", "full")
	q.Set("geometries", "geojson")
	return o.base + "/route/v1/" + url.PathEscape(o.profile) + "/" + strings.Join(parts, ";") + "?" + q.Encode()
}
