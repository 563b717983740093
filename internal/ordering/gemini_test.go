package ordering

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"ecoroute/internal/logger"
	"ecoroute/internal/models"
)

var candidates = []models.Bin{
	{ID: "b1", Name: "Market", Location: models.Position{Lat: -1.11, Lng: 36.64}, Level: 95},
	{ID: "b2", Name: "School", Location: models.Position{Lat: -1.12, Lng: 36.65}, Level: 70, Smell: 240},
}

// geminiStub answers generateContent with the given model text.
func geminiStub(t *testing.T, status int, modelText string, body *string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if !strings.HasSuffix(r.URL.Path, ":generateContent") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		b, _ := io.ReadAll(r.Body)
		*body = string(b)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if status != http.StatusOK {
			_, _ = io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
			return
		}
		resp := `{"candidates":[{"content":{"role":"model","parts":[{"text":` + quote(modelText) + `}]}}]}`
		_, _ = io.WriteString(w, resp)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func quote(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)
	return `"` + r.Replace(s) + `"`
}

func newTestGemini(t *testing.T, baseURL string) *Gemini {
	t.Helper()
	g, err := NewGemini(context.Background(), Config{APIKey: "test-key", Model: "gemini-test", BaseURL: baseURL + "/"}, logger.Nop())
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	return g
}

func TestGemini_MissingKeySkipsNetwork(t *testing.T) {
	g, err := NewGemini(context.Background(), Config{}, nil)
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	if _, _, err := g.Order(context.Background(), candidates, nil); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("err = %v, want ErrMissingCredential", err)
	}
}

func TestGemini_Order(t *testing.T) {
	var body string
	var hits atomic.Int32
	srv := geminiStub(t, http.StatusOK, `{"optimizedOrder":["b2","b1"],"explanation":"School is closer"}`, &body, &hits)

	order, why, err := newTestGemini(t, srv.URL).Order(context.Background(), candidates, &models.Position{Lat: -1.1, Lng: 36.6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 || order[0] != "b2" || order[1] != "b1" || why != "School is closer" {
		t.Fatalf("got %v %q", order, why)
	}
	if hits.Load() != 1 {
		t.Fatalf("hits = %d", hits.Load())
	}
	for _, want := range []string{"b1", "School", "application/json", "optimizedOrder"} {
		if !strings.Contains(body, want) {
			t.Fatalf("request body missing %q: %s", want, body)
		}
	}
}

func TestGemini_BadAnswers(t *testing.T) {
	cases := []struct {
		name   string
		status int
		text   string
		want   error
	}{
		{"malformed json", http.StatusOK, `route: b1 then b2`, ErrMalformedAnswer},
		{"empty order", http.StatusOK, `{"optimizedOrder":[],"explanation":"none"}`, ErrEmptyAnswer},
		{"server error", http.StatusInternalServerError, ``, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var body string
			var hits atomic.Int32
			srv := geminiStub(t, tc.status, tc.text, &body, &hits)

			_, _, err := newTestGemini(t, srv.URL).Order(context.Background(), candidates, nil)
			if err == nil {
				t.Fatal("expected error")
			}
			if tc.want != nil && !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestBuildPrompt(t *testing.T) {
	p, err := buildPrompt(candidates, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(p, "use the first bin as start") {
		t.Fatalf("prompt without origin: %s", p)
	}
	if !strings.Contains(p, `"gas":240`) || !strings.Contains(p, `"lng":36.64`) {
		t.Fatalf("candidates not embedded: %s", p)
	}

	p, _ = buildPrompt(candidates, &models.Position{Lat: -1.5, Lng: 36.9})
	if !strings.Contains(p, "Latitude: -1.5, Longitude: 36.9") {
		t.Fatalf("origin missing: %s", p)
	}
}
