// Package ordering asks Gemini for the visiting order of bins that need
// collection.
package ordering

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"ecoroute/internal/logger"
	"ecoroute/internal/models"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-3-flash-preview"

var (
	ErrMissingCredential = errors.New("ordering: no API key configured")
	ErrEmptyAnswer       = errors.New("ordering: model returned no order")
	ErrMalformedAnswer   = errors.New("ordering: model answer is not valid JSON")
)

type Config struct {
	APIKey string
	Model  string
	// BaseURL overrides the Gemini endpoint. Empty uses the public API.
	BaseURL    string
	HTTPClient *http.Client
}

// Gemini implements the route ordering collaborator. The zero API key is
// allowed: every call then fails fast with ErrMissingCredential so the
// caller falls back to discovery order.
type Gemini struct {
	client *genai.Client
	model  string
	log    *logger.Logger
}

func NewGemini(ctx context.Context, cfg Config, log *logger.Logger) (*Gemini, error) {
	if log == nil {
		log = logger.Nop()
	}
	g := &Gemini{model: cfg.Model, log: log}
	if g.model == "" {
		g.model = DefaultModel
	}
	if cfg.APIKey == "" {
		log.Warnw("ordering_disabled", "reason", "missing api key")
		return g, nil
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  cfg.HTTPClient,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	g.client = client
	return g, nil
}

// answer is the JSON object the model is constrained to.
type answer struct {
	OptimizedOrder []string `json:"optimizedOrder"`
	Explanation    string   `json:"explanation"`
}

var answerSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"optimizedOrder": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "Array of dustbin IDs in the optimal visit order starting from user",
		},
		"explanation": {
			Type:        genai.TypeString,
			Description: "Brief reasoning for the route",
		},
	},
	Required: []string{"optimizedOrder", "explanation"},
}

func (g *Gemini) Order(ctx context.Context, candidates []models.Bin, origin *models.Position) ([]string, string, error) {
	if g.client == nil {
		return nil, "", ErrMissingCredential
	}
	prompt, err := buildPrompt(candidates, origin)
	if err != nil {
		return nil, "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   answerSchema,
	})
	if err != nil {
		return nil, "", fmt.Errorf("ordering: generate content: %w", err)
	}

	a, err := parseAnswer(resp.Text())
	if err != nil {
		return nil, "", err
	}
	g.log.Debugw("ordering_answer", "model", g.model, "stops", len(a.OptimizedOrder))
	return a.OptimizedOrder, a.Explanation, nil
}

type promptBin struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
	Level int     `json:"level"`
	Gas   int     `json:"gas"`
}

func buildPrompt(candidates []models.Bin, origin *models.Position) (string, error) {
	list := make([]promptBin, len(candidates))
	for i, b := range candidates {
		list[i] = promptBin{ID: b.ID, Name: b.Name, Lat: b.Location.Lat, Lng: b.Location.Lng, Level: b.Level, Gas: b.Smell}
	}
	raw, err := json.Marshal(list)
	if err != nil {
		return "", fmt.Errorf("ordering: encode candidates: %w", err)
	}

	start := "Not provided, use the first bin as start."
	if origin != nil {
		start = fmt.Sprintf("Latitude: %v, Longitude: %v", origin.Lat, origin.Lng)
	}

	var sb strings.Builder
	sb.WriteString("I am performing waste collection in Limuru/Nairobi.\n")
	sb.WriteString("I need the SHORTEST ROAD sequence for a garbage truck.\n\n")
	sb.WriteString("STARTING LOCATION (Current Truck Position):\n")
	sb.WriteString(start)
	sb.WriteString("\n\nBINS REQUIRING PICKUP (Target Nodes):\n")
	sb.Write(raw)
	sb.WriteString("\n\nIMPORTANT:\n")
	sb.WriteString("1. The route MUST begin from the Starting Location.\n")
	sb.WriteString("2. Optimize based on proximity (Longitude and Latitude distance).\n")
	sb.WriteString("3. Return a JSON object with:\n")
	sb.WriteString("   - optimizedOrder: Array of Bin IDs in the sequence they should be visited.\n")
	sb.WriteString("   - explanation: A clear sentence describing why this route is shortest and where it starts.\n")
	return sb.String(), nil
}

func parseAnswer(text string) (answer, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return answer{}, ErrEmptyAnswer
	}
	var a answer
	if err := json.Unmarshal([]byte(text), &a); err != nil {
		return answer{}, fmt.Errorf("%w: %v", ErrMalformedAnswer, err)
	}
	if len(a.OptimizedOrder) == 0 {
		return answer{}, ErrEmptyAnswer
	}
	return a, nil
}
