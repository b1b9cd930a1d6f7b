package generate

import (
	"context"
	"errors"
	"fmt"

	figure3d "github.com/flywave/go-figure3d"
	"google.golang.org/genai"
)

const systemPrompt = `You write figure recipes for a procedural modeller. A recipe is YAML:

name: <figure name>
join: <true to merge all parts into one object>
active: <part name kept when joining>
materials:
  - name: <material name>
    color: [R, G, B, A]        # each 0..1
parts:
  - name: <unique part name>
    shape: uv_sphere | cylinder | cube
    radius: <uv_sphere, cylinder>
    depth: <cylinder height along Z>
    size: <cube edge, default 2>
    location: [x, y, z]        # Z is up
    rotation: [x, y, z]        # XYZ Euler, radians
    scale: [x, y, z]           # optional
    material: <material name>

Example:

name: ball
materials:
  - name: Material
    color: [0.8, 0.2, 0.2, 1]
parts:
  - name: body
    shape: uv_sphere
    radius: 1
    location: [0, 0, 1]
    material: Material

Rules:
- Use only the shapes uv_sphere, cylinder and cube.
- Every material referenced by a part must be declared.
- Reply with the YAML only, inside a yaml code block.`

// GeminiGenerator asks a Gemini model to write a recipe for the prompt.
type GeminiGenerator struct {
	client          *genai.Client
	model           string
	temperature     float32
	maxOutputTokens int32
}

// NewGeminiGenerator creates a generator backed by the Gemini API.
func NewGeminiGenerator(ctx context.Context, apiKey, model string, temperature float32, maxOutputTokens int32) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, errors.New("Gemini API key is required")
	}
	if model == "" {
		model = "gemini-2.5-flash-lite"
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiGenerator{
		client:          client,
		model:           model,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (*Result, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(fmt.Sprintf("%s\n\nWrite a recipe for a 3D model of: %s", systemPrompt, prompt), genai.RoleUser),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(g.temperature),
		MaxOutputTokens: g.maxOutputTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	src := ExtractRecipe(resp.Text())
	r, err := figure3d.ParseRecipe([]byte(src))
	if err != nil {
		return &Result{Source: src}, err
	}
	return &Result{Recipe: r, Source: src}, nil
}
