package services

import (
	"context"

	"google.golang.org/genai"
)

// ScoreProvider turns a rendered rubric prompt into a raw completion.
// Implementations make exactly one call per Complete and never cache.
type ScoreProvider interface {
	Name() string
	Complete(ctx context.Context, prompt string) (string, error)
}

type GeminiScoreProvider struct {
	gemini GeminiService
	schema *genai.Schema
}

func NewGeminiScoreProvider(gemini GeminiService) *GeminiScoreProvider {
	return &GeminiScoreProvider{gemini: gemini, schema: talentScoreSchema()}
}

func (p *GeminiScoreProvider) Name() string {
	return "gemini"
}

func (p *GeminiScoreProvider) Complete(ctx context.Context, prompt string) (string, error) {
	return p.gemini.GenerateStructured(ctx, prompt, p.schema)
}

func talentScoreSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"talentScore": {
				Type:        genai.TypeNumber,
				Description: "Overall talent score between 0 and 100.",
				Minimum:     genai.Ptr(0.0),
				Maximum:     genai.Ptr(100.0),
			},
			"reasoning": {
				Type:        genai.TypeString,
				Description: "Justification citing concrete profile details.",
			},
		},
		Required:         []string{"talentScore", "reasoning"},
		PropertyOrdering: []string{"talentScore", "reasoning"},
	}
}
