package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/logger"
)

// maxEmbedRunes keeps embedding requests under the model's input limit.
const maxEmbedRunes = 8000

type GeminiService interface {
	GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error)
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// modelsAPI is the part of genai.Models the service calls.
type modelsAPI interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	EmbedContent(ctx context.Context, model string, contents []*genai.Content, config *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error)
}

type geminiService struct {
	models      modelsAPI
	modelName   string
	embedModel  string
	temperature float32
	logger      *zap.Logger
}

func NewGeminiService(ctx context.Context, apiKey string, cfg config.GeminiConfig, log *zap.Logger) (GeminiService, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return newGeminiService(client.Models, cfg, log), nil
}

func newGeminiService(models modelsAPI, cfg config.GeminiConfig, log *zap.Logger) *geminiService {
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	embedModel := strings.TrimSpace(cfg.EmbedModel)
	if embedModel == "" {
		embedModel = "text-embedding-004"
	}

	return &geminiService{
		models:      models,
		modelName:   model,
		embedModel:  embedModel,
		temperature: cfg.Temperature,
		logger:      logger.WithCommonFields(log, "gemini", model),
	}
}

func (g *geminiService) Model() string {
	return g.modelName
}

// GenerateStructured asks for a JSON completion constrained by schema and
// returns the raw text. A single request is made.
func (g *geminiService) GenerateStructured(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	temperature := g.temperature
	cfg := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  2048,
		ResponseMIMEType: "application/json",
		ResponseSchema:   schema,
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			g.logger.Warn("gemini api error",
				zap.Int("code", apiErr.Code),
				zap.String("status", apiErr.Status),
			)
		}
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return "", errors.New("no response generated (nil response)")
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", errors.New("gemini api returned empty response")
	}

	g.logger.Debug("gemini structured response", zap.Int("response_length", utf8.RuneCountInString(text)))
	return text, nil
}

func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, errors.New("embedding input must not be empty")
	}
	if utf8.RuneCountInString(text) > maxEmbedRunes {
		text = string([]rune(text)[:maxEmbedRunes])
	}

	result, err := g.models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}
	if result == nil || len(result.Embeddings) == 0 || result.Embeddings[0] == nil {
		return nil, errors.New("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}
