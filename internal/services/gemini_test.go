package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"unitalent/talent-center/internal/config"
)

func TestGeminiGenerateStructured(t *testing.T) {
	models := &fakeModels{text: `{"talentScore": 70, "reasoning": "ok"}`}
	svc := newGeminiService(models, config.GeminiConfig{Model: "gemini-test", Temperature: 0.2}, zap.NewNop())

	schema := talentScoreSchema()
	out, err := svc.GenerateStructured(context.Background(), "score this", schema)
	require.NoError(t, err)
	assert.Equal(t, `{"talentScore": 70, "reasoning": "ok"}`, out)

	assert.Equal(t, "gemini-test", models.lastModel)
	require.NotNil(t, models.lastConfig)
	assert.Equal(t, "application/json", models.lastConfig.ResponseMIMEType)
	assert.Same(t, schema, models.lastConfig.ResponseSchema)
	require.NotNil(t, models.lastConfig.Temperature)
	assert.InDelta(t, 0.2, *models.lastConfig.Temperature, 1e-6)
	require.Len(t, models.lastContents, 1)
	assert.Equal(t, "score this", models.lastContents[0].Parts[0].Text)
}

func TestGeminiGenerateStructuredErrors(t *testing.T) {
	ctx := context.Background()

	svc := newGeminiService(&fakeModels{}, config.GeminiConfig{}, nil)
	assert.Equal(t, "gemini-2.5-flash", svc.Model())

	_, err := svc.GenerateStructured(ctx, "   ", nil)
	assert.Error(t, err)

	_, err = svc.GenerateStructured(ctx, "prompt", nil)
	assert.ErrorContains(t, err, "empty response")

	apiErr := genai.APIError{Code: 429, Status: "RESOURCE_EXHAUSTED", Message: "quota"}
	svc = newGeminiService(&fakeModels{err: apiErr}, config.GeminiConfig{}, zap.NewNop())
	_, err = svc.GenerateStructured(ctx, "prompt", nil)
	var got genai.APIError
	require.True(t, errors.As(err, &got))
	assert.Equal(t, 429, got.Code)
}

func TestGeminiGenerateEmbedding(t *testing.T) {
	ctx := context.Background()
	models := &fakeModels{embedding: []float32{0.1, 0.2}}
	svc := newGeminiService(models, config.GeminiConfig{EmbedModel: "embed-test"}, zap.NewNop())

	vector, err := svc.GenerateEmbedding(ctx, strings.Repeat("ə", maxEmbedRunes+50))
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2}, vector)
	assert.Equal(t, "embed-test", models.lastModel)
	require.Len(t, models.embedInputs, 1)
	assert.Equal(t, maxEmbedRunes, len([]rune(models.embedInputs[0])))

	_, err = svc.GenerateEmbedding(ctx, "")
	assert.Error(t, err)

	_, err = newGeminiService(&fakeModels{}, config.GeminiConfig{}, nil).GenerateEmbedding(ctx, "text")
	assert.ErrorContains(t, err, "empty embedding")
}

func TestGeminiScoreProviderUsesSchema(t *testing.T) {
	models := &fakeModels{text: `{"talentScore": 55, "reasoning": "fine"}`}
	provider := NewGeminiScoreProvider(newGeminiService(models, config.GeminiConfig{}, nil))

	assert.Equal(t, "gemini", provider.Name())
	out, err := provider.Complete(context.Background(), "prompt")
	require.NoError(t, err)
	assert.Contains(t, out, "55")

	schema := models.lastConfig.ResponseSchema
	require.NotNil(t, schema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.ElementsMatch(t, []string{"talentScore", "reasoning"}, schema.Required)
	assert.Equal(t, genai.TypeNumber, schema.Properties["talentScore"].Type)
	assert.Equal(t, 100.0, *schema.Properties["talentScore"].Maximum)
	assert.Equal(t, genai.TypeString, schema.Properties["reasoning"].Type)
}
