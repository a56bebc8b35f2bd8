package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"

	"unitalent/talent-center/internal/models"
)

// ValidateScoreRequest checks that profileData is present and is JSON text.
func ValidateScoreRequest(req models.ScoreRequest) error {
	if strings.TrimSpace(req.ProfileData) == "" {
		return errors.New("profileData is required")
	}
	if !json.Valid([]byte(req.ProfileData)) {
		return errors.New("profileData must be valid JSON")
	}
	return nil
}

// DecodeScoreResponse parses a model completion into a ScoreResponse.
// Markdown fences and small syntax damage are repaired first.
func DecodeScoreResponse(raw string) (*models.ScoreResponse, error) {
	cleaned := extractJSON(raw)
	if cleaned == "" {
		return nil, errors.New("empty completion")
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(cleaned)
		if repairErr != nil {
			return nil, fmt.Errorf("failed to parse completion: %w", err)
		}
		data = nil
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, fmt.Errorf("failed to parse repaired completion: %w", err)
		}
	}
	if data == nil {
		return nil, errors.New("completion is not a JSON object")
	}

	rawScore, ok := data["talentScore"]
	if !ok {
		return nil, errors.New("talentScore is missing")
	}
	score := coerceFloat(rawScore)
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return nil, fmt.Errorf("talentScore is not a finite number: %v", rawScore)
	}

	reasoning, ok := data["reasoning"].(string)
	if !ok {
		return nil, errors.New("reasoning is missing or not a string")
	}
	reasoning = strings.TrimSpace(reasoning)
	if reasoning == "" {
		return nil, errors.New("reasoning is empty")
	}

	return &models.ScoreResponse{TalentScore: score, Reasoning: reasoning}, nil
}

// extractJSON strips a wrapping markdown fence and surrounding prose from a
// completion. Fences inside the object are left alone.
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimPrefix(text, "json")
	}
	text = strings.TrimSuffix(text, "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start != -1 && end > start {
		return text[start : end+1]
	}
	if start != -1 {
		// truncated object, let the repair step close it
		return strings.TrimSpace(text[start:])
	}

	return strings.TrimSpace(text)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}
