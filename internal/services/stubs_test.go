package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"google.golang.org/genai"

	"unitalent/talent-center/internal/models"
)

type stubProvider struct {
	mu         sync.Mutex
	response   string
	err        error
	calls      int
	lastPrompt string
	onComplete func()
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Complete(_ context.Context, prompt string) (string, error) {
	s.mu.Lock()
	s.calls++
	s.lastPrompt = prompt
	hook := s.onComplete
	s.mu.Unlock()

	if hook != nil {
		hook()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubProvider) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

// rubricProvider scores the profile embedded in the prompt: points for each
// skill, each completed project and each achievement weighted by level.
type rubricProvider struct{}

func (rubricProvider) Name() string { return "rubric" }

func (rubricProvider) Complete(_ context.Context, prompt string) (string, error) {
	start := strings.Index(prompt, "<profile>")
	end := strings.LastIndex(prompt, "</profile>")
	if start == -1 || end <= start {
		return "", fmt.Errorf("profile markers not found")
	}

	var profile models.ProfileSnapshot
	if err := json.Unmarshal([]byte(prompt[start+len("<profile>"):end]), &profile); err != nil {
		return "", err
	}

	score := 5.0 * float64(len(profile.Skills))
	for _, p := range profile.Projects {
		score += 4
		if p.Status == string(models.ProjectCompleted) {
			score += 4
		}
	}
	for _, a := range profile.Achievements {
		level, _ := models.ParseAchievementLevel(a.Level)
		score += 5 * float64(level.Rank())
	}
	if score > 100 {
		score = 100
	}

	return fmt.Sprintf(`{"talentScore": %g, "reasoning": "%d skills, %d projects, %d achievements"}`,
		score, len(profile.Skills), len(profile.Projects), len(profile.Achievements)), nil
}

type fakeModels struct {
	mu           sync.Mutex
	text         string
	err          error
	embedding    []float32
	embedErr     error
	lastModel    string
	lastConfig   *genai.GenerateContentConfig
	lastContents []*genai.Content
	embedInputs  []string
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastModel = model
	f.lastConfig = config
	f.lastContents = contents
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Role: genai.RoleModel, Parts: []*genai.Part{{Text: f.text}}},
		}},
	}, nil
}

func (f *fakeModels) EmbedContent(_ context.Context, model string, contents []*genai.Content, _ *genai.EmbedContentConfig) (*genai.EmbedContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastModel = model
	for _, c := range contents {
		for _, p := range c.Parts {
			f.embedInputs = append(f.embedInputs, p.Text)
		}
	}
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	if f.embedding == nil {
		return &genai.EmbedContentResponse{}, nil
	}
	return &genai.EmbedContentResponse{
		Embeddings: []*genai.ContentEmbedding{{Values: f.embedding}},
	}, nil
}

// fakeGemini implements GeminiService with a fixed vector per text.
type fakeGemini struct {
	mu      sync.Mutex
	vectors map[string][]float32
	err     error
	calls   int
}

func (f *fakeGemini) GenerateStructured(context.Context, string, *genai.Schema) (string, error) {
	return "", fmt.Errorf("not used")
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	if v, ok := f.vectors[text]; ok {
		return v, nil
	}
	return []float32{float32(len(text)), 1, 0}, nil
}

func (f *fakeGemini) Model() string { return "fake-embed" }
