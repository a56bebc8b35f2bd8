package services

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildTalentScorePromptIsDeterministic(t *testing.T) {
	pb := NewPromptBuilder()
	data := `{"firstName":"Aysel","skills":["Go","SQL"]}`

	first := pb.BuildTalentScorePrompt(data)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, NewPromptBuilder().BuildTalentScorePrompt(data))
	}

	assert.Contains(t, first, "<profile>\n"+data+"\n</profile>")
	assert.NotContains(t, first, profilePlaceholder)
}

func TestBuildTalentScorePromptRubric(t *testing.T) {
	prompt := NewPromptBuilder().BuildTalentScorePrompt("{}")

	assert.Contains(t, prompt, "International > Republic > Regional > University")
	for _, label := range []string{"Beynəlxalq", "Respublika", "Universitet"} {
		assert.Contains(t, prompt, label)
	}
	assert.Contains(t, prompt, `{"talentScore": <number between 0 and 100>, "reasoning": "<text>"}`)
}

func TestBuildTalentScorePromptDoesNotExpandProfileContent(t *testing.T) {
	data := `{"bio":"I like {{PROFILE_DATA}} tokens"}`

	prompt := NewPromptBuilder().BuildTalentScorePrompt(data)

	assert.Equal(t, 1, strings.Count(prompt, data))
}

func TestBuildTalentScorePromptFallbackTemplate(t *testing.T) {
	pb := &PromptBuilder{}

	prompt := pb.BuildTalentScorePrompt(`{"a":1}`)

	assert.Contains(t, prompt, `<profile>`+"\n"+`{"a":1}`)
}
