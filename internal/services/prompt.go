package services

import (
	_ "embed"
	"strings"
)

//go:embed prompts/talent_score.md
var talentScoreTemplate string

const profilePlaceholder = "{{PROFILE_DATA}}"

type PromptBuilder struct {
	template string
}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{template: talentScoreTemplate}
}

// BuildTalentScorePrompt substitutes the profile JSON into the rubric.
// The output depends only on profileData.
func (pb *PromptBuilder) BuildTalentScorePrompt(profileData string) string {
	template := pb.template
	if strings.TrimSpace(template) == "" {
		template = "Score this student profile from 0 to 100 as JSON {\"talentScore\", \"reasoning\"}.\n<profile>\n" + profilePlaceholder + "\n</profile>\n"
	}
	return strings.Replace(template, profilePlaceholder, profileData, 1)
}
