package models

// ScoreRequest carries a JSON dump of a student profile to the scoring flow.
type ScoreRequest struct {
	ProfileData string `json:"profileData"`
}

// ScoreResponse is the structured result of the scoring flow.
type ScoreResponse struct {
	TalentScore float64 `json:"talentScore"`
	Reasoning   string  `json:"reasoning"`
}

// ProfileSnapshot is the shape serialized into ScoreRequest.ProfileData.
type ProfileSnapshot struct {
	FirstName    string                `json:"firstName"`
	LastName     string                `json:"lastName,omitempty"`
	Faculty      string                `json:"faculty,omitempty"`
	Major        string                `json:"major,omitempty"`
	Course       int                   `json:"course,omitempty"`
	Bio          string                `json:"bio,omitempty"`
	Skills       []string              `json:"skills"`
	Projects     []ProjectSnapshot     `json:"projects"`
	Achievements []AchievementSnapshot `json:"achievements"`
	Certificates []CertificateSnapshot `json:"certificates"`
	SocialLinks  SocialLinks           `json:"socialLinks"`
}

type ProjectSnapshot struct {
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Role         string   `json:"role,omitempty"`
	TeamSize     int      `json:"teamSize,omitempty"`
	Status       string   `json:"status,omitempty"`
	Link         string   `json:"link,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
}

type AchievementSnapshot struct {
	Title    string `json:"title"`
	Level    string `json:"level"`
	Position string `json:"position,omitempty"`
	Date     string `json:"date,omitempty"`
	Link     string `json:"link,omitempty"`
}

type CertificateSnapshot struct {
	Name     string `json:"name"`
	Issuer   string `json:"issuer,omitempty"`
	URL      string `json:"url,omitempty"`
	Document string `json:"document,omitempty"`
}
