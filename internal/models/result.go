package models

type RegisterStudentRequest struct {
	Email       string      `json:"email"`
	FirstName   string      `json:"first_name"`
	LastName    string      `json:"last_name"`
	Faculty     string      `json:"faculty"`
	Major       string      `json:"major"`
	Course      int         `json:"course"`
	Bio         string      `json:"bio"`
	Skills      []string    `json:"skills"`
	SocialLinks SocialLinks `json:"social_links"`
}

// UpdateStudentRequest uses pointers so that absent fields are left untouched.
type UpdateStudentRequest struct {
	FirstName   *string      `json:"first_name"`
	LastName    *string      `json:"last_name"`
	Faculty     *string      `json:"faculty"`
	Major       *string      `json:"major"`
	Course      *int         `json:"course"`
	Bio         *string      `json:"bio"`
	Skills      []string     `json:"skills"`
	SocialLinks *SocialLinks `json:"social_links"`
}

type ProjectRequest struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Role         string   `json:"role"`
	TeamSize     int      `json:"team_size"`
	Status       string   `json:"status"`
	Link         string   `json:"link"`
	Technologies []string `json:"technologies"`
}

type AchievementRequest struct {
	Title    string `json:"title"`
	Level    string `json:"level"`
	Position string `json:"position"`
	Date     string `json:"date"`
	Link     string `json:"link"`
}

type CertificateRequest struct {
	Name   string `json:"name" form:"name"`
	Issuer string `json:"issuer" form:"issuer"`
	URL    string `json:"url" form:"url"`
}

// ScoreSummary is returned whenever an operation re-scored a profile.
type ScoreSummary struct {
	TalentScore float64 `json:"talent_score"`
	Reasoning   string  `json:"reasoning,omitempty"`
	Fallback    bool    `json:"fallback"`
	Stored      bool    `json:"stored"`
}

type StudentResponse struct {
	Student *StudentProfile `json:"student"`
	Score   *ScoreSummary   `json:"score,omitempty"`
}

type ScoreErrorResponse struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}

type LeaderboardEntry struct {
	Rank        int     `json:"rank"`
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Faculty     string  `json:"faculty,omitempty"`
	TalentScore float64 `json:"talent_score"`
}

type SearchHit struct {
	Student *StudentProfile `json:"student"`
	Score   float32         `json:"score"`
	Snippet string          `json:"snippet,omitempty"`
}

type ListResponse[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
}
