package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SocialLinks struct {
	LinkedIn  string `gorm:"type:text" json:"linkedin,omitempty"`
	GitHub    string `gorm:"type:text" json:"github,omitempty"`
	Behance   string `gorm:"type:text" json:"behance,omitempty"`
	Portfolio string `gorm:"type:text" json:"portfolio,omitempty"`
	Instagram string `gorm:"type:text" json:"instagram,omitempty"`
}

// StudentProfile is the persisted student record. TalentScore is overwritten
// every time the profile is re-scored; Version increases on every content change.
type StudentProfile struct {
	ID              uuid.UUID   `gorm:"type:uuid;primary_key" json:"id"`
	Email           string      `gorm:"type:text;uniqueIndex;not null" json:"email"`
	FirstName       string      `gorm:"type:text;not null" json:"first_name"`
	LastName        string      `gorm:"type:text" json:"last_name"`
	Faculty         string      `gorm:"type:text;index" json:"faculty,omitempty"`
	Major           string      `gorm:"type:text" json:"major,omitempty"`
	Course          int         `json:"course,omitempty"`
	Bio             string      `gorm:"type:text" json:"bio,omitempty"`
	Skills          []string    `gorm:"type:text;serializer:json" json:"skills"`
	Social          SocialLinks `gorm:"embedded;embeddedPrefix:social_" json:"social_links"`
	TalentScore     float64     `gorm:"index" json:"talent_score"`
	TalentReasoning string      `gorm:"type:text" json:"talent_reasoning,omitempty"`
	ScoreFallback   bool        `json:"score_fallback"`
	ScoredAt        *time.Time  `json:"scored_at,omitempty"`
	Version         int64       `gorm:"not null;default:1" json:"version"`
	IndexedAt       *time.Time  `json:"-"`
	CreatedAt       time.Time   `json:"created_at"`
	UpdatedAt       time.Time   `json:"updated_at"`

	Projects     []Project     `gorm:"foreignKey:StudentID" json:"projects,omitempty"`
	Achievements []Achievement `gorm:"foreignKey:StudentID" json:"achievements,omitempty"`
	Certificates []Certificate `gorm:"foreignKey:StudentID" json:"certificates,omitempty"`
}

func (StudentProfile) TableName() string {
	return "student_profiles"
}

func (s *StudentProfile) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.Version == 0 {
		s.Version = 1
	}
	return nil
}

func (s *StudentProfile) FullName() string {
	if s.LastName == "" {
		return s.FirstName
	}
	return s.FirstName + " " + s.LastName
}
