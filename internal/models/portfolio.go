package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProjectStatus string

const (
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectCompleted  ProjectStatus = "completed"
)

type Project struct {
	ID           uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	StudentID    uuid.UUID     `gorm:"type:uuid;not null;index" json:"student_id"`
	Title        string        `gorm:"type:text;not null" json:"title"`
	Description  string        `gorm:"type:text" json:"description,omitempty"`
	Role         string        `gorm:"type:text" json:"role,omitempty"`
	TeamSize     int           `json:"team_size,omitempty"`
	Status       ProjectStatus `gorm:"type:text" json:"status,omitempty"`
	Link         string        `gorm:"type:text" json:"link,omitempty"`
	Technologies []string      `gorm:"type:text;serializer:json" json:"technologies,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

func (Project) TableName() string {
	return "projects"
}

func (p *Project) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// AchievementLevel values are stored as entered by the registration forms,
// which use the Azerbaijani labels.
type AchievementLevel string

const (
	LevelInternational AchievementLevel = "Beynəlxalq"
	LevelRepublic      AchievementLevel = "Respublika"
	LevelRegional      AchievementLevel = "Regional"
	LevelUniversity    AchievementLevel = "Universitet"
)

var levelAliases = map[string]AchievementLevel{
	"beynəlxalq":    LevelInternational,
	"international": LevelInternational,
	"respublika":    LevelRepublic,
	"republic":      LevelRepublic,
	"regional":      LevelRegional,
	"universitet":   LevelUniversity,
	"university":    LevelUniversity,
}

// ParseAchievementLevel accepts either the Azerbaijani or the English label.
func ParseAchievementLevel(s string) (AchievementLevel, bool) {
	level, ok := levelAliases[strings.ToLower(strings.TrimSpace(s))]
	return level, ok
}

// Rank orders levels International > Republic > Regional > University.
func (l AchievementLevel) Rank() int {
	switch l {
	case LevelInternational:
		return 4
	case LevelRepublic:
		return 3
	case LevelRegional:
		return 2
	case LevelUniversity:
		return 1
	default:
		return 0
	}
}

type Achievement struct {
	ID        uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	StudentID uuid.UUID        `gorm:"type:uuid;not null;index" json:"student_id"`
	Title     string           `gorm:"type:text;not null" json:"title"`
	Level     AchievementLevel `gorm:"type:text" json:"level"`
	Position  string           `gorm:"type:text" json:"position,omitempty"`
	Date      string           `gorm:"type:text" json:"date,omitempty"`
	Link      string           `gorm:"type:text" json:"link,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

func (Achievement) TableName() string {
	return "achievements"
}

func (a *Achievement) BeforeCreate(_ *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

type Certificate struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	StudentID     uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	Name          string    `gorm:"type:text;not null" json:"name"`
	Issuer        string    `gorm:"type:text" json:"issuer,omitempty"`
	URL           string    `gorm:"type:text" json:"url,omitempty"`
	FileName      string    `gorm:"type:text" json:"file_name,omitempty"`
	FilePath      string    `gorm:"type:text" json:"-"`
	ExtractedText string    `gorm:"type:text" json:"-"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (Certificate) TableName() string {
	return "certificates"
}

func (c *Certificate) BeforeCreate(_ *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
