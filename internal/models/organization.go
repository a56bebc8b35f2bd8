package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Organization struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Website     string    `gorm:"type:text" json:"website,omitempty"`
	LogoURL     string    `gorm:"type:text" json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Organization) TableName() string {
	return "organizations"
}

func (o *Organization) BeforeCreate(_ *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

type News struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Title       string    `gorm:"type:text;not null" json:"title"`
	Body        string    `gorm:"type:text" json:"body"`
	Author      string    `gorm:"type:text" json:"author,omitempty"`
	ImageURL    string    `gorm:"type:text" json:"image_url,omitempty"`
	PublishedAt time.Time `gorm:"index" json:"published_at"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (News) TableName() string {
	return "news"
}

func (n *News) BeforeCreate(_ *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	if n.PublishedAt.IsZero() {
		n.PublishedAt = time.Now()
	}
	return nil
}

// StudentOrganization is a student-run club or union page.
type StudentOrganization struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name        string    `gorm:"type:text;not null" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Leader      string    `gorm:"type:text" json:"leader,omitempty"`
	Contact     string    `gorm:"type:text" json:"contact,omitempty"`
	Members     int       `json:"members"`
	LogoURL     string    `gorm:"type:text" json:"logo_url,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (StudentOrganization) TableName() string {
	return "student_organizations"
}

func (s *StudentOrganization) BeforeCreate(_ *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
