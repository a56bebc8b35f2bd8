package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"unitalent/talent-center/internal/models"
)

// PortfolioRepository manages the projects, achievements and certificates
// attached to a student. Every change bumps the owning profile's version in
// the same transaction.
type PortfolioRepository interface {
	AddProject(ctx context.Context, project *models.Project) error
	DeleteProject(ctx context.Context, studentID, projectID uuid.UUID) error
	ListProjects(ctx context.Context, studentID uuid.UUID) ([]models.Project, error)

	AddAchievement(ctx context.Context, achievement *models.Achievement) error
	DeleteAchievement(ctx context.Context, studentID, achievementID uuid.UUID) error
	ListAchievements(ctx context.Context, studentID uuid.UUID) ([]models.Achievement, error)

	AddCertificate(ctx context.Context, certificate *models.Certificate) error
	FindCertificate(ctx context.Context, studentID, certificateID uuid.UUID) (*models.Certificate, error)
	DeleteCertificate(ctx context.Context, studentID, certificateID uuid.UUID) error
	ListCertificates(ctx context.Context, studentID uuid.UUID) ([]models.Certificate, error)
}

type portfolioRepository struct {
	db *gorm.DB
}

func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

func (r *portfolioRepository) AddProject(ctx context.Context, project *models.Project) error {
	return r.addChild(ctx, project.StudentID, project)
}

func (r *portfolioRepository) DeleteProject(ctx context.Context, studentID, projectID uuid.UUID) error {
	return r.deleteChild(ctx, studentID, projectID, &models.Project{})
}

func (r *portfolioRepository) ListProjects(ctx context.Context, studentID uuid.UUID) ([]models.Project, error) {
	var projects []models.Project
	if err := r.listChildren(ctx, studentID, &projects); err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	return projects, nil
}

func (r *portfolioRepository) AddAchievement(ctx context.Context, achievement *models.Achievement) error {
	return r.addChild(ctx, achievement.StudentID, achievement)
}

func (r *portfolioRepository) DeleteAchievement(ctx context.Context, studentID, achievementID uuid.UUID) error {
	return r.deleteChild(ctx, studentID, achievementID, &models.Achievement{})
}

func (r *portfolioRepository) ListAchievements(ctx context.Context, studentID uuid.UUID) ([]models.Achievement, error) {
	var achievements []models.Achievement
	if err := r.listChildren(ctx, studentID, &achievements); err != nil {
		return nil, fmt.Errorf("failed to list achievements: %w", err)
	}
	return achievements, nil
}

func (r *portfolioRepository) AddCertificate(ctx context.Context, certificate *models.Certificate) error {
	return r.addChild(ctx, certificate.StudentID, certificate)
}

func (r *portfolioRepository) FindCertificate(ctx context.Context, studentID, certificateID uuid.UUID) (*models.Certificate, error) {
	var certificate models.Certificate
	err := r.db.WithContext(ctx).
		Where("id = ? AND student_id = ?", certificateID, studentID).
		First(&certificate).Error
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("certificate %s: %w", certificateID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find certificate: %w", err)
	}
	return &certificate, nil
}

func (r *portfolioRepository) DeleteCertificate(ctx context.Context, studentID, certificateID uuid.UUID) error {
	return r.deleteChild(ctx, studentID, certificateID, &models.Certificate{})
}

func (r *portfolioRepository) ListCertificates(ctx context.Context, studentID uuid.UUID) ([]models.Certificate, error) {
	var certificates []models.Certificate
	if err := r.listChildren(ctx, studentID, &certificates); err != nil {
		return nil, fmt.Errorf("failed to list certificates: %w", err)
	}
	return certificates, nil
}

func (r *portfolioRepository) addChild(ctx context.Context, studentID uuid.UUID, child interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, studentID); err != nil {
			return err
		}
		if err := tx.Create(child).Error; err != nil {
			return fmt.Errorf("failed to create portfolio item: %w", err)
		}
		return nil
	})
}

func (r *portfolioRepository) deleteChild(ctx context.Context, studentID, childID uuid.UUID, model interface{}) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Where("id = ? AND student_id = ?", childID, studentID).Delete(model)
		if result.Error != nil {
			return fmt.Errorf("failed to delete portfolio item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("portfolio item %s: %w", childID, ErrNotFound)
		}
		return bumpVersion(tx, studentID)
	})
}

func (r *portfolioRepository) listChildren(ctx context.Context, studentID uuid.UUID, dest interface{}) error {
	return r.db.WithContext(ctx).
		Where("student_id = ?", studentID).
		Order("created_at ASC").
		Find(dest).Error
}

func bumpVersion(tx *gorm.DB, studentID uuid.UUID) error {
	result := tx.Model(&models.StudentProfile{}).
		Where("id = ?", studentID).
		UpdateColumns(map[string]interface{}{
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to bump profile version: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("student %s: %w", studentID, ErrNotFound)
	}
	return nil
}
