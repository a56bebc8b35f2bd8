package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"unitalent/talent-center/internal/models"
)

type StudentRepository interface {
	Create(ctx context.Context, student *models.StudentProfile) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error)
	FindFull(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error)
	FindByEmail(ctx context.Context, email string) (*models.StudentProfile, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.StudentProfile, error)
	List(ctx context.Context, filter StudentFilter) ([]models.StudentProfile, int64, error)
	Leaderboard(ctx context.Context, limit int) ([]models.StudentProfile, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Update(ctx context.Context, student *models.StudentProfile, fields ...string) error
	UpdateScore(ctx context.Context, id uuid.UUID, score ScoreUpdate) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindIndexBacklog(ctx context.Context, limit int) ([]uuid.UUID, error)
	MarkIndexed(ctx context.Context, id uuid.UUID, at time.Time) error
}

type StudentFilter struct {
	Faculty string
	Offset  int
	Limit   int
}

// ScoreUpdate is written as a single statement, so concurrent writers never
// leave a mix of two results. When ExpectedVersion is set the write only
// happens if the profile still has that version.
type ScoreUpdate struct {
	Score           float64
	Reasoning       string
	Fallback        bool
	ScoredAt        time.Time
	ExpectedVersion *int64
}

type studentRepository struct {
	db *gorm.DB
}

func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &studentRepository{db: db}
}

func (r *studentRepository) Create(ctx context.Context, student *models.StudentProfile) error {
	student.Email = strings.ToLower(strings.TrimSpace(student.Email))

	var count int64
	if err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("email = ?", student.Email).
		Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	if err := r.db.WithContext(ctx).Create(student).Error; err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}
	return nil
}

func (r *studentRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	var student models.StudentProfile
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&student).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find student: %w", err)
	}
	return &student, nil
}

// FindFull loads the profile with projects, achievements and certificates.
func (r *studentRepository) FindFull(ctx context.Context, id uuid.UUID) (*models.StudentProfile, error) {
	byCreated := func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }

	var student models.StudentProfile
	err := r.db.WithContext(ctx).
		Preload("Projects", byCreated).
		Preload("Achievements", byCreated).
		Preload("Certificates", byCreated).
		Where("id = ?", id).
		First(&student).Error
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("student %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load student: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) FindByEmail(ctx context.Context, email string) (*models.StudentProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	var student models.StudentProfile
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&student).Error; err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("student %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to find student by email: %w", err)
	}
	return &student, nil
}

func (r *studentRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]models.StudentProfile, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var students []models.StudentProfile
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&students).Error; err != nil {
		return nil, fmt.Errorf("failed to find students: %w", err)
	}
	return students, nil
}

func (r *studentRepository) List(ctx context.Context, filter StudentFilter) ([]models.StudentProfile, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.StudentProfile{})
	if faculty := strings.TrimSpace(filter.Faculty); faculty != "" {
		query = query.Where("faculty = ?", faculty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count students: %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	var students []models.StudentProfile
	if err := query.Order("created_at DESC").Offset(filter.Offset).Limit(limit).Find(&students).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list students: %w", err)
	}
	return students, total, nil
}

func (r *studentRepository) Leaderboard(ctx context.Context, limit int) ([]models.StudentProfile, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	var students []models.StudentProfile
	err := r.db.WithContext(ctx).
		Order("talent_score DESC").
		Order("created_at ASC").
		Limit(limit).
		Find(&students).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return students, nil
}

func (r *studentRepository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).Order("created_at ASC").Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("failed to list student ids: %w", err)
	}
	return ids, nil
}

// Update writes the selected fields of student and bumps the version.
// Fields are Go field names, e.g. "Bio" or "LinkedIn".
func (r *studentRepository) Update(ctx context.Context, student *models.StudentProfile, fields ...string) error {
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := bumpVersion(tx, student.ID); err != nil {
			return err
		}
		if err := tx.Model(student).Select(fields).Updates(student).Error; err != nil {
			return fmt.Errorf("failed to update student: %w", err)
		}
		return nil
	})
}

// UpdateScore overwrites the score columns without touching version or
// updated_at: a new score is not a content change.
func (r *studentRepository) UpdateScore(ctx context.Context, id uuid.UUID, score ScoreUpdate) error {
	query := r.db.WithContext(ctx).Model(&models.StudentProfile{}).Where("id = ?", id)
	if score.ExpectedVersion != nil {
		query = query.Where("version = ?", *score.ExpectedVersion)
	}

	result := query.UpdateColumns(map[string]interface{}{
		"talent_score":     score.Score,
		"talent_reasoning": score.Reasoning,
		"score_fallback":   score.Fallback,
		"scored_at":        score.ScoredAt,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to update talent score: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		return nil
	}

	if score.ExpectedVersion != nil {
		if _, err := r.FindByID(ctx, id); err != nil {
			return err
		}
		return ErrStaleVersion
	}
	return fmt.Errorf("student %s: %w", id, ErrNotFound)
}

func (r *studentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, child := range []interface{}{&models.Project{}, &models.Achievement{}, &models.Certificate{}} {
			if err := tx.Where("student_id = ?", id).Delete(child).Error; err != nil {
				return fmt.Errorf("failed to delete student children: %w", err)
			}
		}

		result := tx.Where("id = ?", id).Delete(&models.StudentProfile{})
		if result.Error != nil {
			return fmt.Errorf("failed to delete student: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("student %s: %w", id, ErrNotFound)
		}
		return nil
	})
}

// FindIndexBacklog returns profiles never indexed or changed since indexing.
func (r *studentRepository) FindIndexBacklog(ctx context.Context, limit int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("indexed_at IS NULL OR indexed_at < updated_at").
		Order("updated_at ASC").
		Limit(limit).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find index backlog: %w", err)
	}
	return ids, nil
}

func (r *studentRepository) MarkIndexed(ctx context.Context, id uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.StudentProfile{}).
		Where("id = ?", id).
		UpdateColumn("indexed_at", at)
	if result.Error != nil {
		return fmt.Errorf("failed to mark student indexed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("student %s: %w", id, ErrNotFound)
	}
	return nil
}
