package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/config"
	"unitalent/talent-center/internal/metrics"
	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
)

const fallbackReasoning = "Automatic evaluation is temporarily unavailable. A provisional score was assigned and will be replaced on the next profile update."

// Outcome is the result of scoring one profile. Err holds the flow failure
// that caused a fallback score and is nil otherwise.
type Outcome struct {
	Score     float64
	Reasoning string
	Fallback  bool
	Stored    bool
	Err       error
}

func (o Outcome) Summary() *models.ScoreSummary {
	return &models.ScoreSummary{
		TalentScore: o.Score,
		Reasoning:   o.Reasoning,
		Fallback:    o.Fallback,
		Stored:      o.Stored,
	}
}

type TalentScoreService interface {
	// ScoreProfile never fails: flow errors produce a fallback score.
	ScoreProfile(ctx context.Context, profile *models.StudentProfile) Outcome
	// Recompute scores the stored profile and writes the result to it.
	Recompute(ctx context.Context, studentID uuid.UUID) (Outcome, error)
}

type talentScoreService struct {
	flow            *TalentScoreFlow
	students        repositories.StudentRepository
	fallbackMin     int
	fallbackMax     int
	staleWriteGuard bool
	maxCertRunes    int
	randIntN        func(n int) int
	now             func() time.Time
	logger          *zap.Logger
	metrics         *metrics.Metrics
}

func NewTalentScoreService(
	flow *TalentScoreFlow,
	students repositories.StudentRepository,
	cfg config.ScoringConfig,
	log *zap.Logger,
	m *metrics.Metrics,
) TalentScoreService {
	minScore, maxScore := cfg.FallbackMin, cfg.FallbackMax
	if minScore < 0 || maxScore > 100 || minScore >= maxScore {
		minScore, maxScore = config.DefaultFallbackMin, config.DefaultFallbackMax
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &talentScoreService{
		flow:            flow,
		students:        students,
		fallbackMin:     minScore,
		fallbackMax:     maxScore,
		staleWriteGuard: cfg.StaleWriteGuard,
		maxCertRunes:    cfg.MaxCertTextRunes,
		randIntN:        rand.IntN,
		now:             time.Now,
		logger:          log,
		metrics:         m,
	}
}

func (s *talentScoreService) ScoreProfile(ctx context.Context, profile *models.StudentProfile) Outcome {
	snapshot := BuildProfileSnapshot(profile, s.maxCertRunes)

	payload, err := json.Marshal(snapshot)
	if err != nil {
		return s.fallback(profile.ID, &FlowError{Stage: StageInput, Err: fmt.Errorf("%w: %v", ErrInvalidInput, err)})
	}

	resp, err := s.flow.Run(ctx, models.ScoreRequest{ProfileData: string(payload)})
	if err != nil {
		return s.fallback(profile.ID, err)
	}

	return Outcome{Score: resp.TalentScore, Reasoning: resp.Reasoning}
}

func (s *talentScoreService) fallback(studentID uuid.UUID, err error) Outcome {
	score := float64(s.fallbackMin + s.randIntN(s.fallbackMax-s.fallbackMin))

	stage := StageOf(err)
	if stage == "" {
		stage = StageModel
	}
	s.metrics.IncFallback(string(stage))
	s.logger.Warn("⚠️ talent score flow failed, using fallback score",
		zap.String("student_id", studentID.String()),
		zap.String("stage", string(stage)),
		zap.Float64("fallback_score", score),
		zap.Error(err),
	)

	return Outcome{Score: score, Reasoning: fallbackReasoning, Fallback: true, Err: err}
}

func (s *talentScoreService) Recompute(ctx context.Context, studentID uuid.UUID) (Outcome, error) {
	profile, err := s.students.FindFull(ctx, studentID)
	if err != nil {
		return Outcome{}, err
	}

	outcome := s.ScoreProfile(ctx, profile)

	update := repositories.ScoreUpdate{
		Score:     outcome.Score,
		Reasoning: outcome.Reasoning,
		Fallback:  outcome.Fallback,
		ScoredAt:  s.now(),
	}
	if s.staleWriteGuard {
		version := profile.Version
		update.ExpectedVersion = &version
	}

	if err := s.students.UpdateScore(ctx, studentID, update); err != nil {
		if errors.Is(err, repositories.ErrStaleVersion) {
			s.logger.Info("profile changed while scoring, result discarded",
				zap.String("student_id", studentID.String()),
				zap.Int64("snapshot_version", profile.Version),
			)
			return outcome, nil
		}
		return outcome, fmt.Errorf("could not update score: %w", err)
	}

	outcome.Stored = true
	s.metrics.ObserveScore(outcome.Score)
	s.logger.Info("✅ talent score updated",
		zap.String("student_id", studentID.String()),
		zap.Float64("score", outcome.Score),
		zap.Bool("fallback", outcome.Fallback),
	)
	return outcome, nil
}

// BuildProfileSnapshot converts a stored profile into the JSON document
// scored by the rubric. Certificate text is cut to maxCertRunes.
func BuildProfileSnapshot(profile *models.StudentProfile, maxCertRunes int) models.ProfileSnapshot {
	snapshot := models.ProfileSnapshot{
		FirstName:   profile.FirstName,
		LastName:    profile.LastName,
		Faculty:     profile.Faculty,
		Major:       profile.Major,
		Course:      profile.Course,
		Bio:         profile.Bio,
		Skills:      nonNilStrings(profile.Skills),
		SocialLinks: profile.Social,
	}

	snapshot.Projects = make([]models.ProjectSnapshot, 0, len(profile.Projects))
	for _, p := range profile.Projects {
		snapshot.Projects = append(snapshot.Projects, models.ProjectSnapshot{
			Title:        p.Title,
			Description:  p.Description,
			Role:         p.Role,
			TeamSize:     p.TeamSize,
			Status:       string(p.Status),
			Link:         p.Link,
			Technologies: nonNilStrings(p.Technologies),
		})
	}

	snapshot.Achievements = make([]models.AchievementSnapshot, 0, len(profile.Achievements))
	for _, a := range profile.Achievements {
		snapshot.Achievements = append(snapshot.Achievements, models.AchievementSnapshot{
			Title:    a.Title,
			Level:    string(a.Level),
			Position: a.Position,
			Date:     a.Date,
			Link:     a.Link,
		})
	}

	snapshot.Certificates = make([]models.CertificateSnapshot, 0, len(profile.Certificates))
	for _, c := range profile.Certificates {
		snapshot.Certificates = append(snapshot.Certificates, models.CertificateSnapshot{
			Name:     c.Name,
			Issuer:   c.Issuer,
			URL:      c.URL,
			Document: truncateRunes(CleanText(c.ExtractedText), maxCertRunes),
		})
	}

	return snapshot
}

func nonNilStrings(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}

func truncateRunes(s string, limit int) string {
	s = strings.TrimSpace(s)
	if limit <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
