package handlers

import (
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/services"
)

const courseRangeMessage = "course must be between 1 and 6, or 0 when unknown"

type StudentHandler struct {
	students repositories.StudentRepository
	scorer   services.TalentScoreService
	storage  services.StorageService
	queue    IndexQueue
	logger   *zap.Logger
}

func NewStudentHandler(
	students repositories.StudentRepository,
	scorer services.TalentScoreService,
	storage services.StorageService,
	queue IndexQueue,
	log *zap.Logger,
) *StudentHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &StudentHandler{
		students: students,
		scorer:   scorer,
		storage:  storage,
		queue:    queueOrNoop(queue),
		logger:   log,
	}
}

// HandleRegister scores the new profile before it is stored, so a student
// never exists without a score.
func (h *StudentHandler) HandleRegister(c *fiber.Ctx) error {
	var req models.RegisterStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	addr, err := mail.ParseAddress(strings.TrimSpace(req.Email))
	if err != nil {
		return badRequest(c, "a valid email is required")
	}
	if strings.TrimSpace(req.FirstName) == "" {
		return badRequest(c, "first_name is required")
	}
	if req.Course < 0 || req.Course > 6 {
		return badRequest(c, courseRangeMessage)
	}

	// Create checks again; this only keeps duplicates away from the model
	if _, err := h.students.FindByEmail(c.UserContext(), addr.Address); err == nil {
		return respondError(c, repositories.ErrEmailTaken)
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return respondError(c, err)
	}

	student := &models.StudentProfile{
		Email:     addr.Address,
		FirstName: strings.TrimSpace(req.FirstName),
		LastName:  strings.TrimSpace(req.LastName),
		Faculty:   strings.TrimSpace(req.Faculty),
		Major:     strings.TrimSpace(req.Major),
		Course:    req.Course,
		Bio:       strings.TrimSpace(req.Bio),
		Skills:    cleanList(req.Skills),
		Social:    req.SocialLinks,
	}

	outcome := h.scorer.ScoreProfile(c.UserContext(), student)
	scoredAt := time.Now()
	student.TalentScore = outcome.Score
	student.TalentReasoning = outcome.Reasoning
	student.ScoreFallback = outcome.Fallback
	student.ScoredAt = &scoredAt

	if err := h.students.Create(c.UserContext(), student); err != nil {
		return respondError(c, err)
	}
	outcome.Stored = true

	h.queue.Enqueue(student.ID)
	h.logger.Info("✅ student registered",
		zap.String("student_id", student.ID.String()),
		zap.Float64("score", outcome.Score),
		zap.Bool("fallback", outcome.Fallback),
	)

	return c.Status(fiber.StatusCreated).JSON(models.StudentResponse{
		Student: student,
		Score:   outcome.Summary(),
	})
}

func (h *StudentHandler) HandleList(c *fiber.Ctx) error {
	students, total, err := h.students.List(c.UserContext(), repositories.StudentFilter{
		Faculty: c.Query("faculty"),
		Offset:  c.QueryInt("offset", 0),
		Limit:   c.QueryInt("limit", 20),
	})
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.ListResponse[models.StudentProfile]{Items: students, Total: total})
}

func (h *StudentHandler) HandleLeaderboard(c *fiber.Ctx) error {
	students, err := h.students.Leaderboard(c.UserContext(), c.QueryInt("limit", 10))
	if err != nil {
		return respondError(c, err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(students))
	for i, s := range students {
		entries = append(entries, models.LeaderboardEntry{
			Rank:        i + 1,
			ID:          s.ID.String(),
			Name:        s.FullName(),
			Faculty:     s.Faculty,
			TalentScore: s.TalentScore,
		})
	}

	return c.JSON(entries)
}

func (h *StudentHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	student, err := h.students.FindFull(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(models.StudentResponse{Student: student})
}

// HandleUpdate applies the fields present in the body and re-scores.
func (h *StudentHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.UpdateStudentRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}

	student, err := h.students.FindByID(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	var fields []string
	setString := func(dst *string, src *string, field string) {
		if src != nil {
			*dst = strings.TrimSpace(*src)
			fields = append(fields, field)
		}
	}
	setString(&student.FirstName, req.FirstName, "FirstName")
	setString(&student.LastName, req.LastName, "LastName")
	setString(&student.Faculty, req.Faculty, "Faculty")
	setString(&student.Major, req.Major, "Major")
	setString(&student.Bio, req.Bio, "Bio")
	if req.Course != nil {
		if *req.Course < 0 || *req.Course > 6 {
			return badRequest(c, courseRangeMessage)
		}
		student.Course = *req.Course
		fields = append(fields, "Course")
	}
	if req.Skills != nil {
		student.Skills = cleanList(req.Skills)
		fields = append(fields, "Skills")
	}
	if req.SocialLinks != nil {
		student.Social = *req.SocialLinks
		fields = append(fields, "LinkedIn", "GitHub", "Behance", "Portfolio", "Instagram")
	}
	if student.FirstName == "" {
		return badRequest(c, "first_name must not be empty")
	}
	if len(fields) == 0 {
		return badRequest(c, "no fields to update")
	}

	if err := h.students.Update(c.UserContext(), student, fields...); err != nil {
		return respondError(c, err)
	}
	h.queue.Enqueue(id)

	return rescoreAndRespond(c, h.scorer, h.students, id, fiber.StatusOK)
}

func (h *StudentHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	student, err := h.students.FindFull(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	if err := h.students.Delete(c.UserContext(), id); err != nil {
		return respondError(c, err)
	}

	for _, cert := range student.Certificates {
		if err := h.storage.DeleteFile(cert.FilePath); err != nil {
			h.logger.Warn("⚠️ failed to delete certificate file", zap.String("path", cert.FilePath), zap.Error(err))
		}
	}
	h.queue.Enqueue(id)

	return c.JSON(fiber.Map{"message": "student deleted"})
}

// rescoreAndRespond recomputes the score after a content change and returns
// the refreshed profile.
func rescoreAndRespond(c *fiber.Ctx, scorer services.TalentScoreService, students repositories.StudentRepository, id uuid.UUID, status int) error {
	outcome, err := scorer.Recompute(c.UserContext(), id)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not update score",
			"code":  fiber.StatusInternalServerError,
		})
	}

	student, err := students.FindFull(c.UserContext(), id)
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(status).JSON(models.StudentResponse{Student: student, Score: outcome.Summary()})
}

func cleanList(values []string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]bool, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		key := strings.ToLower(v)
		if v == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, v)
	}
	return out
}
