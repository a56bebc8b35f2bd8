package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/services"
)

// PortfolioHandler serves the project, achievement and certificate
// sub-resources of a student. Every successful change re-scores the owner.
type PortfolioHandler struct {
	students  repositories.StudentRepository
	portfolio repositories.PortfolioRepository
	scorer    services.TalentScoreService
	storage   services.StorageService
	pdf       services.PDFParserService
	queue     IndexQueue
	logger    *zap.Logger
}

func NewPortfolioHandler(
	students repositories.StudentRepository,
	portfolio repositories.PortfolioRepository,
	scorer services.TalentScoreService,
	storage services.StorageService,
	pdf services.PDFParserService,
	queue IndexQueue,
	log *zap.Logger,
) *PortfolioHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortfolioHandler{
		students:  students,
		portfolio: portfolio,
		scorer:    scorer,
		storage:   storage,
		pdf:       pdf,
		queue:     queueOrNoop(queue),
		logger:    log,
	}
}

func (h *PortfolioHandler) HandleAddProject(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.ProjectRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "title is required")
	}

	status := models.ProjectStatus(strings.TrimSpace(req.Status))
	switch status {
	case "", models.ProjectInProgress, models.ProjectCompleted:
	default:
		return badRequest(c, "status must be in_progress or completed")
	}
	if req.TeamSize < 0 {
		return badRequest(c, "team_size must not be negative")
	}

	project := &models.Project{
		StudentID:    studentID,
		Title:        strings.TrimSpace(req.Title),
		Description:  strings.TrimSpace(req.Description),
		Role:         strings.TrimSpace(req.Role),
		TeamSize:     req.TeamSize,
		Status:       status,
		Link:         strings.TrimSpace(req.Link),
		Technologies: cleanList(req.Technologies),
	}
	if err := h.portfolio.AddProject(c.UserContext(), project); err != nil {
		return respondError(c, err)
	}

	return h.changed(c, studentID, fiber.StatusCreated)
}

func (h *PortfolioHandler) HandleDeleteProject(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}

	if err := h.portfolio.DeleteProject(c.UserContext(), studentID, itemID); err != nil {
		return respondError(c, err)
	}

	return h.changed(c, studentID, fiber.StatusOK)
}

func (h *PortfolioHandler) HandleAddAchievement(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.AchievementRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Title) == "" {
		return badRequest(c, "title is required")
	}

	level, ok := models.ParseAchievementLevel(req.Level)
	if !ok {
		return badRequest(c, "level must be one of Beynəlxalq, Respublika, Regional, Universitet")
	}

	achievement := &models.Achievement{
		StudentID: studentID,
		Title:     strings.TrimSpace(req.Title),
		Level:     level,
		Position:  strings.TrimSpace(req.Position),
		Date:      strings.TrimSpace(req.Date),
		Link:      strings.TrimSpace(req.Link),
	}
	if err := h.portfolio.AddAchievement(c.UserContext(), achievement); err != nil {
		return respondError(c, err)
	}

	return h.changed(c, studentID, fiber.StatusCreated)
}

func (h *PortfolioHandler) HandleDeleteAchievement(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}

	if err := h.portfolio.DeleteAchievement(c.UserContext(), studentID, itemID); err != nil {
		return respondError(c, err)
	}

	return h.changed(c, studentID, fiber.StatusOK)
}

// HandleAddCertificate accepts JSON or multipart. A multipart request may
// carry the certificate in the "file" field; text is pulled from PDFs.
func (h *PortfolioHandler) HandleAddCertificate(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}

	var req models.CertificateRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" {
		return badRequest(c, "name is required")
	}

	// the owner must exist before anything is written to disk
	if _, err := h.students.FindByID(c.UserContext(), studentID); err != nil {
		return respondError(c, err)
	}

	certificate := &models.Certificate{
		StudentID: studentID,
		Name:      strings.TrimSpace(req.Name),
		Issuer:    strings.TrimSpace(req.Issuer),
		URL:       strings.TrimSpace(req.URL),
	}

	if fh, err := c.FormFile("file"); err == nil {
		stored, err := h.storage.SaveUpload(fh, studentID.String())
		if err != nil {
			return respondError(c, err)
		}
		certificate.FileName = stored.OriginalName
		certificate.FilePath = stored.Path

		if stored.IsPDF() {
			text, err := h.pdf.ExtractText(stored.Path)
			if err != nil {
				h.logger.Warn("⚠️ could not extract certificate text",
					zap.String("student_id", studentID.String()),
					zap.String("file", stored.OriginalName),
					zap.Error(err),
				)
			}
			certificate.ExtractedText = text
		}
	}

	if err := h.portfolio.AddCertificate(c.UserContext(), certificate); err != nil {
		if certificate.FilePath != "" {
			_ = h.storage.DeleteFile(certificate.FilePath)
		}
		return respondError(c, err)
	}

	return h.changed(c, studentID, fiber.StatusCreated)
}

func (h *PortfolioHandler) HandleDeleteCertificate(c *fiber.Ctx) error {
	studentID, err := parseID(c, "id")
	if err != nil {
		return err
	}
	itemID, err := parseID(c, "itemId")
	if err != nil {
		return err
	}

	certificate, err := h.portfolio.FindCertificate(c.UserContext(), studentID, itemID)
	if err != nil {
		return respondError(c, err)
	}
	if err := h.portfolio.DeleteCertificate(c.UserContext(), studentID, itemID); err != nil {
		return respondError(c, err)
	}
	if certificate.FilePath != "" {
		if err := h.storage.DeleteFile(certificate.FilePath); err != nil {
			h.logger.Warn("⚠️ failed to delete certificate file", zap.String("path", certificate.FilePath), zap.Error(err))
		}
	}

	return h.changed(c, studentID, fiber.StatusOK)
}

func (h *PortfolioHandler) changed(c *fiber.Ctx, studentID uuid.UUID, status int) error {
	h.queue.Enqueue(studentID)
	return rescoreAndRespond(c, h.scorer, h.students, studentID, status)
}
