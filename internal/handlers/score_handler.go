package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"unitalent/talent-center/internal/models"
	"unitalent/talent-center/internal/repositories"
	"unitalent/talent-center/internal/services"
)

type ScoreHandler struct {
	flow   *services.TalentScoreFlow
	scorer services.TalentScoreService
}

func NewScoreHandler(flow *services.TalentScoreFlow, scorer services.TalentScoreService) *ScoreHandler {
	return &ScoreHandler{flow: flow, scorer: scorer}
}

// HandleScore runs the flow on a raw profile without storing anything.
func (h *ScoreHandler) HandleScore(c *fiber.Ctx) error {
	var req models.ScoreRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ScoreErrorResponse{
			Error: "request body must be a JSON object with profileData",
			Stage: string(services.StageInput),
		})
	}

	resp, err := h.flow.Run(c.UserContext(), req)
	if err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(models.ScoreErrorResponse{
			Error: err.Error(),
			Stage: string(services.StageOf(err)),
		})
	}

	return c.JSON(resp)
}

// HandleRecompute re-scores a stored profile.
func (h *ScoreHandler) HandleRecompute(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}

	outcome, err := h.scorer.Recompute(c.UserContext(), id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "could not update score",
			"code":  fiber.StatusInternalServerError,
		})
	}

	return c.JSON(outcome.Summary())
}
