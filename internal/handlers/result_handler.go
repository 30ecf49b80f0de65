package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
)

type ResultHandler struct {
	evalRepo repositories.EvaluationRepository
}

func NewResultHandler(evalRepo repositories.EvaluationRepository) *ResultHandler {
	return &ResultHandler{
		evalRepo: evalRepo,
	}
}

// HandleGetResult handles GET /api/v1/result/:id
func (h *ResultHandler) HandleGetResult(c *fiber.Ctx) error {
	evalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid evaluation ID format",
		})
	}

	evaluation, err := h.evalRepo.FindByID(evalID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Evaluation not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load evaluation",
		})
	}

	response := models.ResultResponse{
		ID:     evaluation.ID.String(),
		Status: string(evaluation.Status),
		RoleID: evaluation.RoleID,
	}

	if evaluation.Status == models.StatusCompleted {
		response.Result = &models.EvaluationData{
			ScoreWithoutChatGPT: deref(evaluation.ScoreWithoutChatGPT),
			ScoreWithChatGPT:    deref(evaluation.ScoreWithChatGPT),
			MatchedSkills:       nonNil(evaluation.MatchedSkills),
			MissingSkills:       nonNil(evaluation.MissingSkills),
			Degraded:            evaluation.Degraded,
		}
		if evaluation.Summary != nil {
			response.Result.Summary = *evaluation.Summary
		}
	}

	if evaluation.Status == models.StatusFailed {
		response.ErrorKind = evaluation.ErrorKind
		response.ErrorMessage = evaluation.ErrorMessage
	}

	return c.JSON(response)
}

func deref(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
