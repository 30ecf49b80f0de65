package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type ScreenHandler struct {
	orchestrator   services.ScoringOrchestrator
	roles          services.RoleCatalog
	docRepo        repositories.DocumentRepository
	evalRepo       repositories.EvaluationRepository
	storageService services.StorageService
	maxFileSize    int64
	log            *zap.Logger
}

func NewScreenHandler(
	orchestrator services.ScoringOrchestrator,
	roles services.RoleCatalog,
	docRepo repositories.DocumentRepository,
	evalRepo repositories.EvaluationRepository,
	storageService services.StorageService,
	maxFileSize int64,
	log *zap.Logger,
) *ScreenHandler {
	return &ScreenHandler{
		orchestrator:   orchestrator,
		roles:          roles,
		docRepo:        docRepo,
		evalRepo:       evalRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// HandleScreen handles POST /api/upload: a multipart résumé plus job_role,
// scored synchronously.
func (h *ScreenHandler) HandleScreen(c *fiber.Ctx) error {
	roleID := strings.TrimSpace(c.FormValue("job_role"))
	if roleID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "job_role is required",
		})
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "file is required",
		})
	}

	if file.Size > h.maxFileSize {
		return c.Status(fiber.StatusRequestEntityTooLarge).JSON(fiber.Map{
			"error": fmt.Sprintf("file too large. Max size: %d bytes", h.maxFileSize),
		})
	}

	if _, err := h.roles.Lookup(roleID); err != nil {
		return writeScoringError(c, err)
	}

	data, err := readUpload(file)
	if err != nil {
		h.log.Error("failed to read upload", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	doc, err := storeDocument(h.docRepo, h.storageService, file, data)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return writeScoringError(c, err)
		}
		h.log.Error("failed to store upload", zap.Error(err))
		return writeScoringError(c, fmt.Errorf("%w: %v", services.ErrInternal, err))
	}

	evaluation := &models.Evaluation{
		ID:         uuid.New(),
		RoleID:     roleID,
		DocumentID: doc.ID,
		Status:     models.StatusProcessing,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
	if err := h.evalRepo.Create(evaluation); err != nil {
		h.log.Error("failed to create evaluation", zap.Error(err))
		return writeScoringError(c, fmt.Errorf("%w: %v", services.ErrInternal, err))
	}

	ctx := services.WithEvaluationID(c.UserContext(), evaluation.ID)
	outcome, err := h.orchestrator.Evaluate(ctx, models.ResumeDocument{
		Data:      data,
		MediaType: models.MediaType(doc.MediaType),
	}, roleID)
	if err != nil {
		return writeScoringError(c, err)
	}

	return c.JSON(models.UploadResponse{
		ID:                  evaluation.ID.String(),
		DocumentID:          doc.ID.String(),
		RoleID:              roleID,
		ScoreWithoutChatGPT: outcome.ScoreWithoutChatGPT,
		ScoreWithChatGPT:    outcome.ScoreWithChatGPT,
		Summary:             outcome.Summary,
		MatchedSkills:       nonNil(outcome.MatchedSkills),
		MissingSkills:       nonNil(outcome.MissingSkills),
		Degraded:            outcome.Degraded,
	})
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	src, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return io.ReadAll(src)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
