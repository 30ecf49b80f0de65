package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"alfredoptarigan/resume-screener/internal/models"
	"alfredoptarigan/resume-screener/internal/repositories"
	"alfredoptarigan/resume-screener/internal/services"
)

type UploadHandler struct {
	docRepo        repositories.DocumentRepository
	storageService services.StorageService
	maxFileSize    int64
	log            *zap.Logger
}

func NewUploadHandler(
	docRepo repositories.DocumentRepository,
	storageService services.StorageService,
	maxFileSize int64,
	log *zap.Logger,
) *UploadHandler {
	return &UploadHandler{
		docRepo:        docRepo,
		storageService: storageService,
		maxFileSize:    maxFileSize,
		log:            log,
	}
}

// HandleUpload handles POST /api/v1/upload. It stores a résumé for a later
// asynchronous evaluation.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
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

	doc, err := storeDocument(h.docRepo, h.storageService, file, nil)
	if err != nil {
		if errors.Is(err, services.ErrUnsupportedFormat) {
			return writeScoringError(c, err)
		}
		h.log.Error("failed to store upload", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "failed to store document",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(models.DocumentResponse{
		ID:           doc.ID.String(),
		Filename:     doc.Filename,
		OriginalName: doc.OriginalFileName,
		MediaType:    doc.MediaType,
		Size:         doc.Size,
	})
}

// storeDocument saves the file and creates its document record.
func storeDocument(
	docRepo repositories.DocumentRepository,
	storage services.StorageService,
	file *multipart.FileHeader,
	data []byte,
) (*models.Document, error) {
	filename, filePath, err := storage.SaveFile(file)
	if err != nil {
		return nil, err
	}

	doc := models.Document{
		ID:               uuid.New(),
		Filename:         filename,
		OriginalFileName: file.Filename,
		MediaType:        string(services.DetectMediaType(file.Filename, file.Header.Get("Content-Type"), data)),
		FilePath:         filePath,
		Size:             file.Size,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}

	if err := docRepo.Create(&doc); err != nil {
		_ = storage.DeleteFile(filename)
		return nil, err
	}

	return &doc, nil
}
