package handlers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"resumeai/internal/models"
	"resumeai/internal/services"
)

type UploadHandler struct {
	storageService services.StorageService
	ingestService  services.IngestService
	maxBatchFiles  int
}

func NewUploadHandler(
	storageService services.StorageService,
	ingestService services.IngestService,
	maxBatchFiles int,
) *UploadHandler {
	return &UploadHandler{
		storageService: storageService,
		ingestService:  ingestService,
		maxBatchFiles:  maxBatchFiles,
	}
}

// HandleUpload handles POST /upload. All resumes travel in one multipart
// request under "files"; the reply carries one outcome per file, in request
// order, so one unreadable resume never fails the batch.
func (h *UploadHandler) HandleUpload(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to parse multipart form",
		})
	}

	files := form.File["files"]
	if len(files) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "no files provided, use the 'files' form field",
		})
	}
	if h.maxBatchFiles > 0 && len(files) > h.maxBatchFiles {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("too many files in one batch, max is %d", h.maxBatchFiles),
		})
	}

	results := make([]models.FileOutcome, len(files))

	// Save every file first; a file that fails validation or storage gets its
	// error outcome immediately and is excluded from processing.
	var toProcess []services.ResumeFile
	var processIdx []int
	for i, fh := range files {
		_, path, err := h.storageService.SaveFile(fh)
		if err != nil {
			results[i] = models.FileOutcome{
				Filename: fh.Filename,
				Status:   models.OutcomeError,
				Detail:   err.Error(),
			}
			continue
		}
		toProcess = append(toProcess, services.ResumeFile{
			Filename: fh.Filename,
			Path:     path,
		})
		processIdx = append(processIdx, i)
	}

	outcomes := h.ingestService.ProcessBatch(c.Context(), toProcess)
	for j, outcome := range outcomes {
		results[processIdx[j]] = outcome
	}

	return c.JSON(models.UploadResponse{Results: results})
}
