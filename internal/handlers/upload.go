package handlers

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-dubbing/internal/media"
	"github.com/codebuildervaibhav/video-dubbing/internal/queue"
	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// UploadHandler handles video uploads for dubbing.
type UploadHandler struct {
	workerPool *queue.WorkerPool
	maxSizeMB  int
	tempDir    string
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(workerPool *queue.WorkerPool, maxSizeMB int, tempDir string) *UploadHandler {
	return &UploadHandler{
		workerPool: workerPool,
		maxSizeMB:  maxSizeMB,
		tempDir:    tempDir,
	}
}

// Handle processes the upload request.
func (h *UploadHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	requestName := c.FormValue("name")
	if requestName == "" {
		requestName = "untitled"
	}

	targetLanguage := c.FormValue("target_language")
	if targetLanguage == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "target_language is required",
			"code":  "ERR_NO_TARGET_LANGUAGE",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(400).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !media.ValidateVideoFormat(file.Filename) {
		return c.Status(400).JSON(fiber.Map{
			"error": "Unsupported video format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s%s", jobID, filepath.Ext(file.Filename)))

	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(500).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	job := queue.NewJob(jobID, requestName, types.SourceUpload, tempPath, targetLanguage)
	h.workerPool.EnqueueJob(job)

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "queued",
		"message": "Video uploaded successfully, dubbing started",
	})
}
