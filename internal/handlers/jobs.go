package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/codebuildervaibhav/video-dubbing/internal/queue"
	"github.com/codebuildervaibhav/video-dubbing/internal/storage"
	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// JobsHandler exposes job status, results and downloads.
type JobsHandler struct {
	workerPool *queue.WorkerPool
	db         *storage.MetadataDB
}

// NewJobsHandler creates a new jobs handler.
func NewJobsHandler(workerPool *queue.WorkerPool, db *storage.MetadataDB) *JobsHandler {
	return &JobsHandler{workerPool: workerPool, db: db}
}

// List returns recently completed jobs from the database.
func (h *JobsHandler) List(c *fiber.Ctx) error {
	jobs, err := h.db.ListJobs(50)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(jobs)
}

// Get returns the live status of a job, falling back to the database for
// jobs that finished before a restart.
func (h *JobsHandler) Get(c *fiber.Ctx) error {
	jobID := c.Params("id")

	if job, ok := h.workerPool.GetJob(jobID); ok {
		resp := fiber.Map{
			"job_id":     job.ID,
			"status":     job.Status,
			"stage":      job.Stage,
			"created_at": job.CreatedAt,
		}
		if job.Error != nil {
			resp["error"] = job.Error.Error()
		}
		if job.Result != nil {
			resp["result"] = job.Result
		}
		return c.JSON(resp)
	}

	record, err := h.db.GetJob(jobID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}
	record["status"] = types.StatusCompleted
	return c.JSON(record)
}

// Download streams the dubbed video file.
func (h *JobsHandler) Download(c *fiber.Ctx) error {
	jobID := c.Params("id")

	if job, ok := h.workerPool.GetJob(jobID); ok && job.Result != nil {
		return c.SendFile(job.Result.LocalPath)
	}

	record, err := h.db.GetJob(jobID)
	if err != nil {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found"})
	}
	localPath, ok := record["local_path"].(string)
	if !ok || localPath == "" {
		return c.Status(404).JSON(fiber.Map{"error": "Output file path not found"})
	}
	return c.SendFile(localPath)
}

// Cancel aborts a queued or running job.
func (h *JobsHandler) Cancel(c *fiber.Ctx) error {
	jobID := c.Params("id")
	if !h.workerPool.CancelJob(jobID) {
		return c.Status(404).JSON(fiber.Map{"error": "Job not found or not cancellable"})
	}
	return c.JSON(fiber.Map{
		"job_id": jobID,
		"status": "cancelling",
	})
}
