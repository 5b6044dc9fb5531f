package handlers

import (
	"fmt"
	"log"
	"os/exec"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/codebuildervaibhav/video-dubbing/internal/queue"
	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// YouTubeHandler downloads a YouTube video and feeds it into the dubbing
// queue. Requires yt-dlp on the PATH.
type YouTubeHandler struct {
	workerPool *queue.WorkerPool
	tempDir    string
}

// NewYouTubeHandler creates a new YouTube handler.
func NewYouTubeHandler(workerPool *queue.WorkerPool, tempDir string) *YouTubeHandler {
	return &YouTubeHandler{workerPool: workerPool, tempDir: tempDir}
}

// YouTubeRequest represents the request body.
type YouTubeRequest struct {
	URL            string `json:"url"`
	Name           string `json:"name"`
	TargetLanguage string `json:"target_language"`
}

// Handle processes YouTube dubbing requests.
func (h *YouTubeHandler) Handle(c *fiber.Ctx) error {
	var req YouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(fiber.Map{
			"error": "Invalid request body",
			"code":  "ERR_INVALID_BODY",
		})
	}

	if req.URL == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "URL is required",
			"code":  "ERR_NO_URL",
		})
	}
	if req.TargetLanguage == "" {
		return c.Status(400).JSON(fiber.Map{
			"error": "target_language is required",
			"code":  "ERR_NO_TARGET_LANGUAGE",
		})
	}
	if req.Name == "" {
		req.Name = "youtube_video"
	}

	jobID := uuid.New().String()
	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("%s.mp4", jobID))

	// Register before downloading so the job ID handed back below is
	// queryable even if the download fails.
	job := queue.NewJob(jobID, req.Name, types.SourceYouTube, tempPath, req.TargetLanguage)
	job.Stage = queue.StageDownload
	h.workerPool.RegisterJob(job)

	// Download in the background; long videos can take minutes.
	go func() {
		if err := h.downloadVideo(req.URL, tempPath); err != nil {
			h.workerPool.FailJob(job, fmt.Errorf("youtube download failed: %v", err))
			return
		}
		h.workerPool.EnqueueJob(job)
	}()

	return c.JSON(fiber.Map{
		"job_id":  jobID,
		"status":  "downloading",
		"message": "YouTube download started (this may take a few minutes for long videos)",
	})
}

// downloadVideo fetches the full video via yt-dlp. The video stream is
// needed for the final remux, so audio-only formats won't do.
func (h *YouTubeHandler) downloadVideo(url, outputPath string) error {
	log.Printf("Using yt-dlp to download: %s", url)

	cmd := exec.Command("yt-dlp",
		"-f", "bv*[ext=mp4]+ba[ext=m4a]/b[ext=mp4]",
		"--merge-output-format", "mp4",
		"-o", outputPath,
		url,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("yt-dlp failed: %v\nOutput: %s", err, string(output))
	}

	log.Printf("YouTube video downloaded successfully")
	return nil
}
