package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/codebuildervaibhav/video-dubbing/internal/queue"
)

// ProgressHandler streams job progress events over WebSocket.
type ProgressHandler struct {
	workerPool *queue.WorkerPool
}

// NewProgressHandler creates a new progress handler.
func NewProgressHandler(workerPool *queue.WorkerPool) *ProgressHandler {
	return &ProgressHandler{workerPool: workerPool}
}

// Handle pushes the job's current state and then every stage transition
// until the job reaches a terminal status.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("id")
	job, ok := h.workerPool.GetJob(jobID)
	if !ok {
		c.WriteJSON(map[string]string{"error": "Job not found"})
		return
	}

	events := h.workerPool.Subscribe(jobID)
	defer h.workerPool.Unsubscribe(jobID, events)

	// Current snapshot first so late subscribers see where the job is.
	if err := c.WriteJSON(queue.Event{
		JobID:  job.ID,
		Status: job.Status,
		Stage:  job.Stage,
		Time:   time.Now(),
	}); err != nil {
		return
	}

	for ev := range events {
		if err := c.WriteJSON(ev); err != nil {
			log.Printf("WebSocket write failed for job %s: %v", jobID, err)
			return
		}
	}
}
