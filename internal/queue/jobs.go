package queue

import (
	"context"
	"time"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// Job represents one dubbing job from ingest to archived output.
type Job struct {
	ID             string
	RequestName    string
	SourceType     string
	FilePath       string
	TargetLanguage string
	Status         string
	Stage          string
	Error          error
	Result         *types.DubResult
	CreatedAt      time.Time

	cancel context.CancelFunc
}

// NewJob creates a queued job.
func NewJob(id, requestName, sourceType, filePath, targetLanguage string) *Job {
	return &Job{
		ID:             id,
		RequestName:    requestName,
		SourceType:     sourceType,
		FilePath:       filePath,
		TargetLanguage: targetLanguage,
		Status:         types.StatusQueued,
		CreatedAt:      time.Now(),
	}
}

// Event is one progress update pushed to WebSocket subscribers.
type Event struct {
	JobID   string    `json:"job_id"`
	Status  string    `json:"status"`
	Stage   string    `json:"stage"`
	Message string    `json:"message,omitempty"`
	Time    time.Time `json:"time"`
}

// Pipeline stage names, in processing order.
const (
	StageDownload   = "download"
	StageExtract    = "extract_audio"
	StageTranscribe = "transcribe"
	StageTranslate  = "translate"
	StageSubtitles  = "subtitles"
	StageDub        = "dub"
	StageStore      = "store"
	StageUpload     = "gdrive_upload"
	StageDone       = "done"
)
