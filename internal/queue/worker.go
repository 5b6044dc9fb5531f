package queue

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime/debug"
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-dubbing/internal/asr"
	"github.com/codebuildervaibhav/video-dubbing/internal/dub"
	"github.com/codebuildervaibhav/video-dubbing/internal/media"
	"github.com/codebuildervaibhav/video-dubbing/internal/storage"
	"github.com/codebuildervaibhav/video-dubbing/internal/subtitles"
	"github.com/codebuildervaibhav/video-dubbing/internal/translate"
	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// WorkerPool manages a pool of workers processing dubbing jobs. It also
// keeps the in-memory job registry and fans progress events out to
// WebSocket subscribers.
type WorkerPool struct {
	jobQueue     chan *Job
	workerCount  int
	ffmpeg       *media.FFmpeg
	transcriber  *asr.WhisperTranscriber
	translator   *translate.Client
	ttsClient    dub.TTSClient
	dubConfig    dub.Config
	localStorage *storage.LocalStorage
	driveClient  *storage.DriveClient
	db           *storage.MetadataDB
	tempDir      string

	mu   sync.RWMutex
	jobs map[string]*Job
	subs map[string][]chan Event
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(
	workerCount int,
	ffmpeg *media.FFmpeg,
	transcriber *asr.WhisperTranscriber,
	translator *translate.Client,
	ttsClient dub.TTSClient,
	dubConfig dub.Config,
	localStorage *storage.LocalStorage,
	driveClient *storage.DriveClient,
	db *storage.MetadataDB,
	tempDir string,
) *WorkerPool {
	return &WorkerPool{
		jobQueue:     make(chan *Job, 100), // Buffer of 100 jobs
		workerCount:  workerCount,
		ffmpeg:       ffmpeg,
		transcriber:  transcriber,
		translator:   translator,
		ttsClient:    ttsClient,
		dubConfig:    dubConfig,
		localStorage: localStorage,
		driveClient:  driveClient,
		db:           db,
		tempDir:      tempDir,
		jobs:         make(map[string]*Job),
		subs:         make(map[string][]chan Event),
	}
}

// Start initializes all workers.
func (wp *WorkerPool) Start() {
	log.Printf("Starting worker pool with %d workers", wp.workerCount)
	for i := 0; i < wp.workerCount; i++ {
		go wp.worker(i)
	}
}

// RegisterJob makes a job visible to status queries and subscribers before
// it is queued. Used for jobs with a download step ahead of the queue.
func (wp *WorkerPool) RegisterJob(job *Job) {
	wp.mu.Lock()
	wp.jobs[job.ID] = job
	wp.mu.Unlock()
}

// FailJob marks a registered job failed before it ever reached the queue.
func (wp *WorkerPool) FailJob(job *Job, err error) {
	job.Status = types.StatusFailed
	job.Error = err
	log.Printf("Job %s failed before queueing: %v", job.ID, err)
	wp.finish(job)
}

// EnqueueJob registers a job and adds it to the queue.
func (wp *WorkerPool) EnqueueJob(job *Job) {
	job.Status = types.StatusQueued
	job.CreatedAt = time.Now()

	wp.mu.Lock()
	wp.jobs[job.ID] = job
	wp.mu.Unlock()

	wp.jobQueue <- job
	log.Printf("Job %s enqueued (source: %s, name: %s, target: %s)",
		job.ID, job.SourceType, job.RequestName, job.TargetLanguage)
}

// GetJob returns the in-memory job record, if still known.
func (wp *WorkerPool) GetJob(id string) (*Job, bool) {
	wp.mu.RLock()
	defer wp.mu.RUnlock()
	job, ok := wp.jobs[id]
	return job, ok
}

// CancelJob aborts a running job. Partial output is discarded by the
// pipeline; the job ends in CANCELLED.
func (wp *WorkerPool) CancelJob(id string) bool {
	wp.mu.RLock()
	job, ok := wp.jobs[id]
	wp.mu.RUnlock()
	if !ok || job.cancel == nil {
		return false
	}
	job.cancel()
	return true
}

// Subscribe returns a channel of progress events for a job. The channel is
// closed once the job reaches a terminal status. Subscribing to an unknown
// or already-finished job returns a closed channel immediately, so late
// subscribers never block on events that will not come.
func (wp *WorkerPool) Subscribe(jobID string) <-chan Event {
	ch := make(chan Event, 16)
	wp.mu.Lock()
	defer wp.mu.Unlock()

	job, ok := wp.jobs[jobID]
	if !ok || types.TerminalStatus(job.Status) {
		close(ch)
		return ch
	}
	wp.subs[jobID] = append(wp.subs[jobID], ch)
	return ch
}

// Unsubscribe detaches a subscriber channel.
func (wp *WorkerPool) Unsubscribe(jobID string, ch <-chan Event) {
	wp.mu.Lock()
	defer wp.mu.Unlock()
	subs := wp.subs[jobID]
	for i, sub := range subs {
		if sub == ch {
			wp.subs[jobID] = append(subs[:i], subs[i+1:]...)
			close(sub)
			break
		}
	}
}

func (wp *WorkerPool) publish(job *Job, stage, message string) {
	job.Stage = stage
	ev := Event{JobID: job.ID, Status: job.Status, Stage: stage, Message: message, Time: time.Now()}

	wp.mu.RLock()
	subs := wp.subs[job.ID]
	wp.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- ev:
		default: // slow subscriber, drop rather than stall the worker
		}
	}
}

func (wp *WorkerPool) finish(job *Job) {
	wp.publish(job, StageDone, "")

	wp.mu.Lock()
	subs := wp.subs[job.ID]
	delete(wp.subs, job.ID)
	wp.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}

// worker processes jobs from the queue.
func (wp *WorkerPool) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range wp.jobQueue {
		// Panic recovery
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					job.Status = types.StatusFailed
					job.Error = fmt.Errorf("Worker panic: %v", r)
					wp.cleanupTempFile(job.FilePath)
					wp.finish(job)
				}
			}()

			wp.processJob(id, job)
		}()
	}
}

// processJob runs the complete dubbing pipeline for one job.
func (wp *WorkerPool) processJob(workerID int, job *Job) {
	log.Printf("Worker %d: Processing job %s", workerID, job.ID)
	job.Status = types.StatusProcessing
	defer wp.cleanupTempFile(job.FilePath)

	ctx, cancel := context.WithCancel(context.Background())
	job.cancel = cancel
	defer cancel()

	fail := func(stage string, err error) {
		if ctx.Err() != nil {
			job.Status = types.StatusCancelled
			job.Error = ctx.Err()
			log.Printf("Worker %d: Job %s cancelled during %s", workerID, job.ID, stage)
		} else {
			job.Status = types.StatusFailed
			job.Error = fmt.Errorf("%s failed: %v", stage, err)
			log.Printf("Worker %d: Job %s: %v", workerID, job.ID, job.Error)
		}
		wp.finish(job)
	}

	// Step 1: Extract the original audio track for transcription
	wp.publish(job, StageExtract, "extracting audio track")
	audioPath, err := wp.ffmpeg.ExtractAudio(job.FilePath)
	if err != nil {
		fail(StageExtract, err)
		return
	}
	defer wp.cleanupTempFile(audioPath)

	// Step 2: Transcribe with Whisper
	wp.publish(job, StageTranscribe, "transcribing audio")
	transcript, err := wp.transcriber.Transcribe(audioPath)
	if err != nil {
		fail(StageTranscribe, err)
		return
	}
	segments := transcript.Segments

	// Step 3: Translate each segment
	wp.publish(job, StageTranslate, fmt.Sprintf("translating %d segments", len(segments)))
	for i := range segments {
		translated, err := wp.translator.Translate(ctx, segments[i].SourceText, transcript.Language, job.TargetLanguage)
		if err != nil {
			fail(StageTranslate, err)
			return
		}
		segments[i].TargetText = translated
	}

	// Step 4: Generate subtitles for both languages
	wp.publish(job, StageSubtitles, "writing subtitles")
	srcSRT := wp.tempPath(job.ID, "_"+transcript.Language+".srt")
	dstSRT := wp.tempPath(job.ID, "_"+job.TargetLanguage+".srt")
	if len(segments) > 0 {
		if err := subtitles.WriteSRT(srcSRT, segments, subtitles.SourceText); err != nil {
			fail(StageSubtitles, err)
			return
		}
		if err := subtitles.WriteSRT(dstSRT, segments, subtitles.TargetText); err != nil {
			fail(StageSubtitles, err)
			return
		}
	} else {
		srcSRT, dstSRT = "", ""
	}

	// Step 5: Regenerate the audio track and remux
	wp.publish(job, StageDub, "synthesizing and assembling dubbed track")
	outputPath := wp.tempPath(job.ID, "_dubbed.mp4")
	pipeline := dub.NewPipeline(wp.dubConfig, wp.ttsClient, wp.ffmpeg)
	runResult, err := pipeline.Run(ctx, job.FilePath, outputPath, segments)
	if err != nil {
		fail(StageDub, err)
		return
	}

	var warnings []string
	for _, n := range runResult.Notices {
		if n.SegmentIndex >= 0 {
			warnings = append(warnings, fmt.Sprintf("%s: segment %d (%dms)", n.Kind, n.SegmentIndex, n.AmountMS))
		} else {
			warnings = append(warnings, fmt.Sprintf("%s: %s", n.Kind, n.Detail))
		}
	}

	result := &types.DubResult{
		JobID:          job.ID,
		LocalPath:      runResult.OutputPath,
		SourceSRTPath:  srcSRT,
		TargetSRTPath:  dstSRT,
		SourceLanguage: transcript.Language,
		TargetLanguage: job.TargetLanguage,
		DurationMS:     runResult.DurationMS,
		SegmentCount:   len(segments),
		Warnings:       warnings,
		ProcessedAt:    time.Now(),
	}

	// Step 6: Archive locally
	wp.publish(job, StageStore, "archiving outputs")
	if err := wp.localStorage.SaveOutputs(job.RequestName, result); err != nil {
		fail(StageStore, err)
		return
	}

	// Step 7: Upload to Google Drive (with retry)
	if wp.driveClient != nil {
		wp.publish(job, StageUpload, "uploading to Google Drive")
		var driveURL string
		for attempt := 1; attempt <= 3; attempt++ {
			driveURL, err = wp.driveClient.Upload(job.RequestName, result)
			if err == nil {
				result.GDriveURL = driveURL
				break
			}
			log.Printf("Worker %d: Google Drive upload attempt %d/3 failed: %v", workerID, attempt, err)
			if attempt < 3 {
				time.Sleep(time.Duration(attempt*attempt) * time.Second) // Exponential backoff
			}
		}
		if err != nil {
			log.Printf("Worker %d: WARNING - Google Drive upload failed after 3 attempts, continuing with local save only", workerID)
		}
	}

	// Step 8: Save metadata to database
	if wp.db != nil {
		if err := wp.db.SaveJob(job.ID, job.RequestName, job.SourceType, result); err != nil {
			log.Printf("Worker %d: Database save failed: %v", workerID, err)
		}
	}

	job.Result = result
	job.Status = types.StatusCompleted
	log.Printf("Worker %d: Job %s completed (%d segments, %d warnings, output: %s)",
		workerID, job.ID, len(segments), len(warnings), result.LocalPath)
	wp.finish(job)
}

func (wp *WorkerPool) tempPath(jobID, suffix string) string {
	return filepath.Join(wp.tempDir, jobID+suffix)
}

// cleanupTempFile removes a temporary file.
func (wp *WorkerPool) cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", filePath, err)
	}
}
