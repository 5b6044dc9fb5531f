package types

import "time"

// Job status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
	StatusCancelled  = "CANCELLED"
)

// Source type constants
const (
	SourceUpload  = "upload"
	SourceYouTube = "youtube"
)

// TerminalStatus reports whether a job in this status will never change
// again.
func TerminalStatus(status string) bool {
	switch status {
	case StatusCompleted, StatusFailed, StatusCancelled:
		return true
	}
	return false
}

// Segment is one recognized utterance from the source video's transcript.
// Segments are ordered by Index, their windows never overlap, and they are
// immutable once the transcription/translation stage has produced them.
type Segment struct {
	Index      int    `json:"index"`
	StartMS    int64  `json:"start_ms"`
	EndMS      int64  `json:"end_ms"`
	SourceText string `json:"source_text"`
	TargetText string `json:"target_text"`
}

// WindowMS returns the length of the segment's original timing window.
func (s Segment) WindowMS() int64 {
	return s.EndMS - s.StartMS
}

// DubResult holds everything a completed dubbing job produced.
type DubResult struct {
	JobID          string    `json:"job_id"`
	LocalPath      string    `json:"local_path"`
	SourceSRTPath  string    `json:"source_srt_path"`
	TargetSRTPath  string    `json:"target_srt_path"`
	GDriveURL      string    `json:"gdrive_url,omitempty"`
	SourceLanguage string    `json:"source_language"`
	TargetLanguage string    `json:"target_language"`
	DurationMS     int64     `json:"duration_ms"`
	SegmentCount   int       `json:"segment_count"`
	Warnings       []string  `json:"warnings,omitempty"`
	ProcessedAt    time.Time `json:"processed_at"`
}
