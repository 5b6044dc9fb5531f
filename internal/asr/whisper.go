package asr

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// WhisperTranscriber wraps Python's OpenAI Whisper. Whisper holds the model
// in memory per invocation, so transcriptions are serialized.
type WhisperTranscriber struct {
	modelName string
	tempDir   string
	mu        sync.Mutex
}

// Transcript is the ordered, millisecond-timed segment sequence for one
// audio file. TargetText stays empty until translation fills it in.
type Transcript struct {
	Language string
	Segments []types.Segment
}

// NewWhisperTranscriber creates a transcriber for the given model size
// (tiny, base, small, medium, large).
func NewWhisperTranscriber(modelName, tempDir string) *WhisperTranscriber {
	if modelName == "" {
		modelName = "small"
	}
	log.Printf("Initializing Python Whisper with model: %s", modelName)
	return &WhisperTranscriber{modelName: modelName, tempDir: tempDir}
}

// Transcribe runs Whisper on an audio file and returns timestamped
// segments. Windows are clamped so consecutive segments never overlap, the
// ordering guarantee the assembler relies on.
func (wt *WhisperTranscriber) Transcribe(audioPath string) (*Transcript, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	outDir := filepath.Join(wt.tempDir, "whisper_output")
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %v", err)
	}
	defer os.RemoveAll(outDir)

	absAudioPath, err := filepath.Abs(audioPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %v", err)
	}

	cmd := exec.Command("python", "-m", "whisper",
		absAudioPath,
		"--model", wt.modelName,
		"--output_dir", outDir,
		"--output_format", "json",
		"--fp16", "False",
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %v\nOutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	jsonData, err := os.ReadFile(filepath.Join(outDir, baseName+".json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %v", err)
	}

	var raw whisperOutput
	if err := json.Unmarshal(jsonData, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %v", err)
	}

	var segments []types.Segment
	var prevEnd int64
	for _, seg := range raw.Segments {
		start := int64(math.Round(seg.Start * 1000))
		end := int64(math.Round(seg.End * 1000))
		if start < prevEnd {
			start = prevEnd
		}
		if end <= start {
			continue
		}
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, types.Segment{
			Index:      len(segments),
			StartMS:    start,
			EndMS:      end,
			SourceText: text,
		})
		prevEnd = end
	}

	log.Printf("Transcription completed: %d segments, language %s", len(segments), raw.Language)
	return &Transcript{Language: raw.Language, Segments: segments}, nil
}

// whisperOutput matches Python Whisper's JSON output format.
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
