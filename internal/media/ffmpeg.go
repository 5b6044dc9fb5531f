package media

import (
	"bytes"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// FFmpeg shells out to ffmpeg/ffprobe for all container work. The video
// stream is never re-encoded.
type FFmpeg struct {
	tempDir string
}

// New creates an FFmpeg backend writing intermediates under tempDir.
func New(tempDir string) *FFmpeg {
	return &FFmpeg{tempDir: tempDir}
}

// ProbeDurationMS returns the container duration in milliseconds.
func (f *FFmpeg) ProbeDurationMS(path string) (int64, error) {
	cmd := exec.Command("ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe failed for %s: %v", path, err)
	}
	secs, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe returned unparseable duration %q: %v", strings.TrimSpace(string(out)), err)
	}
	return int64(math.Round(secs * 1000)), nil
}

// ExtractAudio pulls the video's audio track as 16kHz mono WAV, the format
// Whisper expects. Returns the path of the extracted file.
func (f *FFmpeg) ExtractAudio(videoPath string) (string, error) {
	outputPath := filepath.Join(f.tempDir, fmt.Sprintf("audio_%s.wav", uuid.New().String()))

	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-vn",
		"-ar", "16000",
		"-ac", "1",
		"-c:a", "pcm_s16le",
		"-y",
		outputPath,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg audio extraction failed: %v\nOutput: %s", err, string(output))
	}
	return outputPath, nil
}

// DecodePCM decodes any audio file to mono s16 PCM at the given rate.
func (f *FFmpeg) DecodePCM(path string, sampleRate int) ([]int16, error) {
	cmd := exec.Command("ffmpeg",
		"-i", path,
		"-f", "s16le",
		"-acodec", "pcm_s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"pipe:1",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg decode failed for %s: %v\nOutput: %s", path, err, stderr.String())
	}
	return BytesToPCM(stdout.Bytes()), nil
}

// Remux writes outputPath with the source's video stream copied bit-for-bit
// and pcm (fed over stdin as raw s16le) encoded as the sole audio stream.
func (f *FFmpeg) Remux(videoPath string, pcm []int16, sampleRate int, outputPath string) error {
	cmd := exec.Command("ffmpeg",
		"-i", videoPath,
		"-f", "s16le",
		"-ar", strconv.Itoa(sampleRate),
		"-ac", "1",
		"-i", "pipe:0",
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-y",
		outputPath,
	)
	cmd.Stdin = bytes.NewReader(PCMToBytes(pcm))
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg remux failed: %v\nOutput: %s", err, string(output))
	}
	return nil
}

// ValidateVideoFormat checks if the container format is supported.
func ValidateVideoFormat(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	supportedFormats := []string{".mp4", ".mkv", ".avi", ".mov", ".webm"}

	for _, format := range supportedFormats {
		if ext == format {
			return true
		}
	}
	return false
}

// BytesToPCM reinterprets little-endian s16le bytes as samples.
func BytesToPCM(b []byte) []int16 {
	pcm := make([]int16, len(b)/2)
	for i := range pcm {
		pcm[i] = int16(uint16(b[2*i]) | uint16(b[2*i+1])<<8)
	}
	return pcm
}

// PCMToBytes serializes samples as little-endian s16le.
func PCMToBytes(pcm []int16) []byte {
	b := make([]byte, 2*len(pcm))
	for i, s := range pcm {
		b[2*i] = byte(uint16(s))
		b[2*i+1] = byte(uint16(s) >> 8)
	}
	return b
}
