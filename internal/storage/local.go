package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// LocalStorage archives finished dubs on the local filesystem.
type LocalStorage struct {
	outputDir string
}

// NewLocalStorage creates a new local storage handler.
func NewLocalStorage(outputDir string) *LocalStorage {
	return &LocalStorage{outputDir: outputDir}
}

// SaveOutputs moves the dubbed video and both subtitle files into a dated
// directory alongside a metadata JSON, and rewrites the paths in result to
// their final locations.
func (ls *LocalStorage) SaveOutputs(requestName string, result *types.DubResult) error {
	// Dated directory structure: outputs/2025/01/23/
	now := time.Now()
	dateDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()))

	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return fmt.Errorf("failed to create date directory: %v", err)
	}

	// Filenames like 20250123_143022_podcast_episode_hi.mp4
	timestamp := now.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s_%s", timestamp, sanitizeFilename(requestName), result.TargetLanguage)

	videoPath := filepath.Join(dateDir, base+filepath.Ext(result.LocalPath))
	if err := moveFile(result.LocalPath, videoPath); err != nil {
		return fmt.Errorf("failed to store dubbed video: %v", err)
	}
	result.LocalPath = videoPath

	if result.SourceSRTPath != "" {
		dst := filepath.Join(dateDir, base+"_"+result.SourceLanguage+".srt")
		if err := moveFile(result.SourceSRTPath, dst); err != nil {
			return fmt.Errorf("failed to store source subtitles: %v", err)
		}
		result.SourceSRTPath = dst
	}
	if result.TargetSRTPath != "" {
		dst := filepath.Join(dateDir, base+"_"+result.TargetLanguage+".srt")
		if err := moveFile(result.TargetSRTPath, dst); err != nil {
			return fmt.Errorf("failed to store target subtitles: %v", err)
		}
		result.TargetSRTPath = dst
	}

	metaJSON, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal metadata: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dateDir, base+"_meta.json"), metaJSON, 0644); err != nil {
		return fmt.Errorf("failed to save metadata: %v", err)
	}

	return nil
}

// moveFile renames when possible and falls back to copy+remove across
// filesystems (temp and output dirs may be on different mounts).
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// sanitizeFilename removes invalid characters from a filename.
func sanitizeFilename(name string) string {
	result := filepath.Base(name)
	for _, c := range []string{"\\", ":", "*", "?", "\"", "<", ">", "|"} {
		result = strings.ReplaceAll(result, c, "_")
	}
	if len(result) > 100 {
		result = result[:100]
	}
	return result
}
