package subtitles

import (
	"fmt"
	"os"
	"strings"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// Text selectors for WriteSRT.
const (
	SourceText = "source"
	TargetText = "target"
)

// WriteSRT writes the segments as an SRT subtitle file using either the
// source or the translated text.
func WriteSRT(path string, segments []types.Segment, which string) error {
	if len(segments) == 0 {
		return fmt.Errorf("no segments for subtitle generation")
	}

	var sb strings.Builder
	for i, seg := range segments {
		text := seg.SourceText
		if which == TargetText {
			text = seg.TargetText
		}
		fmt.Fprintf(&sb, "%d\n%s --> %s\n%s\n\n",
			i+1, formatTimestamp(seg.StartMS), formatTimestamp(seg.EndMS), text)
	}

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("failed to write subtitles: %v", err)
	}
	return nil
}

// formatTimestamp renders milliseconds as the SRT HH:MM:SS,mmm form.
func formatTimestamp(ms int64) string {
	h := ms / 3600000
	m := (ms % 3600000) / 60000
	s := (ms % 60000) / 1000
	frac := ms % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, frac)
}
