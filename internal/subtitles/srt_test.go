package subtitles

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

func TestFormatTimestamp(t *testing.T) {
	tests := []struct {
		ms   int64
		want string
	}{
		{0, "00:00:00,000"},
		{7, "00:00:00,007"},
		{1500, "00:00:01,500"},
		{61000, "00:01:01,000"},
		{3661234, "01:01:01,234"},
	}
	for _, tt := range tests {
		if got := formatTimestamp(tt.ms); got != tt.want {
			t.Errorf("formatTimestamp(%d) = %q, want %q", tt.ms, got, tt.want)
		}
	}
}

func TestWriteSRT(t *testing.T) {
	segments := []types.Segment{
		{Index: 0, StartMS: 0, EndMS: 1500, SourceText: "hello world", TargetText: "namaste duniya"},
		{Index: 1, StartMS: 2000, EndMS: 3250, SourceText: "goodbye", TargetText: "alvida"},
	}

	path := filepath.Join(t.TempDir(), "out.srt")
	if err := WriteSRT(path, segments, TargetText); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}

	want := "1\n00:00:00,000 --> 00:00:01,500\nnamaste duniya\n\n" +
		"2\n00:00:02,000 --> 00:00:03,250\nalvida\n\n"
	if string(data) != want {
		t.Errorf("SRT output:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteSRTSourceText(t *testing.T) {
	segments := []types.Segment{
		{Index: 0, StartMS: 0, EndMS: 1000, SourceText: "hello", TargetText: "namaste"},
	}

	path := filepath.Join(t.TempDir(), "out.srt")
	if err := WriteSRT(path, segments, SourceText); err != nil {
		t.Fatalf("WriteSRT failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading output: %v", err)
	}
	want := "1\n00:00:00,000 --> 00:00:01,000\nhello\n\n"
	if string(data) != want {
		t.Errorf("SRT output:\n%s\nwant:\n%s", data, want)
	}
}

func TestWriteSRTRejectsEmptySegments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.srt")
	if err := WriteSRT(path, nil, TargetText); err == nil {
		t.Fatal("expected error for empty segment list")
	}
}
