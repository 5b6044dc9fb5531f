package cleanup

import (
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"time"
)

// Scheduler periodically sweeps stale intermediates (extracted audio,
// per-segment TTS clips, downloaded videos) out of the temp directory.
type Scheduler struct {
	tempDir  string
	interval time.Duration
	maxAge   time.Duration
	stopChan chan struct{}
}

// NewScheduler creates a new cleanup scheduler.
func NewScheduler(tempDir string, intervalMinutes, maxAgeHours int) *Scheduler {
	return &Scheduler{
		tempDir:  tempDir,
		interval: time.Duration(intervalMinutes) * time.Minute,
		maxAge:   time.Duration(maxAgeHours) * time.Hour,
		stopChan: make(chan struct{}),
	}
}

// Start runs an initial sweep and then sweeps on the configured interval.
func (s *Scheduler) Start() {
	log.Println("Running initial temp file cleanup...")
	s.sweep()

	ticker := time.NewTicker(s.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.sweep()
			case <-s.stopChan:
				return
			}
		}
	}()

	log.Printf("Cleanup scheduler started (interval: %s, max age: %s)", s.interval, s.maxAge)
}

// Stop stops the cleanup scheduler.
func (s *Scheduler) Stop() {
	close(s.stopChan)
	log.Println("Cleanup scheduler stopped")
}

// sweep removes temp files older than maxAge. Files belonging to running
// jobs are younger than any sane maxAge, so they are never touched.
func (s *Scheduler) sweep() {
	cutoff := time.Now().Add(-s.maxAge)
	var deleted int
	var freed int64

	err := filepath.WalkDir(s.tempDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return nil
		}
		if info.ModTime().After(cutoff) {
			return nil
		}
		if err := os.Remove(path); err != nil {
			log.Printf("Failed to delete old file %s: %v", path, err)
			return nil
		}
		deleted++
		freed += info.Size()
		return nil
	})
	if err != nil {
		log.Printf("Error during cleanup: %v", err)
	}

	if deleted > 0 {
		log.Printf("Cleanup complete: %d files deleted, %.2fMB freed",
			deleted, float64(freed)/(1024*1024))
	}
}

// EnsureTempDirExists creates the temp directory if it doesn't exist.
func EnsureTempDirExists(tempDir string) error {
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return err
	}
	log.Printf("Temp directory ready: %s", tempDir)
	return nil
}
