package dub

import "time"

// Policies for segments whose synthesis came back empty or unreadable.
const (
	InvalidClipSilence = "silence"
	InvalidClipAbort   = "abort"
)

// Config tunes fitting, assembly and drift correction. Zero values fall
// back to the defaults below.
type Config struct {
	// SampleRate of the assembled track, mono s16. Must divide evenly into
	// 1000 so whole-millisecond windows map to whole sample counts.
	SampleRate int

	// ToleranceBand is the fraction around the target window inside which a
	// clip is only padded or trimmed, never time-scaled.
	ToleranceBand float64

	// MaxCompressionRatio bounds speed-up of over-long clips. Past the
	// bound the clip overruns its window and the excess becomes a debt.
	MaxCompressionRatio float64

	// MaxStretchRatio bounds slow-down of over-short clips. Past the bound
	// the remainder of the window is padded with silence.
	MaxStretchRatio float64

	// PerSegmentTimeout is how long the assembler waits for one segment's
	// synthesis before substituting silence.
	PerSegmentTimeout time.Duration

	// DriftLookahead is how many segments ahead of a debt the corrector
	// inspects before declaring the debt unretired.
	DriftLookahead int

	// TTSWorkers bounds concurrent synthesis calls.
	TTSWorkers int

	// OnInvalidClip is InvalidClipSilence or InvalidClipAbort.
	OnInvalidClip string
}

// DefaultConfig returns the tuning used when the config file leaves the
// dubbing section empty.
func DefaultConfig() Config {
	return Config{
		SampleRate:          24000,
		ToleranceBand:       0.05,
		MaxCompressionRatio: 1.5,
		MaxStretchRatio:     1.3,
		PerSegmentTimeout:   120 * time.Second,
		DriftLookahead:      8,
		TTSWorkers:          2,
		OnInvalidClip:       InvalidClipSilence,
	}
}

func (c Config) withDefaults() Config {
	def := DefaultConfig()
	if c.SampleRate <= 0 {
		c.SampleRate = def.SampleRate
	}
	if c.ToleranceBand <= 0 {
		c.ToleranceBand = def.ToleranceBand
	}
	if c.MaxCompressionRatio <= 1 {
		c.MaxCompressionRatio = def.MaxCompressionRatio
	}
	if c.MaxStretchRatio <= 1 {
		c.MaxStretchRatio = def.MaxStretchRatio
	}
	if c.PerSegmentTimeout <= 0 {
		c.PerSegmentTimeout = def.PerSegmentTimeout
	}
	if c.DriftLookahead <= 0 {
		c.DriftLookahead = def.DriftLookahead
	}
	if c.TTSWorkers <= 0 {
		c.TTSWorkers = def.TTSWorkers
	}
	if c.OnInvalidClip == "" {
		c.OnInvalidClip = def.OnInvalidClip
	}
	return c
}
