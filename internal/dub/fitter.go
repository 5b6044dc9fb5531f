package dub

import (
	"fmt"
	"math"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// ClipFitter reconciles a synthesized clip's actual duration against its
// segment's window. Fitters are stateless and safe to run concurrently
// across segments.
type ClipFitter struct {
	cfg Config
}

// NewClipFitter creates a fitter with the given tuning.
func NewClipFitter(cfg Config) *ClipFitter {
	return &ClipFitter{cfg: cfg.withDefaults()}
}

// Fit adjusts the clip to its target window:
//   - within the tolerance band: pad or trim trailing silence to the exact
//     window, preserving prosody;
//   - too long: time-compress up to the configured bound, then allow a
//     controlled overrun past the nominal end;
//   - too short: time-stretch up to the configured bound, then pad the
//     remainder with silence.
//
// Empty raw audio fails with ErrClipSynthesisInvalid; the caller applies
// the configured substitution policy.
func (f *ClipFitter) Fit(seg types.Segment, clip SynthesizedClip) (FittedClip, error) {
	raw := clip.RawAudio
	if len(raw) == 0 {
		return FittedClip{}, fmt.Errorf("%w: segment %d synthesized no audio", ErrClipSynthesisInvalid, seg.Index)
	}

	window := msToSamples(seg.WindowMS(), f.cfg.SampleRate)
	if window <= 0 {
		return FittedClip{}, fmt.Errorf("%w: segment %d has empty window", ErrIllFormedSegmentSequence, seg.Index)
	}

	ratio := float64(len(raw)) / float64(window)
	var audio []int16
	switch {
	case ratio >= 1-f.cfg.ToleranceBand && ratio <= 1+f.cfg.ToleranceBand:
		audio = padOrTrim(raw, window)

	case ratio > 1+f.cfg.ToleranceBand:
		if ratio <= f.cfg.MaxCompressionRatio {
			audio = timeScale(raw, window)
		} else {
			// Compress to the bound; the remainder overruns the window and
			// becomes a debt for the drift pass to reclaim.
			audio = timeScale(raw, int(math.Round(float64(len(raw))/f.cfg.MaxCompressionRatio)))
		}

	default:
		stretch := 1 / ratio
		if stretch <= f.cfg.MaxStretchRatio {
			audio = timeScale(raw, window)
		} else {
			stretched := timeScale(raw, int(math.Round(float64(len(raw))*f.cfg.MaxStretchRatio)))
			audio = padOrTrim(stretched, window)
		}
	}

	return FittedClip{
		SegmentIndex:  seg.Index,
		PlacedStartMS: seg.StartMS,
		PlacedEndMS:   seg.StartMS + samplesToMS(len(audio), f.cfg.SampleRate),
		Audio:         audio,
	}, nil
}

// padOrTrim brings audio to exactly target samples: trailing silence when
// short, trailing trim when long.
func padOrTrim(audio []int16, target int) []int16 {
	out := make([]int16, target)
	copy(out, audio)
	return out
}

// timeScale resamples src to exactly outLen samples by linear
// interpolation. The contract only fixes the duration relationship; a
// dedicated phase vocoder could replace this without touching callers.
func timeScale(src []int16, outLen int) []int16 {
	if outLen <= 0 {
		return nil
	}
	out := make([]int16, outLen)
	if len(src) == 1 || outLen == 1 {
		for i := range out {
			out[i] = src[0]
		}
		return out
	}
	step := float64(len(src)-1) / float64(outLen-1)
	for i := range out {
		pos := float64(i) * step
		j := int(pos)
		if j >= len(src)-1 {
			out[i] = src[len(src)-1]
			continue
		}
		frac := pos - float64(j)
		out[i] = int16(float64(src[j])*(1-frac) + float64(src[j+1])*frac)
	}
	return out
}
