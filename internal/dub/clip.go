package dub

import "github.com/codebuildervaibhav/video-dubbing/internal/types"

// SynthesizedClip is the raw TTS output for one segment: mono s16 PCM at
// the pipeline sample rate. It is consumed once by the fitter and then
// discarded.
type SynthesizedClip struct {
	SegmentIndex  int
	RawAudio      []int16
	RawDurationMS int64
}

// NewSynthesizedClip measures the raw audio and records its duration.
func NewSynthesizedClip(segmentIndex int, audio []int16, sampleRate int) SynthesizedClip {
	return SynthesizedClip{
		SegmentIndex:  segmentIndex,
		RawAudio:      audio,
		RawDurationMS: samplesToMS(len(audio), sampleRate),
	}
}

// FittedClip is a clip adjusted to occupy its target window. The placed
// span always equals the audio length within one sample quantum; on a
// controlled overrun the span extends past the segment's nominal end.
type FittedClip struct {
	SegmentIndex  int
	PlacedStartMS int64
	PlacedEndMS   int64
	Audio         []int16
}

// DurationMS returns the span the clip actually occupies.
func (fc FittedClip) DurationMS() int64 {
	return fc.PlacedEndMS - fc.PlacedStartMS
}

// SilentClip builds a fitted clip of pure silence spanning exactly the
// segment's nominal window. Used when synthesis times out or comes back
// invalid under the silence policy.
func SilentClip(seg types.Segment, sampleRate int) FittedClip {
	return FittedClip{
		SegmentIndex:  seg.Index,
		PlacedStartMS: seg.StartMS,
		PlacedEndMS:   seg.EndMS,
		Audio:         make([]int16, msToSamples(seg.WindowMS(), sampleRate)),
	}
}

// Debt records a timing overrun owed by one segment, to be repaid from
// silence gaps later on the timeline. Debts are passed by value between the
// assembler and the drift corrector.
type Debt struct {
	SegmentIndex int
	MS           int64
}

func msToSamples(ms int64, sampleRate int) int {
	return int(ms * int64(sampleRate) / 1000)
}

func samplesToMS(n, sampleRate int) int64 {
	return (int64(n)*1000 + int64(sampleRate)/2) / int64(sampleRate)
}
