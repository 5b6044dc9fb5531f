package dub

import "fmt"

// Timeline is the single output audio track: fitted clips laid over silence
// spanning exactly the source video's duration. It is owned by the
// assembler during layout and read-only afterwards.
type Timeline struct {
	SampleRate int
	DurationMS int64
	Clips      []FittedClip // segment order, non-overlapping placements

	// residualMS is end-of-track overhang acknowledged by the drift pass.
	// Render may trim exactly this much; anything beyond is an overrun.
	residualMS int64
}

// Render materializes the track as mono s16 PCM of exactly the video's
// length. Unfilled ranges are silence. Overlapping placements or overhang
// the drift pass did not account for fail with ErrTimelineOverrun.
func (tl *Timeline) Render() ([]int16, error) {
	total := msToSamples(tl.DurationMS, tl.SampleRate)
	out := make([]int16, total)

	var prevEnd int64
	for _, clip := range tl.Clips {
		if clip.PlacedStartMS < prevEnd {
			return nil, fmt.Errorf("%w: segment %d placed at %dms overlaps previous end %dms",
				ErrTimelineOverrun, clip.SegmentIndex, clip.PlacedStartMS, prevEnd)
		}
		start := msToSamples(clip.PlacedStartMS, tl.SampleRate)
		end := start + len(clip.Audio)
		if end > total {
			overMS := samplesToMS(end-total, tl.SampleRate)
			if overMS > tl.residualMS+1 {
				return nil, fmt.Errorf("%w: segment %d extends %dms past the video with only %dms of recorded residual debt",
					ErrTimelineOverrun, clip.SegmentIndex, overMS, tl.residualMS)
			}
			end = total
		}
		copy(out[start:end], clip.Audio)
		prevEnd = clip.PlacedEndMS
	}

	return out, nil
}
