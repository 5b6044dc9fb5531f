package dub

import (
	"fmt"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// TrackAssembler lays fitted clips onto a single timeline in strict
// segment order. It is the only writer of the timeline; gaps between
// windows stay silent and overruns are recorded as debts rather than
// truncated, because cutting speech mid-word is worse than a timing slip.
type TrackAssembler struct {
	cfg Config
}

// NewTrackAssembler creates an assembler with the given tuning.
func NewTrackAssembler(cfg Config) *TrackAssembler {
	return &TrackAssembler{cfg: cfg.withDefaults()}
}

// ValidateSegments rejects sequences whose windows are empty, unordered or
// overlapping. Upstream transcription guarantees ordering, so a violation
// here means the input is unusable, not that one segment is bad.
func ValidateSegments(segments []types.Segment) error {
	var prevEnd int64
	for i, seg := range segments {
		if seg.Index != i {
			return fmt.Errorf("%w: segment at position %d has index %d", ErrIllFormedSegmentSequence, i, seg.Index)
		}
		if seg.StartMS >= seg.EndMS {
			return fmt.Errorf("%w: segment %d window [%d,%d) is empty", ErrIllFormedSegmentSequence, seg.Index, seg.StartMS, seg.EndMS)
		}
		if seg.StartMS < prevEnd {
			return fmt.Errorf("%w: segment %d starts at %dms inside previous window ending at %dms",
				ErrIllFormedSegmentSequence, seg.Index, seg.StartMS, prevEnd)
		}
		prevEnd = seg.EndMS
	}
	return nil
}

// Assemble places one fitted clip per segment, in index order. Each clip
// starts at its nominal window unless the previous clip overran into it,
// in which case it starts at the previous clip's actual end and the push
// amount is recorded as a debt:
//
//	placedStart = max(nominalStart, cursor)
//
// The returned timeline spans exactly videoDurationMS; everything not
// covered by a clip renders as silence.
func (a *TrackAssembler) Assemble(videoDurationMS int64, segments []types.Segment, clips []FittedClip) (*Timeline, []Debt, error) {
	if len(clips) != len(segments) {
		return nil, nil, fmt.Errorf("%w: %d segments but %d clips", ErrIllFormedSegmentSequence, len(segments), len(clips))
	}

	var cursor int64
	var debts []Debt
	placed := make([]FittedClip, 0, len(clips))
	for i, clip := range clips {
		seg := segments[i]
		if clip.SegmentIndex != seg.Index {
			return nil, nil, fmt.Errorf("%w: clip for segment %d arrived in position %d", ErrIllFormedSegmentSequence, clip.SegmentIndex, i)
		}

		start := seg.StartMS
		if cursor > start {
			debts = append(debts, Debt{SegmentIndex: seg.Index, MS: cursor - start})
			start = cursor
		}

		dur := clip.DurationMS()
		clip.PlacedStartMS = start
		clip.PlacedEndMS = start + dur
		placed = append(placed, clip)
		cursor = clip.PlacedEndMS
	}

	tl := &Timeline{
		SampleRate: a.cfg.SampleRate,
		DurationMS: videoDurationMS,
		Clips:      placed,
	}
	return tl, debts, nil
}
