package dub

import "fmt"

// DriftCorrector runs after assembly and settles the overrun debts the
// assembler recorded. Placement already absorbs each debt into the
// earliest following gaps, since a clip never starts before its own
// nominal window. That leaves the corrector two jobs: account for how
// quickly each debt was retired, and surface whatever lateness survives
// to the end of the track.
type DriftCorrector struct {
	cfg Config
}

// NewDriftCorrector creates a corrector with the given tuning.
func NewDriftCorrector(cfg Config) *DriftCorrector {
	return &DriftCorrector{cfg: cfg.withDefaults()}
}

// Correct walks the debts in segment order, reports each one that was not
// retired within the lookahead window, and marks the timeline with any
// residual end-of-track overhang so Render can trim exactly that much.
// Residual drift is a warning, not an error: the output remains a valid
// full-length track, just with the tail of the last clip cut at the video
// boundary.
func (dc *DriftCorrector) Correct(tl *Timeline, debts []Debt) []Notice {
	indebted := make(map[int]bool, len(debts))
	for _, d := range debts {
		indebted[d.SegmentIndex] = true
	}
	lastIndex := -1
	if n := len(tl.Clips); n > 0 {
		lastIndex = tl.Clips[n-1].SegmentIndex
	}

	var notices []Notice
	for _, d := range debts {
		if !dc.retiredWithinLookahead(d, indebted, lastIndex) {
			// Every gap up to the lookahead horizon is already consumed;
			// the remainder rides forward and is measured at track end.
			notices = append(notices, Notice{
				Kind:         NoticeDebtUnretired,
				SegmentIndex: d.SegmentIndex,
				AmountMS:     d.MS,
				Detail:       fmt.Sprintf("%dms push not repaid within %d segments", d.MS, dc.cfg.DriftLookahead),
			})
		}
	}

	if n := len(tl.Clips); n > 0 {
		if over := tl.Clips[n-1].PlacedEndMS - tl.DurationMS; over > 0 {
			tl.residualMS = over
			notices = append(notices, Notice{
				Kind:         NoticeResidualDrift,
				SegmentIndex: -1,
				AmountMS:     over,
				Detail:       fmt.Sprintf("%dms of overrun debt unrepaid at end of track", over),
			})
		}
	}
	return notices
}

// retiredWithinLookahead reports whether some segment within the lookahead
// window after the debt was placed at its nominal start, meaning the gaps
// in between fully repaid the debt.
func (dc *DriftCorrector) retiredWithinLookahead(d Debt, indebted map[int]bool, lastIndex int) bool {
	for j := d.SegmentIndex + 1; j <= d.SegmentIndex+dc.cfg.DriftLookahead; j++ {
		if j > lastIndex {
			// Debt ran off the end of the segment list; whether it is
			// repaid now depends only on room before the video ends.
			return false
		}
		if !indebted[j] {
			return true
		}
	}
	return false
}
