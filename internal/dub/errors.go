package dub

import "errors"

// Fatal pipeline errors. Per-segment problems degrade to silence and are
// surfaced as Notices; these abort the run.
var (
	// ErrIllFormedSegmentSequence means the segment windows are unordered
	// or overlap. Raised before assembly begins.
	ErrIllFormedSegmentSequence = errors.New("ill-formed segment sequence")

	// ErrClipSynthesisInvalid means TTS produced empty or unreadable audio
	// for a segment. Fatal only under the abort policy.
	ErrClipSynthesisInvalid = errors.New("clip synthesis invalid")

	// ErrTimelineOverrun means assembled audio extends past the video or
	// placements overlap without a matching recorded debt. Always a
	// pipeline defect, never bad input.
	ErrTimelineOverrun = errors.New("timeline overrun")

	// ErrMediaReadFailed wraps ffprobe/decoder failures on the source file.
	ErrMediaReadFailed = errors.New("media read failed")

	// ErrRemuxFailed wraps container write failures and the final
	// length-mismatch check.
	ErrRemuxFailed = errors.New("remux failed")
)

// Notice kinds.
const (
	NoticeClipInvalid      = "ClipSynthesisInvalid"
	NoticeSynthesisTimeout = "SegmentSynthesisTimeout"
	NoticeDebtUnretired    = "DriftDebtUnretired"
	NoticeResidualDrift    = "ResidualDriftWarning"
)

// Notice is a non-fatal issue collected during a run and returned with the
// result instead of being logged and dropped.
type Notice struct {
	Kind         string `json:"kind"`
	SegmentIndex int    `json:"segment_index"` // -1 for run-wide notices
	AmountMS     int64  `json:"amount_ms,omitempty"`
	Detail       string `json:"detail,omitempty"`
}
