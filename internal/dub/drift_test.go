package dub

import (
	"errors"
	"testing"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

func TestDriftDebtAbsorbedByGap(t *testing.T) {
	// Segment 0 overruns by 700ms into the 500ms gap before segment 1,
	// pushing it 200ms late. Segment 2 sits behind a large gap and starts
	// on time, which retires the debt.
	segments := []types.Segment{
		makeSegment(0, 0, 1000),
		makeSegment(1, 1500, 2500),
		makeSegment(2, 4000, 5000),
	}
	clips := []FittedClip{
		overrunClip(segments[0], 1700, 10),
		exactClip(segments[1], 20),
		exactClip(segments[2], 30),
	}

	tl, debts, err := NewTrackAssembler(testConfig()).Assemble(6000, segments, clips)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(debts) != 1 || debts[0].SegmentIndex != 1 || debts[0].MS != 200 {
		t.Fatalf("expected 200ms debt at segment 1, got %v", debts)
	}
	if got := tl.Clips[1].PlacedStartMS; got != 1700 {
		t.Errorf("segment 1 placed at %dms, want 1700", got)
	}
	if got := tl.Clips[2].PlacedStartMS; got != 4000 {
		t.Errorf("segment 2 placed at %dms, want nominal 4000 after debt retired", got)
	}

	notices := NewDriftCorrector(testConfig()).Correct(tl, debts)
	if len(notices) != 0 {
		t.Errorf("expected no notices for fully absorbed debt, got %v", notices)
	}

	pcm, err := tl.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(pcm) != msToSamples(6000, testRate) {
		t.Errorf("track is %d samples, want %d", len(pcm), msToSamples(6000, testRate))
	}
}

func TestDriftUnretiredDebtIsReported(t *testing.T) {
	// Back-to-back windows leave no gaps, so a push at segment 1 carries
	// through segment 2 and past the lookahead horizon: one notice per
	// debt, none of it residual since the video is long enough.
	cfg := testConfig()
	cfg.DriftLookahead = 2

	segments := []types.Segment{
		makeSegment(0, 0, 1000),
		makeSegment(1, 1000, 2000),
		makeSegment(2, 2000, 3000),
	}
	clips := []FittedClip{
		overrunClip(segments[0], 1300, 10),
		exactClip(segments[1], 20),
		exactClip(segments[2], 30),
	}

	tl, debts, err := NewTrackAssembler(cfg).Assemble(3300, segments, clips)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}
	if len(debts) != 2 {
		t.Fatalf("expected debts at segments 1 and 2, got %v", debts)
	}

	notices := NewDriftCorrector(cfg).Correct(tl, debts)
	if len(notices) != 2 {
		t.Fatalf("expected one notice per unretired debt, got %v", notices)
	}
	for i, n := range notices {
		if n.Kind != NoticeDebtUnretired {
			t.Errorf("notice %d kind = %q, want %q", i, n.Kind, NoticeDebtUnretired)
		}
		if n.SegmentIndex != i+1 {
			t.Errorf("notice %d for segment %d, want %d", i, n.SegmentIndex, i+1)
		}
		if n.AmountMS != 300 {
			t.Errorf("notice %d amount = %dms, want 300", i, n.AmountMS)
		}
	}

	pcm, err := tl.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(pcm) != msToSamples(3300, testRate) {
		t.Errorf("track is %d samples, want %d", len(pcm), msToSamples(3300, testRate))
	}
}

func TestDriftResidualAtTrackEnd(t *testing.T) {
	// The last clip overruns past the end of the video with nowhere left
	// to repay: a residual drift warning, and Render trims at the boundary.
	segments := []types.Segment{makeSegment(0, 0, 1000)}
	clips := []FittedClip{overrunClip(segments[0], 2000, 10)}

	tl, debts, err := NewTrackAssembler(testConfig()).Assemble(1500, segments, clips)
	if err != nil {
		t.Fatalf("Assemble failed: %v", err)
	}

	notices := NewDriftCorrector(testConfig()).Correct(tl, debts)
	if len(notices) != 1 {
		t.Fatalf("expected one residual drift notice, got %v", notices)
	}
	n := notices[0]
	if n.Kind != NoticeResidualDrift {
		t.Errorf("notice kind = %q, want %q", n.Kind, NoticeResidualDrift)
	}
	if n.SegmentIndex != -1 {
		t.Errorf("residual notice should be run-wide (index -1), got %d", n.SegmentIndex)
	}
	if n.AmountMS != 500 {
		t.Errorf("residual = %dms, want 500", n.AmountMS)
	}

	pcm, err := tl.Render()
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if len(pcm) != msToSamples(1500, testRate) {
		t.Errorf("track is %d samples, want trimmed to %d", len(pcm), msToSamples(1500, testRate))
	}
	if pcm[len(pcm)-1] != 10 {
		t.Errorf("expected clip audio up to the trim point")
	}
}

func TestRenderRejectsUnaccountedOverhang(t *testing.T) {
	// Overhang without the drift pass having recorded it is a pipeline
	// defect, not something to paper over.
	tl := &Timeline{
		SampleRate: testRate,
		DurationMS: 1000,
		Clips: []FittedClip{{
			SegmentIndex:  0,
			Audio:         constAudio(msToSamples(2000, testRate), 10),
			PlacedStartMS: 0,
			PlacedEndMS:   2000,
		}},
	}
	if _, err := tl.Render(); !errors.Is(err, ErrTimelineOverrun) {
		t.Fatalf("expected ErrTimelineOverrun, got %v", err)
	}
}

func TestRenderRejectsOverlappingPlacements(t *testing.T) {
	seg0 := makeSegment(0, 0, 1000)
	seg1 := makeSegment(1, 500, 1500)
	tl := &Timeline{
		SampleRate: testRate,
		DurationMS: 2000,
		Clips:      []FittedClip{exactClip(seg0, 10), exactClip(seg1, 20)},
	}
	if _, err := tl.Render(); !errors.Is(err, ErrTimelineOverrun) {
		t.Fatalf("expected ErrTimelineOverrun, got %v", err)
	}
}
