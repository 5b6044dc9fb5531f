package dub

import (
	"errors"
	"testing"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// 24kHz mono: 24 samples per millisecond, so whole-ms windows are exact.
const testRate = 24000

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.SampleRate = testRate
	return cfg
}

func makeSegment(index int, startMS, endMS int64) types.Segment {
	return types.Segment{Index: index, StartMS: startMS, EndMS: endMS, TargetText: "text"}
}

// constAudio returns n samples of a constant non-zero value so padding and
// trimming are distinguishable from speech.
func constAudio(n int, v int16) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestFitWithinTolerancePads(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000) // 24000-sample window

	clip := NewSynthesizedClip(0, constAudio(23500, 100), testRate) // ratio 0.979
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}

	if len(fc.Audio) != 24000 {
		t.Errorf("expected 24000 samples, got %d", len(fc.Audio))
	}
	if fc.DurationMS() != seg.WindowMS() {
		t.Errorf("placed span %dms != window %dms", fc.DurationMS(), seg.WindowMS())
	}
	// Trailing-preferred padding: speech untouched, silence appended.
	if fc.Audio[23499] != 100 {
		t.Errorf("speech was modified during padding")
	}
	if fc.Audio[23999] != 0 {
		t.Errorf("expected trailing silence, got %d", fc.Audio[23999])
	}
}

func TestFitWithinToleranceTrims(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000)

	clip := NewSynthesizedClip(0, constAudio(24500, 100), testRate) // ratio 1.021
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(fc.Audio) != 24000 {
		t.Errorf("expected trim to 24000 samples, got %d", len(fc.Audio))
	}
}

func TestFitCompressesWithinBound(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000)

	clip := NewSynthesizedClip(0, constAudio(31200, 100), testRate) // ratio 1.3
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(fc.Audio) != 24000 {
		t.Errorf("expected compression to window, got %d samples", len(fc.Audio))
	}
	if fc.PlacedEndMS != seg.EndMS {
		t.Errorf("compressed clip should end at nominal window end")
	}
}

func TestFitCompressionBoundCausesOverrun(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000)

	// Ratio 2.0, beyond the 1.5 bound: compress to 32000 samples and overrun.
	clip := NewSynthesizedClip(0, constAudio(48000, 100), testRate)
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(fc.Audio) != 32000 {
		t.Errorf("expected compression to the bound (32000 samples), got %d", len(fc.Audio))
	}
	if fc.PlacedEndMS <= seg.EndMS {
		t.Errorf("expected controlled overrun past %dms, ended at %dms", seg.EndMS, fc.PlacedEndMS)
	}
	if got, want := fc.DurationMS(), samplesToMS(32000, testRate); got != want {
		t.Errorf("placed span %dms != audio duration %dms", got, want)
	}
}

func TestFitStretchesWithinBound(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000)

	clip := NewSynthesizedClip(0, constAudio(20000, 100), testRate) // needs 1.2x stretch
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(fc.Audio) != 24000 {
		t.Errorf("expected stretch to window, got %d samples", len(fc.Audio))
	}
	// Stretched audio fills the whole window, no silent tail.
	if fc.Audio[23999] == 0 {
		t.Errorf("expected stretched speech at window end, got silence")
	}
}

func TestFitStretchBoundPadsRemainder(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(0, 0, 1000)

	// Ratio 0.5 needs a 2x stretch, beyond the 1.3 bound: stretch to
	// 15600 samples and pad the remaining window with silence.
	clip := NewSynthesizedClip(0, constAudio(12000, 100), testRate)
	fc, err := fitter.Fit(seg, clip)
	if err != nil {
		t.Fatalf("Fit failed: %v", err)
	}
	if len(fc.Audio) != 24000 {
		t.Errorf("expected full window, got %d samples", len(fc.Audio))
	}
	if fc.Audio[15599] == 0 {
		t.Errorf("expected speech at end of stretched region")
	}
	if fc.Audio[15600] != 0 || fc.Audio[23999] != 0 {
		t.Errorf("expected silence after the stretched region")
	}
}

func TestFitEmptyAudioIsInvalid(t *testing.T) {
	fitter := NewClipFitter(testConfig())
	seg := makeSegment(3, 0, 1000)

	_, err := fitter.Fit(seg, NewSynthesizedClip(3, nil, testRate))
	if !errors.Is(err, ErrClipSynthesisInvalid) {
		t.Fatalf("expected ErrClipSynthesisInvalid, got %v", err)
	}
}

func TestSilentClipSpansWindow(t *testing.T) {
	seg := makeSegment(2, 500, 1700)
	fc := SilentClip(seg, testRate)

	if fc.PlacedStartMS != 500 || fc.PlacedEndMS != 1700 {
		t.Errorf("silent clip placed [%d,%d), want [500,1700)", fc.PlacedStartMS, fc.PlacedEndMS)
	}
	if len(fc.Audio) != msToSamples(1200, testRate) {
		t.Errorf("expected %d samples, got %d", msToSamples(1200, testRate), len(fc.Audio))
	}
	for i, s := range fc.Audio {
		if s != 0 {
			t.Fatalf("sample %d is not silence", i)
		}
	}
}

func TestTimeScalePreservesEndpoints(t *testing.T) {
	src := []int16{0, 100, 200, 300, 400}
	for _, outLen := range []int{3, 5, 9, 17} {
		out := timeScale(src, outLen)
		if len(out) != outLen {
			t.Fatalf("outLen %d: got %d samples", outLen, len(out))
		}
		if out[0] != src[0] || out[len(out)-1] != src[len(src)-1] {
			t.Errorf("outLen %d: endpoints %d,%d want %d,%d",
				outLen, out[0], out[len(out)-1], src[0], src[len(src)-1])
		}
	}
}
