package dub

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/codebuildervaibhav/video-dubbing/internal/types"
)

// TTSClient synthesizes speech for one segment's text as mono s16 PCM at
// the requested sample rate. Implementations make no duration guarantee;
// the fitter reconciles whatever comes back.
type TTSClient interface {
	Synthesize(ctx context.Context, text string, sampleRate int) ([]int16, error)
}

// MediaBackend is the narrow slice of media I/O the pipeline needs.
type MediaBackend interface {
	ProbeDurationMS(path string) (int64, error)
	Remux(videoPath string, pcm []int16, sampleRate int, outputPath string) error
}

// RunResult is what a successful run hands back to the caller: the output
// path plus every non-fatal notice collected along the way.
type RunResult struct {
	OutputPath string
	DurationMS int64
	Notices    []Notice
}

// Pipeline regenerates a video's audio track from translated transcript
// segments and remuxes it against the untouched video stream.
type Pipeline struct {
	cfg   Config
	tts   TTSClient
	media MediaBackend
}

// NewPipeline wires a pipeline with its external collaborators.
func NewPipeline(cfg Config, tts TTSClient, media MediaBackend) *Pipeline {
	return &Pipeline{cfg: cfg.withDefaults(), tts: tts, media: media}
}

// maxRemuxSkewMS is one frame interval at 25fps. The rendered track always
// matches the probed duration by construction, so a larger mismatch here
// means the pipeline itself is broken.
const maxRemuxSkewMS = 40

// Run synthesizes every segment concurrently, assembles the full-length
// track in segment order, settles drift, and remuxes. Per-segment failures
// become silence plus a notice; structural invariant violations abort.
// Cancellation is checked at the assembler's blocking point and discards
// partial output.
func (p *Pipeline) Run(ctx context.Context, videoPath, outputPath string, segments []types.Segment) (*RunResult, error) {
	if err := ValidateSegments(segments); err != nil {
		return nil, err
	}

	durationMS, err := p.media.ProbeDurationMS(videoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMediaReadFailed, err)
	}

	fitted, notices, err := p.synthesizeAll(ctx, segments)
	if err != nil {
		return nil, err
	}

	tl, debts, err := NewTrackAssembler(p.cfg).Assemble(durationMS, segments, fitted)
	if err != nil {
		return nil, err
	}
	notices = append(notices, NewDriftCorrector(p.cfg).Correct(tl, debts)...)

	pcm, err := tl.Render()
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if skew := samplesToMS(len(pcm), p.cfg.SampleRate) - durationMS; skew > maxRemuxSkewMS || skew < -maxRemuxSkewMS {
		return nil, fmt.Errorf("%w: track is %dms, video is %dms", ErrRemuxFailed, samplesToMS(len(pcm), p.cfg.SampleRate), durationMS)
	}
	if err := p.media.Remux(videoPath, pcm, p.cfg.SampleRate, outputPath); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRemuxFailed, err)
	}

	return &RunResult{OutputPath: outputPath, DurationMS: durationMS, Notices: notices}, nil
}

type synthResult struct {
	index int
	clip  FittedClip
	err   error
}

// synthesizeAll fans segments out to the TTS worker pool and consumes the
// results strictly in index order, buffering out-of-order completions.
// Each missing result is waited on for at most PerSegmentTimeout before a
// full-window silence placeholder takes its place.
func (p *Pipeline) synthesizeAll(ctx context.Context, segments []types.Segment) ([]FittedClip, []Notice, error) {
	results := p.startWorkers(ctx, segments)

	fitted := make([]FittedClip, 0, len(segments))
	var notices []Notice
	pending := make(map[int]synthResult, len(segments))
	open := true

	for _, seg := range segments {
		res, ok := pending[seg.Index]
		if ok {
			delete(pending, seg.Index)
		} else if open {
			deadline := time.NewTimer(p.cfg.PerSegmentTimeout)
		wait:
			for {
				select {
				case <-ctx.Done():
					deadline.Stop()
					return nil, nil, ctx.Err()
				case <-deadline.C:
					break wait
				case r, more := <-results:
					if !more {
						open = false
						deadline.Stop()
						break wait
					}
					if r.index == seg.Index {
						res, ok = r, true
						deadline.Stop()
						break wait
					}
					pending[r.index] = r
				}
			}
		}

		switch {
		case !ok:
			log.Printf("Dub: segment %d synthesis timed out, substituting silence", seg.Index)
			notices = append(notices, Notice{
				Kind:         NoticeSynthesisTimeout,
				SegmentIndex: seg.Index,
				AmountMS:     seg.WindowMS(),
				Detail:       "synthesis did not complete in time; window filled with silence",
			})
			fitted = append(fitted, SilentClip(seg, p.cfg.SampleRate))
		case res.err != nil:
			if !errors.Is(res.err, ErrClipSynthesisInvalid) || p.cfg.OnInvalidClip == InvalidClipAbort {
				return nil, nil, res.err
			}
			log.Printf("Dub: segment %d returned invalid audio, substituting silence: %v", seg.Index, res.err)
			notices = append(notices, Notice{
				Kind:         NoticeClipInvalid,
				SegmentIndex: seg.Index,
				AmountMS:     seg.WindowMS(),
				Detail:       res.err.Error(),
			})
			fitted = append(fitted, SilentClip(seg, p.cfg.SampleRate))
		default:
			fitted = append(fitted, res.clip)
		}
	}

	return fitted, notices, nil
}

// startWorkers launches the bounded TTS pool. Results arrive on the
// returned channel in completion order, keyed by segment index; the
// channel closes once every segment has been attempted.
func (p *Pipeline) startWorkers(ctx context.Context, segments []types.Segment) <-chan synthResult {
	jobs := make(chan types.Segment)
	out := make(chan synthResult, len(segments))
	fitter := NewClipFitter(p.cfg)

	var wg sync.WaitGroup
	for w := 0; w < p.cfg.TTSWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for seg := range jobs {
				pcm, err := p.tts.Synthesize(ctx, seg.TargetText, p.cfg.SampleRate)
				if err != nil {
					out <- synthResult{index: seg.Index, err: fmt.Errorf("%w: %v", ErrClipSynthesisInvalid, err)}
					continue
				}
				clip, err := fitter.Fit(seg, NewSynthesizedClip(seg.Index, pcm, p.cfg.SampleRate))
				out <- synthResult{index: seg.Index, clip: clip, err: err}
			}
		}()
	}

	go func() {
		defer func() {
			wg.Wait()
			close(out)
		}()
		defer close(jobs)
		for _, seg := range segments {
			select {
			case jobs <- seg:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out
}
