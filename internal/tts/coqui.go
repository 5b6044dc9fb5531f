package tts

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// PCMDecoder turns a synthesized audio file into pipeline PCM.
type PCMDecoder interface {
	DecodePCM(path string, sampleRate int) ([]int16, error)
}

// CoquiClient synthesizes speech by shelling out to the Coqui TTS CLI
// (XTTS v2 with a reference speaker wav). One subprocess per segment.
type CoquiClient struct {
	modelName  string
	speakerWAV string
	language   string
	tempDir    string
	decoder    PCMDecoder
}

// NewCoquiClient creates a client for the given voice. speakerWAV must be a
// real recording of the reference speaker; XTTS refuses to run without one.
func NewCoquiClient(modelName, speakerWAV, language, tempDir string, decoder PCMDecoder) (*CoquiClient, error) {
	if speakerWAV == "" {
		return nil, fmt.Errorf("speaker wav is required for XTTS synthesis")
	}
	if modelName == "" {
		modelName = "tts_models/multilingual/multi-dataset/xtts_v2"
	}
	log.Printf("Initializing Coqui TTS with model %s (language: %s)", modelName, language)
	return &CoquiClient{
		modelName:  modelName,
		speakerWAV: speakerWAV,
		language:   language,
		tempDir:    tempDir,
		decoder:    decoder,
	}, nil
}

// Synthesize runs the tts CLI for one piece of text and decodes the result
// to mono s16 PCM at the requested rate. No duration guarantee is made;
// the fitter owns reconciliation.
func (c *CoquiClient) Synthesize(ctx context.Context, text string, sampleRate int) ([]int16, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}

	outPath := filepath.Join(c.tempDir, fmt.Sprintf("tts_%s.wav", uuid.New().String()))
	defer os.Remove(outPath)

	cmd := exec.CommandContext(ctx, "tts",
		"--model_name", c.modelName,
		"--text", text,
		"--out_path", outPath,
		"--speaker_wav", c.speakerWAV,
		"--language_idx", c.language,
	)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("tts failed: %v\nOutput: %s", err, string(output))
	}

	return c.decoder.DecodePCM(outPath, sampleRate)
}
