package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// PiperConfig holds configuration for the local Piper backend.
type PiperConfig struct {
	BinPath   string // default: "piper"
	ModelPath string // required: path to the .onnx voice model
}

// PiperSynthesizer runs the Piper binary as a subprocess. The voice is
// fixed by the model file; Speed maps to Piper's length scale.
type PiperSynthesizer struct {
	cfg PiperConfig
}

func NewPiperSynthesizer(cfg PiperConfig) *PiperSynthesizer {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	return &PiperSynthesizer{cfg: cfg}
}

func (p *PiperSynthesizer) Name() string { return "local-piper" }

// Synthesize pipes text into Piper and returns the WAV it writes to stdout.
func (p *PiperSynthesizer) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if p.cfg.ModelPath == "" {
		return nil, errors.New("piper model path is required (set TTS_LOCAL_PIPER_MODEL)")
	}

	cmd := exec.CommandContext(ctx, p.cfg.BinPath, p.args(req.Speed)...)
	cmd.Stdin = strings.NewReader(req.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}
	if stdout.Len() == 0 {
		return nil, errors.New("piper produced no audio")
	}

	return &SynthesisResult{
		Audio:       stdout.Bytes(),
		ContentType: "audio/wav",
	}, nil
}

func (p *PiperSynthesizer) args(speed float64) []string {
	args := []string{"--model", p.cfg.ModelPath, "--output_file", "-"}
	if speed > 0 && speed != 1 {
		// Piper stretches phoneme length, so slower speech is a larger scale.
		args = append(args, "--length_scale", strconv.FormatFloat(1/speed, 'f', 2, 64))
	}
	return args
}
