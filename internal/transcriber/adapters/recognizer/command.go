package recognizer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"gopkg.in/validator.v2"
)

const probeTimeout = 5 * time.Second

// CommandRecognizer implements core.Recognizer by running a speech
// recognition executable installed on the host
type CommandRecognizer struct {
	executablePath string
	defaultModel   string
	timeout        time.Duration
	logger         *slog.Logger
}

// CommandRecognizerConfig holds configuration for CommandRecognizer
type CommandRecognizerConfig struct {
	ExecutablePath string        `validate:"nonzero"`
	DefaultModel   string        // passed as --model when the request has none
	Timeout        time.Duration `validate:"nonzero"`
	Logger         *slog.Logger  `validate:"nonnil"`
}

// NewCommandRecognizer creates a new instance of CommandRecognizer
func NewCommandRecognizer(cfg CommandRecognizerConfig) (*CommandRecognizer, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid recognizer configuration: %w", err)
	}

	return &CommandRecognizer{
		executablePath: cfg.ExecutablePath,
		defaultModel:   cfg.DefaultModel,
		timeout:        cfg.Timeout,
		logger:         cfg.Logger,
	}, nil
}

// commandOutput is the JSON document printed by the recognizer executable
type commandOutput struct {
	Text       string         `json:"text"`
	Language   string         `json:"language,omitempty"`
	Duration   float64        `json:"duration,omitempty"`
	Confidence *float64       `json:"confidence,omitempty"`
	Segments   []core.Segment `json:"segments,omitempty"`
	Error      *commandError  `json:"error,omitempty"`
}

type commandError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Name identifies the engine by its executable
func (c *CommandRecognizer) Name() string {
	return filepath.Base(c.executablePath)
}

// IsAvailable checks if the recognizer executable runs
func (c *CommandRecognizer) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.executablePath, "--version")
	err := cmd.Run()
	if err != nil {
		c.logger.DebugContext(ctx, "Recognizer probe failed",
			"executable", c.executablePath,
			"error", err.Error(),
		)
	}
	return err == nil
}

// Recognize runs the executable on the audio file and parses its output
func (c *CommandRecognizer) Recognize(ctx context.Context, req core.RecognitionRequest) (*core.Transcription, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	stdout, err := c.runCommand(ctx, req)
	if err != nil {
		return nil, err
	}

	var output commandOutput
	if err := json.Unmarshal(stdout, &output); err != nil {
		c.logger.WarnContext(ctx, "Failed to parse recognizer output", slog.String("output", string(stdout)))
		return nil, core.NewRecognitionError("bad-output", "recognizer output is not valid JSON", err)
	}

	if output.Error != nil {
		return nil, core.NewRecognitionError(output.Error.Code, output.Error.Message, nil)
	}

	return c.toTranscription(output, req.Language), nil
}

// runCommand executes the recognizer and maps process failures to
// recognition errors
func (c *CommandRecognizer) runCommand(ctx context.Context, req core.RecognitionRequest) ([]byte, error) {
	args := []string{"--audio", req.AudioPath, "--language", req.Language}

	model := req.Model
	if model == "" {
		model = c.defaultModel
	}
	if model != "" {
		args = append(args, "--model", model)
	}

	cmd := exec.CommandContext(ctx, c.executablePath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	c.logger.DebugContext(ctx, "Running recognizer",
		"executable", c.executablePath,
		"args", strings.Join(args, " "),
	)

	err := cmd.Run()
	if err == nil {
		return stdout.Bytes(), nil
	}

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, core.NewRecognitionError("timeout", fmt.Sprintf("recognizer did not finish within %s", c.timeout), ctx.Err())
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return nil, core.NewRecognitionError("service-not-allowed", "failed to start recognizer", err)
	}

	// an error document on stdout wins over the bare exit status
	var output commandOutput
	if jsonErr := json.Unmarshal(stdout.Bytes(), &output); jsonErr == nil && output.Error != nil {
		return nil, core.NewRecognitionError(output.Error.Code, output.Error.Message, err)
	}

	return nil, core.NewRecognitionError(
		fmt.Sprintf("exit-%d", exitErr.ExitCode()),
		strings.TrimSpace(stderr.String()),
		err,
	)
}

// toTranscription converts the executable output, segmenting plain text
// when the engine reported no timestamps
func (c *CommandRecognizer) toTranscription(output commandOutput, language string) *core.Transcription {
	if output.Language != "" {
		language = output.Language
	}

	segments := output.Segments
	if len(segments) == 0 && strings.TrimSpace(output.Text) != "" {
		confidence := core.DemoConfidence
		if output.Confidence != nil {
			confidence = *output.Confidence
		}
		segments = core.TimeSentences(core.SplitSentences(output.Text), confidence)
	}

	return core.NormalizeTranscription(&core.Transcription{
		Segments: segments,
		Language: language,
		Duration: output.Duration,
	})
}
