// internal/transcriber/core/service.go
package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"gopkg.in/validator.v2"
)

// ServiceConfig holds the dependencies of the transcription service.
// Interface fields are skipped by the validator and checked in NewService,
// since walking an implementation's exported fields can loop forever.
type ServiceConfig struct {
	// LiveRecognizer is optional; without it every run uses the fallback
	LiveRecognizer     Recognizer       `validate:"-"`
	FallbackRecognizer Recognizer       `validate:"-"`
	AudioStore         AudioStore       `validate:"-"`
	Catalog            Catalog          `validate:"-"`
	MetricsCollector   MetricsCollector `validate:"-"`
	Logger             *slog.Logger     `validate:"nonnil"`
	DefaultLanguage    string

	// Clock and NewRunID default to time.Now and uuid.NewString
	Clock    Clock
	NewRunID func() string
}

// Service implements the TranscriptionService interface for a single session
type Service struct {
	live             Recognizer
	fallback         Recognizer
	audioStore       AudioStore
	catalog          Catalog
	metricsCollector MetricsCollector
	logger           *slog.Logger
	defaultLanguage  string
	now              Clock
	newRunID         func() string

	mu                sync.RWMutex
	status            RunStatus
	audio             *AudioFile
	current           *Transcription
	sourceName        string
	includeTimestamps bool
}

// NewService creates a new transcription service with all dependencies
func NewService(config ServiceConfig) (*Service, error) {
	if err := validator.Validate(config); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}
	if err := config.checkDependencies(); err != nil {
		return nil, fmt.Errorf("invalid service config: %w", err)
	}

	s := &Service{
		live:             config.LiveRecognizer,
		fallback:         config.FallbackRecognizer,
		audioStore:       config.AudioStore,
		catalog:          config.Catalog,
		metricsCollector: config.MetricsCollector,
		logger:           config.Logger,
		defaultLanguage:  config.DefaultLanguage,
		now:              config.Clock,
		newRunID:         config.NewRunID,
		status:           RunStatus{State: RunStateIdle},
	}

	if s.defaultLanguage == "" {
		s.defaultLanguage = DefaultLanguage
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newRunID == nil {
		s.newRunID = uuid.NewString
	}

	return s, nil
}

func (c ServiceConfig) checkDependencies() error {
	switch {
	case c.FallbackRecognizer == nil:
		return errors.New("FallbackRecognizer: zero value")
	case c.AudioStore == nil:
		return errors.New("AudioStore: zero value")
	case c.Catalog == nil:
		return errors.New("Catalog: zero value")
	case c.MetricsCollector == nil:
		return errors.New("MetricsCollector: zero value")
	}
	return nil
}

// CheckCapability logs a warning when no live recognizer can be used
func (s *Service) CheckCapability(ctx context.Context) bool {
	if s.live != nil && s.live.IsAvailable(ctx) {
		s.logger.InfoContext(ctx, "Live speech recognition available", "engine", s.live.Name())
		return true
	}

	s.logger.WarnContext(ctx, "Speech recognition is not supported, demonstration output will be used",
		"fallback", s.fallback.Name(),
	)
	return false
}

// SetAudio validates and keeps the uploaded audio, replacing any previous one
func (s *Service) SetAudio(ctx context.Context, file AudioFile, content []byte) (AudioFile, error) {
	if err := ValidateAudioFile(file); err != nil {
		s.logger.InfoContext(ctx, "Audio file rejected",
			"name", file.Name,
			"mime_type", file.MIMEType,
			"size", file.Size,
			"reason", err.Error(),
		)
		return AudioFile{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == RunStateRunning {
		return AudioFile{}, ErrBusy
	}

	stored, err := s.audioStore.Save(ctx, file, content)
	if err != nil {
		return AudioFile{}, fmt.Errorf("failed to store audio file: %w", err)
	}

	if s.audio != nil {
		s.removeAudioLocked(ctx)
	}
	s.audio = &stored

	s.logger.InfoContext(ctx, "Audio file uploaded",
		"name", stored.Name,
		"size", stored.Size,
	)

	return stored, nil
}

// Audio returns the current audio file, if any
func (s *Service) Audio() (AudioFile, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.audio == nil {
		return AudioFile{}, false
	}
	return *s.audio, true
}

// ClearAudio drops the uploaded audio but keeps the transcription
func (s *Service) ClearAudio(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == RunStateRunning {
		return ErrBusy
	}

	s.removeAudioLocked(ctx)
	return nil
}

// ClearAll drops the audio and the transcription and resets the state token
func (s *Service) ClearAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == RunStateRunning {
		return ErrBusy
	}

	s.removeAudioLocked(ctx)
	s.current = nil
	s.sourceName = ""
	s.includeTimestamps = false
	s.status = RunStatus{State: RunStateIdle}

	s.logger.InfoContext(ctx, "Session cleared")
	return nil
}

func (s *Service) removeAudioLocked(ctx context.Context) {
	if s.audio == nil {
		return
	}

	if err := s.audioStore.Remove(ctx, *s.audio); err != nil {
		s.logger.WarnContext(ctx, "Failed to remove audio file",
			"name", s.audio.Name,
			"error", err.Error(),
		)
	}
	s.audio = nil
}

// Produce runs one transcription of the session audio. Only one run may be
// outstanding; a run is not cancellable and always reaches done or failed.
func (s *Service) Produce(ctx context.Context, input ProduceInput) (*Transcription, error) {
	language := input.Language
	if language == "" {
		language = s.defaultLanguage
	}
	if err := ValidateLanguage(s.catalog, language); err != nil {
		return nil, err
	}

	runID, audio, err := s.begin(input.Audio)
	if err != nil {
		return nil, err
	}

	ctx = context.WithoutCancel(ctx)
	startTime := s.now()

	s.logger.InfoContext(ctx, "Transcription started",
		"run_id", runID,
		"language", language,
		"model", input.Model,
		"require_live", input.RequireLive,
	)

	transcription, engine, err := s.recognize(ctx, RecognitionRequest{
		AudioPath: audio.Path,
		Language:  language,
		Model:     input.Model,
	}, input.RequireLive)

	s.finish(runID, engine, audio, input.IncludeTimestamps, transcription, err)

	outcome := OutcomeFallback
	switch {
	case err != nil:
		outcome = OutcomeFailed
	case s.live != nil && engine == s.live.Name():
		outcome = OutcomeLive
	}
	s.recordMetrics(ctx, RunMetrics{
		RunID:        runID,
		Engine:       engine,
		Language:     language,
		Model:        input.Model,
		Outcome:      outcome,
		ErrorCode:    ErrorCode(err),
		Elapsed:      s.now().Sub(startTime),
		SegmentCount: segmentCount(transcription),
		AudioSize:    audio.Size,
		Timestamp:    s.now(),
	})

	if err != nil {
		level := slog.LevelError
		if IsUserError(err) {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "Transcription failed",
			"run_id", runID,
			"engine", engine,
			"error", err.Error(),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "Transcription completed",
		"run_id", runID,
		"engine", engine,
		"segments", len(transcription.Segments),
		"duration", transcription.Duration,
	)

	return transcription, nil
}

// begin resolves the run's audio and moves the state token to running under
// one lock, so the session audio cannot be cleared in between. An explicit
// audio file takes precedence over the session audio.
func (s *Service) begin(explicit AudioFile) (string, AudioFile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status.State == RunStateRunning {
		return "", AudioFile{}, ErrBusy
	}

	audio := explicit
	if audio.Path == "" {
		if s.audio == nil {
			return "", AudioFile{}, ErrNoAudio
		}
		audio = *s.audio
	}
	if err := ValidateAudioFile(audio); err != nil {
		return "", AudioFile{}, err
	}

	startedAt := s.now()
	runID := s.newRunID()
	s.status = RunStatus{
		State:     RunStateRunning,
		RunID:     runID,
		StartedAt: &startedAt,
	}
	return runID, audio, nil
}

// finish moves the state token to done or failed. A failed run keeps the
// previous transcription.
func (s *Service) finish(runID, engine string, audio AudioFile, includeTimestamps bool, t *Transcription, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	finishedAt := s.now()
	s.status.Engine = engine
	s.status.FinishedAt = &finishedAt

	if err != nil {
		s.status.State = RunStateFailed
		s.status.Error = err.Error()
		return
	}

	s.status.State = RunStateDone
	s.current = t
	s.sourceName = audio.Name
	s.includeTimestamps = includeTimestamps
}

// recognize tries the live recognizer and falls back to the demonstration
// recognizer unless the caller requires live recognition
func (s *Service) recognize(ctx context.Context, req RecognitionRequest, requireLive bool) (*Transcription, string, error) {
	if s.live == nil || !s.live.IsAvailable(ctx) {
		if requireLive {
			return nil, "", ErrUnsupportedCapability
		}
		return s.recognizeFallback(ctx, req)
	}

	t, err := s.live.Recognize(ctx, req)
	if err == nil && (t == nil || len(t.Segments) == 0) {
		err = NewRecognitionError("no-speech", "no speech was recognized", ErrEmptyResult)
	}
	if err == nil {
		if t.Language == "" {
			t.Language = req.Language
		}
		return NormalizeTranscription(t), s.live.Name(), nil
	}

	if requireLive {
		return nil, s.live.Name(), err
	}

	s.logger.WarnContext(ctx, "Live recognition failed, using demonstration output",
		"engine", s.live.Name(),
		"error", err.Error(),
	)
	return s.recognizeFallback(ctx, req)
}

func (s *Service) recognizeFallback(ctx context.Context, req RecognitionRequest) (*Transcription, string, error) {
	t, err := s.fallback.Recognize(ctx, req)
	if err != nil {
		return nil, s.fallback.Name(), fmt.Errorf("fallback recognition failed: %w", err)
	}
	if t == nil || len(t.Segments) == 0 {
		return nil, s.fallback.Name(), ErrEmptyResult
	}
	return NormalizeTranscription(t), s.fallback.Name(), nil
}

// Export renders the current transcription in the given format
func (s *Service) Export(ctx context.Context, format ExportFormat, includeTimestamps bool) (*ExportResult, error) {
	s.mu.RLock()
	current, sourceName := s.current, s.sourceName
	s.mu.RUnlock()

	if current == nil {
		return nil, ErrNoData
	}

	languageName, ok := s.catalog.LanguageName(current.Language)
	if !ok {
		languageName = current.Language
	}

	content, err := RenderExport(current, format, ExportOptions{
		IncludeTimestamps: includeTimestamps,
		GeneratedAt:       s.now(),
		LanguageName:      languageName,
	})
	if err != nil {
		return nil, err
	}

	result := &ExportResult{
		FileName:    ExportFileName(sourceName, format),
		ContentType: ExportContentType(format),
		Content:     content,
	}

	s.logger.InfoContext(ctx, "Transcription exported",
		"format", string(format),
		"file_name", result.FileName,
	)

	return result, nil
}

// Current returns the current transcription
func (s *Service) Current() (*Transcription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.current == nil {
		return nil, ErrNoData
	}
	return s.current, nil
}

// Status returns a snapshot of the state token
func (s *Service) Status() RunStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.status
}

// IncludeTimestamps reports the timestamp setting of the last successful run
func (s *Service) IncludeTimestamps() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.includeTimestamps
}

// ActiveLines renders the current transcription with highlight flags for
// the playback position
func (s *Service) ActiveLines(position float64) ([]ActiveLine, error) {
	current, err := s.Current()
	if err != nil {
		return nil, err
	}
	return RenderLines(current.Segments, position), nil
}

// Languages lists the supported languages
func (s *Service) Languages() []Language {
	return s.catalog.Languages()
}

// recordMetrics records run metrics; failures are only logged
func (s *Service) recordMetrics(ctx context.Context, metrics RunMetrics) {
	if err := s.metricsCollector.RecordRun(ctx, metrics); err != nil {
		s.logger.WarnContext(ctx, "Failed to record metrics",
			"run_id", metrics.RunID,
			"error", err.Error(),
		)
	}
}

func segmentCount(t *Transcription) int {
	if t == nil {
		return 0
	}
	return len(t.Segments)
}

// IsUserError reports whether err is an expected, user-facing failure
func IsUserError(err error) bool {
	var recErr RecognitionError
	return errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrNoData) ||
		errors.Is(err, ErrNoAudio) ||
		errors.Is(err, ErrBusy) ||
		errors.Is(err, ErrRateLimited) ||
		errors.Is(err, ErrUnsupportedCapability) ||
		errors.As(err, &recErr)
}
