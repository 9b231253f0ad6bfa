package core

import (
	"context"
	"time"
)

// Primary Ports (APIs that drive our application)

// TranscriptionService defines the session API used by the presentation layer
type TranscriptionService interface {
	// SetAudio validates and keeps the uploaded audio for the session
	SetAudio(ctx context.Context, file AudioFile, content []byte) (AudioFile, error)

	// Audio returns the current audio file, if any
	Audio() (AudioFile, bool)

	// ClearAudio drops the uploaded audio but keeps the transcription
	ClearAudio(ctx context.Context) error

	// ClearAll drops both the audio and the transcription
	ClearAll(ctx context.Context) error

	// Produce runs one transcription for the current audio
	Produce(ctx context.Context, input ProduceInput) (*Transcription, error)

	// Export renders the current transcription in the given format
	Export(ctx context.Context, format ExportFormat, includeTimestamps bool) (*ExportResult, error)

	// Current returns the current transcription
	Current() (*Transcription, error)

	// Status returns the state token of the pipeline
	Status() RunStatus

	// ActiveLines returns the lines to highlight at the playback position
	ActiveLines(position float64) ([]ActiveLine, error)

	// Languages lists the supported languages
	Languages() []Language

	// IncludeTimestamps reports the timestamp setting of the last run
	IncludeTimestamps() bool
}

// Secondary Ports (SPIs that are driven by our application)

// Recognizer is a speech recognition capability
type Recognizer interface {
	// Name identifies the engine in logs and metrics
	Name() string

	// IsAvailable probes whether the engine can be used right now
	IsAvailable(ctx context.Context) bool

	// Recognize transcribes the referenced audio
	Recognize(ctx context.Context, req RecognitionRequest) (*Transcription, error)
}

// AudioStore keeps the single upload of the session
type AudioStore interface {
	// Save stores the upload and returns the file with its local path set
	Save(ctx context.Context, file AudioFile, content []byte) (AudioFile, error)

	// Remove deletes a stored upload
	Remove(ctx context.Context, file AudioFile) error
}

// Catalog provides languages and demonstration sentences
type Catalog interface {
	Languages() []Language
	LanguageName(code string) (string, bool)
	DemoSentences() []string
}

// MetricsCollector defines interface for collecting run metrics
type MetricsCollector interface {
	// RecordRun records metrics for one produce run
	RecordRun(ctx context.Context, metrics RunMetrics) error
}

// RateLimiter throttles expensive requests per client
type RateLimiter interface {
	// Allow consumes one request for key or returns ErrRateLimited
	Allow(ctx context.Context, key string) error
}

// Clock returns the current time
type Clock func() time.Time
