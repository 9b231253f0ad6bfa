package core

import (
	"time"
)

// Segment is one timed span of recognized speech
type Segment struct {
	Text       string  `json:"text"`
	Start      float64 `json:"start"`
	End        float64 `json:"end"`
	Confidence float64 `json:"confidence"`
}

// Transcription is the complete result of one transcription run
type Transcription struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
}

// AudioFile references the audio uploaded for the current session
type AudioFile struct {
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
	Path     string `json:"-"`
}

// Language is an entry of the supported language catalog
type Language struct {
	Code string `json:"code" yaml:"code"`
	Name string `json:"name" yaml:"name"`
}

type ExportFormat string

const (
	ExportFormatText       ExportFormat = "text"
	ExportFormatSubtitle   ExportFormat = "subtitle"
	ExportFormatStructured ExportFormat = "structured"
)

// RunState is the state token of the pipeline
type RunState string

const (
	RunStateIdle    RunState = "idle"
	RunStateRunning RunState = "running"
	RunStateDone    RunState = "done"
	RunStateFailed  RunState = "failed"
)

// RunStatus is a read-only snapshot of the pipeline state
type RunStatus struct {
	State      RunState   `json:"state"`
	RunID      string     `json:"run_id,omitempty"`
	Engine     string     `json:"engine,omitempty"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Error      string     `json:"error,omitempty"`
}

// ProduceInput holds the settings read at the start of a run
type ProduceInput struct {
	Audio             AudioFile
	Language          string
	Model             string // opaque, passed through to the live recognizer
	IncludeTimestamps bool
	RequireLive       bool
}

// RecognitionRequest is what a Recognizer receives
type RecognitionRequest struct {
	AudioPath string
	Language  string
	Model     string
}

// ActiveLine is a segment currently under the playback position
type ActiveLine struct {
	Index   int     `json:"index"`
	Time    string  `json:"time"`
	Text    string  `json:"text"`
	Start   float64 `json:"start"`
	Current bool    `json:"current"`
}

// ExportResult is a rendered export ready to be downloaded
type ExportResult struct {
	FileName    string
	ContentType string
	Content     string
}

// RunMetrics represents metrics for one produce run
type RunMetrics struct {
	RunID        string        `json:"run_id"`
	Engine       string        `json:"engine"`
	Language     string        `json:"language"`
	Model        string        `json:"model,omitempty"`
	Outcome      string        `json:"outcome"`
	ErrorCode    string        `json:"error_code,omitempty"`
	Elapsed      time.Duration `json:"elapsed"`
	SegmentCount int           `json:"segment_count"`
	AudioSize    int64         `json:"audio_size"`
	Timestamp    time.Time     `json:"timestamp"`
}
