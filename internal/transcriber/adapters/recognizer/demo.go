package recognizer

import (
	"context"
	"time"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

// DemoRecognizer returns the fixed demonstration transcript after a fixed delay
type DemoRecognizer struct {
	sentences []string
	delay     time.Duration
}

func NewDemoRecognizer(sentences []string, delay time.Duration) *DemoRecognizer {
	if len(sentences) == 0 {
		sentences = core.DefaultDemoSentences
	}
	return &DemoRecognizer{
		sentences: sentences,
		delay:     delay,
	}
}

func (d *DemoRecognizer) Name() string {
	return core.DemoEngineName
}

// IsAvailable is always true, the demonstration output needs no engine
func (d *DemoRecognizer) IsAvailable(ctx context.Context) bool {
	return true
}

// Recognize ignores the audio and returns the demonstration transcript
func (d *DemoRecognizer) Recognize(ctx context.Context, req core.RecognitionRequest) (*core.Transcription, error) {
	if d.delay > 0 {
		timer := time.NewTimer(d.delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	segments := core.TimeSentences(d.sentences, core.DemoConfidence)
	return core.NewTranscription(segments, req.Language), nil
}
