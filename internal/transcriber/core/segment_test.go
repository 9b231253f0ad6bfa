package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func TestSplitSentences(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected []string
	}{
		{
			name:     "chinese punctuation",
			text:     "你好。今天天气很好！你呢？",
			expected: []string{"你好。", "今天天气很好！", "你呢？"},
		},
		{
			name:     "latin punctuation and newline",
			text:     "Hello there. How are you\nFine; thanks",
			expected: []string{"Hello there.", "How are you", "Fine;", "thanks"},
		},
		{
			name:     "blank",
			text:     "   \n ",
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.SplitSentences(tt.text))
		})
	}
}

func TestSyntheticDuration(t *testing.T) {
	assert.Equal(t, 1.0, core.SyntheticDuration("短"))
	assert.Equal(t, 2.5, core.SyntheticDuration("这是十个字的句子呀。"))
}

func TestTimeSentences(t *testing.T) {
	segments := core.TimeSentences([]string{"你好。", "", "这是十个字的句子呀。"}, 0.9)
	require.Len(t, segments, 2)

	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, 1.0, segments[0].End)
	assert.Equal(t, 1.5, segments[1].Start)
	assert.Equal(t, 4.0, segments[1].End)
	assert.Equal(t, 0.9, segments[1].Confidence)
}

func TestNormalizeTranscription(t *testing.T) {
	t.Run("nil stays nil", func(t *testing.T) {
		assert.Nil(t, core.NormalizeTranscription(nil))
	})

	t.Run("enforces invariants", func(t *testing.T) {
		input := &core.Transcription{
			Text:     "stale",
			Language: "en",
			Duration: 2,
			Segments: []core.Segment{
				{Text: " second ", Start: 3, End: 4.5, Confidence: 1.2},
				{Text: "   ", Start: 1, End: 2},
				{Text: "first", Start: -1, End: -2, Confidence: -0.5},
			},
		}

		result := core.NormalizeTranscription(input)
		require.NotNil(t, result)
		require.Len(t, result.Segments, 2)

		assert.Equal(t, "first second", result.Text)
		assert.Equal(t, "en", result.Language)
		assert.Equal(t, 4.5, result.Duration)

		assert.Equal(t, core.Segment{Text: "first", Start: 0, End: 0, Confidence: 0}, result.Segments[0])
		assert.Equal(t, core.Segment{Text: "second", Start: 3, End: 4.5, Confidence: 1}, result.Segments[1])

		assert.NoError(t, core.ValidateTranscription(*result))
	})

	t.Run("keeps a longer reported duration", func(t *testing.T) {
		result := core.NormalizeTranscription(&core.Transcription{
			Duration: 30,
			Segments: []core.Segment{{Text: "a", Start: 0, End: 1}},
		})
		assert.Equal(t, 30.0, result.Duration)
	})
}

func TestNewTranscription(t *testing.T) {
	segments := core.TimeSentences(core.DefaultDemoSentences, core.DemoConfidence)
	result := core.NewTranscription(segments, "zh")

	require.Len(t, result.Segments, len(core.DefaultDemoSentences))
	assert.Equal(t, "zh", result.Language)
	assert.Equal(t, result.Segments[len(result.Segments)-1].End, result.Duration)
	for i := 1; i < len(result.Segments); i++ {
		assert.Greater(t, result.Segments[i].Start, result.Segments[i-1].Start)
	}
	assert.NoError(t, core.ValidateTranscription(*result))
}
