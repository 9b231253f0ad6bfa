package core

import (
	"math"
	"sort"
	"strings"
	"unicode/utf8"
)

// sentenceTerminators end a sentence when splitting plain recognizer text
var sentenceTerminators = map[rune]bool{
	'。': true, '！': true, '？': true, '；': true,
	'.': true, '!': true, '?': true, ';': true,
	'\n': true,
}

// SplitSentences splits plain text into trimmed sentences, keeping the
// terminating punctuation with its sentence.
func SplitSentences(text string) []string {
	var (
		sentences []string
		current   strings.Builder
	)

	flush := func() {
		sentence := strings.TrimSpace(current.String())
		if sentence != "" {
			sentences = append(sentences, sentence)
		}
		current.Reset()
	}

	for _, r := range text {
		if r != '\n' {
			current.WriteRune(r)
		}
		if sentenceTerminators[r] {
			flush()
		}
	}
	flush()

	return sentences
}

// SyntheticDuration returns the display duration for a sentence, proportional
// to its character length
func SyntheticDuration(sentence string) float64 {
	return math.Max(MinSegmentDuration, float64(utf8.RuneCountInString(sentence))*SecondsPerRune)
}

// TimeSentences assigns synthetic timing to sentences, separated by a fixed gap
func TimeSentences(sentences []string, confidence float64) []Segment {
	segments := make([]Segment, 0, len(sentences))
	start := 0.0
	for _, sentence := range sentences {
		sentence = strings.TrimSpace(sentence)
		if sentence == "" {
			continue
		}
		end := start + SyntheticDuration(sentence)
		segments = append(segments, Segment{
			Text:       sentence,
			Start:      start,
			End:        end,
			Confidence: confidence,
		})
		start = end + DemoSegmentGap
	}
	return segments
}

// NewTranscription builds a transcription whose text and duration are
// derived from its segments
func NewTranscription(segments []Segment, language string) *Transcription {
	t := &Transcription{
		Segments: segments,
		Language: language,
	}
	return NormalizeTranscription(t)
}

// NormalizeTranscription enforces the transcription invariants: empty
// segments are dropped, timing and confidence are clamped, segments are
// sorted by start, the duration covers the last segment and the text is the
// space-joined segment texts.
func NormalizeTranscription(t *Transcription) *Transcription {
	if t == nil {
		return nil
	}

	segments := make([]Segment, 0, len(t.Segments))
	for _, seg := range t.Segments {
		seg.Text = strings.TrimSpace(seg.Text)
		if seg.Text == "" {
			continue
		}
		if math.IsNaN(seg.Start) || seg.Start < 0 {
			seg.Start = 0
		}
		if math.IsNaN(seg.End) || seg.End < seg.Start {
			seg.End = seg.Start
		}
		seg.Confidence = clampConfidence(seg.Confidence)
		segments = append(segments, seg)
	}

	sort.SliceStable(segments, func(i, j int) bool {
		return segments[i].Start < segments[j].Start
	})

	texts := make([]string, len(segments))
	duration := t.Duration
	if math.IsNaN(duration) || duration < 0 {
		duration = 0
	}
	for i, seg := range segments {
		texts[i] = seg.Text
		duration = math.Max(duration, seg.End)
	}

	return &Transcription{
		Text:     strings.Join(texts, " "),
		Segments: segments,
		Language: t.Language,
		Duration: duration,
	}
}

func clampConfidence(c float64) float64 {
	switch {
	case math.IsNaN(c) || c < 0:
		return 0
	case c > 1:
		return 1
	default:
		return c
	}
}
