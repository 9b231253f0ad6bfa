// internal/transcriber/core/validators.go
package core

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// Audio validation

// ValidateAudioFile checks an upload against the MIME allow-list and size cap.
// The type is checked first so a disallowed empty file is rejected for its type.
func ValidateAudioFile(file AudioFile) error {
	mimeType := normalizeMIMEType(file.MIMEType)
	if !AllowedAudioTypes[mimeType] {
		return NewValidationError("type", "请选择有效的音频文件 (MP3, WAV, M4A, OGG)")
	}

	if file.Size < 0 {
		return NewValidationError("size", "file size cannot be negative")
	}

	if file.Size > MaxAudioFileSize {
		return NewValidationError("size", "文件大小超过50MB限制")
	}

	if file.Name != "" && !utf8.ValidString(file.Name) {
		return NewValidationError("name", "file name contains invalid UTF-8 characters")
	}

	return nil
}

// normalizeMIMEType drops parameters such as "; codecs=opus"
func normalizeMIMEType(mimeType string) string {
	if idx := strings.Index(mimeType, ";"); idx != -1 {
		mimeType = mimeType[:idx]
	}
	return strings.ToLower(strings.TrimSpace(mimeType))
}

// Language validation

// ValidateLanguage checks a language code against the catalog
func ValidateLanguage(catalog Catalog, code string) error {
	if strings.TrimSpace(code) == "" {
		return NewValidationError("language", "language cannot be empty")
	}

	if _, ok := catalog.LanguageName(code); !ok {
		return NewValidationError("language", fmt.Sprintf("unsupported language: %s", code))
	}

	return nil
}

// Transcription validation

// ValidateTranscription checks the transcription invariants
func ValidateTranscription(t Transcription) error {
	for i, seg := range t.Segments {
		if seg.Start < 0 || math.IsNaN(seg.Start) {
			return NewValidationError("segments", fmt.Sprintf("segment %d has a negative start", i))
		}

		if seg.End < seg.Start || math.IsNaN(seg.End) {
			return NewValidationError("segments", fmt.Sprintf("segment %d ends before it starts", i))
		}

		if seg.Confidence < 0 || seg.Confidence > 1 {
			return NewValidationError("segments", fmt.Sprintf("segment %d confidence out of range", i))
		}

		if i > 0 && seg.Start < t.Segments[i-1].Start {
			return NewValidationError("segments", fmt.Sprintf("segment %d is out of order", i))
		}

		if seg.End > t.Duration {
			return NewValidationError("duration", fmt.Sprintf("duration is shorter than segment %d", i))
		}
	}

	if len(t.Segments) > 0 && t.Text == "" {
		return NewValidationError("text", "text cannot be empty when segments exist")
	}

	return nil
}
