package core

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ParseExportFormat accepts a format name or its file extension
func ParseExportFormat(value string) (ExportFormat, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "text", "txt":
		return ExportFormatText, nil
	case "subtitle", "srt":
		return ExportFormatSubtitle, nil
	case "structured", "json":
		return ExportFormatStructured, nil
	default:
		return "", NewValidationError("format", fmt.Sprintf("unsupported export format: %s", value))
	}
}

// ExportFileName builds {baseName}_<suffix>.<ext> from the source file name
func ExportFileName(sourceName string, format ExportFormat) string {
	base := strings.TrimSuffix(filepath.Base(sourceName), filepath.Ext(sourceName))
	if sourceName == "" || base == "" || base == "." {
		base = DefaultBaseName
	}
	file := exportFiles[format]
	return fmt.Sprintf("%s_%s.%s", base, file.Suffix, file.Ext)
}

// ExportContentType returns the MIME type of an export format
func ExportContentType(format ExportFormat) string {
	return exportFiles[format].ContentType
}

// ExportOptions carries what the text header needs besides the transcription
type ExportOptions struct {
	IncludeTimestamps bool
	GeneratedAt       time.Time
	LanguageName      string
}

// RenderExport renders a transcription in the requested format
func RenderExport(t *Transcription, format ExportFormat, opts ExportOptions) (string, error) {
	if t == nil {
		return "", ErrNoData
	}

	switch format {
	case ExportFormatText:
		return renderText(t, opts), nil
	case ExportFormatSubtitle:
		return renderSubtitle(t), nil
	case ExportFormatStructured:
		return renderStructured(t)
	default:
		return "", NewValidationError("format", fmt.Sprintf("unsupported export format: %s", format))
	}
}

func renderText(t *Transcription, opts ExportOptions) string {
	languageName := opts.LanguageName
	if languageName == "" {
		languageName = t.Language
	}

	var builder strings.Builder
	builder.WriteString(HeaderTitle + "\n")
	builder.WriteString(fmt.Sprintf("%s: %s\n", HeaderGenerated, opts.GeneratedAt.Format("2006-01-02 15:04:05")))
	builder.WriteString(fmt.Sprintf("%s: %s\n", HeaderDuration, FormatTimeForDisplay(t.Duration)))
	builder.WriteString(fmt.Sprintf("%s: %s\n", HeaderLanguage, languageName))
	builder.WriteString(HeaderSeparator + "\n\n")

	if !opts.IncludeTimestamps {
		builder.WriteString(t.Text)
		builder.WriteString("\n")
		return builder.String()
	}

	for _, seg := range t.Segments {
		builder.WriteString(fmt.Sprintf("[%s] %s\n", FormatTimeForClock(seg.Start), seg.Text))
	}
	return builder.String()
}

func renderSubtitle(t *Transcription) string {
	var builder strings.Builder
	for i, seg := range t.Segments {
		if i > 0 {
			builder.WriteString("\n")
		}
		builder.WriteString(fmt.Sprintf("%d\n", i+1))
		builder.WriteString(fmt.Sprintf("%s --> %s\n", FormatTimeForCue(seg.Start), FormatTimeForCue(seg.End)))
		builder.WriteString(seg.Text + "\n")
	}
	return builder.String()
}

func renderStructured(t *Transcription) (string, error) {
	out := *t
	if out.Segments == nil {
		out.Segments = []Segment{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to serialize transcription: %w", err)
	}
	return string(data), nil
}
