package core_test

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func createTestTranscription() *core.Transcription {
	return core.NewTranscription([]core.Segment{
		{Text: "大家好。", Start: 0, End: 1.5, Confidence: 0.9},
		{Text: "今天我们讨论转写。", Start: 2, End: 4.25, Confidence: 0.8},
		{Text: "谢谢。", Start: 3725.25, End: 3726, Confidence: 0.95},
	}, "zh")
}

func TestParseExportFormat(t *testing.T) {
	tests := []struct {
		input    string
		expected core.ExportFormat
		wantErr  bool
	}{
		{"text", core.ExportFormatText, false},
		{"TXT", core.ExportFormatText, false},
		{"srt", core.ExportFormatSubtitle, false},
		{"subtitle", core.ExportFormatSubtitle, false},
		{" json ", core.ExportFormatStructured, false},
		{"structured", core.ExportFormatStructured, false},
		{"pdf", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			format, err := core.ParseExportFormat(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func TestExportFileName(t *testing.T) {
	tests := []struct {
		source   string
		format   core.ExportFormat
		expected string
	}{
		{"meeting.mp3", core.ExportFormatText, "meeting_转写结果.txt"},
		{"meeting.mp3", core.ExportFormatSubtitle, "meeting_字幕.srt"},
		{"meeting.mp3", core.ExportFormatStructured, "meeting_数据.json"},
		{"会议 记录.v2.wav", core.ExportFormatText, "会议 记录.v2_转写结果.txt"},
		{"", core.ExportFormatSubtitle, "transcript_字幕.srt"},
		{".wav", core.ExportFormatStructured, "transcript_数据.json"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, core.ExportFileName(tt.source, tt.format))
		})
	}
}

func TestRenderExport_NoData(t *testing.T) {
	_, err := core.RenderExport(nil, core.ExportFormatText, core.ExportOptions{})
	assert.ErrorIs(t, err, core.ErrNoData)
}

func TestRenderExport_Text(t *testing.T) {
	transcription := createTestTranscription()
	generatedAt := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)

	t.Run("with timestamps", func(t *testing.T) {
		content, err := core.RenderExport(transcription, core.ExportFormatText, core.ExportOptions{
			IncludeTimestamps: true,
			GeneratedAt:       generatedAt,
			LanguageName:      "中文 (普通话)",
		})
		require.NoError(t, err)

		expected := strings.Join([]string{
			core.HeaderTitle,
			"生成时间: 2024-03-01 09:30:00",
			"音频时长: 01:02:06",
			"语言: 中文 (普通话)",
			core.HeaderSeparator,
			"",
			"[00:00:00] 大家好。",
			"[00:00:02] 今天我们讨论转写。",
			"[01:02:05] 谢谢。",
			"",
		}, "\n")
		assert.Equal(t, expected, content)
	})

	t.Run("without timestamps", func(t *testing.T) {
		content, err := core.RenderExport(transcription, core.ExportFormatText, core.ExportOptions{
			GeneratedAt: generatedAt,
		})
		require.NoError(t, err)

		assert.Contains(t, content, "语言: zh\n")
		assert.True(t, strings.HasSuffix(content, core.HeaderSeparator+"\n\n"+transcription.Text+"\n"))
		assert.NotContains(t, content, "[00:00:00]")
	})
}

func TestRenderExport_Subtitle(t *testing.T) {
	transcription := createTestTranscription()

	content, err := core.RenderExport(transcription, core.ExportFormatSubtitle, core.ExportOptions{})
	require.NoError(t, err)

	cues := strings.Split(strings.TrimSuffix(content, "\n"), "\n\n")
	require.Len(t, cues, len(transcription.Segments))

	for i, cue := range cues {
		lines := strings.Split(cue, "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, fmt.Sprint(i+1), lines[0])
		assert.Equal(t, transcription.Segments[i].Text, lines[2])
	}
	assert.Equal(t, "00:00:02,000 --> 00:00:04,250", strings.Split(cues[1], "\n")[1])
	assert.Equal(t, "01:02:05,250 --> 01:02:06,000", strings.Split(cues[2], "\n")[1])

	t.Run("empty without segments", func(t *testing.T) {
		content, err := core.RenderExport(&core.Transcription{Language: "zh"}, core.ExportFormatSubtitle, core.ExportOptions{})
		require.NoError(t, err)
		assert.Empty(t, content)
	})
}

func TestRenderExport_Structured(t *testing.T) {
	transcription := createTestTranscription()

	content, err := core.RenderExport(transcription, core.ExportFormatStructured, core.ExportOptions{})
	require.NoError(t, err)
	assert.Contains(t, content, "\n  \"text\": ")

	var decoded core.Transcription
	require.NoError(t, json.Unmarshal([]byte(content), &decoded))
	assert.Equal(t, *transcription, decoded)

	t.Run("nil segments become an empty array", func(t *testing.T) {
		content, err := core.RenderExport(&core.Transcription{Language: "en"}, core.ExportFormatStructured, core.ExportOptions{})
		require.NoError(t, err)
		assert.Contains(t, content, `"segments": []`)
	})
}
