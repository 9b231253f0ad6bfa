// internal/transcriber/core/constants.go
package core

import "time"

// Application constants
const (
	AppName    = "zhuanxie"
	AppVersion = "1.0.0"

	// Upload limits
	MaxAudioFileSize = 50 * 1024 * 1024 // 50MB

	// Playback highlighting window, independent of the segment end
	ActiveLineWindow = 5.0 // seconds

	// Synthetic timing used for segments without engine timestamps
	DemoSegmentGap     = 0.5  // seconds between two segments
	SecondsPerRune     = 0.25 // synthetic duration per character
	MinSegmentDuration = 1.0  // seconds
	DemoConfidence     = 0.95

	DefaultDemoDelay = 1500 * time.Millisecond
	DefaultLanguage  = "zh"
	DefaultBaseName  = "transcript"
	DemoEngineName   = "demo"
)

// Allowed audio MIME types
var AllowedAudioTypes = map[string]bool{
	"audio/mpeg":  true,
	"audio/wav":   true,
	"audio/x-wav": true,
	"audio/mp4":   true,
	"audio/ogg":   true,
}

// Export file name suffixes and extensions
var exportFiles = map[ExportFormat]struct {
	Suffix      string
	Ext         string
	ContentType string
}{
	ExportFormatText:       {Suffix: "转写结果", Ext: "txt", ContentType: "text/plain; charset=utf-8"},
	ExportFormatSubtitle:   {Suffix: "字幕", Ext: "srt", ContentType: "application/x-subrip; charset=utf-8"},
	ExportFormatStructured: {Suffix: "数据", Ext: "json", ContentType: "application/json; charset=utf-8"},
}

// DefaultLanguages is the built-in language catalog
var DefaultLanguages = []Language{
	{Code: "zh", Name: "中文 (普通话)"},
	{Code: "zh-TW", Name: "中文 (繁體)"},
	{Code: "yue", Name: "粤语"},
	{Code: "en", Name: "English"},
	{Code: "ja", Name: "日本語"},
	{Code: "ko", Name: "한국어"},
}

// DefaultDemoSentences is the fixed demonstration transcript
var DefaultDemoSentences = []string{
	"欢迎使用音频转写工具。",
	"这是一段演示文本，用于展示转写结果的显示效果。",
	"当浏览器或系统不支持语音识别时，会自动显示这段内容。",
	"每一句话都会带有时间戳，方便您对照音频进行校对。",
	"您可以将结果导出为纯文本、字幕文件或结构化数据。",
}

// Text export header labels
const (
	HeaderTitle     = "音频转写结果"
	HeaderGenerated = "生成时间"
	HeaderDuration  = "音频时长"
	HeaderLanguage  = "语言"
	HeaderSeparator = "========================================"
)

// Run outcomes recorded in metrics
const (
	OutcomeLive     = "live"
	OutcomeFallback = "fallback"
	OutcomeFailed   = "failed"
)
