package recognizer_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/adapters/recognizer"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func getTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelWarn}))
}

// writeScript creates an executable mock recognizer
func writeScript(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "mock-recognizer")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755)
	require.NoError(t, err)
	return path
}

func newTestRecognizer(t *testing.T, path string, timeout time.Duration) *recognizer.CommandRecognizer {
	t.Helper()

	rec, err := recognizer.NewCommandRecognizer(recognizer.CommandRecognizerConfig{
		ExecutablePath: path,
		DefaultModel:   "base",
		Timeout:        timeout,
		Logger:         getTestLogger(),
	})
	require.NoError(t, err)
	return rec
}

func TestNewCommandRecognizer_InvalidConfig(t *testing.T) {
	_, err := recognizer.NewCommandRecognizer(recognizer.CommandRecognizerConfig{
		Timeout: time.Second,
		Logger:  getTestLogger(),
	})
	assert.Error(t, err)
}

func TestCommandRecognizer_Name(t *testing.T) {
	rec := newTestRecognizer(t, "/usr/local/bin/whisper-cli", time.Second)
	assert.Equal(t, "whisper-cli", rec.Name())
}

func TestCommandRecognizer_IsAvailable(t *testing.T) {
	t.Run("probe succeeds", func(t *testing.T) {
		path := writeScript(t, `[ "$1" = "--version" ] && echo "mock 1.0" && exit 0
exit 1
`)
		assert.True(t, newTestRecognizer(t, path, time.Second).IsAvailable(context.Background()))
	})

	t.Run("probe fails", func(t *testing.T) {
		path := writeScript(t, "exit 3\n")
		assert.False(t, newTestRecognizer(t, path, time.Second).IsAvailable(context.Background()))
	})

	t.Run("missing executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "does-not-exist")
		assert.False(t, newTestRecognizer(t, path, time.Second).IsAvailable(context.Background()))
	})
}

func TestCommandRecognizer_Recognize(t *testing.T) {
	req := core.RecognitionRequest{AudioPath: "/tmp/audio.mp3", Language: "zh"}

	t.Run("segments from the engine", func(t *testing.T) {
		path := writeScript(t, `cat <<'EOF'
{"text":"ignored","language":"zh","duration":12,"segments":[
 {"text":"第二句。","start":4,"end":6,"confidence":0.8},
 {"text":"第一句。","start":0,"end":2.5,"confidence":0.9}
]}
EOF
`)
		result, err := newTestRecognizer(t, path, 5*time.Second).Recognize(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, result.Segments, 2)
		assert.Equal(t, "第一句。", result.Segments[0].Text)
		assert.Equal(t, "第一句。 第二句。", result.Text)
		assert.Equal(t, 12.0, result.Duration)
		assert.Equal(t, "zh", result.Language)
	})

	t.Run("plain text is segmented", func(t *testing.T) {
		path := writeScript(t, `echo '{"text":"你好。再见！","language":"yue","confidence":0.6}'
`)
		result, err := newTestRecognizer(t, path, 5*time.Second).Recognize(context.Background(), req)
		require.NoError(t, err)

		require.Len(t, result.Segments, 2)
		assert.Equal(t, "yue", result.Language)
		assert.Equal(t, 0.0, result.Segments[0].Start)
		assert.Equal(t, 1.5, result.Segments[1].Start)
		assert.Equal(t, 0.6, result.Segments[1].Confidence)
		assert.Equal(t, 2.5, result.Duration)
	})

	t.Run("arguments are passed through", func(t *testing.T) {
		path := writeScript(t, `printf '{"text":"%s"}' "$*"
`)
		result, err := newTestRecognizer(t, path, 5*time.Second).Recognize(context.Background(),
			core.RecognitionRequest{AudioPath: "/tmp/clip", Language: "en", Model: "small"})
		require.NoError(t, err)
		assert.Equal(t, "--audio /tmp/clip --language en --model small", result.Text)

		// the configured default model is used when the request has none
		result, err = newTestRecognizer(t, path, 5*time.Second).Recognize(context.Background(),
			core.RecognitionRequest{AudioPath: "/tmp/clip", Language: "zh"})
		require.NoError(t, err)
		assert.Equal(t, "--audio /tmp/clip --language zh --model base", result.Text)
	})

	t.Run("no speech yields an empty transcription", func(t *testing.T) {
		path := writeScript(t, `echo '{"text":""}'
`)
		result, err := newTestRecognizer(t, path, 5*time.Second).Recognize(context.Background(), req)
		require.NoError(t, err)
		assert.Empty(t, result.Segments)
	})
}

func TestCommandRecognizer_RecognizeErrors(t *testing.T) {
	req := core.RecognitionRequest{AudioPath: "/tmp/audio.mp3", Language: "zh"}

	tests := []struct {
		name    string
		script  string
		timeout time.Duration
		code    string
		message string
	}{
		{
			name:    "error document",
			script:  `echo '{"error":{"code":"network","message":"engine offline"}}'` + "\n",
			code:    "network",
			message: "engine offline",
		},
		{
			name:    "error document with non-zero exit",
			script:  `echo '{"error":{"code":"audio-capture","message":"cannot decode"}}'` + "\nexit 2\n",
			code:    "audio-capture",
			message: "cannot decode",
		},
		{
			name:    "non-zero exit",
			script:  "echo 'model not found' >&2\nexit 4\n",
			code:    "exit-4",
			message: "model not found",
		},
		{
			name:   "invalid output",
			script: "echo 'not json'\n",
			code:   "bad-output",
		},
		{
			name:    "timeout",
			script:  "exec sleep 5\n",
			timeout: 200 * time.Millisecond,
			code:    "timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			timeout := tt.timeout
			if timeout == 0 {
				timeout = 5 * time.Second
			}

			path := writeScript(t, tt.script)
			_, err := newTestRecognizer(t, path, timeout).Recognize(context.Background(), req)

			var recErr core.RecognitionError
			require.ErrorAs(t, err, &recErr)
			assert.Equal(t, tt.code, recErr.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, recErr.Message)
			}
		})
	}

	t.Run("missing executable", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "does-not-exist")
		_, err := newTestRecognizer(t, path, time.Second).Recognize(context.Background(), req)

		var recErr core.RecognitionError
		require.ErrorAs(t, err, &recErr)
		assert.Equal(t, "service-not-allowed", recErr.Code)
	})
}
