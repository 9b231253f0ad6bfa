package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/izzddalfk/zhuanxie/internal/transcriber/config"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

func getTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig(t *testing.T) *config.Configs {
	t.Helper()
	return &config.Configs{
		ApplicationConfig: config.ApplicationConfig{
			DataDir:           t.TempDir(),
			MetricsDBPath:     ":memory:",
			RecognizerTimeout: 1,
			DefaultLanguage:   "zh",
		},
		ServerConfig: config.ServerConfig{
			Port:         3377,
			ReadTimeout:  1,
			WriteTimeout: 1,
		},
	}
}

func TestRun_FailureLeavesCleanupToCaller(t *testing.T) {
	ctx := context.Background()
	logger := getTestLogger()
	cfg := testConfig(t)

	deps, err := initializeDependencies(cfg.ApplicationConfig, logger)
	require.NoError(t, err)

	upload, err := deps.AudioStore.Save(ctx, core.AudioFile{Name: "a.mp3"}, []byte("x"))
	require.NoError(t, err)

	// a zero read timeout makes the HTTP server refuse to start
	cfg.ServerConfig.ReadTimeout = 0
	require.Error(t, run(ctx, cfg, deps, logger))

	deps.Cleanup(ctx, logger)

	_, err = os.Stat(upload.Path)
	assert.True(t, os.IsNotExist(err))
	_, err = deps.MetricsCollector.GetRunStats(ctx, "day")
	assert.Error(t, err)
}

func TestRun_InvalidDependencies(t *testing.T) {
	err := run(context.Background(), testConfig(t), &Dependencies{}, getTestLogger())
	assert.Error(t, err)
}

func TestInitializeDependencies(t *testing.T) {
	t.Run("live recognizer is optional", func(t *testing.T) {
		deps, err := initializeDependencies(testConfig(t).ApplicationConfig, getTestLogger())
		require.NoError(t, err)
		defer deps.Cleanup(context.Background(), getTestLogger())

		assert.Nil(t, deps.LiveRecognizer)
		assert.Equal(t, core.DemoEngineName, deps.FallbackRecognizer.Name())
	})

	t.Run("invalid recognizer settings", func(t *testing.T) {
		cfg := testConfig(t).ApplicationConfig
		cfg.RecognizerCommand = "whisper"
		cfg.RecognizerTimeout = 0

		_, err := initializeDependencies(cfg, getTestLogger())
		assert.Error(t, err)
	})
}

func TestDependencies_CleanupPartial(t *testing.T) {
	assert.NotPanics(t, func() {
		(&Dependencies{}).Cleanup(context.Background(), getTestLogger())
	})
}
