package audiostore

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"gopkg.in/validator.v2"
)

// LocalStore keeps uploaded audio files in a local directory. It only ever
// deletes files it wrote itself; the directory may be shared.
type LocalStore struct {
	basePath    string
	maxFileSize int64
	logger      *slog.Logger

	mu    sync.Mutex
	saved map[string]struct{}
}

// LocalStoreConfig holds configuration for the local audio store
type LocalStoreConfig struct {
	BasePath    string       `validate:"nonzero"`
	MaxFileSize int64        // defaults to core.MaxAudioFileSize
	Logger      *slog.Logger `validate:"nonnil"`
}

// NewLocalStore creates the store, creating its directory when missing
func NewLocalStore(cfg LocalStoreConfig) (*LocalStore, error) {
	if err := validator.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid audio store configuration: %w", err)
	}

	absBasePath, err := filepath.Abs(cfg.BasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base path: %w", err)
	}

	if err := os.MkdirAll(absBasePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}

	maxFileSize := cfg.MaxFileSize
	if maxFileSize <= 0 {
		maxFileSize = core.MaxAudioFileSize
	}

	store := &LocalStore{
		basePath:    absBasePath,
		maxFileSize: maxFileSize,
		logger:      cfg.Logger,
		saved:       make(map[string]struct{}),
	}

	cfg.Logger.InfoContext(context.Background(), "Audio store initialized",
		"base_path", absBasePath,
		"max_file_size", maxFileSize,
	)

	return store, nil
}

// Save writes the upload under a generated name and returns the file with
// its local path
func (s *LocalStore) Save(ctx context.Context, file core.AudioFile, content []byte) (core.AudioFile, error) {
	if err := ctx.Err(); err != nil {
		return core.AudioFile{}, err
	}

	if int64(len(content)) > s.maxFileSize {
		return core.AudioFile{}, core.NewValidationError("size", fmt.Sprintf("file size exceeds maximum of %d bytes", s.maxFileSize))
	}

	ext := strings.ToLower(filepath.Ext(file.Name))
	path := filepath.Join(s.basePath, uuid.NewString()+ext)

	if err := os.WriteFile(path, content, 0600); err != nil {
		s.logger.ErrorContext(ctx, "Failed to write audio file",
			"path", path,
			"error", err.Error(),
		)
		return core.AudioFile{}, fmt.Errorf("failed to write audio file: %w", err)
	}

	s.mu.Lock()
	s.saved[path] = struct{}{}
	s.mu.Unlock()

	file.Path = path
	file.Size = int64(len(content))

	s.logger.DebugContext(ctx, "Audio file stored",
		"name", file.Name,
		"path", path,
		"size", file.Size,
	)

	return file, nil
}

// Remove deletes a stored upload. Paths outside the store are refused and
// files the store did not write are left alone.
func (s *LocalStore) Remove(ctx context.Context, file core.AudioFile) error {
	if file.Path == "" {
		return nil
	}

	cleanPath, err := s.validatePath(file.Path)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.saved[cleanPath]; !ok {
		s.logger.DebugContext(ctx, "Skipping audio file not written by the store", "path", cleanPath)
		return nil
	}

	if err := os.Remove(cleanPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove audio file: %w", err)
	}
	delete(s.saved, cleanPath)

	s.logger.DebugContext(ctx, "Audio file removed", "path", cleanPath)
	return nil
}

// validatePath makes sure path lives inside the store directory
func (s *LocalStore) validatePath(path string) (string, error) {
	cleanPath := filepath.Clean(path)
	rel, err := filepath.Rel(s.basePath, cleanPath)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("path %s is outside the audio store", path)
	}
	return cleanPath, nil
}

// Close removes the uploads the store wrote and has not removed yet
func (s *LocalStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for path := range s.saved {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to remove audio file: %w", err)
		}
		delete(s.saved, path)
	}
	return nil
}
