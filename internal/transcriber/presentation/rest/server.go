package rest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/presentation/rest/handlers"
	"gopkg.in/validator.v2"
)

// multipart overhead allowed on top of the audio size cap
const uploadOverhead = 1 << 20

type Server struct {
	service      core.TranscriptionService
	handler      *handlers.TranscriptionHandler
	limiter      core.RateLimiter
	logger       *slog.Logger
	addr         string
	readTimeout  time.Duration
	writeTimeout time.Duration
	startedAt    time.Time

	router *gin.Engine
}

type ServerConfig struct {
	TranscriptionService core.TranscriptionService `validate:"-"`
	RunStats             handlers.RunStatsProvider `validate:"-"`
	// RateLimiter is optional and throttles upload and produce
	RateLimiter  core.RateLimiter `validate:"-"`
	Logger       *slog.Logger     `validate:"nonnil"`
	Addr         string           `validate:"nonzero"`
	ReadTimeout  time.Duration    `validate:"nonzero"`
	WriteTimeout time.Duration    `validate:"nonzero"`
}

func NewServer(config ServerConfig) (*Server, error) {
	if err := validator.Validate(config); err != nil {
		return nil, err
	}
	if config.TranscriptionService == nil {
		return nil, errors.New("TranscriptionService: zero value")
	}

	router := gin.New()
	router.MaxMultipartMemory = 8 << 20

	s := &Server{
		service:      config.TranscriptionService,
		handler:      handlers.NewTranscriptionHandler(config.TranscriptionService, config.RunStats, config.Logger),
		limiter:      config.RateLimiter,
		logger:       config.Logger,
		addr:         config.Addr,
		readTimeout:  config.ReadTimeout,
		writeTimeout: config.WriteTimeout,
		startedAt:    time.Now(),
		router:       router,
	}
	s.setup()

	return s, nil
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start serves until an interrupt signal or ctx cancellation, then shuts down
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.router,
		ReadTimeout:  s.readTimeout,
		WriteTimeout: s.writeTimeout,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.InfoContext(ctx, "Starting HTTP server", "address", s.addr)
		serverErrors <- server.ListenAndServe()
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case sig := <-quit:
		s.logger.WarnContext(ctx, "Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		s.logger.WarnContext(ctx, "Context cancelled, shutting down server")
	}

	// a running transcription is allowed to finish
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.writeTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		if closeErr := server.Close(); closeErr != nil {
			s.logger.ErrorContext(ctx, "Error during server force close", "error", closeErr)
		}
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	s.logger.InfoContext(ctx, "Server shutdown completed successfully")
	return nil
}

func (s *Server) setup() {
	s.router.Use(
		RequestID(),
		Logging(s.logger),
		Recovery(s.logger),
		Security(),
		CORS(),
	)

	s.router.GET("/", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, handlers.NewSuccessResponse(gin.H{
			"service": core.AppName,
			"version": core.AppVersion,
			"status":  s.service.Status().State,
			"uptime":  time.Since(s.startedAt).Truncate(time.Second).String(),
		}))
	})

	s.router.GET("/languages", s.handler.Languages)

	throttled := []gin.HandlerFunc{}
	if s.limiter != nil {
		throttled = append(throttled, RateLimit(s.limiter))
	}

	audio := s.router.Group("/audio")
	audio.POST("", append(throttled, MaxBodySize(core.MaxAudioFileSize+uploadOverhead), s.handler.UploadAudio)...)
	audio.DELETE("", s.handler.ClearAudio)

	s.router.DELETE("/session", s.handler.ClearSession)

	transcriptions := s.router.Group("/transcriptions")
	transcriptions.POST("", append(throttled, s.handler.Produce)...)
	transcriptions.GET("/status", s.handler.Status)
	transcriptions.GET("/current", s.handler.Current)
	transcriptions.GET("/export", s.handler.Export)
	transcriptions.GET("/active", s.handler.ActiveLines)

	s.router.GET("/metrics/runs", s.handler.RunStats)
}
