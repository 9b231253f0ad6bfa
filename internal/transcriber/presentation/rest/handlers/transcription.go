package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

// RunStatsProvider summarizes recorded runs
type RunStatsProvider interface {
	GetRunStats(ctx context.Context, period string) (map[string]any, error)
}

// TranscriptionHandler serves the session endpoints
type TranscriptionHandler struct {
	service core.TranscriptionService
	stats   RunStatsProvider
	logger  *slog.Logger
}

// NewTranscriptionHandler creates the handler; stats may be nil
func NewTranscriptionHandler(service core.TranscriptionService, stats RunStatsProvider, logger *slog.Logger) *TranscriptionHandler {
	return &TranscriptionHandler{
		service: service,
		stats:   stats,
		logger:  logger,
	}
}

type produceRequest struct {
	Language          string `json:"language"`
	Model             string `json:"model"`
	IncludeTimestamps *bool  `json:"include_timestamps"`
	RequireLive       bool   `json:"require_live"`
}

type produceResponse struct {
	Transcription *core.Transcription `json:"transcription"`
	Lines         []core.ActiveLine   `json:"lines"`
	Status        core.RunStatus      `json:"status"`
}

type currentResponse struct {
	Transcription     *core.Transcription `json:"transcription"`
	IncludeTimestamps bool                `json:"include_timestamps"`
	Audio             *core.AudioFile     `json:"audio,omitempty"`
}

type audioResponse struct {
	Audio         core.AudioFile `json:"audio"`
	FormattedSize string         `json:"formatted_size"`
}

// UploadAudio handles POST /audio with a multipart "file" field
func (h *TranscriptionHandler) UploadAudio(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		ctx.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(fmt.Sprintf("Error getting file: %v", err)))
		return
	}

	audio := core.AudioFile{
		Name:     fileHeader.Filename,
		MIMEType: fileHeader.Header.Get("Content-Type"),
		Size:     fileHeader.Size,
	}

	// reject on metadata before reading the body
	if err := core.ValidateAudioFile(audio); err != nil {
		AbortWithError(ctx, err)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.ErrorContext(ctx, "Error opening uploaded file", "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("Error opening file"))
		return
	}
	defer file.Close()

	content, err := io.ReadAll(io.LimitReader(file, core.MaxAudioFileSize+1))
	if err != nil {
		h.logger.ErrorContext(ctx, "Error reading uploaded file", "error", err)
		ctx.AbortWithStatusJSON(http.StatusInternalServerError, NewErrorResponse("Error reading file"))
		return
	}
	audio.Size = int64(len(content))

	stored, err := h.service.SetAudio(ctx, audio, content)
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	resp := NewSuccessResponse(audioResponse{
		Audio:         stored,
		FormattedSize: FormatFileSize(stored.Size),
	})
	resp.Message = "文件上传成功"
	ctx.JSON(http.StatusOK, resp)
}

// ClearAudio handles DELETE /audio
func (h *TranscriptionHandler) ClearAudio(ctx *gin.Context) {
	if err := h.service.ClearAudio(ctx); err != nil {
		AbortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewSuccessResponse(nil))
}

// ClearSession handles DELETE /session
func (h *TranscriptionHandler) ClearSession(ctx *gin.Context) {
	if err := h.service.ClearAll(ctx); err != nil {
		AbortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewSuccessResponse(h.service.Status()))
}

// Produce handles POST /transcriptions
func (h *TranscriptionHandler) Produce(ctx *gin.Context) {
	// an empty body means every setting keeps its default
	var req produceRequest
	if ctx.Request.Body != nil && ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			ctx.AbortWithStatusJSON(http.StatusBadRequest, NewErrorResponse(err.Error()))
			return
		}
	}

	includeTimestamps := true
	if req.IncludeTimestamps != nil {
		includeTimestamps = *req.IncludeTimestamps
	}

	transcription, err := h.service.Produce(ctx, core.ProduceInput{
		Language:          strings.TrimSpace(req.Language),
		Model:             strings.TrimSpace(req.Model),
		IncludeTimestamps: includeTimestamps,
		RequireLive:       req.RequireLive,
	})
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, NewSuccessResponse(produceResponse{
		Transcription: transcription,
		Lines:         core.RenderLines(transcription.Segments, -1),
		Status:        h.service.Status(),
	}))
}

// Status handles GET /transcriptions/status
func (h *TranscriptionHandler) Status(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewSuccessResponse(h.service.Status()))
}

// Current handles GET /transcriptions/current
func (h *TranscriptionHandler) Current(ctx *gin.Context) {
	transcription, err := h.service.Current()
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	resp := currentResponse{
		Transcription:     transcription,
		IncludeTimestamps: h.service.IncludeTimestamps(),
	}
	if audio, ok := h.service.Audio(); ok {
		resp.Audio = &audio
	}

	ctx.JSON(http.StatusOK, NewSuccessResponse(resp))
}

// Export handles GET /transcriptions/export?format=txt|srt|json&timestamps=bool
func (h *TranscriptionHandler) Export(ctx *gin.Context) {
	format, err := core.ParseExportFormat(ctx.Query("format"))
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	includeTimestamps := h.service.IncludeTimestamps()
	if raw := ctx.Query("timestamps"); raw != "" {
		includeTimestamps, err = strconv.ParseBool(raw)
		if err != nil {
			AbortWithError(ctx, core.NewValidationError("timestamps", "timestamps must be a boolean"))
			return
		}
	}

	result, err := h.service.Export(ctx, format, includeTimestamps)
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	ctx.Header("Content-Disposition", contentDisposition(result.FileName))
	ctx.Data(http.StatusOK, result.ContentType, []byte(result.Content))
}

// ActiveLines handles GET /transcriptions/active?position=seconds
func (h *TranscriptionHandler) ActiveLines(ctx *gin.Context) {
	position, err := strconv.ParseFloat(ctx.DefaultQuery("position", "0"), 64)
	if err != nil || math.IsNaN(position) || math.IsInf(position, 0) {
		AbortWithError(ctx, core.NewValidationError("position", "position must be a number of seconds"))
		return
	}

	lines, err := h.service.ActiveLines(position)
	if err != nil {
		AbortWithError(ctx, err)
		return
	}

	current := []int{}
	for _, line := range lines {
		if line.Current {
			current = append(current, line.Index)
		}
	}

	ctx.JSON(http.StatusOK, NewSuccessResponse(gin.H{
		"position":         position,
		"position_display": core.FormatTimeForDisplay(position),
		"current":          current,
		"lines":            lines,
	}))
}

// Languages handles GET /languages
func (h *TranscriptionHandler) Languages(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, NewSuccessResponse(h.service.Languages()))
}

// RunStats handles GET /metrics/runs?period=hour|day|week|month
func (h *TranscriptionHandler) RunStats(ctx *gin.Context) {
	if h.stats == nil {
		ctx.AbortWithStatusJSON(http.StatusNotFound, NewErrorResponse("metrics are disabled"))
		return
	}

	stats, err := h.stats.GetRunStats(ctx, ctx.DefaultQuery("period", "day"))
	if err != nil {
		AbortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, NewSuccessResponse(stats))
}

// contentDisposition builds an attachment header that keeps non-ASCII file names
func contentDisposition(fileName string) string {
	fallback := strings.Map(func(r rune) rune {
		if r > 127 || r == '"' || r == '\\' {
			return '_'
		}
		return r
	}, fileName)
	return fmt.Sprintf(`attachment; filename="%s"; filename*=UTF-8''%s`, fallback, url.PathEscape(fileName))
}

// FormatFileSize renders a byte count for display
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d Bytes", size)
	}

	units := []string{"KB", "MB", "GB"}
	value := float64(size) / unit
	i := 0
	for value >= unit && i < len(units)-1 {
		value /= unit
		i++
	}
	return fmt.Sprintf("%.2f %s", value, units[i])
}
