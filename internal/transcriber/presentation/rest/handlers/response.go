package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/izzddalfk/zhuanxie/internal/transcriber/core"
)

// APIResponse is the envelope of every JSON response. Message is meant to be
// shown to the user as a transient notification.
type APIResponse struct {
	Success   bool        `json:"success"`
	Data      interface{} `json:"data,omitempty"`
	Message   string      `json:"message,omitempty"`
	Code      string      `json:"code,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

func NewSuccessResponse(data interface{}) *APIResponse {
	return &APIResponse{
		Success:   true,
		Data:      data,
		Timestamp: time.Now().Unix(),
	}
}

func NewErrorResponse(message string) *APIResponse {
	return &APIResponse{
		Success:   false,
		Message:   message,
		Timestamp: time.Now().Unix(),
	}
}

// errorStatus maps domain errors to an HTTP status and a user message
func errorStatus(err error) (int, *APIResponse) {
	var (
		validationErr core.ValidationError
		recErr        core.RecognitionError
	)

	switch {
	case errors.As(err, &validationErr):
		return http.StatusBadRequest, NewErrorResponse(validationErr.Message)
	case errors.Is(err, core.ErrNoAudio):
		return http.StatusBadRequest, NewErrorResponse("请先选择音频文件")
	case errors.Is(err, core.ErrNoData):
		return http.StatusNotFound, NewErrorResponse("没有可导出的转写结果")
	case errors.Is(err, core.ErrBusy):
		return http.StatusConflict, NewErrorResponse("转写正在进行中，请稍候")
	case errors.Is(err, core.ErrRateLimited):
		return http.StatusTooManyRequests, NewErrorResponse("请求过于频繁，请稍后再试")
	case errors.Is(err, core.ErrUnsupportedCapability):
		return http.StatusServiceUnavailable, NewErrorResponse("当前环境不支持语音识别功能")
	case errors.As(err, &recErr):
		resp := NewErrorResponse("语音识别出错: " + recErr.Code)
		resp.Code = recErr.Code
		return http.StatusBadGateway, resp
	default:
		return http.StatusInternalServerError, NewErrorResponse("转写失败，请重试")
	}
}

// AbortWithError writes the error envelope for err
func AbortWithError(ctx *gin.Context, err error) {
	status, resp := errorStatus(err)
	_ = ctx.Error(err)
	ctx.AbortWithStatusJSON(status, resp)
}
