// Package handler 提供 HTTP 请求处理器
package handler

import (
	"github.com/gin-gonic/gin"

	"lecture-quiz-api/internal/interfaces/http/dto"
	"lecture-quiz-api/pkg/errors"
	"lecture-quiz-api/pkg/logger"
)

// respondError 将应用错误映射为 HTTP 响应，未识别的错误按 500 处理
func respondError(c *gin.Context, err error, fallback string) {
	if errors.IsAppError(err) {
		appErr := errors.AsAppError(err)
		c.JSON(appErr.HTTPStatus, dto.ErrorResponse{
			Code:    appErr.HTTPStatus,
			Message: appErr.Message,
			TraceID: c.GetString("trace_id"),
		})
		return
	}
	logger.Error(c.Request.Context(), fallback, err)
	dto.InternalError(c, fallback)
}
