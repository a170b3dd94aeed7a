package handler

import (
	"net/http"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/gin-gonic/gin"
)

// SuccessResponse 成功响应
func SuccessResponse(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, Response{
		Success: true,
		Message: message,
		Data:    data,
	})
}

// ErrorResponse 错误响应
func ErrorResponse(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Response{
		Success: false,
		Message: message,
		Data:    nil,
	})
}

// DomainErrorResponse 按领域错误类别映射 HTTP 状态码
func DomainErrorResponse(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch domainerr.KindOf(err) {
	case domainerr.KindNotFound:
		status = http.StatusNotFound
	case domainerr.KindUnauthorized:
		status = http.StatusForbidden
	case domainerr.KindWindowClosed, domainerr.KindLimitExceeded, domainerr.KindInvariantViolation:
		status = http.StatusUnprocessableEntity
	case domainerr.KindAlreadyProcessed:
		status = http.StatusConflict
	}
	ErrorResponse(c, status, err.Error())
}
