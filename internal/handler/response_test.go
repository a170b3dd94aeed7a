package handler

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Ludium-Official/ludium-portal-backend-sub001/internal/domainerr"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestDomainErrorResponseStatusMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"不存在", domainerr.NotFound("计划不存在"), http.StatusNotFound},
		{"无权限", domainerr.Unauthorized("无权限"), http.StatusForbidden},
		{"窗口关闭", domainerr.WindowClosed("窗口已关闭"), http.StatusUnprocessableEntity},
		{"超过限额", domainerr.LimitExceeded("超过限额"), http.StatusUnprocessableEntity},
		{"约束违反", domainerr.InvariantViolation("百分比超限"), http.StatusUnprocessableEntity},
		{"重复处理", domainerr.AlreadyProcessed("已处理"), http.StatusConflict},
		{"未知错误", errors.New("connection lost"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			router.GET("/t", func(c *gin.Context) {
				DomainErrorResponse(c, tt.err)
			})

			req := httptest.NewRequest("GET", "/t", nil)
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}
