package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Envelope 统一响应包装：success 标识成功与否，message 成功时为业务数据、
// 失败时为面向用户的错误文案。前端依赖该约定分支，不能只看 HTTP 状态码。
type Envelope struct {
	Success bool        `json:"success"`
	Message interface{} `json:"message"`
}

// OK 成功响应
func OK(c echo.Context, message interface{}) error {
	return c.JSON(http.StatusOK, Envelope{Success: true, Message: message})
}

// Fail 失败响应（message 必须是可直接展示的文案，不允许透出内部错误）
func Fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Envelope{Success: false, Message: message})
}
