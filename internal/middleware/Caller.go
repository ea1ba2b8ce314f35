package middleware

import (
	"strings"

	"ticketPlatform/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	UserNameHeaderKey = "X-User-Name"
	UserRoleHeaderKey = "X-User-Role"

	// CallerNameKey / CallerRoleKey gin.Context 中保存调用方身份的键
	CallerNameKey = "CallerName"
	CallerRoleKey = "CallerRole"
)

// ParseCaller 调用方身份由前置的宿主应用通过请求头传入, 缺少角色的请求直接拒绝
func ParseCaller() gin.HandlerFunc {
	return func(context *gin.Context) {
		role := strings.TrimSpace(context.Request.Header.Get(UserRoleHeaderKey))
		if role == "" {
			response.TokenFail(context)
			context.Abort()
			return
		}

		name := strings.TrimSpace(context.Request.Header.Get(UserNameHeaderKey))
		if name == "" {
			name = "anonymous"
		}

		context.Set(CallerNameKey, name)
		context.Set(CallerRoleKey, role)
		context.Next()
	}
}
