package middleware

import (
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/services"
	"ticketPlatform/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/zeromicro/go-zero/core/logc"
)

// SettingsPermission 管理类接口需要 (角色, settings, write) 策略
func SettingsPermission() gin.HandlerFunc {
	return func(context *gin.Context) {
		role := context.GetString(CallerRoleKey)

		if !services.CanWriteSettings(ctx.DO(), role) {
			logc.Infof(context.Request.Context(), "拒绝访问, role: %s, path: %s", role, context.Request.URL.Path)
			response.PermissionFail(context)
			context.Abort()
			return
		}

		context.Next()
	}
}
