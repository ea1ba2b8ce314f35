package middleware

import (
	"strconv"

	"ticketPlatform/pkg/metrics"

	"github.com/gin-gonic/gin"
)

// Metrics 按路由模板统计请求数, 未匹配的路由归为 unknown
func Metrics() gin.HandlerFunc {
	return func(context *gin.Context) {
		context.Next()

		path := context.FullPath()
		if path == "" {
			path = "unknown"
		}
		metrics.HTTPRequests.WithLabelValues(context.Request.Method, path, strconv.Itoa(context.Writer.Status())).Inc()
	}
}
