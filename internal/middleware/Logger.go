package middleware

import (
	"time"

	"ticketPlatform/pkg/tools"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	RequestIdHeaderKey = "X-Request-Id"
	RequestIdKey       = "RequestId"
)

// RequestLogger 访问日志, 每个请求分配一个 request id 并回写到响应头
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(context *gin.Context) {
		requestId := context.Request.Header.Get(RequestIdHeaderKey)
		if requestId == "" {
			requestId = tools.RandId()
		}
		context.Set(RequestIdKey, requestId)
		context.Writer.Header().Set(RequestIdHeaderKey, requestId)

		start := time.Now()
		context.Next()

		entry := logger.WithFields(logrus.Fields{
			"method":    context.Request.Method,
			"path":      context.Request.URL.Path,
			"status":    context.Writer.Status(),
			"latency":   time.Since(start).String(),
			"requestId": requestId,
			"client":    context.ClientIP(),
		})
		if len(context.Errors) > 0 {
			entry.Error(context.Errors.String())
			return
		}
		entry.Info("request")
	}
}
