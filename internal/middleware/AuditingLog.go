package middleware

import (
	"bytes"
	"io"
	"time"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/zeromicro/go-zero/core/logc"
)

// AuditingLog 记录变更类接口的调用, 写入失败不影响响应
func AuditingLog() gin.HandlerFunc {
	return func(context *gin.Context) {
		readBody, err := io.ReadAll(context.Request.Body)
		if err != nil {
			logc.Error(context.Request.Context(), err)
			return
		}
		// 将 body 数据放回请求中
		context.Request.Body = io.NopCloser(bytes.NewBuffer(readBody))

		context.Next()

		operationLog := models.OperationLog{
			ID:         uuid.NewString(),
			UserName:   context.GetString(CallerNameKey),
			Role:       context.GetString(CallerRoleKey),
			IPAddress:  context.ClientIP(),
			Method:     context.Request.Method,
			Path:       context.Request.URL.Path,
			Body:       scrubBody(readBody),
			StatusCode: context.Writer.Status(),
			RequestId:  context.GetString(RequestIdKey),
			CreatedAt:  time.Now().Unix(),
		}

		c := ctx.DO()
		if err := c.DB.OperationLog().Create(operationLog); err != nil {
			logc.Errorf(context.Request.Context(), "操作日志写入数据库失败, err: %s", err.Error())
		}
	}
}

// 写入操作日志前需要隐藏的请求字段
var sensitiveFields = []string{"apiToken"}

const redactedValue = "******"

// scrubBody 隐藏 JSON 请求体中的凭据, 无法解析的请求体不记录原文
func scrubBody(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}

	var fields map[string]interface{}
	if err := sonic.Unmarshal(body, &fields); err != nil {
		return ""
	}

	changed := false
	for _, key := range sensitiveFields {
		if v, ok := fields[key]; ok && v != "" && v != nil {
			fields[key] = redactedValue
			changed = true
		}
	}
	if !changed {
		return string(body)
	}

	out, err := sonic.Marshal(fields)
	if err != nil {
		return ""
	}
	return string(out)
}
