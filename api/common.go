package api

import (
	"fmt"

	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/pkg/response"

	"github.com/gin-gonic/gin"
)

// ErrorData 业务错误的标题与消息列表, 放在响应的 data 中
type ErrorData struct {
	Title    string   `json:"title"`
	Messages []string `json:"messages"`
}

// Service 执行业务逻辑并统一输出响应
func Service(ctx *gin.Context, fu func() (interface{}, interface{})) {
	data, err := fu()
	if err != nil {
		e, ok := err.(error)
		if !ok {
			response.Fail(ctx, nil, fmt.Sprint(err))
			ctx.Abort()
			return
		}

		if title, messages, ok := services.ErrorBlock(e); ok {
			response.Fail(ctx, ErrorData{Title: title, Messages: messages}, e.Error())
			ctx.Abort()
			return
		}

		_ = ctx.Error(e)
		response.Fail(ctx, nil, e.Error())
		ctx.Abort()
		return
	}

	response.Success(ctx, data, "success")
}

// BindJson 解析失败时已写出响应, 调用方直接返回
func BindJson(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindJSON(req); err != nil {
		response.Fail(ctx, nil, err.Error())
		ctx.Abort()
		return false
	}
	return true
}

func BindQuery(ctx *gin.Context, req interface{}) bool {
	if err := ctx.ShouldBindQuery(req); err != nil {
		response.Fail(ctx, nil, err.Error())
		ctx.Abort()
		return false
	}
	return true
}

func callerName(ctx *gin.Context) string {
	return ctx.GetString(middleware.CallerNameKey)
}

func callerRole(ctx *gin.Context) string {
	return ctx.GetString(middleware.CallerRoleKey)
}
