package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type problemController struct{}

var ProblemController = new(problemController)

/*
问题列表与事件更新 API
/api/w8t/ticket/problem
*/
func (problemController problemController) API(gin *gin.RouterGroup) {
	a := gin.Group("problem")
	a.Use(
		middleware.ParseCaller(),
	)
	{
		a.POST("list", problemController.List)
		a.GET("acknowledgeEdit", problemController.AcknowledgeEdit)
	}

	b := gin.Group("problem")
	b.Use(
		middleware.ParseCaller(),
		middleware.AuditingLog(),
	)
	{
		b.POST("acknowledgeCreate", problemController.AcknowledgeCreate)
	}
}

func (problemController problemController) List(ctx *gin.Context) {
	r := new(types.RequestProblemList)
	if !BindJson(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ProblemService.List(ctx.Request.Context(), r)
	})
}

func (problemController problemController) AcknowledgeEdit(ctx *gin.Context) {
	r := new(types.RequestAcknowledgeEdit)
	if !BindQuery(ctx, r) {
		return
	}
	r.Role = callerRole(ctx)

	Service(ctx, func() (interface{}, interface{}) {
		return services.ProblemService.AcknowledgeEdit(ctx.Request.Context(), r)
	})
}

func (problemController problemController) AcknowledgeCreate(ctx *gin.Context) {
	r := new(types.RequestAcknowledgeCreate)
	if !BindJson(ctx, r) {
		return
	}
	r.UserName = callerName(ctx)
	r.Role = callerRole(ctx)

	Service(ctx, func() (interface{}, interface{}) {
		return services.ProblemService.AcknowledgeCreate(ctx.Request.Context(), r)
	})
}
