package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type operationLogController struct{}

var OperationLogController = new(operationLogController)

func (operationLogController operationLogController) API(gin *gin.RouterGroup) {
	a := gin.Group("operationLog")
	a.Use(
		middleware.ParseCaller(),
		middleware.SettingsPermission(),
	)
	{
		a.GET("list", operationLogController.List)
	}
}

func (operationLogController operationLogController) List(ctx *gin.Context) {
	r := new(types.RequestOperationLogQuery)
	if !BindQuery(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.OperationLogService.List(r)
	})
}
