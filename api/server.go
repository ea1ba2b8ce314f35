package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type serverController struct{}

var ServerController = new(serverController)

/*
远端服务管理 API
/api/w8t/ticket/server
*/
func (serverController serverController) API(gin *gin.RouterGroup) {
	a := gin.Group("server")
	a.Use(
		middleware.ParseCaller(),
		middleware.SettingsPermission(),
		middleware.AuditingLog(),
	)
	{
		a.POST("save", serverController.Save)
		a.POST("delete", serverController.Delete)
		a.POST("resetCache", serverController.ResetCache)
		a.POST("checkConnection", serverController.CheckConnection)
	}

	b := gin.Group("server")
	b.Use(
		middleware.ParseCaller(),
		middleware.SettingsPermission(),
	)
	{
		b.GET("get", serverController.Get)
	}
}

func (serverController serverController) Get(ctx *gin.Context) {
	r := new(types.RequestServerQuery)
	if !BindQuery(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ServerService.Get(r)
	})
}

func (serverController serverController) Save(ctx *gin.Context) {
	r := new(types.RequestServerSave)
	if !BindJson(ctx, r) {
		return
	}
	r.UpdateBy = callerName(ctx)

	Service(ctx, func() (interface{}, interface{}) {
		return services.ServerService.Save(ctx.Request.Context(), r)
	})
}

func (serverController serverController) Delete(ctx *gin.Context) {
	r := new(types.RequestServerQuery)
	if !BindJson(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ServerService.Delete(ctx.Request.Context(), r)
	})
}

func (serverController serverController) ResetCache(ctx *gin.Context) {
	r := new(types.RequestServerQuery)
	if !BindJson(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ServerService.ResetCache(ctx.Request.Context(), r)
	})
}

func (serverController serverController) CheckConnection(ctx *gin.Context) {
	r := new(types.RequestServerQuery)
	if !BindJson(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ServerService.CheckConnection(ctx.Request.Context(), r)
	})
}
