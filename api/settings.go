package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type settingsController struct{}

var SettingsController = new(settingsController)

/*
插件配置 API
/api/w8t/ticket/settings
*/
func (settingsController settingsController) API(gin *gin.RouterGroup) {
	a := gin.Group("settings")
	a.Use(
		middleware.ParseCaller(),
		middleware.SettingsPermission(),
		middleware.AuditingLog(),
	)
	{
		a.POST("save", settingsController.Save)
	}

	b := gin.Group("settings")
	b.Use(
		middleware.ParseCaller(),
		middleware.SettingsPermission(),
	)
	{
		b.GET("get", settingsController.Get)
	}
}

func (settingsController settingsController) Save(ctx *gin.Context) {
	r := new(types.RequestSettingsSave)
	if !BindJson(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.SettingService.Save(r)
	})
}

func (settingsController settingsController) Get(ctx *gin.Context) {
	Service(ctx, func() (interface{}, interface{}) {
		return services.SettingService.Get()
	})
}
