package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type itemController struct{}

var ItemController = new(itemController)

func (itemController itemController) API(gin *gin.RouterGroup) {
	a := gin.Group("item")
	a.Use(
		middleware.ParseCaller(),
	)
	{
		a.GET("popup", itemController.Popup)
	}
}

func (itemController itemController) Popup(ctx *gin.Context) {
	r := new(types.RequestItemPopup)
	if !BindQuery(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.ItemService.Popup(ctx.Request.Context(), r)
	})
}
