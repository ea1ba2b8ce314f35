package api

import (
	"ticketPlatform/internal/middleware"
	"ticketPlatform/internal/services"
	"ticketPlatform/internal/types"

	"github.com/gin-gonic/gin"
)

type eventController struct{}

var EventController = new(eventController)

/*
事件详情 API
/api/w8t/ticket/event
*/
func (eventController eventController) API(gin *gin.RouterGroup) {
	a := gin.Group("event")
	a.Use(
		middleware.ParseCaller(),
	)
	{
		a.GET("details", eventController.Details)
		a.GET("actionList", eventController.ActionList)
	}
}

func (eventController eventController) Details(ctx *gin.Context) {
	r := new(types.RequestEventDetails)
	if !BindQuery(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.EventService.Details(ctx.Request.Context(), r)
	})
}

func (eventController eventController) ActionList(ctx *gin.Context) {
	r := new(types.RequestActionList)
	if !BindQuery(ctx, r) {
		return
	}

	Service(ctx, func() (interface{}, interface{}) {
		return services.EventService.ActionList(ctx.Request.Context(), r)
	})
}
