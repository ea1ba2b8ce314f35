package services

import (
	"ticketPlatform/internal/ctx"
)

var (
	ProblemService      InterProblemService
	EventService        InterEventService
	ItemService         InterItemService
	SettingService      InterSettingService
	ServerService       InterServerService
	OperationLogService InterOperationLogService
)

func NewServices(ctx *ctx.Context) {
	ProblemService = newInterProblemService(ctx)
	EventService = newInterEventService(ctx)
	ItemService = newInterItemService(ctx)
	SettingService = newInterSettingService(ctx)
	ServerService = newInterServerService(ctx)
	OperationLogService = newInterOperationLogService(ctx)
}
