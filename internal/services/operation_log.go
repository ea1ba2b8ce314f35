package services

import (
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
)

type operationLogService struct {
	ctx *ctx.Context
}

type InterOperationLogService interface {
	List(req interface{}) (interface{}, interface{})
}

func newInterOperationLogService(ctx *ctx.Context) InterOperationLogService {
	return &operationLogService{
		ctx: ctx,
	}
}

func (ol operationLogService) List(req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestOperationLogQuery)

	data, count, err := ol.ctx.DB.OperationLog().List(r.UserName, r.Page)
	if err != nil {
		return nil, err
	}

	return types.ResponseOperationLogList{
		List: data,
		Page: models.Page{
			Index: r.Page.Index,
			Size:  r.Page.Size,
			Total: count,
		},
	}, nil
}
