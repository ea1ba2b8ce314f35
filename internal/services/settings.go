package services

import (
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
)

type (
	settingService struct {
		ctx *ctx.Context
	}

	InterSettingService interface {
		Save(req interface{}) (interface{}, interface{})
		Get() (interface{}, interface{})
	}
)

func newInterSettingService(ctx *ctx.Context) InterSettingService {
	return settingService{
		ctx: ctx,
	}
}

// Save cache_ttl 不低于 5 秒, 本地名称去除首尾空白
func (a settingService) Save(req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestSettingsSave)

	err := a.ctx.DB.Setting().Save(models.Settings{
		CacheTtl:        r.CacheTtl,
		LocalServerName: r.LocalServerName,
	})
	if err != nil {
		return nil, err
	}

	return a.Get()
}

func (a settingService) Get() (interface{}, interface{}) {
	settings, err := a.ctx.DB.Setting().Get()
	if err != nil {
		return nil, err
	}

	servers, err := a.ctx.DB.Server().List()
	if err != nil {
		return nil, err
	}

	redacted := make([]models.RemoteServer, 0, len(servers))
	for _, s := range servers {
		redacted = append(redacted, s.Redacted())
	}

	return types.ResponseSettings{
		CacheTtl:        settings.CacheTtl,
		LocalServerName: settings.LocalServerName,
		Servers:         redacted,
		AppVersion:      global.Version,
	}, nil
}
