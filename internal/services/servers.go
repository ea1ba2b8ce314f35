package services

import (
	"context"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
)

// localServer 本机 API 端点, 只在配置开启时出现
func localServer(c *ctx.Context) (models.RemoteServer, bool) {
	if !global.Config.Local.Enabled {
		return models.RemoteServer{}, false
	}

	name := models.DefaultLocalServerName
	if s, err := c.DB.Setting().Get(); err == nil {
		name = s.LocalServerName
	}

	return models.RemoteServer{
		ID:               models.LocalServerId,
		Name:             name,
		ApiUrl:           global.Config.Local.ApiUrl,
		ApiToken:         global.Config.Local.ApiToken,
		IncludeSubgroups: models.BoolPtr(true),
		Enabled:          models.BoolPtr(true),
		IsLocal:          true,
	}, true
}

// listServers 注册表中的服务按注册顺序排列, 本机端点排在最后
func listServers(c *ctx.Context, withLocal bool) ([]models.RemoteServer, error) {
	servers, err := c.DB.Server().List()
	if err != nil {
		return nil, err
	}

	if withLocal {
		if local, ok := localServer(c); ok {
			servers = append(servers, local)
		}
	}

	return servers, nil
}

// findServer 按 ID 查找, withLocal 决定是否接受本机端点
func findServer(c *ctx.Context, id string, withLocal bool) (models.RemoteServer, bool, error) {
	if id == "" {
		return models.RemoteServer{}, false, nil
	}

	if id == models.LocalServerId {
		if !withLocal {
			return models.RemoteServer{}, false, nil
		}
		s, ok := localServer(c)
		return s, ok, nil
	}

	return c.DB.Server().Get(id)
}

// filterServers 只保留 ids 中的服务, 顺序不变; ids 为空时全部保留
func filterServers(servers []models.RemoteServer, ids []string) []models.RemoteServer {
	if len(ids) == 0 {
		return servers
	}

	allowed := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		allowed[id] = struct{}{}
	}

	filtered := make([]models.RemoteServer, 0, len(servers))
	for _, s := range servers {
		if _, ok := allowed[s.ID]; ok {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// callServer 对单个服务发起鉴权调用
func callServer(reqCtx context.Context, c *ctx.Context, server models.RemoteServer, method string, params interface{}, result interface{}) error {
	return c.Zabbix.Call(reqCtx, server.ApiUrl, server.ApiToken, method, params, result)
}
