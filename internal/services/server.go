package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/types"
	"ticketPlatform/pkg/tools"
	"ticketPlatform/pkg/zabbix"

	"github.com/zeromicro/go-zero/core/logc"
	"go.uber.org/multierr"
)

const (
	titleCannotSaveServer = "Cannot save server"
	titleConnectionFailed = "Connection check failed"
	titleConnectionOk     = "Connection OK"
)

type serverService struct {
	ctx *ctx.Context
	now func() time.Time
}

type InterServerService interface {
	Get(req interface{}) (interface{}, interface{})
	Save(reqCtx context.Context, req interface{}) (interface{}, interface{})
	Delete(reqCtx context.Context, req interface{}) (interface{}, interface{})
	ResetCache(reqCtx context.Context, req interface{}) (interface{}, interface{})
	CheckConnection(reqCtx context.Context, req interface{}) (interface{}, interface{})
	CheckAll(reqCtx context.Context) ([]types.ResponseConnectionCheck, error)
	Import(servers []models.RemoteServer) error
}

func newInterServerService(ctx *ctx.Context) InterServerService {
	return &serverService{
		ctx: ctx,
		now: time.Now,
	}
}

// Get 编辑表单数据, 新建时返回默认值
func (ss serverService) Get(req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestServerQuery)

	if r.ID != "" {
		server, ok, err := ss.ctx.DB.Server().Get(r.ID)
		if err != nil {
			return nil, err
		}
		if ok {
			return server.Redacted(), nil
		}
	}

	return models.RemoteServer{
		IncludeSubgroups: models.BoolPtr(true),
		Enabled:          models.BoolPtr(true),
	}, nil
}

// Save 保存前必须能探测到远端版本, 编辑时 token 留空表示沿用原值
func (ss serverService) Save(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestServerSave)

	server := models.RemoteServer{
		ID:               strings.TrimSpace(r.ID),
		Name:             strings.TrimSpace(r.Name),
		ApiUrl:           zabbix.NormalizeApiUrl(r.ApiUrl),
		ApiToken:         strings.TrimSpace(r.ApiToken),
		HostGroup:        strings.TrimSpace(r.HostGroup),
		IncludeSubgroups: models.BoolPtr(r.IncludeSubgroups),
		Enabled:          models.BoolPtr(r.Enabled),
		UpdateBy:         r.UpdateBy,
		UpdateAt:         ss.now().Unix(),
	}

	if server.ApiUrl == "" {
		return nil, validationError(titleCannotSaveServer, "API URL is required.")
	}

	var (
		existing models.RemoteServer
		exists   bool
	)
	if server.ID != "" {
		var err error
		existing, exists, err = ss.ctx.DB.Server().Get(server.ID)
		if err != nil {
			return nil, err
		}
		if exists && server.ApiToken == "" {
			server.ApiToken = existing.ApiToken
		}
	}

	version, err := ss.ctx.Zabbix.Version(reqCtx, server.ApiUrl)
	if err != nil {
		return nil, remoteError(titleCannotSaveServer, err)
	}

	server.ApiVersion = version
	server.ConnectionStatus = models.ConnectionOk
	server.LastReached = ss.now().Unix()

	if exists {
		if err := ss.ctx.DB.Server().Update(server); err != nil {
			return nil, err
		}
		if existing.ApiVersion != version || existing.HostGroup != server.HostGroup || existing.ApiUrl != server.ApiUrl {
			clearServerCache(reqCtx, ss.ctx, server.ID)
		}
	} else {
		// 新建时总是分配随机 ID, 忽略调用方给出的值
		server.ID = tools.RandHex(8)
		if err := ss.ctx.DB.Server().Create(server); err != nil {
			return nil, err
		}
	}

	return server.Redacted(), nil
}

func (ss serverService) Delete(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestServerQuery)

	if err := ss.ctx.DB.Server().Delete(r.ID); err != nil {
		return nil, err
	}
	clearServerCache(reqCtx, ss.ctx, r.ID)

	return nil, nil
}

// ResetCache 清空单个服务的结果缓存, 未知 ID 同样返回成功
func (ss serverService) ResetCache(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestServerQuery)
	if r.ID == "" {
		return nil, validationError("Cannot reset cache", "No remote server specified.")
	}

	clearServerCache(reqCtx, ss.ctx, r.ID)
	return nil, nil
}

// CheckConnection 探测版本与凭据, 结果回写到注册表; 探测失败也以正常结果返回
func (ss serverService) CheckConnection(reqCtx context.Context, req interface{}) (interface{}, interface{}) {
	r := req.(*types.RequestServerQuery)

	server, ok, err := ss.ctx.DB.Server().Get(r.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, validationError(titleConnectionFailed, "No remote server specified.")
	}
	if server.ApiUrl == "" {
		return nil, validationError(titleConnectionFailed, "API URL is required.")
	}

	result, _ := ss.check(reqCtx, server)
	return result, nil
}

// CheckAll 逐个探测启用的服务, 失败合并为一个 error 返回, 结果顺序与注册顺序一致
func (ss serverService) CheckAll(reqCtx context.Context) ([]types.ResponseConnectionCheck, error) {
	servers, err := ss.ctx.DB.Server().List()
	if err != nil {
		return nil, err
	}

	var (
		results []types.ResponseConnectionCheck
		errs    error
	)
	for _, server := range servers {
		if !server.GetEnabled() || server.ApiUrl == "" {
			continue
		}
		result, err := ss.check(reqCtx, server)
		results = append(results, result)
		errs = multierr.Append(errs, err)
	}

	return results, errs
}

func (ss serverService) check(reqCtx context.Context, server models.RemoteServer) (types.ResponseConnectionCheck, error) {
	version, err := ss.probe(reqCtx, server)
	if err != nil {
		if _, uerr := ss.ctx.DB.Server().UpdateMeta(server.ID, models.ServerMeta{ConnectionStatus: models.ConnectionProblem}); uerr != nil {
			logc.Errorf(reqCtx, "更新远端服务状态失败, server: %s, err: %s", server.ID, uerr.Error())
		}
		return types.ResponseConnectionCheck{
			ServerId: server.ID,
			Title:    titleConnectionFailed,
			Messages: []string{fmt.Sprintf("Server \"%s\": %s", server.Name, err.Error())},
		}, fmt.Errorf("server %s: %w", server.Name, err)
	}

	prev, err := ss.ctx.DB.Server().UpdateMeta(server.ID, models.ServerMeta{
		ApiVersion:       version,
		ConnectionStatus: models.ConnectionOk,
		LastReached:      ss.now().Unix(),
	})
	if err != nil {
		logc.Errorf(reqCtx, "更新远端服务状态失败, server: %s, err: %s", server.ID, err.Error())
	} else if prev != version {
		clearServerCache(reqCtx, ss.ctx, server.ID)
	}

	return types.ResponseConnectionCheck{
		ServerId:   server.ID,
		Ok:         true,
		Title:      titleConnectionOk,
		Messages:   []string{"API version: " + version},
		ApiVersion: version,
	}, nil
}

func (ss serverService) probe(reqCtx context.Context, server models.RemoteServer) (string, error) {
	version, err := ss.ctx.Zabbix.Version(reqCtx, server.ApiUrl)
	if err != nil {
		return "", err
	}
	if err := callServer(reqCtx, ss.ctx, server, "user.get", userGetProbe, nil); err != nil {
		return "", err
	}
	return version, nil
}

// Import 启动时按 ID 导入服务列表, 已存在的覆盖可编辑字段并保留运行状态
func (ss serverService) Import(servers []models.RemoteServer) error {
	var errs error
	for _, s := range servers {
		s.ID = strings.TrimSpace(s.ID)
		s.ApiUrl = zabbix.NormalizeApiUrl(s.ApiUrl)
		s.UpdateBy = "import"
		s.UpdateAt = ss.now().Unix()

		if s.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("server %q has no id", s.Name))
			continue
		}
		if s.ID == models.LocalServerId {
			errs = multierr.Append(errs, fmt.Errorf("server %q uses the reserved id %q", s.Name, models.LocalServerId))
			continue
		}

		existing, ok, err := ss.ctx.DB.Server().Get(s.ID)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		if ok {
			s.ApiVersion = existing.ApiVersion
			s.ConnectionStatus = existing.ConnectionStatus
			s.LastReached = existing.LastReached
			errs = multierr.Append(errs, ss.ctx.DB.Server().Update(s))
			continue
		}
		errs = multierr.Append(errs, ss.ctx.DB.Server().Create(s))
	}
	return errs
}
