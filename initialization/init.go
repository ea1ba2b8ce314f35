package initialization

import (
	"context"
	"fmt"
	"os"

	"ticketPlatform/config"
	"ticketPlatform/internal/cache"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/global"
	"ticketPlatform/internal/models"
	"ticketPlatform/internal/repo"
	"ticketPlatform/internal/services"
	"ticketPlatform/pkg/client"
	"ticketPlatform/pkg/tools"
	"ticketPlatform/pkg/zabbix"

	"github.com/zeromicro/go-zero/core/logc"
	"github.com/zeromicro/go-zero/core/logx"
	"gopkg.in/yaml.v3"
)

const connectionCheckJob = "ConnectionCheckJob"

// serverEntry 服务列表文件中的一项
type serverEntry struct {
	ID               string `yaml:"id"`
	Name             string `yaml:"name"`
	ApiUrl           string `yaml:"apiUrl"`
	ApiToken         string `yaml:"apiToken"`
	HostGroup        string `yaml:"hostGroup"`
	IncludeSubgroups bool   `yaml:"includeSubgroups"`
	Enabled          *bool  `yaml:"enabled"`
}

// InitBasic 加载配置并组装全部依赖, 返回的上下文供路由与命令行使用
func InitBasic(configPath string) (*ctx.Context, error) {
	conf, err := config.InitConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("加载配置失败: %w", err)
	}
	global.Config = conf

	logx.MustSetup(logx.LogConf{
		ServiceName: "ticketPlatform",
		Mode:        conf.Log.Mode,
		Level:       conf.Log.Level,
		Encoding:    conf.Log.Encoding,
		Path:        conf.Log.Path,
	})

	db, err := client.NewDBClient(conf.Database, conf.Server.Mode)
	if err != nil {
		return nil, err
	}

	rCache, err := cache.NewEntryCache(conf)
	if err != nil {
		return nil, err
	}

	zc := zabbix.NewClient(zabbix.ClientConfig{Timeout: conf.Zabbix.Timeout})

	enforcer, err := client.NewEnforcer(db)
	if err != nil {
		return nil, fmt.Errorf("初始化 casbin 失败: %w", err)
	}

	c := ctx.NewContext(context.Background(), repo.NewRepoEntry(db), rCache, zc, enforcer)

	InitCasbin(c, conf.Casbin)

	services.NewServices(c)

	if conf.Zabbix.ServersFile != "" {
		if err := importServers(c, conf.Zabbix.ServersFile); err != nil {
			logc.Errorf(c.Ctx, "导入服务列表失败: %s", err.Error())
		}
	}

	return c, nil
}

// StartJobs 启动后台定时任务
func StartJobs(c *ctx.Context) {
	spec := global.Config.Jobs.ConnectionCheck
	if spec == "" {
		return
	}

	jc := c.StartJob(connectionCheckJob)
	cron := tools.NewCronjob(spec, func() {
		results, err := services.ServerService.CheckAll(jc)
		if err != nil {
			logc.Errorf(jc, "定时连接检查存在失败: %s", err.Error())
		}
		logc.Infof(jc, "定时连接检查完成, 共 %d 个服务", len(results))
	})

	go func() {
		<-jc.Done()
		cron.Stop()
	}()
}

func importServers(c *ctx.Context, path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var entries []serverEntry
	if err := yaml.Unmarshal(content, &entries); err != nil {
		return fmt.Errorf("解析 %s 失败: %w", path, err)
	}

	servers := make([]models.RemoteServer, 0, len(entries))
	for _, e := range entries {
		enabled := true
		if e.Enabled != nil {
			enabled = *e.Enabled
		}
		servers = append(servers, models.RemoteServer{
			ID:               e.ID,
			Name:             e.Name,
			ApiUrl:           e.ApiUrl,
			ApiToken:         e.ApiToken,
			HostGroup:        e.HostGroup,
			IncludeSubgroups: models.BoolPtr(e.IncludeSubgroups),
			Enabled:          models.BoolPtr(enabled),
		})
	}

	if err := services.ServerService.Import(servers); err != nil {
		return err
	}
	logc.Infof(c.Ctx, "已导入 %d 个远端服务", len(servers))
	return nil
}
