package initialization

import (
	"ticketPlatform/config"
	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/services"

	"github.com/zeromicro/go-zero/core/logc"
)

// InitCasbin 为配置中的角色写入默认策略, 已存在的规则保持不变
func InitCasbin(c *ctx.Context, conf config.Casbin) {
	if err := services.SeedPolicies(c, conf.AdminRoles, conf.UserRoles); err != nil {
		logc.Errorf(c.Ctx, "初始化默认 Casbin 权限失败: %s", err.Error())
		return
	}

	logc.Infof(c.Ctx, "Casbin初始化完成, 管理员角色: %v, 普通角色: %v", conf.AdminRoles, conf.UserRoles)
}
