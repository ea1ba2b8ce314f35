package services

import (
	"context"

	"ticketPlatform/internal/ctx"
	"ticketPlatform/internal/models"

	"github.com/zeromicro/go-zero/core/logc"
)

const (
	policyObjectProblem  = "problem"
	policyObjectSettings = "settings"
	policyActionWrite    = "write"
)

// capabilitiesFor 按 casbin 策略计算角色拥有的问题操作权限
func capabilitiesFor(c *ctx.Context, role string) models.Capabilities {
	var caps models.Capabilities
	if c.Enforcer == nil || role == "" {
		return caps
	}

	for _, capability := range models.AllCapabilities {
		ok, err := c.Enforcer.Enforce(role, policyObjectProblem, capability.Name())
		if err != nil {
			logc.Errorf(c.Ctx, "权限检查失败, role: %s, capability: %s, err: %s", role, capability.Name(), err.Error())
			continue
		}
		if ok {
			caps |= models.NewCapabilities(capability)
		}
	}

	return caps
}

// CanWriteSettings 管理类接口的权限检查
func CanWriteSettings(c *ctx.Context, role string) bool {
	if c.Enforcer == nil || role == "" {
		return false
	}

	ok, err := c.Enforcer.Enforce(role, policyObjectSettings, policyActionWrite)
	if err != nil {
		logc.Errorf(c.Ctx, "权限检查失败, role: %s, err: %s", role, err.Error())
		return false
	}
	return ok
}

// SeedPolicies 写入默认策略: 所有角色拥有全部问题操作权限, 管理员额外拥有配置写权限.
// AddPolicy 对已存在的策略返回 false, 不会重复写入.
func SeedPolicies(c *ctx.Context, adminRoles, userRoles []string) error {
	if c.Enforcer == nil {
		return nil
	}

	var rules [][]string
	for _, role := range append(append([]string{}, adminRoles...), userRoles...) {
		for _, capability := range models.AllCapabilities {
			rules = append(rules, []string{role, policyObjectProblem, capability.Name()})
		}
	}
	for _, role := range adminRoles {
		rules = append(rules, []string{role, policyObjectSettings, policyActionWrite})
	}

	for _, rule := range rules {
		if _, err := c.Enforcer.AddPolicy(rule); err != nil {
			return err
		}
	}

	logc.Infof(context.Background(), "casbin 默认策略已就绪, 共 %d 条", len(rules))
	return nil
}
