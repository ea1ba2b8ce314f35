package client

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"gorm.io/gorm"
)

// 策略: p, 角色, 资源(problem / settings), 操作(acknowledge / close ... / write)
const casbinModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = r.sub == p.sub && r.obj == p.obj && r.act == p.act
`

// NewEnforcer 策略持久化到数据库的 casbin_rule 表
func NewEnforcer(db *gorm.DB) (*casbin.SyncedCachedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, fmt.Errorf("创建Casbin适配器失败: %v", err)
	}

	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, fmt.Errorf("创建Casbin模型失败: %v", err)
	}

	enforcer, err := casbin.NewSyncedCachedEnforcer(m, adapter)
	if err != nil {
		return nil, fmt.Errorf("创建Casbin执行器失败: %v", err)
	}

	enforcer.SetExpireTime(60 * 60)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, fmt.Errorf("加载Casbin策略失败: %v", err)
	}

	return enforcer, nil
}

// NewMemoryEnforcer 不落库的执行器, 用于测试与 CLI
func NewMemoryEnforcer() (*casbin.SyncedCachedEnforcer, error) {
	m, err := model.NewModelFromString(casbinModel)
	if err != nil {
		return nil, err
	}
	return casbin.NewSyncedCachedEnforcer(m)
}
