package ctx

import (
	"context"
	"sync"

	"ticketPlatform/internal/cache"
	"ticketPlatform/internal/repo"
	"ticketPlatform/pkg/zabbix"

	"github.com/casbin/casbin/v2"
)

type Context struct {
	DB       repo.InterEntryRepo
	Cache    cache.InterEntryCache
	Zabbix   *zabbix.Client
	Enforcer *casbin.SyncedCachedEnforcer
	Ctx      context.Context
	// ContextMap 后台任务的取消函数, key 为任务标识
	ContextMap map[string]context.CancelFunc
	Mux        sync.RWMutex
}

var (
	DB    repo.InterEntryRepo
	Cache cache.InterEntryCache
	Ctx   context.Context
	c     *Context
)

func NewContext(ctx context.Context, db repo.InterEntryRepo, rc cache.InterEntryCache, zc *zabbix.Client, enforcer *casbin.SyncedCachedEnforcer) *Context {
	DB = db
	Cache = rc
	Ctx = ctx
	c = &Context{
		DB:         db,
		Cache:      rc,
		Zabbix:     zc,
		Enforcer:   enforcer,
		Ctx:        ctx,
		ContextMap: make(map[string]context.CancelFunc),
	}
	return c
}

// DO 返回进程级上下文, 中间件等无法注入依赖的位置使用
func DO() *Context {
	return c
}

// StartJob 登记后台任务, 同名任务先取消旧的
func (c *Context) StartJob(mark string) context.Context {
	c.Mux.Lock()
	defer c.Mux.Unlock()

	if cancel, exists := c.ContextMap[mark]; exists {
		cancel()
	}
	jc, cancel := context.WithCancel(c.Ctx)
	c.ContextMap[mark] = cancel
	return jc
}

// StopJobs 进程退出时调用
func (c *Context) StopJobs() {
	c.Mux.Lock()
	defer c.Mux.Unlock()

	for mark, cancel := range c.ContextMap {
		cancel()
		delete(c.ContextMap, mark)
	}
}
