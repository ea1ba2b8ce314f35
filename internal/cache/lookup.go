package cache

import (
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	LookupUser      = "user"
	LookupMediaType = "mediatype"

	lookupExpire  = 5 * time.Minute
	lookupCleanup = 10 * time.Minute
)

// InterLookupCache 进程内的短期目录缓存, 保存事件详情中反复用到的用户与媒介类型
type InterLookupCache interface {
	Get(serverId, kind, id string) (interface{}, bool)
	Set(serverId, kind, id string, v interface{})
	ClearServer(serverId string)
}

type LookupCache struct {
	c *gocache.Cache
}

func NewLookupCache() *LookupCache {
	return &LookupCache{
		c: gocache.New(lookupExpire, lookupCleanup),
	}
}

func lookupKey(serverId, kind, id string) string {
	return serverId + "/" + kind + "/" + id
}

func (l *LookupCache) Get(serverId, kind, id string) (interface{}, bool) {
	return l.c.Get(lookupKey(serverId, kind, id))
}

func (l *LookupCache) Set(serverId, kind, id string, v interface{}) {
	l.c.SetDefault(lookupKey(serverId, kind, id), v)
}

func (l *LookupCache) ClearServer(serverId string) {
	prefix := serverId + "/"
	for k := range l.c.Items() {
		if strings.HasPrefix(k, prefix) {
			l.c.Delete(k)
		}
	}
}
