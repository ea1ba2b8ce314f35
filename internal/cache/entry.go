package cache

import (
	"fmt"

	"ticketPlatform/config"

	"github.com/go-redis/redis"
)

type (
	entryCache struct {
		result InterResultCache
		lookup InterLookupCache
	}

	InterEntryCache interface {
		Result() InterResultCache
		Lookup() InterLookupCache
	}
)

// NewEntryCache 按配置选择结果缓存的存储: redis 供多实例共享, file 用于单机部署
func NewEntryCache(conf config.App) (InterEntryCache, error) {
	var result InterResultCache

	switch conf.Cache.Backend {
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", conf.Redis.Host, conf.Redis.Port),
			Password: conf.Redis.Pass,
			DB:       conf.Redis.DB,
		})
		if _, err := client.Ping().Result(); err != nil {
			return nil, fmt.Errorf("redis 连接失败, err: %s", err.Error())
		}
		result = NewRedisCache(client)
	default:
		result = NewFileCache(conf.Cache.File)
	}

	return NewEntryCacheWith(result, NewLookupCache()), nil
}

// NewEntryCacheWith 直接组装, 测试中使用
func NewEntryCacheWith(result InterResultCache, lookup InterLookupCache) InterEntryCache {
	return &entryCache{
		result: result,
		lookup: lookup,
	}
}

func (e entryCache) Result() InterResultCache { return e.result }
func (e entryCache) Lookup() InterLookupCache { return e.lookup }
