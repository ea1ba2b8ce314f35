package cache

import (
	"time"

	"ticketPlatform/internal/models"
	"ticketPlatform/pkg/metrics"

	"github.com/bytedance/sonic"
	"github.com/go-redis/redis"
)

const (
	redisKeyPrefix = "w8t:ticket:cache:"
	// 条目本身按调用方给的 ttl 判断过期, key 的过期时间只用于回收长期无人访问的服务
	redisKeyExpire = 24 * time.Hour
)

// RedisCache 每个服务一个 hash, field 为查询指纹
type RedisCache struct {
	client *redis.Client
	now    nowFunc
}

func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{
		client: client,
		now:    time.Now,
	}
}

func redisKey(serverId string) string {
	return redisKeyPrefix + serverId
}

func (r *RedisCache) Get(serverId, fingerprint string, ttl time.Duration) ([]models.NormalizedProblem, bool) {
	raw, err := r.client.HGet(redisKey(serverId), fingerprint).Result()
	if err != nil {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	var e entry
	if err := sonic.UnmarshalString(raw, &e); err != nil || e.expired(r.now(), ttl) {
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, false
	}

	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return e.Payload, true
}

func (r *RedisCache) Set(serverId, fingerprint string, payload []models.NormalizedProblem) error {
	if payload == nil {
		payload = []models.NormalizedProblem{}
	}

	raw, err := sonic.MarshalString(entry{
		Ts:      r.now().Unix(),
		Payload: payload,
	})
	if err != nil {
		return err
	}

	key := redisKey(serverId)
	pipe := r.client.TxPipeline()
	pipe.HSet(key, fingerprint, raw)
	pipe.Expire(key, redisKeyExpire)
	_, err = pipe.Exec()
	return err
}

func (r *RedisCache) ClearServer(serverId string) error {
	return r.client.Del(redisKey(serverId)).Err()
}
