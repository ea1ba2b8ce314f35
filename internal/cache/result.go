package cache

import (
	"time"

	"ticketPlatform/internal/models"
)

// InterResultCache 按 (服务ID, 查询指纹) 保存归一化后的问题列表.
// Get 对不存在与已过期的条目一视同仁, 均返回 false.
type InterResultCache interface {
	Get(serverId, fingerprint string, ttl time.Duration) ([]models.NormalizedProblem, bool)
	Set(serverId, fingerprint string, payload []models.NormalizedProblem) error
	// ClearServer 只删除该服务的条目, 重复调用或未知服务均不报错
	ClearServer(serverId string) error
}

// entry 持久化的单条缓存
type entry struct {
	Ts      int64                      `json:"ts"`
	Payload []models.NormalizedProblem `json:"payload"`
}

func (e entry) expired(now time.Time, ttl time.Duration) bool {
	return now.Unix()-e.Ts > int64(ttl/time.Second)
}

// nowFunc 便于测试时替换时钟
type nowFunc func() time.Time
