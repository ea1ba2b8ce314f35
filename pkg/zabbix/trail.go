package zabbix

import (
	"context"
	"sync"
)

type trailKey struct{}

// Trail 单次请求生命周期内的诊断记录, 只追加, 不影响调用流程
type Trail struct {
	mu      sync.Mutex
	entries []string
}

func NewTrail() *Trail {
	return &Trail{}
}

func (t *Trail) Add(message string) {
	if t == nil {
		return
	}

	t.mu.Lock()
	t.entries = append(t.entries, message)
	t.mu.Unlock()
}

// Entries 返回当前记录的副本
func (t *Trail) Entries() []string {
	if t == nil {
		return []string{}
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]string, len(t.entries))
	copy(out, t.entries)
	return out
}

// WithTrail 将诊断记录挂到 context 上, 由 Client 在失败和鉴权降级时写入
func WithTrail(ctx context.Context, t *Trail) context.Context {
	return context.WithValue(ctx, trailKey{}, t)
}

func TrailFromContext(ctx context.Context) *Trail {
	if ctx == nil {
		return nil
	}
	t, _ := ctx.Value(trailKey{}).(*Trail)
	return t
}
