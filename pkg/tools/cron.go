package tools

import (
	"context"

	"github.com/robfig/cron/v3"
	"github.com/zeromicro/go-zero/core/logc"
)

// NewCronjob 启动一个按 cron 表达式运行的任务, 返回的 cron 实例可用于停止
func NewCronjob(spec string, job func()) *cron.Cron {
	c := cron.New()
	if _, err := c.AddFunc(spec, job); err != nil {
		logc.Errorf(context.Background(), "注册定时任务失败, spec: %s, err: %s", spec, err.Error())
		return c
	}
	c.Start()
	return c
}
