package executor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const defaultWorkers = 8

// ParallelExecutor 有界并发的扇出执行器.
// 各任务相互隔离, 单个任务失败或 panic 不会取消其它任务, 结果按任务下标返回.
type ParallelExecutor struct {
	Workers int
	Metrics *ExecutionMetrics
}

// TaskResult 单个任务的结果
type TaskResult[T any] struct {
	Index    int
	Value    T
	Err      error
	Duration time.Duration
}

func NewParallelExecutor(workers int) *ParallelExecutor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	return &ParallelExecutor{
		Workers: workers,
		Metrics: &ExecutionMetrics{},
	}
}

// Execute 并行执行 n 个任务, 返回值与任务下标一一对应
func Execute[T any](ctx context.Context, pe *ParallelExecutor, n int, task func(ctx context.Context, i int) (T, error)) []TaskResult[T] {
	results := make([]TaskResult[T], n)
	if n == 0 {
		return results
	}

	workers := defaultWorkers
	if pe != nil && pe.Workers > 0 {
		workers = pe.Workers
	}

	startTime := time.Now()

	// 不使用 errgroup.WithContext, 任务错误只记录在结果里
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i := 0; i < n; i++ {
		idx := i
		g.Go(func() error {
			results[idx] = runTask(ctx, idx, task)
			return nil
		})
	}
	_ = g.Wait()

	if pe != nil && pe.Metrics != nil {
		failed := 0
		for _, r := range results {
			if r.Err != nil {
				failed++
			}
		}
		pe.Metrics.RecordExecution(time.Since(startTime), n, failed)
	}

	return results
}

func runTask[T any](ctx context.Context, idx int, task func(ctx context.Context, i int) (T, error)) (r TaskResult[T]) {
	start := time.Now()
	r.Index = idx

	defer func() {
		if p := recover(); p != nil {
			r.Err = fmt.Errorf("任务 %d panic: %v", idx, p)
		}
		r.Duration = time.Since(start)
	}()

	r.Value, r.Err = task(ctx, idx)
	return r
}

// ExecutionMetrics 执行指标收集器
type ExecutionMetrics struct {
	mu               sync.Mutex
	TotalExecutions  int64
	TotalTasks       int64
	FailedTasks      int64
	AvgExecutionTime time.Duration
}

// RecordExecution 记录一次扇出的耗时与失败数
func (em *ExecutionMetrics) RecordExecution(duration time.Duration, tasks, failed int) {
	em.mu.Lock()
	defer em.mu.Unlock()

	em.TotalExecutions++
	em.TotalTasks += int64(tasks)
	em.FailedTasks += int64(failed)

	// 更新平均执行时间
	if em.TotalExecutions == 1 {
		em.AvgExecutionTime = duration
	} else {
		em.AvgExecutionTime = (em.AvgExecutionTime*time.Duration(em.TotalExecutions-1) + duration) / time.Duration(em.TotalExecutions)
	}
}

// Snapshot 读取当前指标
func (em *ExecutionMetrics) Snapshot() (executions, tasks, failed int64, avg time.Duration) {
	em.mu.Lock()
	defer em.mu.Unlock()
	return em.TotalExecutions, em.TotalTasks, em.FailedTasks, em.AvgExecutionTime
}
