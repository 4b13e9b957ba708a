package core

import (
	"context"
	"sync/atomic"
)

// Task is the unit of work (Closure)
type Task func(ctx context.Context)

// TaskID identifies one posted task in execution history.
type TaskID uint64

var taskIDSeq atomic.Uint64

// GenerateTaskID returns a process-unique, monotonically increasing task ID.
func GenerateTaskID() TaskID {
	return TaskID(taskIDSeq.Add(1))
}

// =============================================================================
// Context Helper
// =============================================================================
type workerKeyType struct{}

var workerKey workerKeyType

// CurrentWorker returns the WorkerThread executing the task that owns ctx,
// or nil when called outside a worker task.
func CurrentWorker(ctx context.Context) *WorkerThread {
	if v := ctx.Value(workerKey); v != nil {
		return v.(*WorkerThread)
	}
	return nil
}
