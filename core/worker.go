package core

import (
	"context"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
)

const stopTag = "worker.stop"

var _ TaskQueue = (*FIFOTaskQueue)(nil)

// WorkerThread binds a dedicated goroutine to a serial task queue.
// Every task posted to it runs on that goroutine, strictly in submission
// order, so state owned by the worker (a graphics context, a render target)
// needs no locking as long as only worker tasks touch it.
//
// Delayed tasks wait in a heap and join the tail of the ready queue when due.
// CancelAll and CancelTagged drop both ready and delayed tasks in one
// critical section, so a cancelled task can never fire later from a timer.
//
// Lifecycle:
//   - NewWorkerThread starts the goroutine.
//   - Stop posts a stop task at the tail; the loop exits after running it.
//     Posts made after Stop are rejected.
//   - Join waits for the goroutine to exit. Never call Join from a worker task.
type WorkerThread struct {
	name string

	// mu guards ready, delayed and the closed transition.
	mu      sync.Mutex
	ready   *FIFOTaskQueue
	delayed *DelayedTaskQueue
	wakeup  chan struct{}

	// Lifecycle control
	ctx     context.Context
	cancel  context.CancelFunc
	closed  atomic.Bool
	stopped chan struct{}

	// Counters
	executed  atomic.Uint64
	rejected  atomic.Int64
	cancelled atomic.Int64

	history      *executionHistory
	panicHandler PanicHandler
	metrics      Metrics
	logger       Logger

	// quit is only touched on the worker goroutine.
	quit bool
}

// NewWorkerThread creates and starts a worker. cfg may be nil.
func NewWorkerThread(name string, cfg *WorkerConfig) *WorkerThread {
	cfg = cfg.withDefaults()
	ctx, cancel := context.WithCancel(context.Background())
	w := &WorkerThread{
		name:         name,
		ready:        NewFIFOTaskQueue(),
		delayed:      NewDelayedTaskQueue(),
		wakeup:       make(chan struct{}, 1),
		ctx:          ctx,
		cancel:       cancel,
		stopped:      make(chan struct{}),
		history:      newExecutionHistory(cfg.HistoryCapacity),
		panicHandler: cfg.PanicHandler,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}

	// Start the dedicated message loop
	go w.runLoop()

	w.logger.Debug("worker started", F("worker", name))
	return w
}

// Name returns the name of the worker
func (w *WorkerThread) Name() string {
	return w.name
}

// PostTask submits a task for execution. It returns false if the worker has
// been stopped.
func (w *WorkerThread) PostTask(task Task) bool {
	return w.post(TaskItem{Task: task}, 0, false)
}

// PostNamedTask submits a task whose name shows up in history, logs and metrics.
func (w *WorkerThread) PostNamedTask(name string, task Task) bool {
	return w.post(TaskItem{Task: task, Name: name}, 0, false)
}

// PostTaggedTask submits a task that CancelTagged(tag) can later remove.
func (w *WorkerThread) PostTaggedTask(tag, name string, task Task) bool {
	return w.post(TaskItem{Task: task, Name: name, Tag: tag}, 0, false)
}

// PostDelayedTask submits a task that becomes ready after delay.
func (w *WorkerThread) PostDelayedTask(task Task, delay time.Duration) bool {
	return w.post(TaskItem{Task: task}, delay, false)
}

// PostTaggedDelayedTask submits a tagged task that becomes ready after delay.
func (w *WorkerThread) PostTaggedDelayedTask(tag, name string, task Task, delay time.Duration) bool {
	return w.post(TaskItem{Task: task, Name: name, Tag: tag}, delay, false)
}

// RepostTagged removes every not-yet-started task carrying tag and posts task
// in its place, in one critical section. At most one task with tag is queued
// afterwards, however callers interleave.
func (w *WorkerThread) RepostTagged(tag, name string, task Task, delay time.Duration) bool {
	return w.post(TaskItem{Task: task, Name: name, Tag: tag}, delay, tag != "")
}

func (w *WorkerThread) post(item TaskItem, delay time.Duration, replace bool) bool {
	if item.Task == nil {
		w.reject(item, "nil_task")
		return false
	}
	if item.Name == "" {
		item.Name = funcName(item.Task)
	}

	w.mu.Lock()
	if w.closed.Load() {
		w.mu.Unlock()
		w.reject(item, "stopped")
		return false
	}
	replaced := 0
	if replace {
		replaced = w.ready.RemoveTag(item.Tag) + w.delayed.RemoveTag(item.Tag)
	}
	notify := true
	if delay > 0 {
		notify = w.delayed.Add(item, time.Now().Add(delay))
	} else {
		w.ready.Push(item)
	}
	depth := w.ready.Len() + w.delayed.Len()
	w.mu.Unlock()

	if replaced > 0 {
		w.cancelled.Add(int64(replaced))
	}
	w.metrics.RecordQueueDepth(w.name, depth)
	if notify {
		w.signal()
	}
	return true
}

func (w *WorkerThread) reject(item TaskItem, reason string) {
	w.rejected.Add(1)
	w.metrics.RecordTaskRejected(w.name, reason)
	w.logger.Debug("task rejected", F("worker", w.name), F("task", item.Name), F("reason", reason))
}

func (w *WorkerThread) signal() {
	select {
	case w.wakeup <- struct{}{}:
	default:
	}
}

// CancelAll drops every task that has not started yet, ready or delayed.
// A task already running is not interrupted. A pending Stop is kept.
func (w *WorkerThread) CancelAll() int {
	w.mu.Lock()
	n := w.ready.RemoveFunc(func(item TaskItem) bool { return item.Tag != stopTag })
	n += w.delayed.Clear()
	w.mu.Unlock()

	w.noteCancelled(n, "")
	return n
}

// CancelTagged drops not-yet-started tasks posted with tag.
func (w *WorkerThread) CancelTagged(tag string) int {
	return w.cancelTaggedIf(tag, nil)
}

// cancelTaggedIf drops tasks with tag only if cond holds, checked under the
// queue lock so no post can slip in between. A nil cond always holds.
func (w *WorkerThread) cancelTaggedIf(tag string, cond func() bool) int {
	if tag == "" || tag == stopTag {
		return 0
	}
	w.mu.Lock()
	n := 0
	if cond == nil || cond() {
		n = w.ready.RemoveTag(tag) + w.delayed.RemoveTag(tag)
	}
	w.mu.Unlock()

	w.noteCancelled(n, tag)
	return n
}

func (w *WorkerThread) noteCancelled(n int, tag string) {
	if n == 0 {
		return
	}
	w.cancelled.Add(int64(n))
	w.metrics.RecordQueueDepth(w.name, w.Pending())
	w.logger.Debug("tasks cancelled", F("worker", w.name), F("count", n), F("tag", tag))
}

// Pending returns the number of ready plus delayed tasks.
func (w *WorkerThread) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.ready.Len() + w.delayed.Len()
}

// =============================================================================
// Barriers
// =============================================================================

// PostBarrier posts a barrier task at the tail of the queue. The returned
// barrier is signaled once every task posted before it has completed.
func (w *WorkerThread) PostBarrier() (*Barrier, error) {
	b := NewBarrier()
	if !w.PostNamedTask("barrier", b.Task()) {
		return nil, ErrWorkerStopped
	}
	return b, nil
}

// WaitIdle blocks until all currently queued tasks have completed execution.
// Delayed tasks that are not yet due are not waited for.
func (w *WorkerThread) WaitIdle(ctx context.Context) error {
	b, err := w.PostBarrier()
	if err != nil {
		return err
	}
	return b.Wait(ctx)
}

// =============================================================================
// Shutdown
// =============================================================================

// Stop posts the stop task. Tasks queued before it still run; later posts are
// rejected; delayed tasks still waiting when it runs are discarded.
// Stop is idempotent and never blocks.
func (w *WorkerThread) Stop() {
	w.mu.Lock()
	if w.closed.Load() {
		w.mu.Unlock()
		return
	}
	w.closed.Store(true)
	w.ready.Push(TaskItem{
		Name: "stop",
		Tag:  stopTag,
		Task: func(ctx context.Context) { w.quit = true },
	})
	w.mu.Unlock()
	w.signal()
}

// Join blocks until the worker goroutine has exited or ctx ends.
func (w *WorkerThread) Join(ctx context.Context) error {
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stopped returns a channel closed when the worker goroutine has exited.
func (w *WorkerThread) Stopped() <-chan struct{} {
	return w.stopped
}

// IsClosed returns true once Stop has been called.
func (w *WorkerThread) IsClosed() bool {
	return w.closed.Load()
}

// runLoop is the core of this worker, it occupies a dedicated goroutine
func (w *WorkerThread) runLoop() {
	defer close(w.stopped)
	defer w.cancel()

	runCtx := context.WithValue(w.ctx, workerKey, w)

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		item, ok, wait, hasDeadline := w.next(time.Now())
		if ok {
			w.runTask(runCtx, item)
			if w.quit {
				w.drain()
				w.logger.Debug("worker stopped", F("worker", w.name))
				return
			}
			continue
		}

		if !hasDeadline {
			<-w.wakeup
			continue
		}

		timer.Reset(wait)
		select {
		case <-w.wakeup:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
		case <-timer.C:
		}
	}
}

// next promotes due delayed tasks and pops the head of the ready queue.
// When nothing is ready it reports how long until the next delayed task.
func (w *WorkerThread) next(now time.Time) (item TaskItem, ok bool, wait time.Duration, hasDeadline bool) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, due := range w.delayed.PopExpired(now) {
		w.ready.Push(due)
	}
	if item, ok = w.ready.Pop(); ok {
		return item, true, 0, false
	}
	wait, hasDeadline = w.delayed.NextDue(now)
	return TaskItem{}, false, wait, hasDeadline
}

// drain releases everything left behind the stop task.
func (w *WorkerThread) drain() {
	w.mu.Lock()
	n := w.ready.Clear() + w.delayed.Clear()
	w.mu.Unlock()
	if n > 0 {
		w.cancelled.Add(int64(n))
	}
	w.metrics.RecordQueueDepth(w.name, 0)
}

// runTask executes one task and catches panics at the task boundary.
func (w *WorkerThread) runTask(ctx context.Context, item TaskItem) {
	startedAt := time.Now()
	panicked := false

	func() {
		defer func() {
			if rec := recover(); rec != nil {
				panicked = true
				stack := debug.Stack()
				w.panicHandler.HandlePanic(ctx, w.name, item.Name, rec, stack)
				w.metrics.RecordTaskPanic(w.name, rec)
				w.logger.Error("task panicked",
					F("worker", w.name), F("task", item.Name), F("panic", rec))
			}
		}()
		item.Task(ctx)
	}()

	finishedAt := time.Now()
	if item.Tag == stopTag {
		return
	}
	w.executed.Add(1)
	w.history.Add(TaskExecutionRecord{
		TaskID:     GenerateTaskID(),
		Name:       item.Name,
		Tag:        item.Tag,
		WorkerName: w.name,
		StartedAt:  startedAt,
		FinishedAt: finishedAt,
		Duration:   finishedAt.Sub(startedAt),
		Panicked:   panicked,
	})
	w.metrics.RecordTaskDuration(w.name, item.Name, finishedAt.Sub(startedAt))
}

// =============================================================================
// Observability
// =============================================================================

// RecentTasks returns up to limit most recent executions, newest first.
// A limit of 0 returns everything kept.
func (w *WorkerThread) RecentTasks(limit int) []TaskExecutionRecord {
	return w.history.Recent(limit)
}

// RecentTagged is RecentTasks restricted to one tag; "" selects untagged
// tasks. Each tag keeps its own HistoryCapacity records.
func (w *WorkerThread) RecentTagged(tag string, limit int) []TaskExecutionRecord {
	return w.history.Tagged(tag, limit)
}

// Stats returns a snapshot of the worker's counters.
func (w *WorkerThread) Stats() WorkerStats {
	w.mu.Lock()
	pending := w.ready.Len()
	delayed := w.delayed.Len()
	w.mu.Unlock()

	stats := WorkerStats{
		Name:      w.name,
		Pending:   pending,
		Delayed:   delayed,
		Executed:  w.executed.Load(),
		Rejected:  w.rejected.Load(),
		Cancelled: w.cancelled.Load(),
		Closed:    w.IsClosed(),
	}
	if last, ok := w.history.Last(); ok {
		stats.LastTaskName = last.Name
		stats.LastTaskAt = last.FinishedAt
	}
	return stats
}
