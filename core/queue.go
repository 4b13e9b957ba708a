package core

const (
	defaultQueueCap     = 16
	compactMinCap       = 64 // Don't compact if capacity is less than this
	compactShrinkFactor = 4  // Trigger compaction when len < cap/4
)

// TaskItem is one queued unit of work.
// Tag groups tasks that can be cancelled together (e.g. every frame tick).
type TaskItem struct {
	Task Task
	Name string
	Tag  string
}

// TaskQueue defines the interface for the worker's ready queue
type TaskQueue interface {
	Push(item TaskItem)
	Pop() (TaskItem, bool)
	Len() int
	IsEmpty() bool
	MaybeCompact()
	Clear() int
	RemoveTag(tag string) int
	RemoveFunc(drop func(TaskItem) bool) int
}

// =============================================================================
// FIFOTaskQueue: slice-backed FIFO, not safe for concurrent use on its own.
// WorkerThread guards it with its own mutex so that the ready queue and the
// delayed heap are cleared in one critical section.
// =============================================================================

type FIFOTaskQueue struct {
	tasks []TaskItem
}

func NewFIFOTaskQueue() *FIFOTaskQueue {
	return &FIFOTaskQueue{
		tasks: make([]TaskItem, 0, defaultQueueCap),
	}
}

func (q *FIFOTaskQueue) Push(item TaskItem) {
	q.tasks = append(q.tasks, item)
}

func (q *FIFOTaskQueue) Pop() (TaskItem, bool) {
	if len(q.tasks) == 0 {
		return TaskItem{}, false
	}

	item := q.tasks[0]
	// Zero out the element in the underlying array to prevent memory leak
	q.tasks[0] = TaskItem{}
	q.tasks = q.tasks[1:]
	q.MaybeCompact()

	return item, true
}

func (q *FIFOTaskQueue) MaybeCompact() {
	n := len(q.tasks)
	c := cap(q.tasks)

	if c < compactMinCap {
		return
	}
	if n == 0 {
		q.tasks = make([]TaskItem, 0, defaultQueueCap)
		return
	}
	if n*compactShrinkFactor >= c {
		return
	}

	newCap := max(max(c/2, defaultQueueCap), n)

	newSlice := make([]TaskItem, n, newCap)
	copy(newSlice, q.tasks)
	q.tasks = newSlice
}

func (q *FIFOTaskQueue) Len() int {
	return len(q.tasks)
}

func (q *FIFOTaskQueue) IsEmpty() bool {
	return q.Len() == 0
}

// Clear removes all tasks and returns how many were dropped.
func (q *FIFOTaskQueue) Clear() int {
	n := len(q.tasks)
	// Create a new slice to release all task references
	q.tasks = make([]TaskItem, 0, defaultQueueCap)
	return n
}

// RemoveTag drops every queued task carrying tag, keeping the order of the rest.
func (q *FIFOTaskQueue) RemoveTag(tag string) int {
	if tag == "" {
		return 0
	}
	return q.RemoveFunc(func(item TaskItem) bool { return item.Tag == tag })
}

// RemoveFunc drops every queued task for which drop returns true.
func (q *FIFOTaskQueue) RemoveFunc(drop func(TaskItem) bool) int {
	kept := q.tasks[:0]
	for _, item := range q.tasks {
		if !drop(item) {
			kept = append(kept, item)
		}
	}
	removed := len(q.tasks) - len(kept)
	for i := len(kept); i < len(q.tasks); i++ {
		q.tasks[i] = TaskItem{}
	}
	q.tasks = kept
	q.MaybeCompact()
	return removed
}
