package core

import (
	"container/heap"
	"time"
)

// delayedTask is a task waiting for its run time.
type delayedTask struct {
	runAt    time.Time
	sequence uint64 // FIFO among equal run times
	item     TaskItem
	index    int // for heap interface
}

// delayedTaskHeap implements heap.Interface
type delayedTaskHeap []*delayedTask

func (h delayedTaskHeap) Len() int { return len(h) }
func (h delayedTaskHeap) Less(i, j int) bool {
	if h[i].runAt.Equal(h[j].runAt) {
		return h[i].sequence < h[j].sequence
	}
	return h[i].runAt.Before(h[j].runAt)
}
func (h delayedTaskHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}

func (h *delayedTaskHeap) Push(x any) {
	n := len(*h)
	item := x.(*delayedTask)
	item.index = n
	*h = append(*h, item)
}

func (h *delayedTaskHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil // avoid memory leak
	item.index = -1
	*h = old[0 : n-1]
	return item
}

func (h *delayedTaskHeap) Peek() *delayedTask {
	if len(*h) == 0 {
		return nil
	}
	return (*h)[0]
}

// DelayedTaskQueue holds tasks until they are due. Like FIFOTaskQueue it is
// guarded by the owning worker's mutex.
type DelayedTaskQueue struct {
	pq      delayedTaskHeap
	nextSeq uint64
}

func NewDelayedTaskQueue() *DelayedTaskQueue {
	q := &DelayedTaskQueue{pq: make(delayedTaskHeap, 0)}
	heap.Init(&q.pq)
	return q
}

// Add schedules item to become ready at runAt.
// It reports whether the new item is now the earliest one.
func (q *DelayedTaskQueue) Add(item TaskItem, runAt time.Time) bool {
	t := &delayedTask{runAt: runAt, sequence: q.nextSeq, item: item}
	q.nextSeq++
	heap.Push(&q.pq, t)
	return t.index == 0
}

// NextDue returns how long until the earliest item is due.
// ok is false when the queue is empty.
func (q *DelayedTaskQueue) NextDue(now time.Time) (wait time.Duration, ok bool) {
	t := q.pq.Peek()
	if t == nil {
		return 0, false
	}
	if !t.runAt.After(now) {
		return 0, true
	}
	return t.runAt.Sub(now), true
}

// PopExpired removes and returns every item due at or before now, earliest first.
func (q *DelayedTaskQueue) PopExpired(now time.Time) []TaskItem {
	var expired []TaskItem
	for q.pq.Len() > 0 {
		t := q.pq.Peek()
		if t.runAt.After(now) {
			break
		}
		heap.Pop(&q.pq)
		expired = append(expired, t.item)
	}
	return expired
}

func (q *DelayedTaskQueue) Len() int {
	return q.pq.Len()
}

// Clear drops all delayed items and returns how many were dropped.
func (q *DelayedTaskQueue) Clear() int {
	n := q.pq.Len()
	q.pq = make(delayedTaskHeap, 0)
	heap.Init(&q.pq)
	return n
}

// RemoveTag drops delayed items carrying tag.
func (q *DelayedTaskQueue) RemoveTag(tag string) int {
	if tag == "" {
		return 0
	}
	kept := make(delayedTaskHeap, 0, q.pq.Len())
	for _, t := range q.pq {
		if t.item.Tag != tag {
			kept = append(kept, t)
		}
	}
	removed := q.pq.Len() - len(kept)
	if removed > 0 {
		for i, t := range kept {
			t.index = i
		}
		q.pq = kept
		heap.Init(&q.pq)
	}
	return removed
}
