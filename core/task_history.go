package core

import (
	"cmp"
	"reflect"
	"runtime"
	"slices"
	"strings"
	"sync"
)

const defaultTaskHistoryCapacity = 100

// recordRing keeps the newest records of one tag.
type recordRing struct {
	items []TaskExecutionRecord
	next  int
	full  bool
}

func (r *recordRing) add(rec TaskExecutionRecord) {
	r.items[r.next] = rec
	r.next++
	if r.next == len(r.items) {
		r.next = 0
		r.full = true
	}
}

// newest returns the stored records, newest first.
func (r *recordRing) newest() []TaskExecutionRecord {
	n := r.next
	if r.full {
		n = len(r.items)
	}
	out := make([]TaskExecutionRecord, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, r.items[(r.next-i+len(r.items))%len(r.items)])
	}
	return out
}

// executionHistory keeps one ring per task tag. Frame ticks run dozens of
// times a second; with their own ring they cannot evict the lifecycle tasks
// (surface.create, render.pause, ...) from the history.
type executionHistory struct {
	mu       sync.Mutex
	capacity int
	rings    map[string]*recordRing
	last     TaskExecutionRecord
	hasLast  bool
}

func newExecutionHistory(capacity int) *executionHistory {
	if capacity < 1 {
		capacity = defaultTaskHistoryCapacity
	}
	return &executionHistory{capacity: capacity, rings: make(map[string]*recordRing)}
}

func (h *executionHistory) Add(rec TaskExecutionRecord) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ring, ok := h.rings[rec.Tag]
	if !ok {
		ring = &recordRing{items: make([]TaskExecutionRecord, h.capacity)}
		h.rings[rec.Tag] = ring
	}
	ring.add(rec)
	h.last, h.hasLast = rec, true
}

// Recent merges every tag's records, newest first, up to limit (0 = all).
func (h *executionHistory) Recent(limit int) []TaskExecutionRecord {
	h.mu.Lock()
	var out []TaskExecutionRecord
	for _, ring := range h.rings {
		out = append(out, ring.newest()...)
	}
	h.mu.Unlock()

	// TaskIDs are assigned in execution order.
	slices.SortFunc(out, func(a, b TaskExecutionRecord) int { return cmp.Compare(b.TaskID, a.TaskID) })
	return truncate(out, limit)
}

// Tagged returns the records of one tag, newest first, up to limit (0 = all).
func (h *executionHistory) Tagged(tag string, limit int) []TaskExecutionRecord {
	h.mu.Lock()
	defer h.mu.Unlock()

	ring, ok := h.rings[tag]
	if !ok {
		return nil
	}
	return truncate(ring.newest(), limit)
}

func (h *executionHistory) Last() (TaskExecutionRecord, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last, h.hasLast
}

func truncate(recs []TaskExecutionRecord, limit int) []TaskExecutionRecord {
	if len(recs) == 0 {
		return nil
	}
	if limit > 0 && limit < len(recs) {
		return recs[:limit]
	}
	return recs
}

// funcName names an unnamed task after its function, without the import path:
// "core.(*FramePacer).tick-fm".
func funcName(task Task) string {
	if task == nil {
		return "anonymous"
	}
	fn := runtime.FuncForPC(reflect.ValueOf(task).Pointer())
	if fn == nil || fn.Name() == "" {
		return "anonymous"
	}
	name := fn.Name()
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		name = name[i+1:]
	}
	return name
}
