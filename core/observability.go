package core

import "time"

// TaskExecutionRecord captures a completed task execution event.
type TaskExecutionRecord struct {
	TaskID     TaskID
	Name       string
	Tag        string
	WorkerName string
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
	Panicked   bool
}

// WorkerStats represents runtime observability state for a worker.
type WorkerStats struct {
	Name         string
	Pending      int
	Delayed      int
	Executed     uint64
	Rejected     int64
	Cancelled    int64
	Closed       bool
	LastTaskName string
	LastTaskAt   time.Time
}

// FrameStats is a snapshot of the frame pacer's counters.
type FrameStats struct {
	Frames       uint64
	FPS          float64
	MeanDrawTime time.Duration
	LastFrameAt  time.Time
}

// CoordinatorStats represents runtime observability state for a coordinator.
type CoordinatorStats struct {
	Name      string
	Session   uint64
	State     SurfaceState
	Rendering bool
	HasWorker bool
	Frame     FrameStats
	Worker    WorkerStats
}
