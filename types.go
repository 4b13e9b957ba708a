package renderthread

import "github.com/Swind/go-render-thread/core"

// Re-export commonly used types from core package for convenience.
// This allows users to import only the renderthread package for most use cases.

// Task is the unit of work run on a worker goroutine.
type Task = core.Task

// WorkerThread runs tasks one at a time on a dedicated goroutine.
type WorkerThread = core.WorkerThread

// Barrier is a one-shot rendezvous posted at the tail of a worker's queue.
type Barrier = core.Barrier

// Coordinator drives surface lifecycle transitions onto per-surface workers.
type Coordinator = core.Coordinator

// RenderClient receives the drawing callbacks on the worker.
type RenderClient = core.RenderClient

// RenderClientFuncs adapts plain functions to RenderClient.
type RenderClientFuncs = core.RenderClientFuncs

// Graphics abstraction implemented by backends such as softgl.
type (
	Surface         = core.Surface
	ContextConfig   = core.ContextConfig
	GraphicsBackend = core.GraphicsBackend
	GraphicsContext = core.GraphicsContext
	RenderTarget    = core.RenderTarget
)

// SurfaceState reports whether the render target can be drawn to.
type SurfaceState = core.SurfaceState

const (
	SurfaceUninitialized = core.SurfaceUninitialized
	SurfaceValid         = core.SurfaceValid
	SurfaceInvalid       = core.SurfaceInvalid
)

// Configuration
type (
	WorkerConfig      = core.WorkerConfig
	CoordinatorConfig = core.CoordinatorConfig
)

// Snapshots
type (
	WorkerStats      = core.WorkerStats
	FrameStats       = core.FrameStats
	CoordinatorStats = core.CoordinatorStats
)

// DefaultFrameInterval is the pacing delay between frames.
const DefaultFrameInterval = core.DefaultFrameInterval

// Errors
var (
	ErrInvalidState    = core.ErrInvalidState
	ErrInterruptedWait = core.ErrInterruptedWait
	ErrWorkerStopped   = core.ErrWorkerStopped
)

var (
	DefaultWorkerConfig      = core.DefaultWorkerConfig
	DefaultCoordinatorConfig = core.DefaultCoordinatorConfig
	DefaultContextConfig     = core.DefaultContextConfig
)

// NewWorkerThread creates and starts a named worker. cfg may be nil.
func NewWorkerThread(name string, cfg *WorkerConfig) *WorkerThread {
	return core.NewWorkerThread(name, cfg)
}

// NewCoordinator creates a coordinator for client drawing through backend.
// cfg may be nil.
func NewCoordinator(client RenderClient, backend GraphicsBackend, cfg *CoordinatorConfig) *Coordinator {
	return core.NewCoordinator(client, backend, cfg)
}

// NewBarrier returns an unsignaled barrier.
func NewBarrier() *Barrier {
	return core.NewBarrier()
}

// CurrentWorker returns the worker running the task that owns ctx.
var CurrentWorker = core.CurrentWorker

// GraphicsFromContext and TargetFromContext return the session handles inside render callbacks.
var (
	GraphicsFromContext = core.GraphicsFromContext
	TargetFromContext   = core.TargetFromContext
)
