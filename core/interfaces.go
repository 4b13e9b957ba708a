package core

import (
	"context"
	"fmt"
	"os"
	"time"
)

// =============================================================================
// PanicHandler: Interface for handling task panics
// =============================================================================

// PanicHandler is called when a task panics on a worker.
//
// Implementations should be thread-safe; several workers may share one.
type PanicHandler interface {
	// HandlePanic is called after the panic has been recovered.
	//
	// Parameters:
	// - ctx: The context of the panicked task (CurrentWorker works on it)
	// - workerName: The name of the worker where the panic occurred
	// - taskName: The name the task was posted with
	// - panicInfo: The panic value recovered from the task
	// - stackTrace: The stack trace at the time of panic
	HandlePanic(ctx context.Context, workerName string, taskName string, panicInfo any, stackTrace []byte)
}

// DefaultPanicHandler writes panic information to stderr.
type DefaultPanicHandler struct{}

// HandlePanic prints panic information to stderr.
func (h *DefaultPanicHandler) HandlePanic(ctx context.Context, workerName string, taskName string, panicInfo any, stackTrace []byte) {
	fmt.Fprintf(os.Stderr, "[Worker %s] Panic in %s: %v\nStack trace:\n%s",
		workerName, taskName, panicInfo, stackTrace)
}

// =============================================================================
// Metrics: Interface for observability and monitoring
// =============================================================================

// Metrics collects worker and frame metrics.
// Implementations should be non-blocking; they are called on the worker.
type Metrics interface {
	// RecordTaskDuration records how long a task took on the worker.
	RecordTaskDuration(workerName string, taskName string, duration time.Duration)

	// RecordFrame records one presented frame and the time spent drawing it.
	RecordFrame(workerName string, duration time.Duration)

	// RecordTaskPanic records that a task panicked.
	RecordTaskPanic(workerName string, panicInfo any)

	// RecordQueueDepth records the ready + delayed queue depth.
	RecordQueueDepth(workerName string, depth int)

	// RecordTaskRejected records that a task was rejected (e.g. worker stopped).
	RecordTaskRejected(workerName string, reason string)
}

// NilMetrics provides a no-op metrics implementation.
// This is the default when no metrics interface is provided.
type NilMetrics struct{}

func (m *NilMetrics) RecordTaskDuration(workerName string, taskName string, duration time.Duration) {
}
func (m *NilMetrics) RecordFrame(workerName string, duration time.Duration) {}
func (m *NilMetrics) RecordTaskPanic(workerName string, panicInfo any)      {}
func (m *NilMetrics) RecordQueueDepth(workerName string, depth int)         {}
func (m *NilMetrics) RecordTaskRejected(workerName string, reason string)   {}

// =============================================================================
// WorkerConfig / CoordinatorConfig
// =============================================================================

// WorkerConfig holds the pluggable handlers of a WorkerThread.
// Nil fields fall back to defaults.
type WorkerConfig struct {
	// PanicHandler is called when a task panics. Defaults to DefaultPanicHandler.
	PanicHandler PanicHandler

	// Metrics records task execution metrics. Defaults to NilMetrics.
	Metrics Metrics

	// Logger receives worker lifecycle logs. Defaults to NoOpLogger.
	Logger Logger

	// HistoryCapacity bounds the records kept per task tag. Defaults to 100.
	HistoryCapacity int
}

// DefaultWorkerConfig returns a config with default handlers.
func DefaultWorkerConfig() *WorkerConfig {
	return &WorkerConfig{
		PanicHandler:    &DefaultPanicHandler{},
		Metrics:         &NilMetrics{},
		Logger:          NewNoOpLogger(),
		HistoryCapacity: defaultTaskHistoryCapacity,
	}
}

func (c *WorkerConfig) withDefaults() *WorkerConfig {
	out := DefaultWorkerConfig()
	if c == nil {
		return out
	}
	if c.PanicHandler != nil {
		out.PanicHandler = c.PanicHandler
	}
	if c.Metrics != nil {
		out.Metrics = c.Metrics
	}
	if c.Logger != nil {
		out.Logger = c.Logger
	}
	if c.HistoryCapacity > 0 {
		out.HistoryCapacity = c.HistoryCapacity
	}
	return out
}

// DefaultFrameInterval is the pacing delay between frames (about 75 Hz).
const DefaultFrameInterval = 13 * time.Millisecond

// CoordinatorConfig configures a Coordinator and the workers it spawns.
type CoordinatorConfig struct {
	// Name prefixes worker names: "<Name>-<session>".
	Name string

	// FrameInterval is the delay between paced frames.
	FrameInterval time.Duration

	// Context is passed to GraphicsBackend.Initialize.
	Context ContextConfig

	// FPSSampleFrames is how many frames make up one FPS sample.
	FPSSampleFrames int

	// FrameWindow is the WindowedMean size for draw durations.
	FrameWindow int

	// Worker carries the handlers shared by every worker session.
	Worker WorkerConfig
}

// DefaultCoordinatorConfig returns the settings the wallpaper engines used.
func DefaultCoordinatorConfig() *CoordinatorConfig {
	return &CoordinatorConfig{
		Name:            "render",
		FrameInterval:   DefaultFrameInterval,
		Context:         DefaultContextConfig(),
		FPSSampleFrames: 60,
		FrameWindow:     30,
		Worker:          *DefaultWorkerConfig(),
	}
}

func (c *CoordinatorConfig) withDefaults() *CoordinatorConfig {
	out := DefaultCoordinatorConfig()
	if c == nil {
		return out
	}
	if c.Name != "" {
		out.Name = c.Name
	}
	if c.FrameInterval > 0 {
		out.FrameInterval = c.FrameInterval
	}
	if c.Context != (ContextConfig{}) {
		out.Context = c.Context
	}
	if c.FPSSampleFrames > 0 {
		out.FPSSampleFrames = c.FPSSampleFrames
	}
	if c.FrameWindow > 0 {
		out.FrameWindow = c.FrameWindow
	}
	out.Worker = *c.Worker.withDefaults()
	return out
}
