// Package renderthread runs a render loop on a dedicated worker goroutine
// and keeps it in step with a platform surface's lifecycle.
//
// A control goroutine (typically the platform's surface callbacks) reports
// surface creation, changes and destruction to a Coordinator. Each call is
// turned into tasks on the worker's serial queue; create, change and destroy
// block on a Barrier posted behind them, so when they return the worker has
// finished that step. Between those calls a frame pacer redraws at a fixed
// interval while rendering is on.
//
// # Quick Start
//
//	coord := renderthread.NewCoordinator(client, softgl.NewBackend(), nil)
//
//	// surface callbacks
//	if err := coord.SurfaceCreated(ctx, window); err != nil {
//		return err
//	}
//	coord.SurfaceChanged(ctx, window, 0, width, height)
//
//	// visibility
//	coord.StartRendering()
//	coord.PauseRendering()
//
//	coord.SurfaceDestroyed(ctx, window)
//
// # Key Concepts
//
// WorkerThread: one goroutine draining a FIFO queue plus a delayed-task heap.
// Tasks posted from any goroutine run one at a time in post order. Stop
// finishes queued work and exits; CancelAll drops it.
//
// Barrier: a one-shot rendezvous. Posted at the tail of a queue it marks the
// point where everything posted earlier has run.
//
// RenderClient: the drawing callbacks. Every callback runs on the worker, so
// client state needs no locks. Errors and panics invalidate the surface and
// stop the frame loop; they never reach the control goroutine.
//
// SurfaceState: Uninitialized before the first create, Valid while the
// context and target are usable, Invalid after a failure or destroy.
//
// # Thread Safety
//
// All Coordinator methods are safe to call from any goroutine. Lifecycle
// methods serialize with each other. RenderOneFrame takes no lock and may be
// called from inside render callbacks.
//
// For more details, see https://github.com/Swind/go-render-thread
package renderthread
