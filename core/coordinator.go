package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
)

// Coordinator owns the render worker of a drawable surface and serializes the
// surface lifecycle requested by a control goroutine.
//
// SurfaceCreated, SurfaceChanged and SurfaceDestroyed post their work to the
// worker followed by a barrier and block until the barrier runs, so the caller
// always observes a fully initialized or fully torn down session.
// StartRendering, PauseRendering and RenderOneFrame never block.
//
// Failures inside worker tasks (context creation, render callbacks) never
// reach the caller; they turn the surface state Invalid and are logged.
// Callers observe them through IsSurfaceValid.
type Coordinator struct {
	cfg     *CoordinatorConfig
	client  RenderClient
	backend GraphicsBackend
	logger  Logger
	metrics Metrics

	// mu serializes lifecycle calls.
	mu       sync.Mutex
	current  *session
	sessions uint64

	// active mirrors current for lock-free readers (RenderOneFrame, Stats).
	active atomic.Pointer[session]
	// idle is reported while no session exists.
	idle  surfaceStateFlag
	timer *FrameTimer
}

// session is one surface lifetime: one worker, one context, one target.
// gfx, target and resumed are only touched by tasks on worker.
type session struct {
	id     uint64
	worker *WorkerThread
	pacer  *FramePacer
	state  surfaceStateFlag

	gfx     GraphicsContext
	target  RenderTarget
	resumed bool
}

// NewCoordinator creates a coordinator for client drawing through backend.
// cfg may be nil.
func NewCoordinator(client RenderClient, backend GraphicsBackend, cfg *CoordinatorConfig) *Coordinator {
	cfg = cfg.withDefaults()
	return &Coordinator{
		cfg:     cfg,
		client:  client,
		backend: backend,
		logger:  cfg.Worker.Logger,
		metrics: cfg.Worker.Metrics,
		timer:   NewFrameTimer(cfg.FrameInterval, cfg.FPSSampleFrames, cfg.FrameWindow),
	}
}

// Name returns the configured coordinator name.
func (c *Coordinator) Name() string {
	return c.cfg.Name
}

// =============================================================================
// Lifecycle (blocking)
// =============================================================================

// SurfaceCreated starts a new worker session bound to surface and blocks until
// the worker has initialized the graphics context, created the render target
// and run OnCreate, or recorded the failure.
//
// It fails with ErrInvalidState if a session already exists, and with
// ErrInterruptedWait if ctx ends before the worker finished.
func (c *Coordinator) SurfaceCreated(ctx context.Context, surface Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		return fmt.Errorf("surface created while session %d is alive: %w", c.current.id, ErrInvalidState)
	}

	c.sessions++

	s := &session{id: c.sessions}
	s.worker = NewWorkerThread(fmt.Sprintf("%s-%d", c.cfg.Name, s.id), &c.cfg.Worker)
	s.pacer = newFramePacer(s.worker, c.timer, s.valid, s.renderFunc(c.client), c.frameFailed(s), c.metrics)
	c.current = s
	c.active.Store(s)

	c.logger.Info("surface created", F("worker", s.worker.Name()), F("session", s.id))

	s.worker.PostNamedTask("surface.create", c.lifecycleTask(s, "create", func(ctx context.Context) error {
		gfx, err := c.backend.Initialize(c.cfg.Context)
		if err != nil {
			return fmt.Errorf("initialize graphics context: %w", err)
		}
		s.gfx = gfx

		target, err := gfx.CreateTarget(surface)
		if err != nil {
			return fmt.Errorf("create render target: %w", err)
		}
		s.target = target

		return c.client.OnCreate(s.callbackContext(ctx))
	}))

	if err := c.await(ctx, s.worker, "surface created"); err != nil {
		return err
	}

	// Rendering requested before (or across) sessions resumes on the new one.
	if c.timer.IsRendering() {
		c.postResume(s)
		s.pacer.Restart()
	}
	return nil
}

// SurfaceChanged rebinds the render target to surface, runs OnResize and
// blocks until done. If rendering is active the first frame afterwards is
// drawn on the new target.
func (c *Coordinator) SurfaceChanged(ctx context.Context, surface Surface, format, width, height int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	if s == nil {
		return fmt.Errorf("surface changed without a surface: %w", ErrInvalidState)
	}
	wasRendering := c.timer.IsRendering()

	c.logger.Info("surface changed",
		F("worker", s.worker.Name()), F("format", format), F("width", width), F("height", height))

	s.worker.PostNamedTask("surface.change", c.lifecycleTask(s, "resize", func(ctx context.Context) error {
		if s.gfx == nil {
			return errors.New("no graphics context")
		}
		if s.target != nil {
			if err := s.target.Release(); err != nil {
				c.logger.Warn("release render target failed", F("worker", s.worker.Name()), F("error", err))
			}
			s.target = nil
		}

		target, err := s.gfx.CreateTarget(surface)
		if err != nil {
			return fmt.Errorf("create render target: %w", err)
		}
		s.target = target

		return c.client.OnResize(s.callbackContext(ctx), width, height)
	}))

	if err := c.await(ctx, s.worker, "surface changed"); err != nil {
		return err
	}

	if wasRendering {
		// An interrupted create never posted the resume; this one is a no-op otherwise.
		c.postResume(s)
		// Replaces any tick queued before the resize.
		s.pacer.Restart()
	}
	return nil
}

// SurfaceDestroyed cancels queued work, runs OnDestroy, releases the target
// and context, then stops and joins the worker. After it returns no further
// callbacks are delivered for this session.
//
// If ctx ends while waiting, the worker is detached: it still finishes the
// teardown and exits on its own, and ErrInterruptedWait is returned.
func (c *Coordinator) SurfaceDestroyed(ctx context.Context, surface Surface) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.current
	if s == nil {
		return fmt.Errorf("surface destroyed without a surface: %w", ErrInvalidState)
	}
	w := s.worker

	w.CancelAll()
	w.PostNamedTask("surface.destroy", func(ctx context.Context) {
		c.teardown(ctx, s)
	})
	b, postErr := w.PostBarrier()
	w.Stop()

	c.idle.Store(SurfaceInvalid)
	c.current = nil
	c.active.Store(nil)

	if postErr != nil {
		return fmt.Errorf("surface destroyed: %w", postErr)
	}
	if err := b.Wait(ctx); err != nil {
		c.logger.Warn("surface teardown wait interrupted", F("worker", w.Name()), F("error", err))
		return interrupted("surface destroyed", err)
	}
	if err := w.Join(ctx); err != nil {
		c.logger.Warn("worker join interrupted", F("worker", w.Name()), F("error", err))
		return interrupted("join worker", err)
	}

	c.logger.Info("surface destroyed", F("worker", w.Name()), F("session", s.id))
	return nil
}

func (c *Coordinator) teardown(ctx context.Context, s *session) {
	name := s.worker.Name()
	cbCtx := s.callbackContext(ctx)

	// A queued render.pause may have been cancelled along with everything else.
	if s.resumed {
		if err := callSafely(func() error { c.client.OnPause(cbCtx); return nil }); err != nil {
			c.logger.Error("OnPause failed", F("worker", name), F("error", err))
		}
		s.resumed = false
	}
	if err := callSafely(func() error { c.client.OnDestroy(cbCtx); return nil }); err != nil {
		c.logger.Error("OnDestroy failed", F("worker", name), F("error", err))
	}
	if s.target != nil {
		if err := callSafely(s.target.Release); err != nil {
			c.logger.Warn("release render target failed", F("worker", name), F("error", err))
		}
		s.target = nil
	}
	if s.gfx != nil {
		if err := callSafely(s.gfx.Release); err != nil {
			c.logger.Warn("release graphics context failed", F("worker", name), F("error", err))
		}
		s.gfx = nil
	}
	s.state.Store(SurfaceInvalid)
}

// =============================================================================
// Rendering control (non-blocking)
// =============================================================================

// StartRendering turns the frame loop on. With a live session it posts
// OnResume and the first frame; otherwise both are delivered after the next
// successful SurfaceCreated. Calling it while rendering is a no-op.
func (c *Coordinator) StartRendering() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer.IsRendering() {
		return
	}
	c.timer.SetRendering(true)

	if s := c.current; s != nil {
		c.postResume(s)
		s.pacer.Restart()
	}
	c.logger.Debug("rendering started", F("coordinator", c.cfg.Name))
}

// PauseRendering turns the frame loop off, drops every queued task so no
// stale frame runs, and posts OnPause. Calling it while paused is a no-op.
func (c *Coordinator) PauseRendering() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.timer.IsRendering() {
		return
	}
	c.timer.SetRendering(false)

	if s := c.current; s != nil {
		starts := c.timer.startCount()
		s.worker.CancelAll()
		s.worker.PostNamedTask("render.pause", func(ctx context.Context) {
			// A tick running during PauseRendering may have re-armed itself.
			// A StartRendering since then owns the queued tick, so keep it.
			s.worker.cancelTaggedIf(FrameTag, func() bool { return c.timer.startCount() == starts })
			if !s.resumed {
				return
			}
			s.resumed = false
			c.callback(s, "pause", func() error { c.client.OnPause(s.callbackContext(ctx)); return nil })
		})
	}
	c.logger.Debug("rendering paused", F("coordinator", c.cfg.Name))
}

// RenderOneFrame posts a single frame regardless of the rendering flag. It
// takes no lock and may be called from render callbacks. It reports whether a
// worker accepted the request.
func (c *Coordinator) RenderOneFrame() bool {
	s := c.active.Load()
	if s == nil {
		return false
	}
	return s.pacer.RequestFrame()
}

// IsSurfaceValid reports whether the last lifecycle step succeeded and the
// surface still exists.
func (c *Coordinator) IsSurfaceValid() bool {
	return c.SurfaceState() == SurfaceValid
}

// SurfaceState returns the state of the live session, Uninitialized before
// the first surface and Invalid once a surface has been destroyed.
func (c *Coordinator) SurfaceState() SurfaceState {
	if s := c.active.Load(); s != nil {
		return s.state.Load()
	}
	return c.idle.Load()
}

// IsRendering reports whether the frame loop is on.
func (c *Coordinator) IsRendering() bool {
	return c.timer.IsRendering()
}

// Stats returns a snapshot for metrics and diagnostics.
func (c *Coordinator) Stats() CoordinatorStats {
	stats := CoordinatorStats{
		Name:      c.cfg.Name,
		State:     c.SurfaceState(),
		Rendering: c.timer.IsRendering(),
		Frame:     c.timer.Stats(),
	}
	if s := c.active.Load(); s != nil {
		stats.HasWorker = true
		stats.Session = s.id
		stats.Worker = s.worker.Stats()
	}
	return stats
}

// =============================================================================
// Helpers
// =============================================================================

// await posts a barrier behind everything already queued and waits for it.
func (c *Coordinator) await(ctx context.Context, w *WorkerThread, step string) error {
	b, err := w.PostBarrier()
	if err != nil {
		return fmt.Errorf("%s: %w", step, err)
	}
	if err := b.Wait(ctx); err != nil {
		c.logger.Warn("lifecycle wait interrupted", F("worker", w.Name()), F("step", step), F("error", err))
		return interrupted(step, err)
	}
	return nil
}

// lifecycleTask runs step on the worker and records its outcome as the
// surface state: Valid on success, Invalid on error or panic.
func (c *Coordinator) lifecycleTask(s *session, step string, fn func(ctx context.Context) error) Task {
	return func(ctx context.Context) {
		if err := callSafely(func() error { return fn(ctx) }); err != nil {
			s.state.Store(SurfaceInvalid)
			c.logger.Error("surface "+step+" failed", F("worker", s.worker.Name()), F("error", err))
			return
		}
		s.state.Store(SurfaceValid)
	}
}

// callback runs a client callback that cannot make the surface valid but
// invalidates it on failure.
func (c *Coordinator) callback(s *session, name string, fn func() error) {
	if err := callSafely(fn); err != nil {
		s.state.Store(SurfaceInvalid)
		c.logger.Error("render callback failed", F("worker", s.worker.Name()), F("callback", name), F("error", err))
	}
}

func (c *Coordinator) postResume(s *session) {
	s.worker.PostNamedTask("render.resume", func(ctx context.Context) {
		if s.resumed {
			return
		}
		s.resumed = true
		c.callback(s, "resume", func() error { c.client.OnResume(s.callbackContext(ctx)); return nil })
	})
}

func (c *Coordinator) frameFailed(s *session) func(error) {
	return func(err error) {
		s.state.Store(SurfaceInvalid)
		c.logger.Error("frame failed", F("worker", s.worker.Name()), F("error", err))
	}
}

func (s *session) valid() bool {
	return s.state.Load() == SurfaceValid
}

func (s *session) renderFunc(client RenderClient) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if s.target == nil {
			return errors.New("no render target")
		}
		if err := s.target.Swap(); err != nil {
			return fmt.Errorf("swap buffers: %w", err)
		}
		return client.OnDrawFrame(s.callbackContext(ctx))
	}
}

// callbackContext exposes the session's graphics context and target to the
// render client.
func (s *session) callbackContext(ctx context.Context) context.Context {
	if s.gfx != nil {
		ctx = context.WithValue(ctx, graphicsKey, s.gfx)
	}
	if s.target != nil {
		ctx = context.WithValue(ctx, targetKey, s.target)
	}
	return ctx
}
