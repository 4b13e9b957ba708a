package demo

import (
	"context"
	"errors"
	"time"

	"github.com/Swind/go-render-thread/core"
	"github.com/Swind/go-render-thread/softgl"
)

// HostOptions scripts the simulated surface owner.
type HostOptions struct {
	// Visible and Hidden are the lengths of each rendering and paused phase.
	Visible time.Duration
	Hidden  time.Duration

	// Cycles is the number of visible/hidden cycles; 0 runs until ctx ends.
	Cycles int

	// Rotate swaps the window's width and height after every other visible phase.
	Rotate bool

	// Format is passed to SurfaceChanged unchanged.
	Format int
}

// Host plays the platform side of a live wallpaper: it creates the surface,
// toggles visibility, rotates the screen and finally destroys the surface.
// Every call is made from the goroutine running Run.
type Host struct {
	coord  *core.Coordinator
	window *softgl.Window
	logger core.Logger
	opts   HostOptions
}

func NewHost(coord *core.Coordinator, window *softgl.Window, logger core.Logger, opts HostOptions) *Host {
	if logger == nil {
		logger = core.NewNoOpLogger()
	}
	if opts.Visible <= 0 {
		opts.Visible = time.Second
	}
	if opts.Hidden < 0 {
		opts.Hidden = 0
	}
	return &Host{coord: coord, window: window, logger: logger, opts: opts}
}

// Run drives the surface lifecycle until the script ends or ctx is done.
// Once a session exists, even one whose creation was interrupted, it is
// destroyed before Run returns.
func (h *Host) Run(ctx context.Context) (err error) {
	createErr := h.coord.SurfaceCreated(ctx, h.window)
	if createErr != nil && !errors.Is(createErr, core.ErrInterruptedWait) {
		return createErr
	}
	defer func() {
		h.coord.PauseRendering()
		// Teardown must finish even when ctx is already cancelled.
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		err = errors.Join(err, h.coord.SurfaceDestroyed(dctx, h.window))
	}()
	if createErr != nil {
		return createErr
	}

	if err := h.changed(ctx); err != nil {
		return err
	}

	for i := 0; h.opts.Cycles == 0 || i < h.opts.Cycles; i++ {
		h.coord.StartRendering()
		h.logger.Info("surface visible", core.F("cycle", i), core.F("valid", h.coord.IsSurfaceValid()))
		if !sleep(ctx, h.opts.Visible) {
			return nil
		}

		if h.opts.Rotate && i%2 == 1 {
			w, ht := h.window.Size()
			h.window.Resize(ht, w)
			if err := h.changed(ctx); err != nil {
				return err
			}
		}

		h.coord.PauseRendering()
		stats := h.coord.Stats()
		h.logger.Info("surface hidden",
			core.F("cycle", i), core.F("frames", stats.Frame.Frames), core.F("fps", stats.Frame.FPS))
		if !sleep(ctx, h.opts.Hidden) {
			return nil
		}
	}
	return nil
}

func (h *Host) changed(ctx context.Context) error {
	w, ht := h.window.Size()
	return h.coord.SurfaceChanged(ctx, h.window, h.opts.Format, w, ht)
}

func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
