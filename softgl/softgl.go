// Package softgl is a software graphics backend for the render coordinator.
//
// Each render target owns a gg.Context back buffer. Swap presents the back
// buffer's pixels to the surface when the surface implements Presenter, so
// any image sink (an in-memory Window, a PNG writer, a framebuffer device)
// can stand in for a platform window.
package softgl

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	"sync/atomic"

	"github.com/Swind/go-render-thread/core"
	"github.com/gogpu/gg"
)

var (
	// ErrUnsupportedConfig is returned by Initialize for framebuffer layouts
	// the software rasterizer cannot provide.
	ErrUnsupportedConfig = errors.New("softgl: unsupported context config")

	// ErrUnsupportedSurface is returned by CreateTarget when the surface does
	// not report a size.
	ErrUnsupportedSurface = errors.New("softgl: unsupported surface")

	// ErrReleased is returned when a released context or target is used.
	ErrReleased = errors.New("softgl: released")
)

// Sizer is implemented by surfaces the backend can render to.
type Sizer interface {
	Size() (width, height int)
}

// Presenter receives every swapped frame. img is owned by the callee.
type Presenter interface {
	Present(img *image.RGBA) error
}

// Backend creates software contexts.
type Backend struct {
	created atomic.Int64
}

var _ core.GraphicsBackend = (*Backend)(nil)

func NewBackend() *Backend {
	return &Backend{}
}

// Initialize accepts 8-bit RGBA layouts (alpha may be 0) with any depth up to
// 32 bits and a stencil of at most 8 bits.
func (b *Backend) Initialize(cfg core.ContextConfig) (core.GraphicsContext, error) {
	if cfg.Red != 8 || cfg.Green != 8 || cfg.Blue != 8 || (cfg.Alpha != 8 && cfg.Alpha != 0) {
		return nil, fmt.Errorf("%w: color r%dg%db%da%d", ErrUnsupportedConfig, cfg.Red, cfg.Green, cfg.Blue, cfg.Alpha)
	}
	if cfg.Depth < 0 || cfg.Depth > 32 || cfg.Stencil < 0 || cfg.Stencil > 8 {
		return nil, fmt.Errorf("%w: depth %d stencil %d", ErrUnsupportedConfig, cfg.Depth, cfg.Stencil)
	}
	b.created.Add(1)
	return &Context{cfg: cfg}, nil
}

// Created returns how many contexts this backend has handed out.
func (b *Backend) Created() int64 {
	return b.created.Load()
}

// Context is a software graphics context.
type Context struct {
	cfg      core.ContextConfig
	released atomic.Bool
}

var _ core.GraphicsContext = (*Context)(nil)

// Config returns the layout the context was created with.
func (c *Context) Config() core.ContextConfig {
	return c.cfg
}

// CreateTarget allocates a back buffer matching the surface size.
func (c *Context) CreateTarget(surface core.Surface) (core.RenderTarget, error) {
	if c.released.Load() {
		return nil, ErrReleased
	}
	sizer, ok := surface.(Sizer)
	if !ok {
		return nil, fmt.Errorf("%w: %T has no size", ErrUnsupportedSurface, surface)
	}
	w, h := sizer.Size()
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrUnsupportedSurface, w, h)
	}
	presenter, _ := surface.(Presenter)
	return &Target{
		canvas:    gg.NewContext(w, h),
		presenter: presenter,
		opaque:    c.cfg.Alpha == 0,
	}, nil
}

// Release marks the context unusable. Targets already created keep working
// until they are released themselves.
func (c *Context) Release() error {
	c.released.Store(true)
	return nil
}

// Target is a surface-bound back buffer. It is used from the worker only.
type Target struct {
	canvas    *gg.Context
	presenter Presenter
	opaque    bool
	swaps     uint64
	released  bool
}

var _ core.RenderTarget = (*Target)(nil)

// Canvas returns the back buffer to draw into.
func (t *Target) Canvas() *gg.Context {
	return t.canvas
}

// Swap presents the back buffer.
func (t *Target) Swap() error {
	if t.released {
		return ErrReleased
	}
	t.swaps++
	if t.presenter == nil {
		return nil
	}
	img := toRGBA(t.canvas.Image())
	if t.opaque {
		for i := 3; i < len(img.Pix); i += 4 {
			img.Pix[i] = 0xff
		}
	}
	return t.presenter.Present(img)
}

// Swaps returns how many frames have been presented.
func (t *Target) Swaps() uint64 {
	return t.swaps
}

func (t *Target) Size() (width, height int) {
	return t.canvas.Width(), t.canvas.Height()
}

func (t *Target) Release() error {
	if t.released {
		return nil
	}
	t.released = true
	return t.canvas.Close()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}
