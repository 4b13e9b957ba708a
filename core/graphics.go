package core

import "context"

// Surface is the platform-provided pixel destination (a window, a surface
// holder). The coordinator never inspects it; it is handed to the graphics
// context unchanged.
type Surface any

// ContextConfig describes the framebuffer a graphics context is created with.
type ContextConfig struct {
	Red, Green, Blue, Alpha int
	Depth, Stencil          int
}

// DefaultContextConfig is RGBA8888 with a 16-bit depth buffer and no stencil.
func DefaultContextConfig() ContextConfig {
	return ContextConfig{Red: 8, Green: 8, Blue: 8, Alpha: 8, Depth: 16, Stencil: 0}
}

// GraphicsBackend creates graphics contexts. Initialize is only ever called
// on a worker goroutine.
type GraphicsBackend interface {
	Initialize(cfg ContextConfig) (GraphicsContext, error)
}

// GraphicsContext is the GPU state handle owned by exactly one worker.
type GraphicsContext interface {
	// CreateTarget binds a drawable render target to surface.
	CreateTarget(surface Surface) (RenderTarget, error)

	// Release tears the context down. The context is unusable afterwards.
	Release() error
}

// RenderTarget is the surface-bound drawable the client renders into.
type RenderTarget interface {
	// Swap presents the back buffer.
	Swap() error

	// Size returns the drawable size in pixels.
	Size() (width, height int)

	// Release unbinds the target from its surface.
	Release() error
}

type graphicsKeyType struct{}
type targetKeyType struct{}

var (
	graphicsKey graphicsKeyType
	targetKey   targetKeyType
)

// GraphicsFromContext returns the graphics context of the running session,
// or nil outside a render callback.
func GraphicsFromContext(ctx context.Context) GraphicsContext {
	if v, ok := ctx.Value(graphicsKey).(GraphicsContext); ok {
		return v
	}
	return nil
}

// TargetFromContext returns the render target of the running session,
// or nil outside a render callback or before a target exists.
func TargetFromContext(ctx context.Context) RenderTarget {
	if v, ok := ctx.Value(targetKey).(RenderTarget); ok {
		return v
	}
	return nil
}
