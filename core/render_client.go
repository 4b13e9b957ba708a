package core

import "context"

// RenderClient receives the drawing callbacks. Every method is invoked on the
// session's worker goroutine; ctx carries the worker (CurrentWorker), the
// graphics context (GraphicsFromContext) and the render target
// (TargetFromContext).
//
// Errors and panics from any callback are absorbed by the coordinator and
// turn the surface state Invalid. They never reach the control thread.
type RenderClient interface {
	// OnCreate is called once per session after the context and target exist.
	OnCreate(ctx context.Context) error

	// OnResize is called on every surface change with the new size.
	OnResize(ctx context.Context, width, height int) error

	// OnDrawFrame is called once per paced or on-demand frame.
	OnDrawFrame(ctx context.Context) error

	// OnResume is called when rendering starts.
	OnResume(ctx context.Context)

	// OnPause is called when rendering pauses, only after a matching OnResume.
	OnPause(ctx context.Context)

	// OnDestroy is called once before the target and context are released.
	OnDestroy(ctx context.Context)
}

// RenderClientFuncs adapts plain functions to RenderClient. Nil fields are no-ops.
type RenderClientFuncs struct {
	Create  func(ctx context.Context) error
	Resize  func(ctx context.Context, width, height int) error
	Draw    func(ctx context.Context) error
	Resume  func(ctx context.Context)
	Pause   func(ctx context.Context)
	Destroy func(ctx context.Context)
}

var _ RenderClient = RenderClientFuncs{}

func (f RenderClientFuncs) OnCreate(ctx context.Context) error {
	if f.Create == nil {
		return nil
	}
	return f.Create(ctx)
}

func (f RenderClientFuncs) OnResize(ctx context.Context, width, height int) error {
	if f.Resize == nil {
		return nil
	}
	return f.Resize(ctx, width, height)
}

func (f RenderClientFuncs) OnDrawFrame(ctx context.Context) error {
	if f.Draw == nil {
		return nil
	}
	return f.Draw(ctx)
}

func (f RenderClientFuncs) OnResume(ctx context.Context) {
	if f.Resume != nil {
		f.Resume(ctx)
	}
}

func (f RenderClientFuncs) OnPause(ctx context.Context) {
	if f.Pause != nil {
		f.Pause(ctx)
	}
}

func (f RenderClientFuncs) OnDestroy(ctx context.Context) {
	if f.Destroy != nil {
		f.Destroy(ctx)
	}
}
