package softgl

import (
	"image"
	"sync"

	xdraw "golang.org/x/image/draw"
)

// Window is an in-memory surface. The host resizes it; the render worker
// presents into it.
type Window struct {
	mu        sync.Mutex
	width     int
	height    int
	last      *image.RGBA
	presented uint64
}

var (
	_ Sizer     = (*Window)(nil)
	_ Presenter = (*Window)(nil)
)

func NewWindow(width, height int) *Window {
	return &Window{width: width, height: height}
}

func (w *Window) Size() (width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.width, w.height
}

// Resize changes the window size. Frames already presented keep their size
// until the next SurfaceChanged rebinds the target.
func (w *Window) Resize(width, height int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.width, w.height = width, height
}

func (w *Window) Present(img *image.RGBA) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.last = img
	w.presented++
	return nil
}

// Presented returns the number of frames presented so far.
func (w *Window) Presented() uint64 {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.presented
}

// Last returns the most recent frame as presented, or nil.
func (w *Window) Last() *image.RGBA {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Snapshot returns the most recent frame scaled to the window's current size,
// or nil if nothing has been presented.
func (w *Window) Snapshot() *image.RGBA {
	w.mu.Lock()
	src, width, height := w.last, w.width, w.height
	w.mu.Unlock()

	if src == nil || width <= 0 || height <= 0 {
		return nil
	}
	if src.Bounds().Dx() == width && src.Bounds().Dy() == height {
		out := image.NewRGBA(src.Bounds())
		copy(out.Pix, src.Pix)
		return out
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}
