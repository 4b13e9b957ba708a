// Package demo provides a sample render client: a drifting starfield.
package demo

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/Swind/go-render-thread/core"
	"github.com/gogpu/gg"
)

// ErrNoCanvas is returned when the render target does not expose a gg canvas.
var ErrNoCanvas = errors.New("demo: render target has no canvas")

// CanvasTarget is implemented by render targets backed by a gg.Context.
type CanvasTarget interface {
	Canvas() *gg.Context
}

type star struct {
	x, y, z float64
}

// Starfield moves stars toward the viewer at a constant speed. All fields
// except the counters are touched only on the render worker.
type Starfield struct {
	count  int
	speed  float64
	rng    *rand.Rand
	stars  []star
	width  float64
	height float64
	last   time.Time
	now    func() time.Time

	frames  atomic.Uint64
	resumes atomic.Int32
	pauses  atomic.Int32
}

var _ core.RenderClient = (*Starfield)(nil)

// NewStarfield returns a client drawing count stars. seed makes the layout
// reproducible.
func NewStarfield(count int, seed uint64) *Starfield {
	if count < 1 {
		count = 1
	}
	return &Starfield{
		count: count,
		speed: 0.5,
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		now:   time.Now,
	}
}

func (s *Starfield) OnCreate(ctx context.Context) error {
	s.stars = make([]star, s.count)
	for i := range s.stars {
		s.stars[i] = s.spawn()
	}
	if target := core.TargetFromContext(ctx); target != nil {
		w, h := target.Size()
		s.width, s.height = float64(w), float64(h)
	}
	return nil
}

func (s *Starfield) OnResize(ctx context.Context, width, height int) error {
	s.width, s.height = float64(width), float64(height)
	return nil
}

func (s *Starfield) OnResume(ctx context.Context) {
	s.resumes.Add(1)
	s.last = time.Time{}
}

func (s *Starfield) OnPause(ctx context.Context) {
	s.pauses.Add(1)
}

func (s *Starfield) OnDestroy(ctx context.Context) {
	s.stars = nil
}

func (s *Starfield) OnDrawFrame(ctx context.Context) error {
	target, ok := core.TargetFromContext(ctx).(CanvasTarget)
	if !ok {
		return ErrNoCanvas
	}
	dc := target.Canvas()

	now := s.now()
	var dt float64
	if !s.last.IsZero() {
		dt = now.Sub(s.last).Seconds()
	}
	s.last = now
	s.step(dt)

	dc.ClearWithColor(gg.RGB(0.02, 0.02, 0.08))
	cx, cy := s.width/2, s.height/2
	scale := min(s.width, s.height) / 2
	for _, st := range s.stars {
		px := cx + st.x/st.z*scale
		py := cy + st.y/st.z*scale
		if px < 0 || py < 0 || px >= s.width || py >= s.height {
			continue
		}
		bright := 1 - st.z
		dc.SetRGB(bright, bright, 1)
		dc.DrawCircle(px, py, 0.5+2*bright)
		if err := dc.Fill(); err != nil {
			return err
		}
	}
	s.frames.Add(1)
	return nil
}

// step advances every star by dt seconds and respawns those that passed the viewer.
func (s *Starfield) step(dt float64) {
	for i := range s.stars {
		s.stars[i].z -= s.speed * dt
		if s.stars[i].z <= 0.01 {
			s.stars[i] = s.spawn()
		}
	}
}

func (s *Starfield) spawn() star {
	return star{
		x: s.rng.Float64()*2 - 1,
		y: s.rng.Float64()*2 - 1,
		z: 0.2 + 0.8*s.rng.Float64(),
	}
}

// Frames returns the number of frames drawn.
func (s *Starfield) Frames() uint64 { return s.frames.Load() }

// Resumes and Pauses count the lifecycle callbacks received.
func (s *Starfield) Resumes() int32 { return s.resumes.Load() }
func (s *Starfield) Pauses() int32  { return s.pauses.Load() }
