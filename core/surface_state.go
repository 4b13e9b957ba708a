package core

import "sync/atomic"

// SurfaceState reports whether the render target can currently be drawn to.
type SurfaceState int32

const (
	// SurfaceUninitialized: no create callback has completed for this session yet.
	SurfaceUninitialized SurfaceState = iota

	// SurfaceValid: context, target and the client's last create/resize succeeded.
	SurfaceValid

	// SurfaceInvalid: a lifecycle step failed, or the surface was torn down.
	SurfaceInvalid
)

func (s SurfaceState) String() string {
	switch s {
	case SurfaceUninitialized:
		return "uninitialized"
	case SurfaceValid:
		return "valid"
	case SurfaceInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// surfaceStateFlag is the single word the control thread observes.
type surfaceStateFlag struct {
	v atomic.Int32
}

func (f *surfaceStateFlag) Load() SurfaceState {
	return SurfaceState(f.v.Load())
}

func (f *surfaceStateFlag) Store(s SurfaceState) {
	f.v.Store(int32(s))
}
