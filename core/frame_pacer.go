package core

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// FrameTag marks paced frame ticks in a worker queue.
const FrameTag = "frame"

// requestTag marks on-demand ticks so pausing never drops a requested frame.
const requestTag = "frame.request"

// FrameTimer holds the pacing cadence, the rendering flag and frame counters.
// It belongs to the coordinator and outlives worker sessions; the counters are
// written on the worker and read by Stats from anywhere.
type FrameTimer struct {
	interval   time.Duration
	sampleSize int
	rendering  atomic.Bool
	starts     atomic.Uint64

	mu          sync.Mutex
	frames      uint64
	sampleStart time.Time
	fps         float64
	drawTimes   *WindowedMean
	lastFrameAt time.Time
}

// NewFrameTimer returns a timer pacing frames every interval, sampling FPS
// every sampleSize frames and averaging draw time over window frames.
func NewFrameTimer(interval time.Duration, sampleSize, window int) *FrameTimer {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if sampleSize < 1 {
		sampleSize = 60
	}
	return &FrameTimer{
		interval:   interval,
		sampleSize: sampleSize,
		drawTimes:  NewWindowedMean(window),
	}
}

func (t *FrameTimer) Interval() time.Duration { return t.interval }
func (t *FrameTimer) IsRendering() bool       { return t.rendering.Load() }

// SetRendering flips the rendering flag. Every switch on is counted so a
// queued pause can tell whether rendering restarted behind it.
func (t *FrameTimer) SetRendering(on bool) {
	if on {
		t.starts.Add(1)
	}
	t.rendering.Store(on)
}

func (t *FrameTimer) startCount() uint64 { return t.starts.Load() }

func (t *FrameTimer) recordFrame(start, end time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.frames++
	t.lastFrameAt = end
	t.drawTimes.Add(float64(end.Sub(start)))

	switch {
	case t.frames == 1:
		t.sampleStart = end
	case (t.frames-1)%uint64(t.sampleSize) == 0:
		if elapsed := end.Sub(t.sampleStart); elapsed > 0 {
			t.fps = float64(t.sampleSize) / elapsed.Seconds()
		}
		t.sampleStart = end
	}
}

// Stats returns a snapshot of the frame counters.
func (t *FrameTimer) Stats() FrameStats {
	t.mu.Lock()
	defer t.mu.Unlock()
	return FrameStats{
		Frames:       t.frames,
		FPS:          t.fps,
		MeanDrawTime: time.Duration(t.drawTimes.Mean()),
		LastFrameAt:  t.lastFrameAt,
	}
}

// FramePacer is the self-resubmitting frame task of one worker session.
// Each tick renders one frame and, while rendering is on, re-posts itself
// after the timer's interval. The re-post replaces any other queued tick, so
// at most one chain is ever alive; clearing the rendering flag or cancelling
// the queue ends the chain within one tick.
type FramePacer struct {
	worker  *WorkerThread
	timer   *FrameTimer
	valid   func() bool
	render  func(ctx context.Context) error
	fail    func(err error)
	metrics Metrics
}

func newFramePacer(
	worker *WorkerThread,
	timer *FrameTimer,
	valid func() bool,
	render func(ctx context.Context) error,
	fail func(err error),
	metrics Metrics,
) *FramePacer {
	return &FramePacer{
		worker:  worker,
		timer:   timer,
		valid:   valid,
		render:  render,
		fail:    fail,
		metrics: metrics,
	}
}

// Restart drops queued ticks and posts an immediate one.
func (p *FramePacer) Restart() bool {
	return p.worker.RepostTagged(FrameTag, "frame", p.tick, 0)
}

// RequestFrame posts one immediate tick without touching queued ones.
func (p *FramePacer) RequestFrame() bool {
	return p.worker.PostTaggedTask(requestTag, "frame", p.tick)
}

func (p *FramePacer) tick(ctx context.Context) {
	if !p.valid() {
		return
	}

	start := time.Now()
	if err := callSafely(func() error { return p.render(ctx) }); err != nil {
		p.fail(err)
		return
	}
	end := time.Now()
	p.timer.recordFrame(start, end)
	p.metrics.RecordFrame(p.worker.Name(), end.Sub(start))

	if p.timer.IsRendering() {
		p.worker.RepostTagged(FrameTag, "frame", p.tick, p.timer.Interval())
	}
}
